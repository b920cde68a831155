// Package objectid generates and checks 24-character hex identifiers in the
// MongoDB ObjectID format (timestamp, random and counter bytes).
package objectid

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID is returned for strings that are not 24 hex characters.
var ErrInvalidID = errors.New("invalid object id")

// Generator produces fresh identifiers.
type Generator struct{}

// NewGenerator creates identifier generator
func NewGenerator() Generator {
	return Generator{}
}

// NewID returns a new unique identifier
func (Generator) NewID() string {
	return primitive.NewObjectID().Hex()
}

// Valid reports whether id is a well-formed identifier
func Valid(id string) bool {
	return primitive.IsValidObjectID(id)
}

// Normalize parses id and returns its canonical lower-case form.
func Normalize(id string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return "", ErrInvalidID
	}
	return oid.Hex(), nil
}
