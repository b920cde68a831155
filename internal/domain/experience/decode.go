package experience

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mwork/experience-api/internal/pkg/optional"
	"github.com/mwork/experience-api/internal/pkg/validator"
)

// JSON field names, in reporting order
const (
	fieldTitle            = "title"
	fieldCompany          = "company"
	fieldLocation         = "location"
	fieldLat              = "lat"
	fieldLon              = "lon"
	fieldDescription      = "description"
	fieldResponsibilities = "responsibilities"
	fieldTechnologies     = "technologies"
	fieldStartDate        = "start_date"
	fieldEndDate          = "end_date"
	fieldEmploymentType   = "employment_type"
	fieldIsCurrent        = "is_current"
)

var fieldOrder = []string{
	fieldTitle, fieldCompany, fieldLocation, fieldLat, fieldLon, fieldDescription,
	fieldResponsibilities, fieldTechnologies, fieldStartDate, fieldEndDate,
	fieldEmploymentType, fieldIsCurrent,
}

const (
	reasonMissing    = "missing required field"
	reasonNull       = "must not be null"
	reasonString     = "must be a string"
	reasonNUL        = "must not contain NUL characters"
	reasonNumber     = "must be a number"
	reasonBool       = "must be a boolean"
	reasonStringList = "must be an array of strings"
	reasonDateTime   = "not a valid date-time"
	reasonObject     = "must be a JSON object"
	reasonJSON       = "invalid JSON"
)

// dateTimeLayouts are tried in order. Layouts without a zone parse as UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// decoder reads one JSON object field by field and collects every failure
// instead of stopping at the first one.
type decoder struct {
	doc  map[string]json.RawMessage
	errs []validator.FieldError
}

func newDecoder(raw []byte) (*decoder, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ValidationError{Fields: []validator.FieldError{{Field: "body", Reason: reasonObject}}}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, &ValidationError{Fields: []validator.FieldError{{Field: "body", Reason: reasonJSON}}}
	}
	return &decoder{doc: doc}, nil
}

func (d *decoder) fail(path, reason string) {
	d.errs = append(d.errs, validator.FieldError{Field: path, Reason: reason})
}

func (d *decoder) failed(field string) bool {
	for _, e := range d.errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

// merge adds validator output for fields that have no error yet.
func (d *decoder) merge(errs []validator.FieldError) {
	for _, e := range errs {
		if !d.failed(e.Field) {
			d.errs = append(d.errs, e)
		}
	}
}

func (d *decoder) err() error {
	if len(d.errs) == 0 {
		return nil
	}
	sort.SliceStable(d.errs, func(i, j int) bool {
		return fieldRank(d.errs[i].Field) < fieldRank(d.errs[j].Field)
	})
	return &ValidationError{Fields: d.errs}
}

func fieldRank(path string) int {
	name, _, _ := strings.Cut(path, "[")
	for i, f := range fieldOrder {
		if f == name {
			return i
		}
	}
	return -1
}

// field decodes name from the document with parse, which handles present
// non-null values and records its own failures. ok is false when the value is
// present but malformed; the failure is already recorded.
func field[T any](d *decoder, name string, parse func(*decoder, string, json.RawMessage) (T, bool)) (optional.Value[T], bool) {
	raw, present := d.doc[name]
	if !present {
		return optional.Unset[T](), true
	}
	if isNull(raw) {
		return optional.Null[T](), true
	}
	v, ok := parse(d, name, raw)
	if !ok {
		return optional.Unset[T](), false
	}
	return optional.Of(v), true
}

// required decodes a field that must be present and non-null.
func required[T any](d *decoder, name string, parse func(*decoder, string, json.RawMessage) (T, bool)) T {
	v, ok := field(d, name, parse)
	if !ok {
		var zero T
		return zero
	}
	switch {
	case !v.IsSet():
		d.fail(name, reasonMissing)
	case v.IsNull():
		d.fail(name, reasonNull)
	}
	val, _ := v.Get()
	return val
}

// nonNull decodes an optional field that may not be null when supplied.
func nonNull[T any](d *decoder, name string, parse func(*decoder, string, json.RawMessage) (T, bool)) optional.Value[T] {
	v, _ := field(d, name, parse)
	if v.IsNull() {
		d.fail(name, reasonNull)
		return optional.Unset[T]()
	}
	return v
}

// nullable decodes an optional field where null is a legal value.
func nullable[T any](d *decoder, name string, parse func(*decoder, string, json.RawMessage) (T, bool)) optional.Value[T] {
	v, _ := field(d, name, parse)
	return v
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func parseString(d *decoder, path string, raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		d.fail(path, reasonString)
		return "", false
	}
	if strings.ContainsRune(s, 0) {
		d.fail(path, reasonNUL)
		return "", false
	}
	return s, true
}

func parseNumber(d *decoder, path string, raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		d.fail(path, reasonNumber)
		return 0, false
	}
	return f, true
}

func parseBool(d *decoder, path string, raw json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		d.fail(path, reasonBool)
		return false, false
	}
	return b, true
}

func parseStrings(d *decoder, path string, raw json.RawMessage) ([]string, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		d.fail(path, reasonStringList)
		return nil, false
	}

	out := make([]string, 0, len(items))
	ok := true
	for i, item := range items {
		var s string
		if isNull(item) || json.Unmarshal(item, &s) != nil {
			d.fail(fmt.Sprintf("%s[%d]", path, i), reasonString)
			ok = false
			continue
		}
		if strings.ContainsRune(s, 0) {
			d.fail(fmt.Sprintf("%s[%d]", path, i), reasonNUL)
			ok = false
			continue
		}
		out = append(out, s)
	}
	return out, ok
}

func parseDateTimeField(d *decoder, path string, raw json.RawMessage) (time.Time, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		d.fail(path, reasonDateTime)
		return time.Time{}, false
	}
	t, err := ParseDateTime(s)
	if err != nil {
		d.fail(path, reasonDateTime)
		return time.Time{}, false
	}
	return t, true
}

// ParseDateTime accepts RFC 3339 date-times, zoneless date-times and
// bare dates. The result is in UTC, truncated to storage precision.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return storageTime(t), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
