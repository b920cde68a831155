// Command issue-token mints an access token signed with the configured
// JWT secret. Tokens default to the admin role so they can be used for
// the write endpoints of the experience API.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mwork/experience-api/internal/config"
	"github.com/mwork/experience-api/internal/middleware"
	"github.com/mwork/experience-api/internal/pkg/jwt"
)

func main() {
	cfg := config.Load()

	role := flag.String("role", middleware.RoleAdmin, "role claim")
	subject := flag.String("user", "", "user id claim (random when empty)")
	ttl := flag.Duration("ttl", cfg.JWTAccessTTL, "token lifetime")
	flag.Parse()

	userID := uuid.New()
	if *subject != "" {
		parsed, err := uuid.Parse(*subject)
		if err != nil {
			log.Fatalf("Invalid user id %q: %v", *subject, err)
		}
		userID = parsed
	}

	svc := jwt.NewService(cfg.JWTSecret, *ttl)
	token, err := svc.GenerateAccessToken(userID, *role)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println(token)
	log.Printf("user=%s role=%s expires=%s", userID, *role, time.Now().Add(svc.GetAccessTTL()).Format(time.RFC3339))
}
