// Command tokengen mints service tokens for the chat bridge and for admins.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdugdh24/nearby-backend/internal/config"
	"github.com/gdugdh24/nearby-backend/internal/usecase/auth"
)

func main() {
	role := flag.String("role", string(auth.RoleTransport), "token role: transport or admin")
	subject := flag.String("subject", "bridge", "token subject")
	identity := flag.Int64("identity", 0, "chat identity of the admin (admin tokens only)")
	ttl := flag.Duration("ttl", 0, "token lifetime; defaults to JWT_TOKEN_TTL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lifetime := cfg.Auth.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	if auth.Role(*role) == auth.RoleAdmin && !cfg.Admin.IsAdmin(*identity) {
		fmt.Fprintf(os.Stderr, "identity %d is not listed in ADMIN_IDS\n", *identity)
		os.Exit(1)
	}

	tokens := auth.NewTokenUseCase(cfg.Auth.JWTSecret, cfg.Auth.Issuer, lifetime)
	token, expiresAt, err := tokens.Issue(*subject, auth.Role(*role), *identity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.Format(time.RFC3339))
}
