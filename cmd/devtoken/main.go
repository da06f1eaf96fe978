package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Kushagra128/LangBridge/internal/auth"
	"github.com/Kushagra128/LangBridge/internal/config"
)

func main() {
	userID := flag.String("user", "", "User UUID")
	ttl := flag.Duration("ttl", 0, "Token lifetime (defaults to TOKEN_TTL)")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "Usage: devtoken -user <user-uuid> [-ttl 24h]")
		fmt.Fprintln(os.Stderr, "  Signs with JWT_SECRET from the environment or .env")
		os.Exit(1)
	}
	if _, err := uuid.Parse(*userID); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid user ID: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load()
	lifetime := cfg.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := auth.NewVerifier(cfg.JWTSecret, lifetime).Issue(*userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sign token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Authorization: Bearer %s\n", token)
	fmt.Printf("Cookie: jwt=%s\n", token)
	fmt.Printf("Expires: %s\n", time.Now().Add(lifetime).UTC().Format(time.RFC3339))
}
