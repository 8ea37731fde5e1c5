package main

import (
	"flag"
	"fmt"
	"log"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/service"
)

func main() {
	subject := flag.String("subject", "admin", "token subject")
	ttl := flag.Duration("ttl", 0, "token lifetime (defaults to auth.token_ttl)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	lifetime := cfg.Auth.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	token, err := service.NewAdminAuthService(cfg.Auth).CreateAdminToken(*subject, lifetime)
	if err != nil {
		log.Fatalf("Failed to create admin token: %v", err)
	}
	fmt.Println(token)
}
