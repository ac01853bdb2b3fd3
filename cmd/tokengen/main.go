package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ArowuTest/jackpot-ledger/internal/config"
	"github.com/ArowuTest/jackpot-ledger/pkg/jwt"
	"golang.org/x/exp/slog"
)

// tokengen prints a bearer token for a wallet identity.
func main() {
	subject := flag.String("sub", "", "wallet identity the token is issued to")
	role := flag.String("role", "", "optional role claim")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	tokens, err := jwt.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiresIn)
	if err != nil {
		slog.Error("Failed to create token service", "error", err)
		os.Exit(1)
	}
	token, err := tokens.Issue(*subject, *role)
	if err != nil {
		slog.Error("Failed to issue token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
