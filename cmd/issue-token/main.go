// Command issue-token prints a bearer token for a calling service.
//
//	issue-token -subject agent-runner
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"agent-chain-wallet/config"
	"agent-chain-wallet/internal/service"
)

func main() {
	subject := flag.String("subject", "", "service identity embedded as the token subject")
	cfgPath := flag.String("config", os.Getenv("AGC_CONFIG_FILE"), "optional config file")
	flag.Parse()

	if *subject == "" {
		fmt.Fprintln(os.Stderr, "-subject is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	token, expiresAt, err := tokenSvc.Generate(*subject)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
}
