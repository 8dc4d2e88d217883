// Command verify_credentials checks the configured SUMIT credentials against
// the live API and exits non-zero when either key is rejected.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"sumitpay/internal/config"
	apperrors "sumitpay/internal/errors"
	"sumitpay/internal/gateway"
	"sumitpay/internal/utils/logger"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Resolve()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if err := cfg.RequireCredentials(); err != nil {
		log.Fatal(err)
	}

	appLog := logger.New("verify", logger.ParseLevel(cfg.Logging.Level), cfg.Logging.Enabled)
	client := gateway.NewClient(cfg, appLog)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.Timeout+5*time.Second)
	defer cancel()

	failed := false
	if err := client.VerifyCredentials(ctx, cfg.Credentials.CompanyID, cfg.Credentials.APIKey); err != nil {
		fmt.Printf("API key: invalid (%s)\n", apperrors.Message(err, err.Error()))
		failed = true
	} else {
		fmt.Println("API key: valid")
	}

	if cfg.Credentials.APIPublicKey == "" {
		fmt.Println("Public key: not configured")
	} else if err := client.VerifyPublicCredentials(ctx, cfg.Credentials.CompanyID, cfg.Credentials.APIPublicKey); err != nil {
		fmt.Printf("Public key: invalid (%s)\n", apperrors.Message(err, err.Error()))
		failed = true
	} else {
		fmt.Println("Public key: valid")
	}

	if failed {
		os.Exit(1)
	}
}
