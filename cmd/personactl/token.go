package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"persona-agent/shared/authutils"
)

var tokenTTL time.Duration

// tokenCmd mints an inter-service token for the API
var tokenCmd = &cobra.Command{
	Use:   "token <service-name>",
	Short: "Mint an inter-service API token",
	Long: `Signs a token for the named calling service with API_JWT_SECRET.
Send it to the API in the X-Internal-Service-Token header.`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	if tokenTTL <= 0 {
		return fmt.Errorf("--ttl must be positive")
	}
	token, err := authutils.GenerateInterServiceToken(cfg.HTTP.JWTSecret, "personactl", args[0], tokenTTL, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
