package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/wixport/internal/adapters/wix"
	"github.com/example/wixport/internal/config"
)

// AuthCmd returns the auth command
func AuthCmd() *cobra.Command {
	var clientID string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Store and verify the Wix client id",
		Long: `Store the Wix application client id in ~/.wixport/config.json and
verify it by requesting an anonymous access token.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID == "" {
				return fmt.Errorf("--client-id is required")
			}

			client := wix.NewClient()
			if err := client.Authenticate(context.Background(), clientID); err != nil {
				return fmt.Errorf("failed to authenticate with Wix: %w", err)
			}
			fmt.Println("✓ Authenticated with Wix")

			cfg, err := config.LoadConfig()
			if err != nil {
				cfg = &config.Config{Version: "1.0"}
			}
			cfg.ClientID = clientID
			if err := config.SaveConfig(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Println("✓ Client id saved to ~/.wixport/config.json")

			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "Wix application client id")

	return cmd
}
