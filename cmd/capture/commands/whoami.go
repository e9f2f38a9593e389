package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/domiapp/domi-backend/internal/capture"
)

// NewWhoamiCmd creates the identity lookup command
func NewWhoamiCmd() *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(profilePath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			user, err := client.Me(ctx)
			if err != nil {
				if errors.Is(err, capture.ErrLoginRequired) {
					return fmt.Errorf("not logged in: store a session with 'domi-capture init' or export DOMI_SESSION")
				}
				return err
			}

			name := ""
			if user.Name != nil {
				name = *user.Name
			}
			fmt.Printf("%s (%s)\n", user.Email, user.ID)
			if name != "" {
				fmt.Println(name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", "", "Profile path (defaults to ~/.domi/capture.yaml)")

	return cmd
}
