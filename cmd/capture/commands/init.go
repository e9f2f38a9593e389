package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/domiapp/domi-backend/internal/capture"
)

// NewInitCmd creates the profile initialization command
func NewInitCmd() *cobra.Command {
	var apiURL, origin, token, profilePath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a capture profile",
		Long:  "Write the capture profile (~/.domi/capture.yaml by default) used by save and whoami",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiURL == "" {
				return fmt.Errorf("required flag: --api-url")
			}

			profile := &capture.Profile{
				APIURL: apiURL,
				Origin: origin,
			}
			if token != "" {
				if origin == "" {
					return fmt.Errorf("--token requires --origin so the token can be stored against it")
				}
				profile.Tokens = map[string]string{origin: token}
			}

			if err := profile.Save(profilePath); err != nil {
				return err
			}

			fmt.Println("Profile written")
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Backend API base URL")
	cmd.Flags().StringVar(&origin, "origin", "", "Dashboard origin the session belongs to")
	cmd.Flags().StringVar(&token, "token", "", "Raw session value to store for the origin")
	cmd.Flags().StringVar(&profilePath, "profile", "", "Profile path (defaults to ~/.domi/capture.yaml)")

	return cmd
}
