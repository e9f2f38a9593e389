package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/domiapp/domi-backend/internal/capture"
	"github.com/domiapp/domi-backend/internal/models"
)

// terminalAcknowledger prints save confirmations to stdout
type terminalAcknowledger struct{}

func (terminalAcknowledger) Acknowledge(message string) {
	fmt.Println(message)
}

// NewSaveCmd creates the clip capture command
func NewSaveCmd() *cobra.Command {
	var title, content, srcURL, profilePath string
	var tags []string

	cmd := &cobra.Command{
		Use:   "save <type>",
		Short: "Save a clip",
		Long:  "Save a clip of the given type (url, text, image, pdf) to the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clipType := models.ClipType(args[0])

			client, err := newClient(profilePath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()

			clip, err := client.Capture(ctx, &capture.Request{
				Type:    clipType,
				Title:   title,
				Content: content,
				SrcURL:  srcURL,
				Tags:    tags,
			})
			if err != nil {
				if errors.Is(err, capture.ErrLoginRequired) {
					return fmt.Errorf("not logged in: store a session with 'domi-capture init' or export DOMI_SESSION")
				}
				return err
			}

			fmt.Printf("Clip %s saved (status: %s)\n", clip.ID, clip.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Clip title (defaults to the capture placeholder)")
	cmd.Flags().StringVar(&content, "content", "", "Clip content (required for text clips)")
	cmd.Flags().StringVar(&srcURL, "src-url", "", "Source URL (required for url/image/pdf clips, http(s) only)")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag to attach (repeatable)")
	cmd.Flags().StringVar(&profilePath, "profile", "", "Profile path (defaults to ~/.domi/capture.yaml)")

	return cmd
}

// newClient builds a capture client from the profile at path
func newClient(profilePath string) (*capture.Client, error) {
	profile, err := capture.LoadProfile(profilePath)
	if err != nil {
		return nil, err
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	source := capture.NewProfileCredentialSource(profile)
	resolver := capture.NewTokenResolver(source, profile.Origin, logger)
	return capture.NewClient(profile.APIURL, resolver, terminalAcknowledger{}, logger), nil
}
