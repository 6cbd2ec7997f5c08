package cliapp

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newResumeCmd() *cobra.Command {
	var key, name string

	cmd := &cobra.Command{
		Use:   "resume <file>",
		Short: "Resume an in-progress upload, rediscovering its offset from the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return fmt.Errorf("create client: %w", err)
			}

			upload, err := client.NewUpload(args[0], key, name)
			if err != nil {
				return fmt.Errorf("create upload: %w", err)
			}

			offset, err := upload.Upload(context.Background(), -1)
			if err != nil {
				return fmt.Errorf("resume: %w", err)
			}

			printUploadResult(upload.ServerKey(), offset)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "the upload's client key (required)")
	cmd.Flags().StringVar(&name, "name", "", "filename metadata (defaults to the base name of <file>)")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}
