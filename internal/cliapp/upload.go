package cliapp

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newUploadCmd() *cobra.Command {
	var key, name string
	var partial bool

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file to completion, creating it if needed",
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

			if partial {
				if err := upload.Seek(0); err != nil {
					return fmt.Errorf("mark partial: %w", err)
				}
			}

			offset, err := upload.Upload(context.Background(), -1)
			if err != nil {
				return fmt.Errorf("upload: %w", err)
			}

			printUploadResult(upload.ServerKey(), offset)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "client-chosen upload key (required)")
	cmd.Flags().StringVar(&name, "name", "", "filename metadata (defaults to the base name of <file>)")
	cmd.Flags().BoolVar(&partial, "partial", false, "create as a Partial Upload for later concatenation")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}
