package cliapp

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newConcatCmd() *cobra.Command {
	var finalKey string

	cmd := &cobra.Command{
		Use:   "concat <partial-key> [partial-key...]",
		Short: "Submit a Final Upload concatenating the given partial uploads, in order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return fmt.Errorf("create client: %w", err)
			}

			checksum, err := client.Concat(context.Background(), finalKey, args...)
			if err != nil {
				return fmt.Errorf("concat: %w", err)
			}

			fmt.Printf("checksum: %s\n", checksum)
			return nil
		},
	}

	cmd.Flags().StringVar(&finalKey, "final-key", "", "client-chosen key for the final upload (required)")
	_ = cmd.MarkFlagRequired("final-key")

	return cmd
}
