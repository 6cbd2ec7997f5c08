package cliapp

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete an upload by its server key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return fmt.Errorf("create client: %w", err)
			}

			if err := client.Delete(context.Background(), args[0]); err != nil {
				return fmt.Errorf("delete: %w", err)
			}

			fmt.Println("deleted")
			return nil
		},
	}

	return cmd
}
