package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/ocular/internal/sqlite"
	"github.com/mesh-intelligence/ocular/pkg/types"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write a JSONL snapshot of the database",
		Long:  "Write items.jsonl, users.jsonl, and status.jsonl into dir. Existing\nsnapshot files are replaced atomically.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			return withStore(cmd, func(ctx context.Context, store *sqlite.Backend, out io.Writer) error {
				if err := store.Export(ctx, dir); err != nil {
					return sysError(fmt.Errorf("export: %w", err))
				}
				fmt.Fprintf(out, "Exported snapshot to %s\n", dir)
				return nil
			})
		},
	}
}

func newRestoreCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "restore <dir>",
		Short: "Replace the database contents with a JSONL snapshot",
		Long:  "Load a snapshot written by export. Every item, user, and ownership\nrow in the database is replaced.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return userError(fmt.Errorf("restore replaces all data; pass --force to continue"))
			}
			dir := args[0]
			return withStore(cmd, func(ctx context.Context, store *sqlite.Backend, out io.Writer) error {
				if err := store.Restore(ctx, dir); err != nil {
					if errors.Is(err, types.ErrNotFound) {
						return userError(fmt.Errorf("restore: %w", err))
					}
					return sysError(fmt.Errorf("restore: %w", err))
				}
				fmt.Fprintf(out, "Restored snapshot from %s\n", dir)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "confirm that existing data is replaced")
	return cmd
}
