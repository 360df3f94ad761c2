package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/ocular/internal/sqlite"
	"github.com/mesh-intelligence/ocular/pkg/types"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration file and database",
		Long: "Write config.yaml with defaults if it is missing, then create the\n" +
			"database and seed the mount catalog if the database file does not exist.\n" +
			"Running init again leaves existing data untouched.",
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(ctx context.Context, store *sqlite.Backend, out io.Writer) error {
		items, err := store.Count(ctx, types.TableItems)
		if err != nil {
			return sysError(err)
		}
		users, err := store.Count(ctx, types.TableUsers)
		if err != nil {
			return sysError(err)
		}
		fmt.Fprintf(out, "Ocular initialized at %s (%d mounts, %d users)\n", store.Config().DataDir, items, users)
		return nil
	})
}
