package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/ocular/internal/sqlite"
	"github.com/mesh-intelligence/ocular/pkg/types"
)

func newCatalogCmd() *cobra.Command {
	var filter types.ItemFilter
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the mounts in the catalog",
		Example: `  ocular catalog
  ocular catalog --expansion heavensward --category raid
  ocular catalog --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filter.Expansion != "" && !types.IsValidExpansion(filter.Expansion) {
				return userError(fmt.Errorf("%w: %q", types.ErrUnknownExpansion, filter.Expansion))
			}
			if filter.Category != "" && !types.IsValidCategory(filter.Category) {
				return userError(fmt.Errorf("%w: %q", types.ErrInvalidCategory, filter.Category))
			}
			return withStore(cmd, func(ctx context.Context, store *sqlite.Backend, out io.Writer) error {
				items, err := store.Items().List(ctx, filter)
				if err != nil {
					return sysError(err)
				}
				if flags.jsonMode {
					return writeJSON(out, items)
				}
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "EXPANSION\tCATEGORY\tNAME")
				for _, it := range items {
					fmt.Fprintf(w, "%s\t%s\t%s\n", it.Expansion, it.Category, it.Name)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&filter.Expansion, "expansion", "", "only list mounts of this expansion")
	cmd.Flags().StringVar(&filter.Category, "category", "", "only list trials or raids")
	return cmd
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(ctx context.Context, store *sqlite.Backend, out io.Writer) error {
				users, err := store.Users().List(ctx)
				if err != nil {
					return sysError(err)
				}
				if flags.jsonMode {
					return writeJSON(out, users)
				}
				w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "NAME\tDISCORD ID")
				for _, u := range users {
					fmt.Fprintf(w, "%s\t%d\n", u.Name, u.ExternalID)
				}
				return w.Flush()
			})
		},
	}
}

func writeJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError(fmt.Errorf("marshal output: %w", err))
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
