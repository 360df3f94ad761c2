// Package cli implements the ocular command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/ocular/internal/config"
	"github.com/mesh-intelligence/ocular/internal/paths"
	"github.com/mesh-intelligence/ocular/internal/sqlite"
	"github.com/mesh-intelligence/ocular/pkg/ocular"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	envFile   string
	jsonMode  bool
}

var flags rootFlags

// NewRootCmd creates the top-level "ocular" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "ocular",
		Short:   "Discord bot tracking which mounts each member still needs",
		Long:    "Ocular serves slash commands that record FFXIV trial and raid mount\nownership per member and report what the group still needs.",
		Version: ocular.Version,
		// Subcommand errors are printed once by Execute.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "", "configuration directory (default: platform config dir/ocular)")
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/data)")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newCatalogCmd())
	root.AddCommand(newUsersCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newRestoreCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ocular:", err)
		os.Exit(exitCode(err))
	}
}

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by bad input or configuration.
func userError(err error) error { return &exitError{code: exitUserError, err: err} }

// sysError marks err as an environment or storage failure.
func sysError(err error) error { return &exitError{code: exitSysError, err: err} }

func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// loadConfig resolves the directories and loads config.yaml. It returns the
// config and the resolved data directory.
func loadConfig() (*config.Config, string, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, "", sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := config.Load(configDir, flags.envFile)
	if err != nil {
		return nil, "", userError(err)
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, cfg.DataDir)
	if err != nil {
		return nil, "", sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	return cfg, dataDir, nil
}

// attachStore loads the configuration and attaches the store. The caller
// must Detach it.
func attachStore(ctx context.Context) (*sqlite.Backend, *config.Config, error) {
	cfg, dataDir, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store := sqlite.NewBackend()
	if err := store.Attach(ctx, cfg.Store(dataDir)); err != nil {
		return nil, nil, sysError(fmt.Errorf("attach store: %w", err))
	}
	return store, cfg, nil
}

// withStore runs fn against an attached store and detaches it afterwards.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, store *sqlite.Backend, out io.Writer) error) error {
	ctx := cmd.Context()
	store, _, err := attachStore(ctx)
	if err != nil {
		return err
	}
	defer store.Detach()
	return fn(ctx, store, cmd.OutOrStdout())
}
