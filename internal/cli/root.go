// Package cli implements the profilectl command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/profilemeta/internal/adapters/source"
	service "github.com/okian/profilemeta/internal/app"
	"github.com/okian/profilemeta/internal/config"
	"github.com/okian/profilemeta/internal/domain/evaluation"
	"github.com/okian/profilemeta/pkg/logger"
)

// Env carries the state shared by subcommands. A nil Config is loaded from
// the environment before the first subcommand runs.
type Env struct {
	Out    io.Writer
	Config *config.Config

	jsonOut     bool
	source      string
	profilesDir string
	sqlitePath  string

	svc *service.Service
}

// RootCommand creates and returns the root command.
func RootCommand(env *Env) *cobra.Command {
	if env.Out == nil {
		env.Out = os.Stdout
	}

	rootCmd := &cobra.Command{
		Use:           "profilectl",
		Short:         "Query shallow-profiler cycle metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&env.jsonOut, "json", false, "Print JSON instead of text")
	flags.StringVar(&env.source, "source", "", "Table source: csv or sqlite (overrides PROFMETA_SOURCE)")
	flags.StringVar(&env.profilesDir, "profiles-dir", "", "Directory of <site><year>.csv files")
	flags.StringVar(&env.sqlitePath, "sqlite", "", "SQLite database path")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return env.loadConfig(cmd.Context())
	}
	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		env.close()
	}

	rootCmd.AddCommand(
		windowCommand(env),
		nearestCommand(env),
		evaluateCommand(env),
		auditCommand(env),
		doyCommand(env),
		bandsCommand(env),
		sensorsCommand(env),
		importCommand(env),
	)
	return rootCmd
}

// Execute runs the command tree with args and returns the first error.
func Execute(ctx context.Context, env *Env, args []string) error {
	defer env.close()
	cmd := RootCommand(env)
	cmd.SetArgs(args)
	cmd.SetOut(env.Out)
	return cmd.ExecuteContext(ctx)
}

func (e *Env) loadConfig(ctx context.Context) error {
	if e.Config == nil {
		cfg, err := config.Load(ctx)
		if err != nil {
			return err
		}
		e.Config = cfg
	}
	if e.source != "" {
		e.Config.Source = e.source
	}
	if e.profilesDir != "" {
		e.Config.ProfilesDir = e.profilesDir
	}
	if e.sqlitePath != "" {
		e.Config.SQLitePath = e.sqlitePath
	}
	if err := e.Config.Validate(); err != nil {
		return err
	}
	if err := logger.SetLevelString(e.Config.LogLevel); err != nil {
		_ = logger.SetLevelString("warn")
	}
	return nil
}

// start lazily opens the configured source and starts the service.
func (e *Env) start(ctx context.Context) (*service.Service, error) {
	if e.svc != nil {
		return e.svc, nil
	}
	loader, err := source.New(ctx, e.Config)
	if err != nil {
		return nil, err
	}
	svc := service.New(
		service.WithLoader(loader),
		service.WithEvaluator(evaluation.New(e.Config.EvaluatorOptions()...)),
		service.WithLogger(logger.Get().Named("profilectl")),
	)
	if err := svc.Start(ctx); err != nil {
		_ = source.Close(loader)
		return nil, err
	}
	e.svc = svc
	return svc, nil
}

func (e *Env) close() {
	if e.svc != nil {
		e.svc.Stop()
		e.svc = nil
	}
}

func (e *Env) printJSON(v any) error {
	enc := json.NewEncoder(e.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (e *Env) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e.Out, format, args...)
}
