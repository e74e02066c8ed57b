// Package cli wires the gitgraph cobra commands to configuration, logging
// and the layout services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kurobon/gitgraph/internal/config"
	"github.com/kurobon/gitgraph/internal/logging"
	"github.com/kurobon/gitgraph/internal/state"
)

const (
	configFlag    = "config"
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"
	addrFlag      = "addr"
	fixturesFlag  = "fixtures"
)

// flagKeys maps configuration keys to the flags that override them.
var flagKeys = map[string]string{
	"log.level":    logLevelFlag,
	"log.format":   logFormatFlag,
	"server.addr":  addrFlag,
	"fixtures.dir": fixturesFlag,
}

// Application holds the root command and the state resolved before any
// subcommand runs.
type Application struct {
	root   *cobra.Command
	viper  *viper.Viper
	config *config.Config
	logger *zap.Logger

	configPath string
}

// NewApplication assembles the command tree.
func NewApplication() *Application {
	app := &Application{
		viper:  viper.New(),
		logger: zap.NewNop(),
	}

	root := &cobra.Command{
		Use:   "gitgraph",
		Short: "Lane-based commit graph layout",
		Long: `gitgraph turns a commit history into a stable lane layout with colours
and connector geometry, the way a desktop Git client draws its log view.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			app.bindFlags(cmd.Flags())
			return app.initialize()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = app.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.configPath, configFlag, "", "Path to a configuration file (default ./gitgraph.yaml)")
	flags.String(logLevelFlag, "", "Log level: debug, info, warn or error")
	flags.String(logFormatFlag, "", "Log format: structured or console")

	root.AddCommand(
		app.newServeCommand(),
		app.newLayoutCommand(),
		app.newFixturesCommand(),
	)
	app.root = root
	return app
}

// bindFlags ties configuration keys to the running command's flags. Flags
// win over every other source once set on the command line.
func (a *Application) bindFlags(flags *pflag.FlagSet) {
	for key, name := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			_ = a.viper.BindPFlag(key, f)
		}
	}
}

// Execute runs the command line. args excludes the program name.
func (a *Application) Execute(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.root.ExecuteContext(ctx)
}

// SetOutput redirects command output, for tests.
func (a *Application) SetOutput(out, errOut io.Writer) {
	a.root.SetOut(out)
	a.root.SetErr(errOut)
}

func (a *Application) initialize() error {
	cfg, err := config.Load(a.viper, a.configPath)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("unable to create logger: %w", err)
	}
	a.config = cfg
	a.logger = logger
	a.logger.Debug("configuration initialized",
		zap.String("config_file", a.viper.ConfigFileUsed()),
		zap.String("log_level", cfg.Log.Level),
	)
	return nil
}

func (a *Application) settings() state.Settings {
	return state.Settings{
		Limit:              a.config.Repository.Limit,
		IncludeUncommitted: a.config.Repository.IncludeUncommitted,
		SoftLaneLimit:      a.config.Graph.SoftLaneLimit,
		Geometry:           a.config.Graph.Geometry(),
	}
}
