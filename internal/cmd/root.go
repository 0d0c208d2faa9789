// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	configcmd "github.com/opmodel/stager/internal/cmd/config"
	"github.com/opmodel/stager/internal/cmdtypes"
	"github.com/opmodel/stager/internal/config"
	"github.com/opmodel/stager/internal/output"
)

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	config     string
	verbose    bool
	timestamps bool
}

// NewRootCmd creates the root command for the stager CLI.
func NewRootCmd() *cobra.Command {
	cfg := &cmdtypes.GlobalConfig{}
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "stager",
		Short: "Stage runtime modules into an installer bundle",
		Long: `stager copies the modules an application needs into a bundle directory
so an installer can ship them.

Modules are looked up on a search path of directories and zip archives, in
order. Native extension binaries are checked against the target runtime
before they are copied, and entries already present in the bundle are left
alone.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initializeGlobals(cmd, cfg, flags)
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.config, "config", "", "Path to config file (env: STAGER_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&flags.timestamps, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(
		NewStageCmd(cfg),
		NewResolveCmd(cfg),
		NewCheckCmd(cfg),
		NewLsCmd(cfg),
		NewReportCmd(cfg),
		configcmd.NewConfigCmd(cfg),
		NewVersionCmd(cfg),
	)

	return rootCmd
}

// initializeGlobals sets up logging and loads the config file into cfg.
func initializeGlobals(cmd *cobra.Command, cfg *cmdtypes.GlobalConfig, flags *rootFlags) error {
	pathResult, err := config.ResolveConfigPath(flags.config)
	if err != nil {
		return err
	}
	configPath, err := config.ExpandPath(pathResult.ConfigPath)
	if err != nil {
		return err
	}

	cfg.ConfigPath = configPath
	cfg.Verbose = flags.verbose
	cfg.Config, cfg.ConfigErr = loadConfig(configPath)

	// Timestamps: flag (if explicitly set) > config > default (nil = true)
	logCfg := output.LogConfig{Verbose: flags.verbose}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(flags.timestamps)
	} else if cfg.Config != nil && cfg.Config.Log.Timestamps != nil {
		logCfg.Timestamps = cfg.Config.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	output.Debug("initializing CLI",
		"config", configPath,
		"config_source", pathResult.Source,
	)
	if cfg.ConfigErr != nil {
		output.Debug("config load error", "error", cfg.ConfigErr)
	}

	return nil
}

// loadConfig reads and validates the config file. A missing file yields an
// empty config.
func loadConfig(path string) (*config.Config, error) {
	loaded, err := config.NewFileLoader().Load(path)
	if err != nil {
		return nil, err
	}

	validator, err := config.NewValidator()
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(loaded); err != nil {
		return nil, err
	}
	return loaded, nil
}
