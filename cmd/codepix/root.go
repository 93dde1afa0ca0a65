package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/codepix/codepix/internal/cleanup"
	"github.com/codepix/codepix/internal/config"
	"github.com/codepix/codepix/internal/logger"
	"github.com/codepix/codepix/internal/version"
	"github.com/spf13/cobra"
)

func execute() {
	cmd := newRootCmd()
	err := cmd.Execute()
	if cleanupErr := cleanup.RunAll(); cleanupErr != nil {
		fmt.Fprintln(os.Stderr, cleanupErr)
		if err == nil {
			err = cleanupErr
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

// skipConfigAnnotation marks commands (and their children) that run without
// loading the environment configuration.
const skipConfigAnnotation = "codepix.skip-config"

type globalOptions struct {
	envFiles  []string
	logLevel  string
	logFormat string
	logFile   string
	cfg       config.Config
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	serveOpts := serveOptions{}

	cmd := &cobra.Command{
		Use:   "codepix",
		Short: "AI code assistant backend (generate, explain, translate, optimize)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				_ = cmd.Usage()
				return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return runServe(cmd, g, &serveOpts)
		},
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
	}

	cmd.Version = version.Info()
	cmd.SetVersionTemplate("{{.Version}}\n")
	cmd.SetUsageTemplate(rootUsageTemplate)

	pf := cmd.PersistentFlags()
	pf.StringSliceVar(&g.envFiles, "env-file", nil, "Load variables from these .env files (default .env)")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error (env CODEPIX_LOG_LEVEL)")
	pf.StringVar(&g.logFormat, "log-format", "", "Console log format: pretty or json (env CODEPIX_LOG_FORMAT)")
	pf.StringVar(&g.logFile, "log-file", "", "Also write JSON logs to this file")

	addServeFlags(cmd, &serveOpts)

	cmd.AddCommand(
		newServeCmd(g),
		newOperationCmd(g, generateDef),
		newOperationCmd(g, explainDef),
		newOperationCmd(g, translateDef),
		newOperationCmd(g, optimizeDef),
		newModelsCmd(g),
		newEnvCmd(),
		newAboutCmd(),
	)

	cmd.InitDefaultCompletionCmd()
	for _, sub := range cmd.Commands() {
		if sub.Name() == "completion" {
			sub.Short = "Generate shell completion scripts"
			sub.Annotations = map[string]string{skipConfigAnnotation: "true"}
			sub.SetUsageTemplate(subcommandUsageTemplate)
			break
		}
	}

	return cmd
}

func needsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigAnnotation] == "true" {
			return false
		}
	}
	return true
}

// setup loads configuration and initializes logging before any command runs.
// Commands marked with skipConfigAnnotation only apply the log flags, so a
// broken environment cannot stop them.
func (g *globalOptions) setup(cmd *cobra.Command) error {
	var cfg config.Config
	if needsConfig(cmd) {
		loaded, err := loadConfig(g.envFiles...)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		cfg = config.Config{Addr: config.DefaultAddr, LogLevel: slog.LevelInfo, LogFormat: config.LogFormatPretty}
	}
	if cmd.Flags().Changed("log-level") {
		level, err := config.ParseLogLevel(g.logLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var logFile *os.File
	if g.logFile != "" {
		f, err := os.OpenFile(g.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		cleanup.RegisterCloser("log file", f)
		logFile = f
	}
	if logFile != nil {
		logger.Init(cfg.LogLevel, cfg.LogFormat, logFile)
	} else {
		logger.Init(cfg.LogLevel, cfg.LogFormat, nil)
	}

	g.cfg = cfg
	return nil
}
