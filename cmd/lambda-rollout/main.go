package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

func execute(args []string) int {
	exitCode := ExitSuccess

	root := &cobra.Command{
		Use:           "lambda-rollout",
		Short:         "Roll tagged Lambda functions' live alias forward through CodeDeploy",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "Path to config file")

	root.AddCommand(newRunCmd(&exitCode))
	root.AddCommand(newVersionCmd())
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if exitCode == ExitSuccess {
			exitCode = ExitConfigError
		}
	}
	return exitCode
}

func newRunCmd(exitCode *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Deploy every tagged function whose live alias lags its latest version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			cfg, err := LoadConfig(configPath, cmd.Flags())
			if err != nil {
				*exitCode = ExitConfigError
				return fmt.Errorf("configuration error: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				*exitCode = ExitConfigError
				return fmt.Errorf("configuration error: %w", err)
			}

			logger := SetupLogger(cfg)
			logger.Info("lambda-rollout starting", "version", Version, "config", configPath)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, err := NewRunner(ctx, cfg, logger, cmd.OutOrStdout())
			if err != nil {
				return withExitCode(exitCode, err)
			}
			return withExitCode(exitCode, runner.Run(ctx))
		},
	}

	flags := cmd.Flags()
	flags.String("region", "", "AWS region")
	flags.String("profile", "", "AWS shared config profile")
	flags.String("application-name", "", "CodeDeploy application name")
	flags.String("deployment-config-name", "", "CodeDeploy deployment config name")
	flags.String("description", "", "Deployment description")
	flags.String("alias", "", "Alias to compare and shift")
	flags.Duration("request-delay", 0, "Minimum delay between deployment requests")
	flags.Bool("dry-run", false, "Build deployment requests without triggering them")
	flags.String("tag-key", "", "Tag key used to discover functions")
	flags.StringSlice("tag-values", nil, "Tag values used to discover functions")
	flags.Int("max-concurrent", 0, "Maximum functions inspected in parallel")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (json, text)")
	flags.String("report-format", "", "Report format (text, json, yaml)")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lambda-rollout %s (built %s)\n", Version, BuildTime)
		},
	}
}

func withExitCode(exitCode *int, err error) error {
	if err == nil {
		return nil
	}
	var rErr *RunError
	if errors.As(err, &rErr) {
		*exitCode = rErr.ExitCode
	} else {
		*exitCode = ExitAWSError
	}
	return err
}
