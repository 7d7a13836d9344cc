package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	intercept "github.com/glimte/mmate-intercept"
	"github.com/glimte/mmate-intercept/config"
)

var (
	// Version information
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "intercept-demo",
		Short: "Replay the interceptor demo scenarios",
		Long: `intercept-demo attaches interceptor chains to a few demo types and replays
the classic scenarios: timestamped singletons, an instance limit, a memoized
method and a capitalized, change-logged field.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildTime),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	var (
		configPath string
		amqpURL    string
		verbose    bool
	)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML declarations file")
	rootCmd.PersistentFlags().StringVarP(&amqpURL, "amqp-url", "u", os.Getenv("AMQP_URL"), "RabbitMQ URL to publish the journal to (defaults to $AMQP_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Run command
	var opts demoOptions
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run every demo scenario and print the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			declarations, err := loadDeclarations(configPath)
			if err != nil {
				return err
			}

			logger := newLogger(verbose)
			runtimeOpts := []intercept.RuntimeOption{intercept.WithLogger(logger)}
			if amqpURL != "" {
				runtimeOpts = append(runtimeOpts, intercept.WithAMQP(amqpURL))
			}

			rt, err := intercept.NewRuntimeFromConfig(declarations, runtimeOpts...)
			if err != nil {
				return fmt.Errorf("failed to create runtime: %w", err)
			}
			defer rt.Close()

			return runDemo(cmd.Context(), rt, declarations, opts, cmd.OutOrStdout())
		},
	}
	runCmd.Flags().BoolVar(&opts.timestamp, "timestamp", true, "Timestamp Employee and Student constructions")
	runCmd.Flags().Int64VarP(&opts.limit, "limit", "l", 5, "Maximum number of Warrior instances")
	runCmd.Flags().IntVarP(&opts.warriors, "warriors", "w", 6, "Number of Warriors to create")

	// Validate command
	validateCmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a declarations file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no declarations file given")
			}

			declarations, err := config.LoadFile(path)
			if err != nil {
				return err
			}
			printDeclarations(cmd, declarations)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, validateCmd)
	return rootCmd
}

func loadDeclarations(path string) (*config.Declarations, error) {
	if path == "" {
		return &config.Declarations{}, nil
	}
	return config.LoadFile(path)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func printDeclarations(cmd *cobra.Command, d *config.Declarations) {
	out := cmd.OutOrStdout()
	if len(d.Targets) == 0 {
		fmt.Fprintln(out, "No targets declared")
		return
	}

	fmt.Fprintf(out, "%-30s %-14s %s\n", "Target", "Site", "Interceptors")
	fmt.Fprintln(out, strings.Repeat("-", 80))

	for _, target := range d.Targets {
		if len(target.Construction) > 0 {
			fmt.Fprintf(out, "%-30s %-14s %s\n", target.Name, "construction", specList(target.Construction))
		}
		for _, field := range sortedKeys(target.Fields) {
			fmt.Fprintf(out, "%-30s %-14s %s\n", target.Name+"."+field, "accessor", specList(target.Fields[field]))
		}
		for _, method := range sortedKeys(target.Methods) {
			fmt.Fprintf(out, "%-30s %-14s %s\n", target.Name+"."+method, "method", specList(target.Methods[method]))
		}
	}
}
