package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"userfetch/internal/config"
	"userfetch/internal/crawler"
	"userfetch/internal/formatter"
	"userfetch/internal/logger"
)

// Run outcome errors. Each one maps to a non-zero exit code.
var (
	ErrAllEndpointsFailed = errors.New("every endpoint failed")
	ErrStrictMode         = errors.New("strict mode: at least one endpoint failed, nothing saved")
)

// options holds the command-line flags. Zero values mean "use the configuration".
type options struct {
	configPath  string
	output      string
	format      string
	logLevel    string
	concurrency int
	preview     int
	strict      bool
	noPrompt    bool
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "userfetch",
		Short: "Fetch users from several APIs and save them as JSON or CSV",
		Long: `userfetch requests every configured user API once, maps each response shape
onto a single user schema and writes the combined list to <folder>/Users.<format>.
A failing endpoint is reported and skipped; the others are still saved.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			return run(cmd.Context(), cfg, opts, in, out)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to YAML configuration file (defaults to the built-in sources)")
	flags.StringVarP(&opts.output, "output", "o", "", "Folder to save Users.<format> into")
	flags.StringVarP(&opts.format, "format", "f", "", "Output format: JSON or CSV (case-insensitive)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.IntVar(&opts.concurrency, "concurrency", 0, "Maximum number of endpoints fetched at once (1 = sequential)")
	flags.IntVar(&opts.preview, "preview", 0, "Number of users to preview on stdout (0 disables)")
	flags.BoolVar(&opts.strict, "strict", false, "Fail without saving if any endpoint fails")
	flags.BoolVar(&opts.noPrompt, "no-prompt", false, "Never prompt for missing output folder or format")

	cmd.AddCommand(newConfigCmd(out))

	return cmd
}

// loadConfig reads the configuration and applies flags that were set explicitly.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()

	if opts.output != "" {
		cfg.Output.Path = opts.output
	}

	if opts.format != "" {
		cfg.Output.Format = opts.format
	}

	if opts.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(opts.logLevel)
	}

	if flags.Changed("concurrency") {
		cfg.Fetch.Concurrency = opts.concurrency
	}

	if flags.Changed("preview") {
		cfg.Logging.PreviewRows = opts.preview
	}

	if flags.Changed("strict") {
		cfg.Fetch.Strict = opts.strict
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	return cfg, nil
}

func run(ctx context.Context, cfg *config.Config, opts *options, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log, runID := logger.NewLogger(cfg.Logging.Level).WithRun()
	log.Info("starting user fetch", "config", cfg.String())

	fmt.Fprintln(out, "Welcome to the User Fetcher!")

	// 1. Fetch and normalize
	result := crawler.NewClient(cfg, log).Crawl(ctx, cfg.Sources)
	result.Report.LogSummary(log)

	if preview := formatter.Preview(result.Users, cfg.Logging.PreviewRows); preview != "" {
		fmt.Fprintln(out)
		fmt.Fprint(out, preview)
		fmt.Fprintln(out)
	}

	printFailures(out, result)

	if cfg.Fetch.Strict && len(result.Errors) > 0 {
		printTotal(out, len(result.Users))

		return fmt.Errorf("%w: %w", ErrStrictMode, result.Err())
	}

	// 2. Resolve the destination
	folder, format, err := resolveOutput(cfg.Output, opts.noPrompt, in, out)
	if err != nil {
		printTotal(out, len(result.Users))

		return err
	}

	// 3. Save
	path, err := formatter.Save(result.Users, folder, format)
	if err != nil {
		if errors.Is(err, formatter.ErrUnsupportedFormat) {
			fmt.Fprintf(out, "Unsupported file format: %s\n", format)
		}

		printTotal(out, len(result.Users))

		return fmt.Errorf("save failed: %w", err)
	}

	log.Info("saved users", "path", path, "records", len(result.Users), "run_id", runID)
	fmt.Fprintf(out, "✅ Saved to: %s\n", path)
	printTotal(out, len(result.Users))

	if result.AllFailed() {
		return ErrAllEndpointsFailed
	}

	return nil
}

func resolveOutput(output config.OutputConfig, noPrompt bool, in io.Reader, out io.Writer) (string, string, error) {
	folder, format := output.Path, output.Format

	if folder != "" && format != "" {
		return folder, format, nil
	}

	if noPrompt {
		if folder == "" {
			folder = "."
		}

		if format == "" {
			format = string(formatter.FormatJSON)
		}

		return folder, format, nil
	}

	p := newPrompter(in, out)

	var err error

	if folder == "" {
		if folder, err = p.Ask("Enter the folder path to save the file:"); err != nil {
			return "", "", err
		}
	}

	if format == "" {
		if format, err = p.Ask("Enter the desired file format (JSON/CSV):"); err != nil {
			return "", "", err
		}
	}

	return folder, format, nil
}

func printFailures(out io.Writer, result *crawler.Result) {
	if len(result.Errors) == 0 {
		return
	}

	fmt.Fprintf(out, "⚠️  %d of %d endpoints failed:\n", len(result.Errors), len(result.Report.Attempts))

	for _, e := range result.Errors {
		fmt.Fprintf(out, "  - %v\n", e)
	}
}

func printTotal(out io.Writer, n int) {
	fmt.Fprintf(out, "Total number of users: %d\n", n)
}

func newConfigCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the built-in configuration to a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "userfetch.yaml"
			if len(args) == 1 {
				path = args[0]
			}

			if err := config.DefaultConfig().SaveConfig(path); err != nil {
				return err
			}

			fmt.Fprintf(out, "✅ Wrote default configuration to %s\n", path)

			return nil
		},
	})

	return cmd
}
