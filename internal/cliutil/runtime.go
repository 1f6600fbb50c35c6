package cliutil

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/towardsthecloud/aws-utils/internal/confirm"
	"github.com/towardsthecloud/aws-utils/internal/logging"
	"github.com/towardsthecloud/aws-utils/internal/output"
)

// GlobalOptions holds the persistent flags shared by all commands.
type GlobalOptions struct {
	Profile      string
	Region       string
	DryRun       bool
	OutputFormat string
	NoConfirm    bool
	ShowVersion  bool
	MaxPages     int
	Timeout      time.Duration
	AllowPartial bool
	LogLevel     string
	LogFormat    string
}

// ValidOutputFormats enumerates the allowed --output values.
var ValidOutputFormats = map[string]struct{}{
	"table": {},
	"json":  {},
	"text":  {},
	"yaml":  {},
}

// CommandRuntime bundles the parsed options, formatter, prompter, and logger for a single command invocation.
type CommandRuntime struct {
	Options   GlobalOptions
	Formatter output.Formatter
	Prompter  confirm.Prompter
	Logger    *slog.Logger
}

// NewCommandRuntime extracts global options from the cobra command and builds a CommandRuntime.
func NewCommandRuntime(cmd *cobra.Command) (CommandRuntime, error) {
	opts, err := GlobalOptionsFromCommand(cmd)
	if err != nil {
		return CommandRuntime{}, err
	}

	formatter, err := output.NewFormatter(opts.OutputFormat)
	if err != nil {
		return CommandRuntime{}, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), opts.LogLevel, opts.LogFormat)
	if err != nil {
		return CommandRuntime{}, err
	}

	return CommandRuntime{
		Options:   opts,
		Formatter: formatter,
		Prompter:  confirm.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
		Logger:    logger.With("command", cmd.CommandPath()),
	}, nil
}

// GlobalOptionsFromCommand reads persistent flags from the root command.
func GlobalOptionsFromCommand(cmd *cobra.Command) (GlobalOptions, error) {
	flags := cmd.Root().PersistentFlags()

	profile, err := flags.GetString("profile")
	if err != nil {
		return GlobalOptions{}, fmt.Errorf("read --profile: %w", err)
	}

	region, err := flags.GetString("region")
	if err != nil {
		return GlobalOptions{}, fmt.Errorf("read --region: %w", err)
	}

	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return GlobalOptions{}, fmt.Errorf("read --dry-run: %w", err)
	}

	outputFormat, err := flags.GetString("output")
	if err != nil {
		return GlobalOptions{}, fmt.Errorf("read --output: %w", err)
	}

	noConfirm, err := flags.GetBool("no-confirm")
	if err != nil {
		return GlobalOptions{}, fmt.Errorf("read --no-confirm: %w", err)
	}

	showVersion, err := flags.GetBool("version")
	if err != nil {
		return GlobalOptions{}, fmt.Errorf("read --version: %w", err)
	}

	maxPages, err := flags.GetInt("max-pages")
	if err != nil {
		return GlobalOptions{}, fmt.Errorf("read --max-pages: %w", err)
	}
	if maxPages < 0 {
		return GlobalOptions{}, fmt.Errorf("--max-pages must be >= 0")
	}

	timeout, err := flags.GetDuration("timeout")
	if err != nil {
		return GlobalOptions{}, fmt.Errorf("read --timeout: %w", err)
	}
	if timeout < 0 {
		return GlobalOptions{}, fmt.Errorf("--timeout must be >= 0")
	}

	allowPartial, err := flags.GetBool("allow-partial")
	if err != nil {
		return GlobalOptions{}, fmt.Errorf("read --allow-partial: %w", err)
	}

	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return GlobalOptions{}, fmt.Errorf("read --log-level: %w", err)
	}

	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return GlobalOptions{}, fmt.Errorf("read --log-format: %w", err)
	}

	return GlobalOptions{
		Profile:      profile,
		Region:       region,
		DryRun:       dryRun,
		OutputFormat: outputFormat,
		NoConfirm:    noConfirm,
		ShowVersion:  showVersion,
		MaxPages:     maxPages,
		Timeout:      timeout,
		AllowPartial: allowPartial,
		LogLevel:     logLevel,
		LogFormat:    logFormat,
	}, nil
}

// WriteDataset formats a tabular dataset to the command's output.
func WriteDataset(cmd *cobra.Command, runtime CommandRuntime, headers []string, rows [][]string) error {
	return runtime.Formatter.Format(cmd.OutOrStdout(), output.Dataset{Headers: headers, Rows: rows})
}
