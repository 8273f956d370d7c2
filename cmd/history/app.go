package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/rxtech-lab/ticker-history/internal/config"
	"github.com/rxtech-lab/ticker-history/internal/logger"
	"github.com/rxtech-lab/ticker-history/internal/types"
	"github.com/rxtech-lab/ticker-history/internal/version"
	"github.com/rxtech-lab/ticker-history/pkg/errors"
	"github.com/rxtech-lab/ticker-history/pkg/marketdata"
)

// app holds the process wiring shared by every command.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (*config.Config, error)
	newLogger  func(level string) (*logger.Logger, error)

	env *config.Config
	log *logger.Logger
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: config.Load,
		newLogger:  logger.NewLoggerWithLevel,
	}
}

// command builds the CLI. The root action exports a single ticker.
func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "Export the full daily price history of a ticker to CSV",
		Version:   version.GetVersion(),
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ticker",
				Usage: "Ticker symbol to export (required)",
			},
			&cli.StringFlag{
				Name:  "output_path",
				Usage: "File to create or overwrite (required)",
			},
			&cli.BoolFlag{
				Name:  "no_header",
				Usage: "Omit the header line. Use --no_header=false to write it",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "currency",
				Usage: "Currency label written on every row",
				Value: marketdata.DefaultCurrency,
			},
			&cli.StringFlag{
				Name:  "filler",
				Usage: fmt.Sprintf("Value of operated_amount and n_operations (%s or %s)", types.FillerEmpty, types.FillerZero),
				Value: string(types.FillerEmpty),
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: fmt.Sprintf("Data provider (%s)", strings.Join(marketdata.GetSupportedProviders(), ", ")),
				Value: string(marketdata.ProviderYahoo),
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: fmt.Sprintf("Output format (%s or %s)", marketdata.WriterCSV, marketdata.WriterParquet),
				Value: string(marketdata.WriterCSV),
			},
			&cli.BoolFlag{
				Name:  "auto_adjust",
				Usage: "Adjust Yahoo prices for splits and dividends",
				Value: true,
			},
			&cli.IntFlag{
				Name:  "retries",
				Usage: "Retry a failed download this many times",
				Value: 0,
			},
		},
		Action: a.exportAction,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Export using a YAML or JSON config file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the export config file",
						Required: true,
					},
				},
				Action: a.runAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the export config file",
				Action: a.schemaAction,
			},
			{
				Name:   "providers",
				Usage:  "List supported data providers",
				Action: a.providersAction,
			},
			{
				Name:  "version",
				Usage: "Print the tool version",
				Action: func(_ context.Context, _ *cli.Command) error {
					_, err := fmt.Fprintln(a.stdout, version.GetVersion())
					return err
				},
			},
		},
	}
}

// exportAction runs an export described by the root command flags.
func (a *app) exportAction(ctx context.Context, cmd *cli.Command) error {
	if err := rejectArgs(cmd); err != nil {
		return err
	}

	if err := requireFlags(cmd, "ticker", "output_path"); err != nil {
		return err
	}

	if err := a.setup(); err != nil {
		return err
	}

	clientConfig := marketdata.ClientConfig{
		ProviderType:  marketdata.ProviderType(cmd.String("provider")),
		WriterType:    marketdata.WriterType(cmd.String("format")),
		PolygonApiKey: a.env.PolygonAPIKey,
		YahooBaseURL:  a.env.YahooBaseURL,
		Timeout:       a.env.HTTPTimeout,
		MaxRetries:    int(cmd.Int("retries")),
		AutoAdjust:    cmd.Bool("auto_adjust"),
	}

	params := marketdata.ExportParams{
		Ticker:     cmd.String("ticker"),
		OutputPath: cmd.String("output_path"),
		NoHeader:   cmd.Bool("no_header"),
		Currency:   cmd.String("currency"),
		Filler:     types.Filler(cmd.String("filler")),
	}

	return a.export(ctx, clientConfig, params)
}

// runAction runs an export described by a config file.
func (a *app) runAction(ctx context.Context, cmd *cli.Command) error {
	if err := a.setup(); err != nil {
		return err
	}

	exportConfig, err := marketdata.LoadExportConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	clientConfig := exportConfig.ToClientConfig(a.env.PolygonAPIKey, a.env.YahooBaseURL, a.env.HTTPTimeout)

	return a.export(ctx, clientConfig, exportConfig.ToExportParams())
}

func (a *app) export(ctx context.Context, clientConfig marketdata.ClientConfig, params marketdata.ExportParams) error {
	progress := newProgressReporter(a.stderr)
	defer progress.Finish()

	client, err := marketdata.NewClient(clientConfig, a.log, progress.OnProgress)
	if err != nil {
		return err
	}

	result, err := client.Export(ctx, params)
	if err != nil {
		return err
	}

	a.log.Info("Export finished",
		zap.String("output_path", result.OutputPath),
		zap.Int("rows", result.Rows))

	return nil
}

func (a *app) schemaAction(_ context.Context, _ *cli.Command) error {
	schema, err := marketdata.GetExportConfigSchema()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	_, err = fmt.Fprintln(a.stdout, schema)

	return err
}

func (a *app) providersAction(_ context.Context, _ *cli.Command) error {
	infos := make([]marketdata.ProviderInfo, 0)

	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			return err
		}

		infos = append(infos, info)
	}

	encoder := json.NewEncoder(a.stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(infos)
}

// setup loads the environment and creates the run logger once.
func (a *app) setup() error {
	if a.log != nil {
		return nil
	}

	env, err := a.loadConfig()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to load configuration", err)
	}

	log, err := a.newLogger(env.LogLevel)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid log level %q", env.LogLevel)
	}

	a.env = env
	a.log = log.With(zap.String("run_id", uuid.New().String()))

	return nil
}

// reportError logs a failed run. Before the logger exists it prints to stderr.
func (a *app) reportError(err error) {
	if a.log == nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return
	}

	a.log.Error("History export failed",
		zap.String("code", errors.GetCode(err).String()),
		zap.Error(err))
	a.sync()
}

func (a *app) sync() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// requireFlags fails with the usage text when any of the named flags is
// missing or blank. Root flags cannot be marked Required because subcommands
// would inherit the requirement.
func requireFlags(cmd *cli.Command, names ...string) error {
	var missing []string

	for _, name := range names {
		if strings.TrimSpace(cmd.String(name)) == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	_ = cli.ShowAppHelp(cmd)

	return errors.Newf(errors.ErrCodeMissingParameter, "required flags %q not set", strings.Join(missing, ", "))
}

// rejectArgs fails on positional arguments. Boolean flags only take a value
// in the --flag=value form, so "--no_header false" leaves "false" behind.
func rejectArgs(cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return nil
	}

	_ = cli.ShowAppHelp(cmd)

	return errors.Newf(errors.ErrCodeInvalidParameter,
		"unexpected arguments %q: boolean flags take their value as --no_header=false", strings.Join(cmd.Args().Slice(), " "))
}
