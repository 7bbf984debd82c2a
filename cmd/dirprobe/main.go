// Command dirprobe checks that the directory database is reachable and
// prints a few rows.
//
// Configuration is layered: process environment, then an optional platform
// bindings file, then flags.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	directory "github.com/srwicak/freelance-directory"
	"github.com/srwicak/freelance-directory/codec"
	"github.com/srwicak/freelance-directory/config"
	"github.com/srwicak/freelance-directory/hrana"
	"github.com/srwicak/freelance-directory/json"
)

var cli struct {
	DatabaseURL string `default:"" help:"Database URL; libsql:// is rewritten to https://." env:"-"`
	AuthToken   string `default:"" help:"Bearer token."                                    env:"-"`
	Bindings    string `default:"" help:"Platform bindings file (YAML)."                    type:"path"`

	Table   string        `default:"users" help:"Table to sample. Empty skips sampling."`
	Limit   int           `default:"5"     help:"Rows to sample."`
	Decrypt bool          `default:"false" help:"Also list decrypted profiles (needs ENCRYPTION_KEY)." negatable:""`
	Reveal  bool          `default:"false" help:"Do not mask contact details in the decrypted listing."`
	Timeout time.Duration `default:"15s"   help:"Overall timeout."`

	Log struct {
		Level  string `default:"info"    help:"${help_log_level}"`
		Format string `default:"console" help:"${help_log_format}" enum:"${enum_log_format}"`
	} `embed:"" prefix:"log-"`
}

// Additional variables for the kong parsers.
var (
	logLevels = []string{
		zap.DebugLevel.String(),
		zap.InfoLevel.String(),
		zap.WarnLevel.String(),
		zap.ErrorLevel.String(),
	}

	logFormats = []string{"console", "json"}

	kongOptions = []kong.Option{
		kong.Vars{
			"enum_log_format": strings.Join(logFormats, ","),
			"help_log_format": fmt.Sprintf("Log format: '%s'.", strings.Join(logFormats, "', '")),
			"help_log_level":  fmt.Sprintf("Log level: '%s'.", strings.Join(logLevels, "', '")),
		},
		kong.DefaultEnvars("DIRPROBE"),
	}
)

var tablePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func main() {
	kong.Parse(&cli, kongOptions...)

	l := setupLogger()
	defer func() { _ = l.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cli.Timeout)
	defer cancel()

	if err := run(ctx, l, os.Stdout); err != nil {
		l.Error("Probe failed.", zap.Error(err))
		os.Exit(1)
	}
}

// setupLogger setups zap logger.
func setupLogger() *zap.Logger {
	level, err := zapcore.ParseLevel(cli.Log.Level)
	if err != nil {
		log.Fatal(err)
	}

	var cfg zap.Config
	if cli.Log.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		log.Fatal(err)
	}

	return l
}

// setupSource layers the configuration sources.
func setupSource() (config.Source, error) {
	sources := []config.Source{config.Env()}

	if cli.Bindings != "" {
		m, err := config.File(cli.Bindings)
		if err != nil {
			return nil, err
		}
		sources = append(sources, m)
	}

	flags := config.Map{}
	if cli.DatabaseURL != "" {
		flags[config.KeyDatabaseURL] = cli.DatabaseURL
	}
	if cli.AuthToken != "" {
		flags[config.KeyAuthToken] = cli.AuthToken
	}
	sources = append(sources, flags)

	return config.Layered(sources...), nil
}

// run executes the probe steps, writing results to out.
func run(ctx context.Context, l *zap.Logger, out io.Writer) error {
	src, err := setupSource()
	if err != nil {
		return err
	}

	ep, err := config.ResolveEndpoint(src)
	if err != nil {
		return err
	}
	l.Info("Resolved endpoint.", zap.String("url", ep.URL), zap.Bool("token", ep.AuthToken != ""))

	client := hrana.New(hrana.Config{Source: src})
	enc := json.New()

	start := time.Now()
	rows, err := client.Query(ctx, "SELECT 1 AS test")
	if err != nil {
		return fmt.Errorf("connection test: %w", err)
	}
	l.Info("Connection test passed.", zap.Duration("duration", time.Since(start)))

	if err := printJSON(out, enc, "test", rows); err != nil {
		return err
	}

	if cli.Table != "" {
		if !tablePattern.MatchString(cli.Table) {
			return fmt.Errorf("invalid table name %q", cli.Table)
		}

		rows, err := client.Query(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT ?", cli.Table), cli.Limit)
		if err != nil {
			return fmt.Errorf("sample %s: %w", cli.Table, err)
		}
		l.Info("Sampled table.", zap.String("table", cli.Table), zap.Int("rows", len(rows)))

		if err := printJSON(out, enc, cli.Table, rows); err != nil {
			return err
		}
	}

	if cli.Decrypt {
		repo, err := directory.New(directory.Config{Source: src, Client: client, Table: cli.Table})
		if err != nil {
			return err
		}

		page, err := repo.List(ctx, directory.ListOptions{PageSize: cli.Limit, MaskContacts: !cli.Reveal})
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		l.Info("Listed profiles.", zap.Int("total", page.Total), zap.Int("shown", len(page.Items)))

		if err := printJSON(out, enc, "profiles", page.Items); err != nil {
			return err
		}
	}

	return nil
}

// printJSON writes v as one labelled document.
func printJSON(out io.Writer, c codec.Codec, label string, v any) error {
	b, err := c.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s: %s\n", label, b)
	return err
}
