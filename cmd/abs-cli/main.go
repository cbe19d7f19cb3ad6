// Command abs-cli manages an Audiobookshelf server from the terminal and
// syncs finished books from Libation, audible-cli exports and Hardcover.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/drallgood/abs-cli/internal/api/audiobookshelf"
	"github.com/drallgood/abs-cli/internal/config"
	"github.com/drallgood/abs-cli/internal/credentials"
	"github.com/drallgood/abs-cli/internal/logger"
	"github.com/drallgood/abs-cli/internal/sources"
	"github.com/drallgood/abs-cli/internal/sources/hardcover"
	"github.com/drallgood/abs-cli/internal/ui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ClientFactory builds an Audiobookshelf client on first use
type ClientFactory func(ctx context.Context) (audiobookshelf.ClientInterface, error)

// runtime carries the collaborators the command actions depend on
type runtime struct {
	configPath string
	cfg        *config.Config

	newClient     ClientFactory
	readHardcover func(ctx context.Context) ([]sources.FinishedRecord, error)

	stdin io.Reader
	isTTY func() bool
}

func newRuntime() *runtime {
	rt := &runtime{
		stdin: os.Stdin,
		isTTY: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	}
	rt.newClient = rt.defaultClient
	rt.readHardcover = rt.defaultHardcover
	return rt
}

// config loads the configuration once. Commands that never reach the server never call it.
func (rt *runtime) config() (*config.Config, error) {
	if rt.cfg != nil {
		return rt.cfg, nil
	}
	cfg, err := config.Load(rt.configPath)
	if err != nil {
		return nil, err
	}
	rt.cfg = cfg
	return cfg, nil
}

func (rt *runtime) defaultClient(ctx context.Context) (audiobookshelf.ClientInterface, error) {
	cfg, err := rt.config()
	if err != nil {
		return nil, err
	}

	chain := credentials.Chain{
		credentials.Static(cfg.APIToken),
		credentials.NewCommand(cfg.Secrets.Command...),
	}
	token, _ := chain.Token(ctx)
	if token == "" {
		logger.FromContext(ctx).Warn("No API token found, requests are sent unauthenticated", map[string]interface{}{
			"server_url": cfg.ServerURL,
		})
	}

	return audiobookshelf.NewClient(cfg.ServerURL, token), nil
}

func (rt *runtime) defaultHardcover(ctx context.Context) ([]sources.FinishedRecord, error) {
	cfg, err := rt.config()
	if err != nil {
		return nil, err
	}
	if cfg.Hardcover.Token == "" {
		return nil, &config.ConfigError{
			Field: "hardcover.token",
			Msg:   "is required for --from-hardcover: add it to the [hardcover] section or set HARDCOVER_TOKEN",
		}
	}
	return hardcover.NewClient(cfg.Hardcover.URL, cfg.Hardcover.Token).ReadFinished(ctx)
}

// withClient runs fn with a freshly built client and releases it afterwards
func (rt *runtime) withClient(c *cli.Context, fn func(ctx context.Context, client audiobookshelf.ClientInterface) error) error {
	ctx := c.Context
	client, err := rt.newClient(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			logger.FromContext(ctx).Debug("Failed to close client", map[string]interface{}{
				"error": cerr.Error(),
			})
		}
	}()
	return fn(ctx, client)
}

// printer writes to the app's output so tests can capture it
func printer(c *cli.Context) *ui.Printer {
	return ui.NewPrinter(c.App.Writer)
}

// usageError rejects an invocation before any I/O happens
func usageError(format string, args ...interface{}) error {
	return cli.Exit(fmt.Sprintf(format, args...), 2)
}

func newApp(rt *runtime) *cli.App {
	return &cli.App{
		Name:    "abs-cli",
		Usage:   "Manage an Audiobookshelf server and sync listening progress",
		Version: fmt.Sprintf("%s (%s) %s", version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				Value:   config.DefaultConfigPath,
				EnvVars: []string{"ABS_CLI_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from `FILE` (default: ./.env when present)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Shortcut for --log-level debug",
			},
		},
		Before: func(c *cli.Context) error {
			if err := config.LoadDotEnv(c.String("env-file")); err != nil {
				return err
			}
			rt.configPath = c.String("config")
			setupLogging(c)
			c.Context = logger.NewContext(c.Context, logger.Get())
			return nil
		},
		Commands: []*cli.Command{
			libraryCommand(rt),
			itemsCommand(rt),
			progressCommand(rt),
		},
		// main decides the exit code
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// setupLogging configures the global logger. Flags win over the environment,
// which wins over the config file. The logger is set up before the file is
// read so parsing it already logs at the requested level.
func setupLogging(c *cli.Context) {
	override := os.Getenv("LOG_LEVEL")
	if lvl := c.String("log-level"); lvl != "" {
		override = lvl
	}
	if c.Bool("debug") {
		override = "debug"
	}

	cfg := logger.Config{
		Level:      override,
		Format:     logger.ParseLogFormat(os.Getenv("LOG_FORMAT")),
		Output:     c.App.ErrWriter,
		TimeFormat: time.RFC3339,
	}
	if cfg.Level == "" {
		cfg.Level = "warn"
	}
	logger.ForceSetup(cfg)

	path, err := config.ResolvePath(c.String("config"))
	if err != nil {
		return
	}
	fileCfg, err := config.LoadFromFile(path)
	if err != nil {
		return
	}

	changed := false
	if override == "" && fileCfg.Logging.Level != "" {
		cfg.Level = fileCfg.Logging.Level
		changed = true
	}
	if os.Getenv("LOG_FORMAT") == "" && fileCfg.Logging.Format != "" {
		cfg.Format = logger.ParseLogFormat(fileCfg.Logging.Format)
		changed = true
	}
	if changed {
		logger.ForceSetup(cfg)
	}
}

func main() {
	app := newApp(newRuntime())
	if err := app.Run(os.Args); err != nil {
		os.Exit(reportError(app.ErrWriter, err))
	}
}

// reportError prints err for the user and returns the process exit code
func reportError(w io.Writer, err error) int {
	if w == nil {
		w = os.Stderr
	}
	code := 1
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	ui.NewPrinter(w).Error("Error: %v", err)
	return code
}
