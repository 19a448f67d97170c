// Command mixtools lists and executes catalog tools from the shell and can
// expose the catalog to MCP clients.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	mixtools "github.com/mix-tools/mix-tools-go"
	"github.com/mix-tools/mix-tools-go/src/format"
	"github.com/mix-tools/mix-tools-go/src/json"
	"github.com/mix-tools/mix-tools-go/src/tag"
	"github.com/mix-tools/mix-tools-go/src/toolcall"
	mcpbridge "github.com/mix-tools/mix-tools-go/src/transports/mcp"
)

const usage = `usage: mixtools [global flags] <command> [flags] [args]

commands:
  health                      check service health
  list                        print the tool catalog
  exec <tool> [json-args]     execute one tool
  batch <file>                execute a JSON array of {id,name,arguments} calls
  mcp                         serve the catalog as an MCP server
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "mixtools:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	global := flag.NewFlagSet("mixtools", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage); global.PrintDefaults() }
	var (
		configPath = global.String("config", "", "config file (yaml, json or toml)")
		baseURL    = global.String("base-url", "", "service base URL")
		apiKey     = global.String("api-key", "", "service credential")
		envFile    = global.String("env-file", "", "dotenv file with MIXTOOLS_* variables")
		verbose    = global.Bool("v", false, "debug logging")
	)
	if err := global.Parse(args); err != nil {
		return errUsage
	}
	overrides := map[string]any{}
	global.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "base-url":
			overrides["base_url"] = *baseURL
		case "api-key":
			overrides["api_key"] = *apiKey
		case "env-file":
			overrides["env_file"] = *envFile
		case "v":
			overrides["verbose"] = *verbose
		}
	})
	cfg, err := loadSettings(*configPath, overrides)
	if err != nil {
		return err
	}

	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return errUsage
	}

	logger := newLogger(stderr, cfg.Verbose)
	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	cmd, cmdArgs := rest[0], rest[1:]
	return client.Do(ctx, func(c *mixtools.Client) error {
		switch cmd {
		case "health":
			return runHealth(ctx, c, stdout)
		case "list":
			return runList(ctx, c, cfg, cmdArgs, stdout, stderr)
		case "exec":
			return runExec(ctx, c, cfg, cmdArgs, stdout, stderr)
		case "batch":
			return runBatch(ctx, c, cfg, cmdArgs, stdout, stderr)
		case "mcp":
			return runMCP(ctx, c, cfg, cmdArgs, logger, stderr)
		}
		global.Usage()
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	})
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		Level(level).
		With().Timestamp().Str("component", "mixtools").
		Logger()
}

// printf adapts a zerolog logger to the printf style logger the library takes.
func printf(l zerolog.Logger) func(format string, args ...interface{}) {
	return func(format string, args ...interface{}) {
		l.Debug().Msgf(format, args...)
	}
}

func newClient(cfg *settings, logger zerolog.Logger) (*mixtools.Client, error) {
	cc := mixtools.NewClientConfig()
	cc.BaseURL = cfg.BaseURL
	cc.APIKey = cfg.APIKey
	cc.Logger = printf(logger)
	cc.UserAgent = "mixtools-cli"
	if cfg.EnvFile != "" {
		cc.LoadVariablesFrom = append(cc.LoadVariablesFrom, mixtools.NewDotEnv(cfg.EnvFile))
	}
	return mixtools.NewClient(cc)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runHealth(ctx context.Context, c *mixtools.Client, stdout io.Writer) error {
	h, err := c.HealthCheck(ctx)
	if err != nil {
		return err
	}
	return writeJSON(stdout, h.Raw)
}

// callFlags are shared by list, exec and batch.
type callFlags struct {
	fs      *flag.FlagSet
	format  *string
	toolkit *string
	tags    *string
	id      *string
}

func newCallFlags(name string, cfg *settings, stderr io.Writer) *callFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return &callFlags{
		fs:      fs,
		format:  fs.String("format", cfg.Format, "native, openai or anthropic"),
		toolkit: fs.String("toolkit", cfg.Toolkit, "toolkit filter"),
		tags:    fs.String("tags", tag.Join(cfg.Tags), "comma separated tag filter"),
		id:      fs.String("id", "", "tool call id for provider formats"),
	}
}

func (cf *callFlags) parse(args []string) (format.Format, error) {
	if err := cf.fs.Parse(args); err != nil {
		return "", errUsage
	}
	return format.Parse(*cf.format)
}

func (cf *callFlags) listOptions(f format.Format) []mixtools.CallOption {
	opts := []mixtools.CallOption{mixtools.WithFormat(f)}
	if *cf.toolkit != "" {
		opts = append(opts, mixtools.WithToolkit(*cf.toolkit))
	}
	if tags := tag.Split(*cf.tags); len(tags) > 0 {
		opts = append(opts, mixtools.WithTags(tags...))
	}
	return opts
}

func runList(ctx context.Context, c *mixtools.Client, cfg *settings, args []string, stdout, stderr io.Writer) error {
	cf := newCallFlags("list", cfg, stderr)
	f, err := cf.parse(args)
	if err != nil {
		return err
	}
	cat, err := c.ListTools(ctx, cf.listOptions(f)...)
	if err != nil {
		return err
	}
	return writeJSON(stdout, cat)
}

func runExec(ctx context.Context, c *mixtools.Client, cfg *settings, args []string, stdout, stderr io.Writer) error {
	cf := newCallFlags("exec", cfg, stderr)
	f, err := cf.parse(args)
	if err != nil {
		return err
	}
	if cf.fs.NArg() < 1 {
		return fmt.Errorf("%w: exec needs a tool name", errUsage)
	}
	var toolArgs map[string]any
	if raw := cf.fs.Arg(1); raw != "" {
		if err := json.Unmarshal([]byte(raw), &toolArgs); err != nil {
			return fmt.Errorf("tool arguments must be a JSON object: %w", err)
		}
	}
	res, err := c.ExecuteTool(ctx, cf.fs.Arg(0), toolArgs, mixtools.WithFormat(f), mixtools.WithCorrelationID(*cf.id))
	if err != nil {
		return err
	}
	return writeJSON(stdout, res.Message())
}

func runBatch(ctx context.Context, c *mixtools.Client, cfg *settings, args []string, stdout, stderr io.Writer) error {
	cf := newCallFlags("batch", cfg, stderr)
	f, err := cf.parse(args)
	if err != nil {
		return err
	}
	if cf.fs.NArg() != 1 {
		return fmt.Errorf("%w: batch needs a file", errUsage)
	}
	data, err := os.ReadFile(cf.fs.Arg(0))
	if err != nil {
		return err
	}
	var reqs []toolcall.Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		return fmt.Errorf("decode %s: %w", cf.fs.Arg(0), err)
	}
	outcomes := c.ExecuteAll(ctx, reqs, f, mixtools.WithMaxConcurrency(cfg.MaxConcurrency))
	msgs, err := mixtools.Messages(outcomes)
	if werr := writeJSON(stdout, msgs); werr != nil {
		return werr
	}
	return err
}

func runMCP(ctx context.Context, c *mixtools.Client, cfg *settings, args []string, logger zerolog.Logger, stderr io.Writer) error {
	cf := newCallFlags("mcp", cfg, stderr)
	addr := cf.fs.String("addr", cfg.MCPAddr, "listen address for streamable HTTP")
	stdio := cf.fs.Bool("stdio", false, "serve over stdin and stdout")
	if _, err := cf.parse(args); err != nil {
		return err
	}
	opts := cf.listOptions(format.Native)[1:]
	bridge := mcpbridge.NewBridge(c,
		mcpbridge.WithListOptions(opts...),
		mcpbridge.WithLogger(printf(logger)),
	)
	if *stdio {
		return bridge.ServeStdio(ctx)
	}
	logger.Info().Str("addr", *addr).Msg("serving MCP bridge")
	return bridge.ListenAndServe(ctx, *addr)
}
