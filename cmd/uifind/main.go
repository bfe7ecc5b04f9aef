package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/1broseidon/uifind/internal/config"
	"github.com/1broseidon/uifind/internal/criteria"
	"github.com/1broseidon/uifind/internal/logging"
	"github.com/1broseidon/uifind/internal/lookup"
	"github.com/1broseidon/uifind/internal/platform"
	"github.com/1broseidon/uifind/internal/runtimepath"
	"github.com/1broseidon/uifind/internal/session"
	"github.com/1broseidon/uifind/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "find":
		os.Exit(runFind(os.Args[2:]))
	case "probe":
		os.Exit(runProbe(os.Args[2:]))
	case "cache":
		os.Exit(runCache(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: uifind <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  find                Find a UI item inside a window")
	fmt.Fprintln(w, "  probe X Y           Show the element at a screen point")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  cache list          List windows with remembered item positions")
	fmt.Fprintln(w, "  cache show          Show the remembered positions of a window")
	fmt.Fprintln(w, "  cache clear         Forget remembered positions")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'uifind <command> --help' for command-specific options.")
}

// loadConfig loads the config at path, or the default location when empty.
func loadConfig(path string) (*config.Config, error) {
	var (
		res *config.LoadResult
		err error
	)
	if path == "" {
		res, err = config.LoadWithSources()
	} else {
		res, err = config.LoadFromPath(path)
	}
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func newLogger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	return logging.New(logging.Options{
		Level:     cfg.LogLevel,
		FilePath:  cfg.Logging.File,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
}

// positionStore returns the configured position store, or nil when
// persistence is disabled.
func positionStore(cfg *config.Config) (*store.FileStore, error) {
	if !cfg.PositionCache.Enabled {
		return nil, nil
	}
	dir, err := runtimepath.PositionStoreDir(cfg.PositionCache.Dir)
	if err != nil {
		return nil, err
	}
	return store.NewFileStore(dir), nil
}

// env is everything a lookup command needs. close releases it in reverse
// order of acquisition.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	backend *platform.LinuxBackend
	files   *store.FileStore
	app     *session.Application
	closers []func()
}

func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func openEnv(configPath string) (*env, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvironment()

	e := &env{cfg: cfg}
	logger, logCloser, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	e.logger = logger
	e.closers = append(e.closers, func() { logCloser.Close() })

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		e.close()
		return nil, err
	}
	e.backend = backend
	e.closers = append(e.closers, backend.Disconnect)

	files, err := positionStore(cfg)
	if err != nil {
		e.close()
		return nil, err
	}
	e.files = files

	var st store.Store
	if files != nil {
		st = files
	}
	e.app = session.NewApplication(backend, st, session.Options{
		SearchTimeout: cfg.SearchTimeout,
		RetryInterval: cfg.RetryInterval,
		Logger:        logger,
	})
	e.closers = append(e.closers, e.app.Close)
	return e, nil
}

func runFind(args []string) int {
	fs := flag.NewFlagSet("find", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: uifind find [--window TITLE] [criteria flags]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Find a UI item inside the first window whose title contains TITLE, or")
		fmt.Fprintln(os.Stderr, "inside the active window when --window is omitted.")
		fmt.Fprintln(os.Stderr, "Positions of found items are remembered per window; a later run checks")
		fmt.Fprintln(os.Stderr, "the remembered point first and searches only when that fails.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  uifind find --window Editor --id save")
		fmt.Fprintln(os.Stderr, "  uifind find --window Editor --type button --name OK --timeout 2s")
	}
	window := fs.String("window", "", "Substring of the target window title (default: active window)")
	id := fs.String("id", "", "Automation id of the item")
	name := fs.String("name", "", "Exact name of the item")
	controlType := fs.String("type", "", "Control type of the item")
	class := fs.String("class", "", "Class name of the item")
	custom := fs.String("custom", "", "Registered custom item type to build")
	scope := fs.String("scope", "", "Automation id or name of a container to search inside")
	wait := fs.Duration("wait", 0, "How long to wait for the window to appear")
	timeout := fs.Duration("timeout", -1, "Search timeout (default: search_timeout from config; 0 searches once)")
	configPath := fs.String("config", "", "Config file path (default: ~/.config/uifind/config.yaml)")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "find takes no positional arguments")
		fs.Usage()
		return 2
	}
	crit := criteria.Criteria{
		AutomationID: *id,
		Name:         *name,
		ControlType:  *controlType,
		ClassName:    *class,
		CustomType:   *custom,
		Scope:        *scope,
	}.Normalize()
	if crit.IsZero() {
		fmt.Fprintln(os.Stderr, "at least one of --id, --name, --type or --class is required")
		fs.Usage()
		return 2
	}

	var opts []lookup.GetOption
	if *timeout >= 0 {
		opts = append(opts, lookup.WithTimeout(*timeout))
	}

	e, err := openEnv(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer e.close()

	var win platform.Window
	if *window == "" {
		win, err = e.backend.ActiveWindow()
	} else {
		win, err = platform.WaitForWindow(e.backend, *window, *wait)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	w := e.app.WindowSession(session.Cached(session.WindowIdentity(win)))
	if err := w.Register(win); err != nil {
		e.logger.Warn("failed to focus window", "window", win.Title, "error", err)
	}

	start := time.Now()
	res := w.Get(nil, crit, nil, opts...)
	switch res.Status {
	case lookup.Failed:
		fmt.Fprintln(os.Stderr, res.Err)
		return 1
	case lookup.Absent:
		fmt.Fprintf(os.Stderr, "no item matching %s in %q\n", crit, win.Title)
		return 1
	}

	found := foundItem{
		Window:   w.Identifier(),
		Path:     res.Path.String(),
		Elapsed:  time.Since(start),
		Element:  res.Item.Element(),
		Custom:   res.Item.CustomType(),
		Location: res.Item.Location(),
	}
	if *jsonOut {
		return writeJSON(os.Stdout, found)
	}
	printFoundItem(os.Stdout, found, isTerminal(os.Stdout))
	return 0
}

func runProbe(args []string) int {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: uifind probe [--config PATH] [--json] X Y")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the deepest element at screen point (X, Y).")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Config file path (default: ~/.config/uifind/config.yaml)")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	p, err := parsePoint(fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}

	e, err := openEnv(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer e.close()

	el, err := e.backend.ElementAtPoint(p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if el == nil {
		fmt.Fprintf(os.Stderr, "no element at %s\n", p)
		return 1
	}

	if *jsonOut {
		return writeJSON(os.Stdout, el)
	}
	printElement(os.Stdout, *el, isTerminal(os.Stdout))
	return 0
}

func parsePoint(args []string) (platform.Point, error) {
	if len(args) != 2 {
		return platform.NoPosition, fmt.Errorf("probe requires X and Y")
	}
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return platform.NoPosition, fmt.Errorf("invalid X %q", args[0])
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return platform.NoPosition, fmt.Errorf("invalid Y %q", args[1])
	}
	return platform.Point{X: x, Y: y}, nil
}
