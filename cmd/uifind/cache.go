package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/uifind/internal/store"
	"github.com/1broseidon/uifind/internal/tui"
)

func printCacheUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: uifind cache <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list               List windows with remembered item positions")
	fmt.Fprintln(w, "  show <window>      Show remembered positions for a window identity")
	fmt.Fprintln(w, "  clear <window>     Forget a window's positions (--all for every window)")
	fmt.Fprintln(w, "  browse             Browse and prune remembered positions interactively")
}

func runCache(args []string) int {
	if len(args) == 0 {
		printCacheUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "list":
		return runCacheList(args[1:])
	case "show":
		return runCacheShow(args[1:])
	case "clear":
		return runCacheClear(args[1:])
	case "browse":
		return runCacheBrowse(args[1:])
	case "help", "-h", "--help":
		printCacheUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown cache command: %s\n\n", args[0])
		printCacheUsage(os.Stderr)
		return 2
	}
}

// openCacheStore resolves the position store without touching the display.
func openCacheStore(configPath string) (*store.FileStore, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	files, err := positionStore(cfg)
	if err != nil {
		return nil, err
	}
	if files == nil {
		return nil, fmt.Errorf("position cache is disabled (position_cache.enabled: false)")
	}
	return files, nil
}

func runCacheList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: uifind cache list [--config PATH] [--json]")
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
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "cache list takes no arguments")
		fs.Usage()
		return 2
	}

	files, err := openCacheStore(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	identities, err := files.List()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	snaps := make([]*store.Snapshot, 0, len(identities))
	for _, identity := range identities {
		snap, err := files.Load(identity)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			continue
		}
		snaps = append(snaps, snap)
	}

	if *jsonOut {
		return writeJSON(os.Stdout, snaps)
	}
	if len(snaps) == 0 {
		if isTerminal(os.Stdout) {
			fmt.Println("No remembered positions.")
		}
		return 0
	}
	printSnapshotList(os.Stdout, snaps, isTerminal(os.Stdout))
	return 0
}

func runCacheShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: uifind cache show [--config PATH] [--json] <window>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "The window identity is shown by 'uifind cache list'.")
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
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	files, err := openCacheStore(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	snap, err := files.Load(fs.Arg(0))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "no remembered positions for %q\n", fs.Arg(0))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}

	if *jsonOut {
		return writeJSON(os.Stdout, snap)
	}
	printSnapshot(os.Stdout, snap, isTerminal(os.Stdout))
	return 0
}

func runCacheClear(args []string) int {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: uifind cache clear [--config PATH] (--all | <window>)")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Config file path (default: ~/.config/uifind/config.yaml)")
	all := fs.Bool("all", false, "Forget positions for every window")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if (*all && fs.NArg() != 0) || (!*all && fs.NArg() != 1) {
		fs.Usage()
		return 2
	}

	files, err := openCacheStore(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	identities := fs.Args()
	if *all {
		identities, err = files.List()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	rc := 0
	for _, identity := range identities {
		if err := files.Delete(identity); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "no remembered positions for %q\n", identity)
			} else {
				fmt.Fprintln(os.Stderr, err)
			}
			rc = 1
			continue
		}
		fmt.Printf("cleared: %s\n", identity)
	}
	return rc
}

func runCacheBrowse(args []string) int {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: uifind cache browse [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "Config file path (default: ~/.config/uifind/config.yaml)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "cache browse takes no arguments")
		fs.Usage()
		return 2
	}

	files, err := openCacheStore(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := tui.Run(files, files.Dir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
