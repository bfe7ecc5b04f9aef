package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/uifind/internal/config"
)

func printConfigUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  uifind config validate [--path PATH]")
	fmt.Fprintln(os.Stderr, "  uifind config print [--path PATH] [--defaults]")
	fmt.Fprintln(os.Stderr, "  uifind config explain [--path PATH] <yaml.path>")
}

func loadConfigSources(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printConfigUsage()
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/uifind/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := loadConfigSources(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/uifind/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res := &config.LoadResult{Config: config.DefaultConfig()}
		if !*printDefaults {
			var err error
			res, err = loadConfigSources(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		if res.File != "" {
			fmt.Printf("# file: %s\n", res.File)
		}
		if err := config.Print(os.Stdout, res); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/uifind/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "Usage: uifind config explain [--path PATH] <yaml.path>")
			return 2
		}

		res, err := loadConfigSources(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("%s: %v\n", fs.Arg(0), value)
		fmt.Printf("source: %s\n", src)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n\n", args[0])
		printConfigUsage()
		return 2
	}
}
