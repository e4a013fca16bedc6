// Copyright 2025 The himotoki-split Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the himotoki morphological analyzer binary.

himotoki segments Japanese text into morphemes using a compact memory-mapped
dictionary and a Viterbi-style search over weighted word candidates. The
binary wraps the analyzer three ways: a one-shot CLI, an interactive mode
for testing, and a msgpack IPC server for editor integration.

# Usage

Tokenize a sentence, one token per line:

	himotoki "今日は天気がいい"

Print a JSON array instead:

	himotoki --json "今日は天気がいい"

Show the three best analyses with scores:

	himotoki -n 3 "今日は"

Run interactively:

	himotoki -c

Run as a msgpack IPC server over stdin/stdout:

	himotoki -serve

# Configuration

Runtime configuration is a TOML file created with defaults on first use:

	[dict]
	path = "data/himotoki.dic"
	max_word_len = 30

	[server]
	max_text_len = 4096
	max_limit = 16

The dictionary path resolves against the working directory first and then
next to the executable.

# Exit codes

0 on success, 2 on usage error, 1 on internal failure (missing or corrupt
dictionary included).
*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/msr2903/himotoki-split/internal/cli"
	"github.com/msr2903/himotoki-split/internal/utils"
	"github.com/msr2903/himotoki-split/pkg/analyzer"
	"github.com/msr2903/himotoki-split/pkg/config"
	"github.com/msr2903/himotoki-split/pkg/server"
)

const (
	AppName = "himotoki"
	gh      = "https://github.com/msr2903/himotoki-split"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main manages the flow between modes; the logic lives in the packages.
func main() {
	sigHandler()
	defaults := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	dictPath := flag.String("dict", "", "Path to the dictionary artifact (overrides config)")
	configPath := flag.String("config", "", "Path to config.toml")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run interactive CLI -- useful for testing and debugging")
	serveMode := flag.Bool("serve", false, "Run msgpack IPC server on stdin/stdout")
	jsonOut := flag.Bool("json", false, "Print tokens as a JSON array")
	limit := flag.Int("n", 1, "Number of analyses to print (1 = best path only)")
	maxWordLen := flag.Int("maxword", defaults.Dict.MaxWordLen, "Maximum candidate word length in runes")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	// keep stdout clean for token output
	log.SetOutput(os.Stderr)

	cfgFile := *configPath
	if cfgFile == "" {
		cfgFile = config.DefaultPath()
	}
	cfg, err := config.LoadOrCreate(cfgFile)
	if err != nil {
		log.Warnf("Config unavailable (%v), using defaults", err)
		cfg = config.DefaultConfig()
	}
	if *dictPath != "" {
		cfg.Dict.Path = *dictPath
	}
	if *maxWordLen > 0 {
		cfg.Dict.MaxWordLen = *maxWordLen
	}

	resolved, err := utils.ResolveDataPath(cfg.Dict.Path)
	if err != nil {
		log.Errorf("Failed to resolve dictionary: %v", err)
		os.Exit(1)
	}
	cfg.Dict.Path = resolved
	log.Debugf("Using dictionary at: %s", resolved)

	a, err := analyzer.New(cfg)
	if err != nil {
		log.Errorf("Failed to open dictionary: %v", err)
		os.Exit(1)
	}
	defer a.Close()

	switch {
	case *cliMode:
		log.SetReportTimestamp(false)
		handler := cli.NewInputHandler(a, cfg.CLI.DefaultLimit, cfg.Server.MaxTextLen)
		if err := handler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
	case *serveMode:
		log.Debug("spawning IPC")
		srv := server.NewServer(a, cfg)
		if err := srv.Start(); err != nil {
			log.Fatalf("Server error: %v", err)
		}
	default:
		if flag.NArg() != 1 {
			fmt.Fprintf(os.Stderr, "Usage: %s [flags] <text>\n", AppName)
			flag.PrintDefaults()
			os.Exit(2)
		}
		if err := runOnce(a, flag.Arg(0), *limit, *jsonOut); err != nil {
			log.Errorf("%v", err)
			os.Exit(1)
		}
	}
}

// runOnce tokenizes a single argument and prints it to stdout.
func runOnce(a *analyzer.Analyzer, text string, limit int, jsonOut bool) error {
	if limit <= 1 {
		tokens := a.Tokenize(text)
		if jsonOut {
			enc := json.NewEncoder(os.Stdout)
			return enc.Encode(tokens)
		}
		for _, t := range tokens {
			fmt.Printf("%s\t%s\t%s\t%s\n", t.Surface, t.Pos, t.Reading, t.BaseForm)
		}
		return nil
	}

	analyses, err := a.Analyze(text, limit)
	if err != nil {
		return err
	}
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(analyses)
	}
	for i, an := range analyses {
		fmt.Printf("# analysis %d (score %.1f)\n", i+1, an.Score)
		for _, t := range an.Tokens {
			fmt.Printf("%s\t%s\t%s\t%s\n", t.Surface, t.Pos, t.Reading, t.BaseForm)
		}
	}
	return nil
}

// printVersion displays styled version info on stderr.
func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ himotoki ] Lightweight Japanese morphological analyzer")
	logger.Print("", "version", analyzer.Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}
