package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"

	"github.com/islml/fude/internal/config"
	"github.com/islml/fude/internal/editor"
)

var (
	configFlag = flag.String("config", "", "path to the config file")
	debugFlag  = flag.Bool("debug", false, "write diagnostics to the debug log")
)

func main() {
	// Restore the terminal even when something panics mid-frame, so
	// the report comes out on a usable screen.
	defer func() {
		if r := recover(); r != nil {
			editor.EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\nfude crashed: %v\r\n", r)
			fmt.Fprintf(os.Stderr, "stack trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	flag.Parse()

	path := *configFlag
	if path == "" {
		path, _ = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fude: %v\n", err)
		os.Exit(1)
	}

	logFile, err := setupLogging(cfg.DebugLog, *debugFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fude: %v\n", err)
		os.Exit(1)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	var lines []string
	if name := flag.Arg(0); name != "" {
		if lines, err = readLines(name); err != nil {
			fmt.Fprintf(os.Stderr, "fude: %v\n", err)
			os.Exit(1)
		}
	}

	term := editor.NewTerm(os.Stdin, os.Stdout)
	term.SetReadTimeout(cfg.ReadTimeout())

	screen := editor.NewScreen(os.Stdout)
	screen.TabStop = cfg.TabStop
	screen.HideBanner = cfg.HideBanner

	log.Printf("starting session, tab stop %d, read timeout %s", cfg.TabStop, cfg.ReadTimeout())

	sess := editor.NewSession(term, screen, editor.NewDocument(lines))
	if err := sess.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "fude: %v\n", err)
		os.Exit(1)
	}
}

// readLines loads a file as display content, one element per line.
// The content is a snapshot for navigation; nothing writes it back.
func readLines(name string) ([]string, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines, nil
}
