// cmd/batchrun runs one script batch against a set of CAD documents from the
// command line, without any bus infrastructure.
//
// Usage:
//   ./batchrun -scripts ./lisp drawing1.dwg drawing2.dwg
//   ./batchrun -engine "C:\Program Files\Autodesk\acad.exe" -script fix.lsp -script purge.lsp plan.dwg
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/jiraiya78/lispbatch/internal/batch"
	"github.com/jiraiya78/lispbatch/internal/engine"
	"github.com/jiraiya78/lispbatch/internal/scripts"
	"github.com/jiraiya78/lispbatch/internal/settings"
	"github.com/jiraiya78/lispbatch/pkg/schema"
)

type scriptList []string

func (s *scriptList) String() string { return strings.Join(*s, ",") }

func (s *scriptList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	_ = godotenv.Load()

	enginePath := flag.String("engine", "", "engine executable path (default: settings file, then install probe)")
	scriptDir := flag.String("scripts", "", "directory scanned recursively for .lsp scripts")
	settingsFile := flag.String("settings", settings.DefaultFile, "settings file path")
	verbose := flag.Bool("v", false, "verbose logging")
	var extraScripts scriptList
	flag.Var(&extraScripts, "script", "script file to run, in order (repeatable)")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	documents := flag.Args()
	if len(documents) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no documents given")
		flag.Usage()
		os.Exit(2)
	}

	var reg scripts.Registry
	if *scriptDir != "" {
		found, err := scripts.Discover(*scriptDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: scan scripts: %v\n", err)
			os.Exit(1)
		}
		for _, p := range found {
			if err := reg.Add(p); err != nil {
				logger.Warn("skipping script", "path", p, "err", err)
			}
		}
	}
	for _, p := range extraScripts {
		if err := reg.Add(p); err != nil {
			logger.Warn("skipping script", "path", p, "err", err)
		}
	}
	if reg.Len() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no scripts to run; pass -scripts or -script")
		os.Exit(2)
	}

	exe := *enginePath
	if exe == "" {
		if stored, err := settings.Load(*settingsFile); err == nil {
			exe = stored.EnginePath
		}
	}
	if exe == "" {
		exe = settings.FindEngine()
	}
	if exe == "" {
		fmt.Fprintln(os.Stderr, "Error: engine executable not configured; pass -engine or set it in the settings file")
		os.Exit(2)
	}

	runner := &batch.Runner{
		Launcher: engine.NewAutoCAD(),
		Emitter:  printEmitter{},
		Timings:  batch.DefaultTimings(),
		Logger:   logger,
	}
	sum := runner.Run(exe, documents, &reg)
	if sum.Succeeded != sum.Total {
		os.Exit(1)
	}
}

// printEmitter writes the status log to stdout as the run produces it.
type printEmitter struct{}

func (printEmitter) Status(message string, severity schema.Severity) {
	fmt.Printf("[%s] %s\n", strings.ToUpper(string(severity)), message)
}

func (printEmitter) Progress(current, total int) {
	fmt.Printf("[progress] %d/%d (%.0f%%)\n", current, total, batch.ProgressPercent(current, total))
}
