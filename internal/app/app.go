package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/nwest/scribe/internal/cli"
	"github.com/nwest/scribe/internal/doctor"
	"github.com/nwest/scribe/internal/logging"
	"github.com/nwest/scribe/internal/settings"
	"github.com/nwest/scribe/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("scribe"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("scribe"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	store, err := settings.Open(parsed.ConfigDir)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("open settings failed", "error", err.Error())
		return 1
	}
	for _, w := range store.Warnings() {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("settings warning", "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config_dir", store.Dir(),
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandShow:
		return r.commandShow(store)
	case cli.CommandGet:
		return r.commandGet(store, parsed.Args[0])
	case cli.CommandSet:
		return r.commandSet(store, parsed.Args[0], parsed.Args[1], logger)
	case cli.CommandSetKey:
		return r.commandSetKey(store, parsed.Args[0], logger)
	case cli.CommandExport:
		return r.commandExport(store, parsed.Args[0], logger)
	case cli.CommandImport:
		return r.commandImport(store, parsed.Args[0], logger)
	case cli.CommandReset:
		return r.commandReset(store, logger)
	case cli.CommandDoctor:
		report := doctor.Run(store)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

// commandShow prints the document with the credential masked; the
// ciphertext itself is never useful on a terminal.
func (r Runner) commandShow(store *settings.Store) int {
	doc := map[string]any{}
	for _, path := range []string{"audio", "transcription", "ui", "output"} {
		if value, ok := store.Get(path); ok {
			doc[path] = value
		}
	}
	if store.APIKey() != "" {
		doc["api_key"] = "(set)"
	} else {
		doc["api_key"] = ""
	}

	return r.printJSON(doc)
}

func (r Runner) commandGet(store *settings.Store, path string) int {
	value, ok := store.Get(path)
	if !ok {
		fmt.Fprintf(r.Stderr, "error: no value at %q\n", path)
		return 1
	}
	return r.printJSON(value)
}

func (r Runner) commandSet(store *settings.Store, path, raw string, logger *slog.Logger) int {
	store.Set(path, parseValue(raw))
	if err := store.Save(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("save settings failed", "error", err.Error())
		return 1
	}
	logger.Info("setting updated", "path", path)
	return 0
}

func (r Runner) commandSetKey(store *settings.Store, candidate string, logger *slog.Logger) int {
	if !settings.ValidateAPIKey(candidate) {
		fmt.Fprintln(r.Stderr, "error: credential must start with sk- and be longer than 20 characters")
		return 1
	}
	if err := store.SetAPIKey(candidate); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if err := store.Save(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("save settings failed", "error", err.Error())
		return 1
	}
	logger.Info("credential updated")
	fmt.Fprintln(r.Stdout, "credential saved")
	return 0
}

func (r Runner) commandExport(store *settings.Store, path string, logger *slog.Logger) int {
	if err := store.ExportTo(path); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("export failed", "path", path, "error", err.Error())
		return 1
	}
	logger.Info("settings exported", "path", path)
	fmt.Fprintf(r.Stdout, "exported to %s\n", path)
	return 0
}

func (r Runner) commandImport(store *settings.Store, path string, logger *slog.Logger) int {
	if err := store.ImportFrom(path); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("import failed", "path", path, "error", err.Error())
		return 1
	}
	if err := store.Save(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("save settings failed", "error", err.Error())
		return 1
	}
	logger.Info("settings imported", "path", path)
	fmt.Fprintf(r.Stdout, "imported from %s\n", path)
	return 0
}

func (r Runner) commandReset(store *settings.Store, logger *slog.Logger) int {
	store.ResetToDefaults()
	if err := store.Save(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("save settings failed", "error", err.Error())
		return 1
	}
	logger.Info("settings reset to defaults")
	fmt.Fprintln(r.Stdout, "settings reset to defaults")
	return 0
}

func (r Runner) printJSON(value any) int {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprint(r.Stdout, buf.String())
	return 0
}

// parseValue interprets a CLI value argument as a JSON literal when
// possible, so `set audio.sample_rate 16000` stores a number and
// `set ui.theme dark` stores a string.
func parseValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value
	}
	return raw
}
