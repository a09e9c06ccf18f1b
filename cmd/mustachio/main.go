package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/j3lte/mustachio/pkg/mustache"
	"github.com/j3lte/mustachio/pkg/partials"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "./mustachio.json", "path to the JSON config file")
	templatePath := flag.String("template", "", "path to the template file (required)")
	dataPath := flag.String("data", "", "path to the view data file (.json or .yaml)")
	outPath := flag.String("out", "", "output file path (stdout if empty)")
	partialDir := flag.String("partials", "", "directory of *.mustache partial files")
	storePath := flag.String("store", "", "path to a sqlite partial store")
	tagsFlag := flag.String("tags", "", `delimiter override, e.g. "<% %>"`)
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mustachio %s (commit %s, built %s)\n", Version, Commit, BuildDate)
		return
	}

	baseLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *templatePath == "" {
		baseLogger.Error("No template given, see -help for usage.")
		os.Exit(2)
	}

	if err := run(*configPath, *templatePath, *dataPath, *outPath, *partialDir, *storePath, *tagsFlag); err != nil {
		baseLogger.Error("Render failed.", "error", err)
		os.Exit(1)
	}
}

// run performs one render: load config and view data, resolve the partial
// source, render, and write the output.
func run(configPath, templatePath, dataPath, outPath, partialDir, storePath, tagsFlag string) error {
	config, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var logLevel slog.Level
	switch strings.ToLower(config.LogLevel) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	template, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	view, err := loadView(dataPath)
	if err != nil {
		return err
	}

	tags, err := resolveTags(config, tagsFlag)
	if err != nil {
		return err
	}

	opts := []mustache.Option{mustache.WithTags(tags)}

	if partialDir == "" {
		partialDir = config.PartialDir
	}
	if storePath == "" {
		storePath = config.StorePath
	}
	switch {
	case partialDir != "":
		logger.Debug("Using partial directory.", "dir", partialDir)
		opts = append(opts, mustache.WithPartials(dirPartials(partialDir, logger)))
	case storePath != "":
		logger.Debug("Using partial store.", "path", storePath)
		db, err := initDB(storePath)
		if err != nil {
			return fmt.Errorf("failed to open partial store: %w", err)
		}
		defer func() { _ = db.Close() }()
		if err := partials.SetupSchema(db); err != nil {
			return fmt.Errorf("failed to set up partial store schema: %w", err)
		}
		store, err := partials.NewStore(db)
		if err != nil {
			return fmt.Errorf("failed to open partial store: %w", err)
		}
		defer store.Close()
		store.SetLogger(logger)
		opts = append(opts, mustache.WithPartials(store))
	}

	out, err := mustache.Render(string(template), view, opts...)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	if outPath == "" {
		_, err = os.Stdout.WriteString(out)
		return err
	}
	if err := atomic.WriteFile(outPath, strings.NewReader(out)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info("Rendered template.", "template", templatePath, "out", outPath, "bytes", len(out))
	return nil
}

// loadView reads the view data file, decoding by extension. An empty path
// yields a nil view.
func loadView(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read view data: %w", err)
	}
	var view any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&view); err != nil {
			return nil, fmt.Errorf("failed to parse view data: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &view); err != nil {
			return nil, fmt.Errorf("failed to parse view data: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported view data format %q", filepath.Ext(path))
	}
	return view, nil
}

// resolveTags picks the delimiter pair: the -tags flag wins, then the
// config file, then the language default.
func resolveTags(config *Config, tagsFlag string) (mustache.Tags, error) {
	if tagsFlag != "" {
		parts := strings.Fields(tagsFlag)
		if len(parts) != 2 {
			return mustache.Tags{}, fmt.Errorf("invalid -tags value %q, want two space-separated delimiters", tagsFlag)
		}
		return mustache.Tags{Open: parts[0], Close: parts[1]}, nil
	}
	if config.OpenDelim != "" && config.CloseDelim != "" {
		return mustache.Tags{Open: config.OpenDelim, Close: config.CloseDelim}, nil
	}
	return mustache.DefaultTags, nil
}

// dirPartials resolves partial names against *.mustache files in dir.
func dirPartials(dir string, logger *slog.Logger) mustache.PartialFunc {
	return func(name string) (string, bool) {
		raw, err := os.ReadFile(filepath.Join(dir, name+".mustache"))
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("Failed to read partial file.", "name", name, "error", err)
			}
			return "", false
		}
		return string(raw), true
	}
}
