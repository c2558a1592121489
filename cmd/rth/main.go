package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rgonek/richtext-html/markdown"
	"github.com/rgonek/richtext-html/model"
	"github.com/rgonek/richtext-html/persist"
	"github.com/rgonek/richtext-html/serializer"
)

const (
	presetBalanced = "balanced"
	presetStrict   = "strict"
	presetLenient  = "lenient"

	formatHTML     = "html"
	formatMarkdown = "markdown"

	envStoreDSN = "RTH_STORE_DSN"
	envLogLevel = "RTH_LOG_LEVEL"
)

func presetConfig(preset string) (serializer.Config, error) {
	switch strings.ToLower(strings.TrimSpace(preset)) {
	case "", presetBalanced:
		return serializer.Config{}, nil
	case presetStrict:
		return serializer.Config{
			UnknownElements: serializer.UnknownError,
			UnknownMarks:    serializer.UnknownError,
		}, nil
	case presetLenient:
		return serializer.Config{
			UnknownElements: serializer.UnknownUnwrap,
			UnknownMarks:    serializer.UnknownSkip,
		}, nil
	default:
		return serializer.Config{}, fmt.Errorf("unknown preset %q (allowed: balanced, strict, lenient)", preset)
	}
}

// resolveConfig layers the preset, an optional YAML config file and the
// strict flag, in that order.
func resolveConfig(preset, configPath string, strict bool) (serializer.Config, error) {
	cfg, err := presetConfig(preset)
	if err != nil {
		return serializer.Config{}, err
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return serializer.Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return serializer.Config{}, fmt.Errorf("parse config %s: %w", configPath, err)
		}
	}
	if strict {
		cfg.UnknownElements = serializer.UnknownError
		cfg.UnknownMarks = serializer.UnknownError
	}

	return cfg, nil
}

func normalizeFormat(name, value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", formatHTML:
		return formatHTML, nil
	case formatMarkdown, "md":
		return formatMarkdown, nil
	default:
		return "", fmt.Errorf("invalid -%s %q (allowed: html, markdown)", name, value)
	}
}

func newLogger(level string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(parsed)
	return logger, nil
}

type options struct {
	from     string
	to       string
	reverse  bool
	minify   bool
	storeDSN string
}

func run(ctx context.Context, cfg serializer.Config, opts options, input []byte, out io.Writer, logger logrus.FieldLogger) error {
	cfg.Logger = logger
	s, err := serializer.New(cfg)
	if err != nil {
		return err
	}

	if opts.reverse {
		return runReverse(ctx, s, opts, input, out, logger)
	}

	markup := string(input)
	if opts.from == formatMarkdown {
		conv, err := markdown.New(markdown.Options{})
		if err != nil {
			return err
		}
		if markup, err = conv.ToHTML(markup); err != nil {
			return err
		}
	}

	result, err := s.Deserialize(markup)
	if err != nil {
		return fmt.Errorf("deserialize: %w", err)
	}
	logWarnings(logger, result.Warnings)

	return model.Encode(out, result.Document)
}

func runReverse(ctx context.Context, s *serializer.Serializer, opts options, input []byte, out io.Writer, logger logrus.FieldLogger) error {
	doc, err := model.Decode(bytes.NewReader(input))
	if err != nil {
		return err
	}

	if opts.storeDSN != "" {
		if err := saveDocument(ctx, s, opts, doc, logger); err != nil {
			return err
		}
	}

	result, err := s.Serialize(doc)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}
	logWarnings(logger, result.Warnings)

	output := result.HTML
	if opts.minify {
		if output, err = persist.Minify(output); err != nil {
			return err
		}
	}
	if opts.to == formatMarkdown {
		conv, err := markdown.New(markdown.Options{})
		if err != nil {
			return err
		}
		if output, err = conv.FromHTML(output); err != nil {
			return err
		}
	}

	_, err = fmt.Fprintln(out, output)
	return err
}

func saveDocument(ctx context.Context, s *serializer.Serializer, opts options, doc model.Document, logger logrus.FieldLogger) error {
	db, err := persist.OpenSQLite(ctx, opts.storeDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	store := persist.NewBunStore(db)
	if err := store.Init(ctx); err != nil {
		return err
	}

	saver, err := persist.NewAutosaver(s, store, persist.AutosaveOptions{Minify: opts.minify, Logger: logger})
	if err != nil {
		return err
	}
	if _, err := saver.OnChange(ctx, doc); err != nil {
		return err
	}
	logger.WithField("key", persist.ContentKey).Info("document stored")
	return nil
}

func logWarnings(logger logrus.FieldLogger, warnings []serializer.Warning) {
	for _, warning := range warnings {
		logger.WithFields(logrus.Fields{
			"warning": warning.Type,
			"node":    warning.NodeType,
		}).Warn(warning.Message)
	}
}

func main() {
	reverse := flag.Bool("reverse", false, "Convert document JSON to HTML")
	from := flag.String("from", formatHTML, "Input format for forward conversion: html|markdown")
	to := flag.String("to", formatHTML, "Output format for reverse conversion: html|markdown")
	minifyOutput := flag.Bool("minify", false, "Normalize whitespace in HTML output")
	storeDSN := flag.String("store", "", "SQLite DSN to save reverse output under key \"content\" (env "+envStoreDSN+")")
	strict := flag.Bool("strict", false, "Return error on unknown elements and marks")
	preset := flag.String("preset", presetBalanced, "Preset: balanced|strict|lenient")
	configPath := flag.String("config", "", "Path to a YAML serializer config")
	logLevel := flag.String("log-level", "", "Logging level (debug, info, warn, error) (env "+envLogLevel+")")
	envFile := flag.String("env", ".env", "Path to environment file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rth [options] <input-file>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	envErr := godotenv.Load(*envFile)

	level := *logLevel
	if level == "" {
		level = os.Getenv(envLogLevel)
	}
	if level == "" {
		level = "info"
	}
	logger, err := newLogger(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		logger.Warnf("Error loading env file %s: %v", *envFile, envErr)
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(1)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	cfg, err := resolveConfig(*preset, *configPath, *strict)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	opts := options{
		reverse:  *reverse,
		minify:   *minifyOutput,
		storeDSN: *storeDSN,
	}
	if opts.storeDSN == "" {
		opts.storeDSN = os.Getenv(envStoreDSN)
	}
	if opts.from, err = normalizeFormat("from", *from); err == nil {
		opts.to, err = normalizeFormat("to", *to)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, opts, data, os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error converting file: %v\n", err)
		os.Exit(1)
	}
}
