// Command vcardtool reads vCard 2.1/3.0 files and either dumps the parsed
// contacts as JSON or re-serializes them as normalized vCard 3.0 text.
//
// Usage:
//
//	vcardtool [flags] [file ...]
//
// With no file arguments the tool reads from standard input. Multi-card
// files are supported; cards are processed in order.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vcard-codec/internal/config"
	"vcard-codec/vcard"
)

func main() {
	normalize := flag.Bool("normalize", false, "re-serialize cards as vCard 3.0 instead of dumping JSON")
	assignUID := flag.Bool("assign-uid", false, "assign a fresh UID to contacts that lack one")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	contacts, err := readInputs(flag.Args(), logger)
	if err != nil {
		logger.Error("reading input failed", zap.Error(err))
		os.Exit(1)
	}

	if *assignUID {
		for _, c := range contacts {
			if c.UniqueID == "" {
				c.UniqueID = uuid.NewString()
			}
		}
	}

	if *normalize {
		err = writeVCards(os.Stdout, contacts, cfg, logger)
	} else {
		err = writeJSON(os.Stdout, contacts)
	}
	if err != nil {
		logger.Error("writing output failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// readInputs parses every named file, or standard input when no names are
// given, and returns the contacts in order. Reader warnings are logged but
// never fail the run: a malformed source still yields best-effort contacts.
func readInputs(paths []string, logger *zap.Logger) ([]*vcard.Contact, error) {
	if len(paths) == 0 {
		return readStream(os.Stdin, "stdin", logger)
	}
	var all []*vcard.Contact
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		contacts, err := readStream(f, path, logger)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		all = append(all, contacts...)
	}
	return all, nil
}

func readStream(r io.Reader, name string, logger *zap.Logger) ([]*vcard.Contact, error) {
	reader := vcard.NewReader(r)
	contacts, err := reader.ReadAll()
	for _, warning := range reader.Warnings {
		logger.Warn("parse warning",
			zap.String("source", name),
			zap.String("warning", warning))
	}
	if err != nil {
		return contacts, err
	}
	logger.Debug("parsed cards",
		zap.String("source", name),
		zap.Int("count", len(contacts)))
	return contacts, nil
}

func writeJSON(out io.Writer, contacts []*vcard.Contact) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(contacts)
}

func writeVCards(out io.Writer, contacts []*vcard.Contact, cfg *config.Config, logger *zap.Logger) error {
	writer := vcard.NewWriter(vcard.WriterOptions{
		EmbedLocalImages:    cfg.EmbedLocalImages,
		EmbedInternetImages: cfg.EmbedInternetImages,
		IgnoreCommas:        cfg.IgnoreCommas,
		ProductID:           cfg.ProductID,
		Logger:              logger,
	})
	for _, c := range contacts {
		if err := writer.WriteContact(c, out); err != nil {
			return err
		}
	}
	return nil
}
