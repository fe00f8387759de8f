// Package translator loads the message catalogs used for API error messages.
package translator

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

const (
	LanguageEn = "en"
	LanguageJa = "ja"
)

// Supported lists the languages with a bundled catalog, default first.
var Supported = []language.Tag{language.English, language.Japanese}

//go:embed locales/*.toml
var locales embed.FS

type Config struct {
	// TranslationFolder optionally holds extra *.toml catalogs that override
	// the bundled ones.
	TranslationFolder string
	Logger            *slog.Logger
}

// New builds a bundle from the embedded catalogs plus cfg.TranslationFolder.
// A missing or unreadable folder is logged and skipped.
func New(cfg Config) (*i18n.Bundle, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := fs.ReadDir(locales, "locales")
	if err != nil {
		return nil, fmt.Errorf("read embedded locales: %w", err)
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(locales, "locales/"+e.Name()); err != nil {
			return nil, fmt.Errorf("load %s: %w", e.Name(), err)
		}
	}

	if cfg.TranslationFolder == "" {
		return bundle, nil
	}
	files, err := os.ReadDir(cfg.TranslationFolder)
	if err != nil {
		logger.Warn("failed to list translation folder", slog.String("folder", cfg.TranslationFolder), slog.Any("error", err))
		return bundle, nil
	}
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".toml" {
			continue
		}
		path := filepath.Join(cfg.TranslationFolder, f.Name())
		if _, err := bundle.LoadMessageFile(path); err != nil {
			logger.Warn("failed to load translation file", slog.String("file", path), slog.Any("error", err))
		}
	}
	return bundle, nil
}

// Negotiate picks the best supported language for an Accept-Language header.
func Negotiate(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LanguageEn
	}
	_, idx, conf := language.NewMatcher(Supported).Match(tags...)
	if conf == language.No {
		return LanguageEn
	}
	base, _ := Supported[idx].Base()
	return base.String()
}
