// Package language loads soundlaw.toml manifests: the phoneme inventory,
// abbreviation table and file layout of one language project.
package language

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"soundlaw/internal/catalog"
	"soundlaw/internal/diag"
	"soundlaw/internal/ipa"
	"soundlaw/internal/rule"
)

// ManifestName is the file name the toolchain looks for.
const ManifestName = "soundlaw.toml"

// Manifest is a loaded and validated soundlaw.toml.
type Manifest struct {
	Path   string // абсолютный путь к soundlaw.toml
	Root   string // директория проекта
	Config Config

	abbrevs *rule.Abbreviations
}

// Config mirrors the TOML document.
type Config struct {
	Language      LanguageConfig    `toml:"language"`
	Phonemes      []PhonemeConfig   `toml:"phoneme"`
	Abbreviations map[string]string `toml:"abbreviations"`
	Files         FilesConfig       `toml:"files"`
}

// LanguageConfig is the [language] table.
type LanguageConfig struct {
	Name string `toml:"name"`
}

// PhonemeConfig is one [[phoneme]] entry. Без allophones фонема
// реализуется единственным аллофоном, совпадающим с symbol.
type PhonemeConfig struct {
	Symbol       string   `toml:"symbol"`
	Allophones   []string `toml:"allophones"`
	Romanization string   `toml:"romanization"`
}

// FilesConfig is the optional [files] table; paths are relative to the
// manifest directory.
type FilesConfig struct {
	Rules   string `toml:"rules"`
	Lexicon string `toml:"lexicon"`
}

// Find walks up from startDir to locate soundlaw.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the nearest manifest above startDir.
// ok сообщает, был ли манифест найден; ошибка загрузки возможна и при ok.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("language") {
		return nil, fmt.Errorf("%s: missing [language]", path)
	}
	if !meta.IsDefined("language", "name") || strings.TrimSpace(cfg.Language.Name) == "" {
		return nil, fmt.Errorf("%s: missing [language].name", path)
	}
	if len(cfg.Phonemes) == 0 {
		return nil, fmt.Errorf("%s: no [[phoneme]] entries", path)
	}

	seen := make(map[string]struct{}, len(cfg.Phonemes))
	for i, p := range cfg.Phonemes {
		sym := strings.TrimSpace(p.Symbol)
		if sym == "" {
			return nil, fmt.Errorf("%s: [[phoneme]] #%d: missing symbol", path, i+1)
		}
		if _, dup := seen[sym]; dup {
			return nil, fmt.Errorf("%s: [[phoneme]] #%d: duplicate symbol %q", path, i+1, sym)
		}
		seen[sym] = struct{}{}
	}

	// Таблица сокращений проверяется сразу: конфликт со встроенным
	// сокращением или негодное значение должны всплыть при загрузке,
	// а не при компиляции первого правила.
	abbrevs, err := rule.NewAbbreviations(cfg.Abbreviations)
	if err != nil {
		return nil, fmt.Errorf("%s: [abbreviations]: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	return &Manifest{
		Path:    abs,
		Root:    filepath.Dir(abs),
		Config:  cfg,
		abbrevs: abbrevs,
	}, nil
}

// Name returns the language name.
func (m *Manifest) Name() string {
	return strings.TrimSpace(m.Config.Language.Name)
}

// Entries converts the [[phoneme]] tables into catalog construction input.
func (m *Manifest) Entries() []catalog.Entry {
	out := make([]catalog.Entry, 0, len(m.Config.Phonemes))
	for _, p := range m.Config.Phonemes {
		e := catalog.WithAllophones(strings.TrimSpace(p.Symbol), p.Allophones...)
		if r := strings.TrimSpace(p.Romanization); r != "" {
			e = e.Romanized(r)
		}
		out = append(out, e)
	}
	return out
}

// Catalog builds the phoneme catalog the manifest describes. A phoneme
// that lists the same allophone twice would warn once per repeat;
// одинаковые предупреждения схлопываются.
func (m *Manifest) Catalog(reporter diag.Reporter) (*catalog.Catalog, error) {
	c, err := catalog.New(m.Entries(), ipa.Default(), diag.NewDedupReporter(reporter))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Path, err)
	}
	return c, nil
}

// Abbreviations returns the validated abbreviation table, defaults included.
func (m *Manifest) Abbreviations() *rule.Abbreviations {
	return m.abbrevs
}

// RulesPath resolves [files].rules against the project root.
func (m *Manifest) RulesPath() (string, bool) {
	return m.resolve(m.Config.Files.Rules)
}

// LexiconPath resolves [files].lexicon against the project root.
func (m *Manifest) LexiconPath() (string, bool) {
	return m.resolve(m.Config.Files.Lexicon)
}

func (m *Manifest) resolve(rel string) (string, bool) {
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", false
	}
	return filepath.Join(m.Root, filepath.FromSlash(rel)), true
}
