package language_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"soundlaw/internal/language"
)

const sampleManifest = `[language]
name = "proto-kivu"

[[phoneme]]
symbol = "a"

[[phoneme]]
symbol = "p"
romanization = "p"

[[phoneme]]
symbol = "t"
allophones = ["t", "tʰ"]

[abbreviations]
P = "[plosive]"

[files]
rules = "changes.law"
lexicon = "words.txt"
`

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, language.ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadValidManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, sampleManifest)

	m, err := language.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name() != "proto-kivu" {
		t.Errorf("Name() = %q, want %q", m.Name(), "proto-kivu")
	}
	if m.Root != dir {
		t.Errorf("Root = %q, want %q", m.Root, dir)
	}
	if got := len(m.Entries()); got != 3 {
		t.Errorf("got %d entries, want 3", got)
	}

	rules, ok := m.RulesPath()
	if !ok || rules != filepath.Join(dir, "changes.law") {
		t.Errorf("RulesPath() = %q, %v", rules, ok)
	}
	lex, ok := m.LexiconPath()
	if !ok || lex != filepath.Join(dir, "words.txt") {
		t.Errorf("LexiconPath() = %q, %v", lex, ok)
	}

	// Пользовательское сокращение подхватывается вместе со встроенными.
	if got := m.Abbreviations().Apply("P -> V / _"); got != "[plosive] -> [vowel] / _" {
		t.Errorf("abbreviation expansion = %q", got)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing language table",
			content: "[[phoneme]]\nsymbol = \"a\"\n",
			wantErr: "missing [language]",
		},
		{
			name:    "missing language name",
			content: "[language]\n[[phoneme]]\nsymbol = \"a\"\n",
			wantErr: "missing [language].name",
		},
		{
			name:    "blank language name",
			content: "[language]\nname = \"  \"\n[[phoneme]]\nsymbol = \"a\"\n",
			wantErr: "missing [language].name",
		},
		{
			name:    "no phonemes",
			content: "[language]\nname = \"x\"\n",
			wantErr: "no [[phoneme]] entries",
		},
		{
			name:    "phoneme without symbol",
			content: "[language]\nname = \"x\"\n[[phoneme]]\nromanization = \"a\"\n",
			wantErr: "missing symbol",
		},
		{
			name:    "duplicate phoneme symbol",
			content: "[language]\nname = \"x\"\n[[phoneme]]\nsymbol = \"a\"\n[[phoneme]]\nsymbol = \"a\"\n",
			wantErr: "duplicate symbol",
		},
		{
			name:    "abbreviation shadows builtin",
			content: "[language]\nname = \"x\"\n[[phoneme]]\nsymbol = \"a\"\n[abbreviations]\nV = \"[front]\"\n",
			wantErr: "[abbreviations]",
		},
		{
			name:    "broken TOML",
			content: "[language\n",
			wantErr: "failed to parse TOML",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tc.content)
			_, err := language.Load(path)
			if err == nil {
				t.Fatalf("Load succeeded, want error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %q, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, sampleManifest)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	path, ok, err := language.Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !ok {
		t.Fatal("manifest not found")
	}
	if path != filepath.Join(root, language.ManifestName) {
		t.Errorf("Find = %q, want manifest at %q", path, root)
	}
}

func TestFindMissing(t *testing.T) {
	_, ok, err := language.Find(t.TempDir())
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if ok {
		t.Error("found a manifest where none was written")
	}
}

func TestDiscoverLoads(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, sampleManifest)
	nested := filepath.Join(root, "sub")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m, ok, err := language.Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if !ok || m.Name() != "proto-kivu" {
		t.Errorf("Discover = %v (ok=%v)", m, ok)
	}
}

func TestManifestCatalog(t *testing.T) {
	path := writeManifest(t, t.TempDir(), sampleManifest)
	m, err := language.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cat, err := m.Catalog(nil)
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	if cat.Len() != 3 {
		t.Errorf("catalog has %d phonemes, want 3", cat.Len())
	}
	p, err := cat.Find("p")
	if err != nil {
		t.Fatalf("Find(p): %v", err)
	}
	if p.Romanization != "p" {
		t.Errorf("romanization = %q, want %q", p.Romanization, "p")
	}
	tt, err := cat.Find("t")
	if err != nil {
		t.Fatalf("Find(t): %v", err)
	}
	if len(tt.Allophones) != 2 {
		t.Errorf("/t/ has %d allophones, want 2", len(tt.Allophones))
	}
}
