package main

import (
	"fmt"
	"os"
	"path/filepath"

	"soundlaw/internal/language"
)

const noManifestMessage = `no soundlaw.toml found in this directory or any parent.
Run "soundlaw init" to scaffold a language project, or point --lang at one.`

// loadManifest resolves the manifest the language commands work against.
// Пустой langFlag означает поиск soundlaw.toml вверх от текущей директории;
// иначе langFlag трактуется как путь к манифесту или к его директории.
func loadManifest(langFlag string) (*language.Manifest, error) {
	if langFlag == "" {
		m, ok, err := language.Discover(".")
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s", noManifestMessage)
		}
		return m, nil
	}

	st, err := os.Stat(langFlag)
	if err != nil {
		return nil, fmt.Errorf("failed to stat --lang path: %w", err)
	}
	if st.IsDir() {
		// Явный путь не должен подниматься выше названной директории.
		path := filepath.Join(langFlag, language.ManifestName)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("no %s in %q", language.ManifestName, langFlag)
		}
		return language.Load(path)
	}
	return language.Load(langFlag)
}
