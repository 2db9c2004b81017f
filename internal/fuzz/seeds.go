package fuzztests

import (
	"bytes"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB — ограничение для тестового корпуса
)

func addCorpusSeeds(f *testing.F) {
	addNotationSeeds(f)
	addTestdataSeeds(f)
}

// addNotationSeeds covers every construct of the rule grammar, so fuzzing
// starts from inputs that reach deep into the parser.
func addNotationSeeds(f *testing.F) {
	for _, s := range []string{
		"",
		"p -> b",
		"p -> b / a_a",
		"t -> d / V_V",
		"h -> 0 / _#",
		"0 -> j / i_a",
		"[plosive] -> ʔ / _#",
		"[voiced,plosive] -> 0 / V_",
		"{p,t,k} -> {b,d,g} / #_",
		"p -> b / a(n)_#",
		"tʰ -> t / !{i,u}_",
		"ã -> a // tail comment",
	} {
		f.Add([]byte(s))
	}
}

// addTestdataSeeds добавляет каждую строку *.law файлов из testdata.
func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != ".law" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		for _, line := range bytes.Split(src, []byte{'\n'}) {
			if strings.TrimSpace(string(line)) == "" {
				continue
			}
			f.Add(clampSeed(line))
		}
		return nil
	})
	if err != nil {
		return
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
