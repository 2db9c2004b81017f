package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"soundlaw/internal/rule"
	"soundlaw/internal/translit"
)

// Current schema version - increment when rulePayload format changes
const cacheSchemaVersion uint16 = 1

// appCacheDir is the subdirectory under the user cache base.
const appCacheDir = "soundlaw"

// RuleCache хранит скомпилированные карты замен на диске между запусками,
// с памятной прослойкой на время процесса. Ключ связывает дайджест
// каталога и текст правила, так что смена инвентаря инвалидирует записи
// сама собой. Nil-приёмник выключает кэширование. Thread-safe for
// concurrent access.
type RuleCache struct {
	mu  sync.RWMutex
	dir string
	mem map[[32]byte]*rule.Compiled
}

// rulePayload stores the compiled form of one rule: the expanded segments
// and the ordered before/after pairs. Spans and diagnostics are not cached.
type rulePayload struct {
	Schema uint16

	Targets      []string
	Replacements []string
	Environments []string

	// Упорядоченные пары замен; порядок несёт смысл.
	Befores []string
	Afters  []string
}

// OpenRuleCache initializes the cache at the standard location:
// $XDG_CACHE_HOME/soundlaw, falling back to ~/.cache/soundlaw.
func OpenRuleCache() (*RuleCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, appCacheDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &RuleCache{dir: dir, mem: make(map[[32]byte]*rule.Compiled)}, nil
}

// Dir returns the cache directory, empty for a disabled cache.
func (c *RuleCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// CacheKey identifies one compiled rule: catalog digest, rule text and the
// payload schema version.
func CacheKey(catalogDigest [32]byte, ruleText string) [32]byte {
	h := sha256.New()
	h.Write(catalogDigest[:])
	h.Write([]byte{0})
	h.Write([]byte(ruleText))
	h.Write([]byte{0})
	var v [2]byte
	binary.BigEndian.PutUint16(v[:], cacheSchemaVersion)
	h.Write(v[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (c *RuleCache) pathFor(key [32]byte) string {
	// Для удобства читаемости/очистки — подкаталог "rules".
	return filepath.Join(c.dir, "rules", hex.EncodeToString(key[:])+".mp")
}

// Put stores a compiled form under key, in memory and on disk.
func (c *RuleCache) Put(key [32]byte, compiled *rule.Compiled) error {
	if c == nil || compiled == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// Скомпилированная форма после сборки не меняется, делиться ей можно.
	c.mem[key] = compiled

	pairs := compiled.Changes.Pairs()
	payload := rulePayload{
		Schema:       cacheSchemaVersion,
		Targets:      compiled.Targets,
		Replacements: compiled.Replacements,
		Environments: compiled.Environments,
		Befores:      make([]string, len(pairs)),
		Afters:       make([]string, len(pairs)),
	}
	for i, p := range pairs {
		payload.Befores[i] = p.From
		payload.Afters[i] = p.To
	}

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get restores a compiled form, looking in memory before the disk. A miss
// (no entry, stale schema) returns (nil, false, nil); a broken entry
// surfaces as an error so the caller can recompile and report.
func (c *RuleCache) Get(key [32]byte, catalogDigest [32]byte) (*rule.Compiled, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	if hit, ok := c.mem[key]; ok {
		c.mu.RUnlock()
		return hit, true, nil
	}
	compiled, ok, err := c.load(key, catalogDigest)
	c.mu.RUnlock()
	if err != nil || !ok {
		return nil, false, err
	}

	c.mu.Lock()
	c.mem[key] = compiled
	c.mu.Unlock()
	return compiled, true, nil
}

// load reads one entry from disk. Caller holds at least the read lock.
func (c *RuleCache) load(key [32]byte, catalogDigest [32]byte) (*rule.Compiled, bool, error) {
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() { _ = f.Close() }()

	var payload rulePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != cacheSchemaVersion || len(payload.Befores) != len(payload.Afters) {
		return nil, false, nil
	}

	pairs := make([]translit.Pair, len(payload.Befores))
	for i := range payload.Befores {
		pairs[i] = translit.Pair{From: payload.Befores[i], To: payload.Afters[i]}
	}
	changes := rule.ChangeMapFromPairs(pairs)
	return &rule.Compiled{
		Targets:       payload.Targets,
		Replacements:  payload.Replacements,
		Environments:  payload.Environments,
		Changes:       changes,
		Translit:      translit.FromPairs(changes.Pairs()),
		CatalogDigest: catalogDigest,
	}, true, nil
}

// DropAll removes every cached entry; the clean command calls this.
func (c *RuleCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem = make(map[[32]byte]*rule.Compiled)

	// тривиально: переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
