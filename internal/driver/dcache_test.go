package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"soundlaw/internal/rule"
)

func compiledFixture(t *testing.T) *rule.Compiled {
	t.Helper()
	r, err := rule.NewBound("p -> b / a_a", testCatalog(t), rule.Options{})
	if err != nil {
		t.Fatalf("NewBound: %v", err)
	}
	c, err := r.Compiled()
	if err != nil {
		t.Fatalf("Compiled: %v", err)
	}
	return c
}

func TestCacheKey(t *testing.T) {
	var d1, d2 [32]byte
	d2[0] = 1

	k1 := CacheKey(d1, "p -> b / a_a")
	if k1 != CacheKey(d1, "p -> b / a_a") {
		t.Fatal("key is not deterministic")
	}
	if k1 == CacheKey(d2, "p -> b / a_a") {
		t.Fatal("different catalogs must give different keys")
	}
	if k1 == CacheKey(d1, "p -> b / a_p") {
		t.Fatal("different rule text must give different keys")
	}
}

func TestRuleCachePutGet(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cache, err := OpenRuleCache()
	if err != nil {
		t.Fatalf("OpenRuleCache: %v", err)
	}
	if cache.Dir() == "" {
		t.Fatal("cache dir is empty")
	}

	src := compiledFixture(t)
	key := CacheKey(src.CatalogDigest, "p -> b / a_a")
	if err := cache.Put(key, src); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Новый экземпляр, чтобы чтение шло с диска, не из памяти.
	reopened, err := OpenRuleCache()
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok, err := reopened.Get(key, src.CatalogDigest)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}

	if len(got.Targets) != len(src.Targets) {
		t.Fatalf("targets = %v, want %v", got.Targets, src.Targets)
	}
	wantPairs := src.Changes.Pairs()
	gotPairs := got.Changes.Pairs()
	if len(gotPairs) != len(wantPairs) {
		t.Fatalf("pairs = %v, want %v", gotPairs, wantPairs)
	}
	for i := range wantPairs {
		if gotPairs[i] != wantPairs[i] {
			t.Fatalf("pair %d = %v, want %v", i, gotPairs[i], wantPairs[i])
		}
	}
	if out := got.Translit.Forward("#apa#"); out != "#aba#" {
		t.Fatalf("restored translit: %q", out)
	}
	if got.CatalogDigest != src.CatalogDigest {
		t.Fatal("digest not carried over")
	}
}

func TestRuleCacheGetMiss(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cache, err := OpenRuleCache()
	if err != nil {
		t.Fatalf("OpenRuleCache: %v", err)
	}
	var key, digest [32]byte
	if _, ok, err := cache.Get(key, digest); ok || err != nil {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}
}

func TestRuleCacheStaleSchema(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cache, err := OpenRuleCache()
	if err != nil {
		t.Fatalf("OpenRuleCache: %v", err)
	}

	var key, digest [32]byte
	key[0] = 7
	path := cache.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data, err := msgpack.Marshal(&rulePayload{Schema: cacheSchemaVersion + 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	// Устаревшая схема читается как промах, не как поломка.
	if _, ok, err := cache.Get(key, digest); ok || err != nil {
		t.Fatalf("stale schema: ok=%v err=%v", ok, err)
	}
}

func TestRuleCacheCorruptEntry(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cache, err := OpenRuleCache()
	if err != nil {
		t.Fatalf("OpenRuleCache: %v", err)
	}

	var key, digest [32]byte
	path := cache.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("garbage"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, ok, err := cache.Get(key, digest); ok || err == nil {
		t.Fatalf("corrupt entry: ok=%v err=%v", ok, err)
	}
}

func TestRuleCacheMemoryLayer(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cache, err := OpenRuleCache()
	if err != nil {
		t.Fatalf("OpenRuleCache: %v", err)
	}

	src := compiledFixture(t)
	key := CacheKey(src.CatalogDigest, "p -> b / a_a")
	if err := cache.Put(key, src); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Диск пропал, запись осталась в памяти процесса.
	if err := os.RemoveAll(cache.Dir()); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, ok, err := cache.Get(key, src.CatalogDigest)
	if err != nil || !ok {
		t.Fatalf("memory hit: ok=%v err=%v", ok, err)
	}
	if got != src {
		t.Fatal("memory layer should return the shared compiled form")
	}
}

func TestRuleCacheDropAll(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	cache, err := OpenRuleCache()
	if err != nil {
		t.Fatalf("OpenRuleCache: %v", err)
	}

	src := compiledFixture(t)
	key := CacheKey(src.CatalogDigest, "p -> b / a_a")
	if err := cache.Put(key, src); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, err := cache.Get(key, src.CatalogDigest); ok || err != nil {
		t.Fatalf("after DropAll: ok=%v err=%v", ok, err)
	}
	// Повторный сброс ничего не находит и не падает.
	if err := cache.DropAll(); err != nil {
		t.Fatalf("second DropAll: %v", err)
	}
}

func TestRuleCacheNil(t *testing.T) {
	var cache *RuleCache

	if cache.Dir() != "" {
		t.Fatal("nil cache has no dir")
	}
	var key, digest [32]byte
	if _, ok, err := cache.Get(key, digest); ok || err != nil {
		t.Fatalf("nil Get: ok=%v err=%v", ok, err)
	}
	if err := cache.Put(key, compiledFixture(t)); err != nil {
		t.Fatalf("nil Put: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("nil DropAll: %v", err)
	}
}
