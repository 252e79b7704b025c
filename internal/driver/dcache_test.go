package driver

import (
	"path/filepath"
	"testing"
)

// TestCachedRunSourceServesCompiledModuleFromDisk exercises the disk cache
// end to end: a cold run compiles and populates the cache, a second run
// against identical content must be served from the cache without
// recompiling into a distinct Module value... the observable contract is
// simply that both calls report the same bytecode shape.
func TestCachedRunSourceServesCompiledModuleFromDisk(t *testing.T) {
	dir := t.TempDir()
	cache := &DiskCache{dir: filepath.Join(dir, "cache")}

	src := []byte("var a = 10;")
	first := CachedRunSource(cache, "s1.luma", src, 0)
	if first.Bag.HasErrors() || first.Module == nil {
		t.Fatalf("expected a cold compile to succeed, got bag=%v", first.Bag.Items())
	}

	second := CachedRunSource(cache, "s1.luma", src, 0)
	if second.Bag.HasErrors() || second.Module == nil {
		t.Fatalf("expected a cache hit to still report a module")
	}
	if len(second.Module.Top.Code) != len(first.Module.Top.Code) {
		t.Errorf("cached module's top chunk length diverged from the cold compile")
	}
}

// TestCachedRunSourceDoesNotCacheFailures confirms a unit whose pipeline
// run leaves errors in the bag is not served back on a later call as if it
// had succeeded.
func TestCachedRunSourceDoesNotCacheFailures(t *testing.T) {
	dir := t.TempDir()
	cache := &DiskCache{dir: filepath.Join(dir, "cache")}

	src := []byte("var y = z;")
	first := CachedRunSource(cache, "s6.luma", src, 0)
	if !first.Bag.HasErrors() || first.Module != nil {
		t.Fatalf("expected the cold run to fail with no module")
	}

	second := CachedRunSource(cache, "s6.luma", src, 0)
	if !second.Bag.HasErrors() || second.Module != nil {
		t.Fatalf("expected the second run to fail identically, not serve a stale success")
	}
}
