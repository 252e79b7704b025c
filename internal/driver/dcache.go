package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"surge/internal/codegen"
	"surge/internal/diag"
)

// diskCacheSchemaVersion is bumped whenever DiskPayload's shape changes.
const diskCacheSchemaVersion uint16 = 2

// Digest is a content hash used as a disk cache key. Luma has no import
// graph to fold into a ModuleHash the way the teacher's project.Digest
// did (SPEC_FULL.md §3: single-file units) - a unit's own SHA-256 is the
// whole key.
type Digest [sha256.Size]byte

// HashSource computes the cache key for one unit's raw bytes.
func HashSource(content []byte) Digest {
	return sha256.Sum256(content)
}

// DiskCache persists compiled bytecode modules keyed by source digest,
// adapted from the teacher's module-metadata cache (dcache.go) down to
// Luma's single-file scope: no ImportPaths/FileHashes/DependencyHash,
// since there is no dependency graph to invalidate against. Thread-safe
// for concurrent access, matching the teacher's RWMutex-guarded design.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload stores one unit's cached compile result.
type DiskPayload struct {
	Schema      uint16
	Path        string
	ContentHash Digest
	Broken      bool // whether the run left errors in the diagnostic bag
	Module      *codegen.Module
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "units", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache, via a temp file
// plus atomic rename so a crash mid-write never leaves a corrupt entry.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err = os.Remove(f.Name()); err != nil {
			fmt.Printf("failed to remove temp file: %v", err)
		}
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			panic(closeErr)
		}
	}()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after a schema change.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// resultToDiskPayload converts a pipeline Result to a cacheable payload.
// Returns nil if the result has no compiled module to cache.
func resultToDiskPayload(path string, content []byte, res Result) *DiskPayload {
	if res.Module == nil {
		return nil
	}
	return &DiskPayload{
		Schema:      diskCacheSchemaVersion,
		Path:        path,
		ContentHash: HashSource(content),
		Broken:      res.Bag.HasErrors(),
		Module:      res.Module,
	}
}

// CachedRunSource runs the full pipeline over one unit, serving a disk-cached
// bytecode module instead of recompiling when the unit's content hash is
// already present, and writing the result back to cache on a cold run. cache
// may be nil, in which case this degrades to a plain RunSource call.
func CachedRunSource(cache *DiskCache, path string, content []byte, maxErrors uint) Result {
	key := HashSource(content)
	if cache != nil {
		var payload DiskPayload
		if hit, err := cache.Get(key, &payload); err == nil && hit && !payload.Broken {
			return Result{Path: path, Bag: diag.NewBag(0), Module: payload.Module}
		}
	}

	res := RunSource(path, content, maxErrors)
	if cache != nil {
		if payload := resultToDiskPayload(path, content, res); payload != nil {
			_ = cache.Put(key, payload)
		}
	}
	return res
}
