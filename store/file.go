package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jonwraymond/routeops/observe"
)

// namespace is the fixed directory name keeping cache files apart from
// unrelated data in the base directory.
const namespace = "routeops-cache"

// fileEntry is the on-disk layout. The original key is stored alongside the
// entry because file names are hashes.
type fileEntry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// FileStore persists entries as one JSON file per key under a namespaced
// directory. It is the durable counterpart of MemoryStore. Every operation,
// Clear included, is scoped to the store's own namespace directory; stores
// with different namespaces over the same base directory are fully isolated.
//
// When the directory cannot be created or written, the store degrades to a
// no-op: reads report absent, writes are skipped and logged. Corrupt or
// foreign files under the namespace read as absent.
type FileStore struct {
	mu        sync.RWMutex
	dir       string
	available bool
	logger    observe.Logger
}

// NewFileStore creates a file-backed store. Construction never fails;
// an unusable directory produces a degraded store.
func NewFileStore(opts Options) *FileStore {
	logger := opts.Logger
	if logger == nil {
		logger = observe.NopLogger()
	}

	base := opts.Dir
	if base == "" {
		var err error
		base, err = os.UserCacheDir()
		if err != nil {
			logger.Warn(context.Background(), "cache directory unavailable, file store disabled",
				observe.Field{Key: "error", Value: err.Error()})
			return &FileStore{logger: logger}
		}
	}

	dir := filepath.Join(base, namespace)
	if opts.Namespace != "" {
		dir = filepath.Join(dir, namespaceDir(opts.Namespace))
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		logger.Warn(context.Background(), "cache directory unavailable, file store disabled",
			observe.Field{Key: "dir", Value: dir},
			observe.Field{Key: "error", Value: err.Error()})
		return &FileStore{dir: dir, logger: logger}
	}

	return &FileStore{dir: dir, available: true, logger: logger}
}

// Available reports whether the persistent substrate is usable. A degraded
// store answers every operation as a no-op.
func (s *FileStore) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.available
}

// Get retrieves an entry. Absent, corrupt, and foreign files all report
// (zero, false); Get never fails.
func (s *FileStore) Get(_ context.Context, key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.available {
		return Entry{}, false
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return Entry{}, false
	}

	entry, ok := decodeFileEntry(data)
	if !ok || entry.Key != key || entry.Timestamp.IsZero() {
		// Parse failure or a foreign file squatting on this hash.
		return Entry{}, false
	}
	return Entry{Data: entry.Data, Timestamp: entry.Timestamp}, true
}

// Set writes an entry atomically (temp file + rename). Write failures, such
// as an exhausted disk, are logged and swallowed: persistence is best
// effort and must never fail a request.
func (s *FileStore) Set(ctx context.Context, key string, e Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.available {
		return nil
	}

	data, err := json.Marshal(fromEntry(key, e))
	if err != nil {
		s.logger.Error(ctx, "cache entry not serializable",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()})
		return nil
	}

	path := s.path(key)
	tmp := fmt.Sprintf("%s.tmp.%d", path, rand.Int())
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		s.logger.Error(ctx, "cache write failed",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()})
		return nil
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		s.logger.Error(ctx, "cache write failed",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()})
	}
	return nil
}

// Delete removes an entry. Idempotent - no error on miss.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.available {
		return nil
	}

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error(ctx, "cache delete failed",
			observe.Field{Key: "key", Value: key},
			observe.Field{Key: "error", Value: err.Error()})
	}
	return nil
}

// Clear removes the namespace directory and recreates it empty. Only this
// store's namespace is touched, never the surrounding base directory.
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.available {
		return nil
	}

	if err := os.RemoveAll(s.dir); err != nil {
		s.logger.Error(ctx, "cache clear failed",
			observe.Field{Key: "error", Value: err.Error()})
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.available = false
		s.logger.Warn(ctx, "cache directory unavailable, file store disabled",
			observe.Field{Key: "error", Value: err.Error()})
	}
	return nil
}

// ForEach visits every parseable entry under the namespace. Corrupt and
// foreign files are skipped. Entries written by other processes after
// construction are visited like any other. The snapshot is taken under the
// read lock and fn runs after release, so fn may safely call back into the
// store.
func (s *FileStore) ForEach(_ context.Context, fn func(key string, e Entry)) error {
	type visit struct {
		key string
		e   Entry
	}

	s.mu.RLock()
	if !s.available {
		s.mu.RUnlock()
		return nil
	}
	files, err := os.ReadDir(s.dir)
	if err != nil {
		s.mu.RUnlock()
		return nil
	}
	var snapshot []visit
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, f.Name()))
		if err != nil {
			continue
		}
		entry, ok := decodeFileEntry(data)
		if !ok || entry.Key == "" || entry.Timestamp.IsZero() {
			continue
		}
		snapshot = append(snapshot, visit{key: entry.Key, e: Entry{Data: entry.Data, Timestamp: entry.Timestamp}})
	}
	s.mu.RUnlock()

	for _, v := range snapshot {
		fn(v.key, v.e)
	}
	return nil
}

// path maps a key to its file. Names are content hashes of the key, so any
// key is a safe file name and two keys never share a file.
func (s *FileStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}

// namespaceDir maps a namespace to a directory name. Clean names are kept
// as-is so the cache stays inspectable; a name that needed sanitizing gets a
// short hash suffix so two distinct raw names can never fold into the same
// directory.
func namespaceDir(name string) string {
	safe := make([]byte, 0, len(name))
	changed := name == "." || name == ".."
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.':
			safe = append(safe, c)
		default:
			safe = append(safe, '-')
			changed = true
		}
	}
	if !changed {
		return string(safe)
	}
	sum := sha256.Sum256([]byte(name))
	return string(safe) + "-" + hex.EncodeToString(sum[:4])
}

func decodeFileEntry(data []byte) (fileEntry, bool) {
	var fe fileEntry
	if err := json.Unmarshal(data, &fe); err != nil {
		return fileEntry{}, false
	}
	return fe, true
}

func fromEntry(key string, e Entry) fileEntry {
	return fileEntry{Key: key, Data: e.Data, Timestamp: e.Timestamp.UTC()}
}

// Ensure FileStore implements Store
var _ Store = (*FileStore)(nil)
