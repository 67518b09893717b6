package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/muurk/blegw/internal/gwcfg"
	"github.com/muurk/blegw/internal/logging"
)

// ErrNotFound is returned by Read when the key does not exist.
var ErrNotFound = errors.New("storage: key not found")

// MaxKeyLen is the longest accepted key.
const MaxKeyLen = 15

const defaultLockTimeout = time.Second

// Store is a bbolt file holding one bucket per namespace. The database is
// opened for the duration of each call only; no handle is kept between calls.
type Store struct {
	path    string
	timeout time.Duration

	// mu serialises sessions inside this process. bbolt's file lock does the
	// same across processes.
	mu sync.RWMutex
}

// Open prepares the database file at path, creating it and its directory
// when missing.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, gwcfg.NewStorageError("open", path, err)
	}
	s := &Store{path: path, timeout: defaultLockTimeout}
	if err := s.update(func(*bolt.Tx) error { return nil }); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Namespace returns a handle on one bucket of the store.
func (s *Store) Namespace(name string) *Namespace {
	return &Namespace{store: s, name: name}
}

func (s *Store) view(fn func(*bolt.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: s.timeout, ReadOnly: true})
	if err != nil {
		return gwcfg.NewStorageError("open", s.path, err)
	}
	defer db.Close()
	return db.View(fn)
}

func (s *Store) update(fn func(*bolt.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: s.timeout})
	if err != nil {
		return gwcfg.NewStorageError("open", s.path, err)
	}
	defer db.Close()
	return db.Update(fn)
}

// Namespace is a flat key to bytes association.
type Namespace struct {
	store *Store
	name  string
}

// Name returns the namespace name.
func (n *Namespace) Name() string {
	return n.name
}

func (n *Namespace) bucket() []byte {
	return []byte(n.name)
}

// Init creates the namespace if it does not exist.
func (n *Namespace) Init() error {
	err := n.store.update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(n.bucket())
		return err
	})
	logging.LogStorageEvent(n.name, "init", "", err)
	if err != nil {
		return wrap("init", "", err)
	}
	return nil
}

// Ready reports whether the namespace can be opened.
func (n *Namespace) Ready() bool {
	err := n.store.view(func(tx *bolt.Tx) error {
		if tx.Bucket(n.bucket()) == nil {
			return ErrNotFound
		}
		return nil
	})
	return err == nil
}

// Check reports whether key exists.
func (n *Namespace) Check(key string) bool {
	found := false
	err := n.store.view(func(tx *bolt.Tx) error {
		if b := tx.Bucket(n.bucket()); b != nil {
			found = b.Get([]byte(key)) != nil
		}
		return nil
	})
	if err != nil {
		logging.LogStorageEvent(n.name, "check", key, err)
		return false
	}
	return found
}

// Read returns a copy of the value stored under key, or ErrNotFound.
func (n *Namespace) Read(key string) ([]byte, error) {
	var out []byte
	err := n.store.view(func(tx *bolt.Tx) error {
		b := tx.Bucket(n.bucket())
		if b == nil {
			return ErrNotFound
		}
		v := b.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		logging.LogStorageEvent(n.name, "read", key, nil)
		return nil, ErrNotFound
	}
	logging.LogStorageEvent(n.name, "read", key, err)
	if err != nil {
		return nil, wrap("read", key, err)
	}
	return out, nil
}

// Write stores value under key, creating the namespace if needed.
func (n *Namespace) Write(key string, value []byte) error {
	if len(key) == 0 || len(key) > MaxKeyLen {
		return gwcfg.NewValidationError(fmt.Sprintf("storage key %q must be 1-%d characters", key, MaxKeyLen))
	}
	err := n.store.update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(n.bucket())
		if err != nil {
			return err
		}
		return b.Put([]byte(key), value)
	})
	logging.LogStorageEvent(n.name, "write", key, err)
	if err != nil {
		return wrap("write", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (n *Namespace) Delete(key string) error {
	err := n.store.update(func(tx *bolt.Tx) error {
		b := tx.Bucket(n.bucket())
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
	logging.LogStorageEvent(n.name, "delete", key, err)
	if err != nil {
		return wrap("delete", key, err)
	}
	return nil
}

// Keys lists the stored keys in order.
func (n *Namespace) Keys() ([]string, error) {
	var keys []string
	err := n.store.view(func(tx *bolt.Tx) error {
		b := tx.Bucket(n.bucket())
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, wrap("list", "", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Erase removes every key in the namespace and recreates it empty.
func (n *Namespace) Erase() error {
	err := n.store.update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(n.bucket()); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(n.bucket())
		return err
	})
	logging.LogStorageEvent(n.name, "erase", "", err)
	if err != nil {
		return wrap("erase", "", err)
	}
	return nil
}

// DeinitEraseReinit performs a factory reset of the namespace that keeps the
// installed default profile. The profile is read before anything is erased
// and written back afterwards.
func (n *Namespace) DeinitEraseReinit() error {
	saved, err := n.Read(KeyDefaultConfig)
	hasDefault := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if err := n.Erase(); err != nil {
		return err
	}
	if err := n.Init(); err != nil {
		return err
	}
	if !hasDefault {
		return nil
	}
	return n.Write(KeyDefaultConfig, saved)
}

func wrap(op, key string, err error) error {
	var cfgErr *gwcfg.ConfigError
	if errors.As(err, &cfgErr) {
		return err
	}
	return gwcfg.NewStorageError(op, key, err)
}
