// Package gitstore provides a Git plumbing-based implementation of domain.KeyValueStore.
package gitstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"gopkg.in/yaml.v3"

	"github.com/runoshun/todo/internal/domain"
	"github.com/runoshun/todo/internal/infra/crypto"
)

// FormatVersion is written to the meta blob.
const FormatVersion = 1

// ErrEncryptionMismatch is returned by Open when the stored values were written
// with a different encryption setting than the one configured.
var ErrEncryptionMismatch = errors.New("store encryption does not match configuration")

// Ensure Store implements domain.KeyValueStore.
var _ domain.KeyValueStore = (*Store)(nil)

// Store implements domain.KeyValueStore using Git plumbing (refs and blobs).
//
// Data structure:
//
//	refs/<namespace>/
//	  meta      → blob (format version, last update, YAML)
//	  kv/
//	    <key>   → blob (value, AES-GCM sealed when an encryptor is set)
//
// Moving a ref is atomic, so readers see either the old or the new value.
type Store struct {
	repo      *git.Repository
	encryptor *crypto.Encryptor
	logger    domain.Logger
	now       func() time.Time
	namespace string // e.g., "todo"
	mu        sync.RWMutex
}

// Meta is the YAML document stored under refs/<namespace>/meta.
type Meta struct {
	Updated   time.Time `yaml:"updated"`
	Version   int       `yaml:"version"`
	Keys      int       `yaml:"keys"`
	Encrypted bool      `yaml:"encrypted"`
}

// Open opens the repository at path, initializing a bare repository if none exists.
// If encryptionKey is non-empty, values are encrypted before they are written.
// A namespace that already holds values written with the other encryption
// setting is refused with ErrEncryptionMismatch.
func Open(path, namespace, encryptionKey string, logger domain.Logger) (*Store, error) {
	var encryptor *crypto.Encryptor
	if encryptionKey != "" {
		var err error
		encryptor, err = crypto.NewEncryptor(encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("create encryptor: %w", err)
		}
	}

	repo, err := git.PlainOpen(path)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(path, true)
	}
	if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}

	store := NewWithRepoAndEncryptor(repo, namespace, encryptor)
	if logger != nil {
		store.logger = logger
	}
	meta, err := store.Meta()
	if err != nil {
		return nil, err
	}
	if meta.Keys > 0 && meta.Encrypted != (encryptor != nil) {
		return nil, fmt.Errorf("%w: stored values encrypted=%t", ErrEncryptionMismatch, meta.Encrypted)
	}
	return store, nil
}

// NewWithRepo creates a new Store with an existing repository instance.
func NewWithRepo(repo *git.Repository, namespace string) *Store {
	return NewWithRepoAndEncryptor(repo, namespace, nil)
}

// NewWithRepoAndEncryptor creates a new Store with an existing repository and encryptor.
func NewWithRepoAndEncryptor(repo *git.Repository, namespace string, encryptor *crypto.Encryptor) *Store {
	if namespace == "" {
		namespace = domain.DefaultNamespace
	}
	return &Store{
		repo:      repo,
		encryptor: encryptor,
		logger:    domain.NopLogger{},
		namespace: namespace,
		now:       time.Now,
	}
}

// refPrefix returns the ref prefix for this namespace.
func (s *Store) refPrefix() string {
	return "refs/" + s.namespace + "/"
}

// keyRef returns the ref name for a key.
func (s *Store) keyRef(key string) plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "kv/" + key)
}

// metaRef returns the ref name for metadata.
func (s *Store) metaRef() plumbing.ReferenceName {
	return plumbing.ReferenceName(s.refPrefix() + "meta")
}

// Get returns the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, err := s.repo.Reference(s.keyRef(key), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, fmt.Errorf("get ref: %w", err)
	}

	data, err := s.readBlob(ref.Hash())
	if err != nil {
		return nil, err
	}
	if s.encryptor != nil {
		plain, err := s.encryptor.Decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("decrypt %s: %w", key, err)
		}
		return plain, nil
	}
	return data, nil
}

// Set stores value under key by writing a blob and moving the key's ref to it.
// The value is stored once the ref moves; a failed meta update is only logged.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encryptor != nil {
		value = s.encryptor.Encrypt(value)
	}
	hash, err := s.writeBlob(value)
	if err != nil {
		return err
	}

	ref := plumbing.NewHashReference(s.keyRef(key), hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("set ref: %w", err)
	}

	if err := s.saveMeta(); err != nil {
		s.logger.Warn(0, "store", fmt.Sprintf("update meta after writing %s: %v", key, err))
	}
	return nil
}

// Close is a no-op; the repository holds no open handles between calls.
func (s *Store) Close() error {
	return nil
}

// Meta returns the stored metadata.
func (s *Store) Meta() (*Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, err := s.repo.Reference(s.metaRef(), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return &Meta{Version: FormatVersion}, nil
		}
		return nil, fmt.Errorf("get meta ref: %w", err)
	}

	data, err := s.readBlob(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("read meta: %w", err)
	}

	var m Meta
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode meta: %w", err)
	}
	return &m, nil
}

// saveMeta rewrites the meta blob. Caller must hold the write lock.
func (s *Store) saveMeta() error {
	m := Meta{
		Version:   FormatVersion,
		Updated:   s.now().UTC().Truncate(time.Second),
		Keys:      s.countKeys(),
		Encrypted: s.encryptor != nil,
	}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	hash, err := s.writeBlob(data)
	if err != nil {
		return err
	}

	ref := plumbing.NewHashReference(s.metaRef(), hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return fmt.Errorf("set meta ref: %w", err)
	}
	return nil
}

// countKeys counts the key refs in this namespace.
func (s *Store) countKeys() int {
	iter, err := s.repo.References()
	if err != nil {
		return 0
	}
	prefix := s.refPrefix() + "kv/"
	n := 0
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		if strings.HasPrefix(ref.Name().String(), prefix) {
			n++
		}
		return nil
	})
	return n
}

// writeBlob writes data to a blob and returns the hash.
func (s *Store) writeBlob(data []byte) (plumbing.Hash, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create blob writer: %w", err)
	}

	if _, writeErr := writer.Write(data); writeErr != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", writeErr)
	}
	_ = writer.Close()

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}

	return hash, nil
}

// readBlob reads a blob's full content.
func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}

	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob data: %w", err)
	}
	return data, nil
}

// validateKey rejects keys that cannot be part of a ref name.
func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") ||
		strings.Contains(key, "..") || strings.ContainsAny(key, " ~^:?*[\\\t\n") {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}
