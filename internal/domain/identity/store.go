package identity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/creachadair/atomicfile"
)

const credentialFileMode = 0o600

// FileStore persists a Credential as JSON on local disk.
// The file is read at most once; afterwards the in-memory copy is authoritative.
type FileStore struct {
	path   string
	mu     sync.Mutex
	cached *Credential
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load returns the stored credential or ErrNoCredential.
func (s *FileStore) Load() (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return s.cached, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoCredential
		}
		return nil, fmt.Errorf("read credential %s: %w", s.path, err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("decode credential %s: %w", s.path, err)
	}

	s.cached = &cred
	return s.cached, nil
}

// Save writes the credential together with its remote identities.
func (s *FileStore) Save(cred *Credential, remoteID string, endpointIDs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred.Identity = remoteID
	if cred.Endpoints == nil {
		cred.Endpoints = make(map[string]string)
	}
	for name, id := range endpointIDs {
		cred.Endpoints[name] = id
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create credential dir: %w", err)
		}
	}

	if _, err := atomicfile.WriteAll(s.path, bytes.NewReader(data), credentialFileMode); err != nil {
		return fmt.Errorf("write credential %s: %w", s.path, err)
	}

	s.cached = cred
	return nil
}
