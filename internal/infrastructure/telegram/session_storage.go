package telegram

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gotd/td/session"
	"github.com/spf13/afero"

	"github.com/Conte777/mediaflow/internal/domain"
)

// MemorySessionStorage keeps the MTProto session of one client in memory.
// It is seeded from and exported to a credential's session token.
type MemorySessionStorage struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemorySessionStorage creates an empty session storage
func NewMemorySessionStorage() *MemorySessionStorage {
	return &MemorySessionStorage{}
}

// NewMemorySessionStorageFromToken restores a storage from a session token
func NewMemorySessionStorageFromToken(token string) (*MemorySessionStorage, error) {
	s := NewMemorySessionStorage()
	if token == "" {
		return s, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("decode session token: %w", err)
	}
	s.data = data
	return s, nil
}

// LoadSession loads session data from memory
func (s *MemorySessionStorage) LoadSession(ctx context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return nil, session.ErrNotFound
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// StoreSession stores session data in memory
func (s *MemorySessionStorage) StoreSession(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make([]byte, len(data))
	copy(s.data, data)
	return nil
}

// Token exports the stored session as a session token, "" when empty
func (s *MemorySessionStorage) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(s.data)
}

// Ensure MemorySessionStorage implements session.Storage interface
var _ session.Storage = (*MemorySessionStorage)(nil)

// FileCredentialStore persists session tokens as
// {dir}/tg_session_{api_id}.session
type FileCredentialStore struct {
	fs  afero.Fs
	dir string
}

// NewFileCredentialStore creates a credential store rooted at dir
func NewFileCredentialStore(fs afero.Fs, dir string) (*FileCredentialStore, error) {
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileCredentialStore{fs: fs, dir: dir}, nil
}

// Path returns the session file path for apiID
func (s *FileCredentialStore) Path(apiID int) string {
	return filepath.Join(s.dir, fmt.Sprintf("tg_session_%d.session", apiID))
}

// Save writes the credential's session token with owner-only permissions
func (s *FileCredentialStore) Save(cred domain.Credential) error {
	if !cred.HasSession() {
		return fmt.Errorf("credential for api_id %d has no session", cred.APIID)
	}

	path := s.Path(cred.APIID)
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, []byte(cred.SessionToken), 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Load reads the session token for apiID
func (s *FileCredentialStore) Load(apiID int, apiHash string) (domain.Credential, error) {
	data, err := afero.ReadFile(s.fs, s.Path(apiID))
	if errors.Is(err, os.ErrNotExist) {
		return domain.Credential{}, domain.ErrNotLoggedIn
	}
	if err != nil {
		return domain.Credential{}, fmt.Errorf("failed to read session file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return domain.Credential{}, domain.ErrNotLoggedIn
	}

	return domain.Credential{APIID: apiID, APIHash: apiHash, SessionToken: token}, nil
}

// Delete removes the session file. Missing files are not an error.
func (s *FileCredentialStore) Delete(apiID int) error {
	if err := s.fs.Remove(s.Path(apiID)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// Exists checks if a session file exists for apiID
func (s *FileCredentialStore) Exists(apiID int) bool {
	ok, err := afero.Exists(s.fs, s.Path(apiID))
	return err == nil && ok
}

// Ensure FileCredentialStore implements domain.CredentialStore interface
var _ domain.CredentialStore = (*FileCredentialStore)(nil)
