package telegram

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/gotd/td/session"
	"github.com/spf13/afero"

	"github.com/Conte777/mediaflow/internal/domain"
)

func TestMemorySessionStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := NewMemorySessionStorage()

	if _, err := storage.LoadSession(ctx); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Expected session.ErrNotFound, got: %v", err)
	}
	if token := storage.Token(); token != "" {
		t.Errorf("Expected empty token, got: %q", token)
	}

	if err := storage.StoreSession(ctx, []byte(`{"Version":1}`)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	restored, err := NewMemorySessionStorageFromToken(storage.Token())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	data, err := restored.LoadSession(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if string(data) != `{"Version":1}` {
		t.Errorf("Expected restored session data, got: %s", data)
	}
}

func TestMemorySessionStorage_InvalidToken(t *testing.T) {
	if _, err := NewMemorySessionStorageFromToken("not base64!"); err == nil {
		t.Errorf("Expected error for invalid token")
	}
}

func TestFileCredentialStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewFileCredentialStore(fs, "/data")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if store.Exists(1) {
		t.Errorf("Expected no session before save")
	}
	if _, err := store.Load(1, "hash"); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Errorf("Expected ErrNotLoggedIn, got: %v", err)
	}

	cred := domain.Credential{APIID: 1, APIHash: "hash", SessionToken: "dG9rZW4="}
	if err := store.Save(cred); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if store.Path(1) != "/data/tg_session_1.session" {
		t.Errorf("Unexpected session path: %s", store.Path(1))
	}
	info, err := fs.Stat(store.Path(1))
	if err != nil {
		t.Fatalf("Expected session file, got: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected 0600 permissions, got: %v", info.Mode().Perm())
	}
	if ok, _ := afero.Exists(fs, store.Path(1)+".tmp"); ok {
		t.Errorf("Expected temporary file to be renamed")
	}

	loaded, err := store.Load(1, "hash")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if loaded != cred {
		t.Errorf("Expected %v, got: %v", cred, loaded)
	}

	if err := store.Delete(1); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if store.Exists(1) {
		t.Errorf("Expected session to be deleted")
	}
	if err := store.Delete(1); err != nil {
		t.Errorf("Expected deleting a missing session to succeed, got: %v", err)
	}
}

func TestFileCredentialStore_RejectsEmptySession(t *testing.T) {
	store, err := NewFileCredentialStore(afero.NewMemMapFs(), "/data")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if err := store.Save(domain.Credential{APIID: 1}); err == nil {
		t.Errorf("Expected error for credential without session")
	}
	if store.Exists(1) {
		t.Errorf("Expected no session file")
	}
}

func TestFileCredentialStore_BlankFileMeansLoggedOut(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := NewFileCredentialStore(fs, "/data")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := afero.WriteFile(fs, store.Path(2), []byte("\n"), os.FileMode(0o600)); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if _, err := store.Load(2, "hash"); !errors.Is(err, domain.ErrNotLoggedIn) {
		t.Errorf("Expected ErrNotLoggedIn, got: %v", err)
	}
}
