package internal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/iksnae/procrastinator/testutil"
)

func TestOpenCredentialStore(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr bool
	}{
		{
			name: "existing database",
			setup: func(t *testing.T) string {
				tmpDir := testutil.CreateTempDir(t)
				dbPath := filepath.Join(tmpDir, "credentials.db")
				testutil.CreateSQLiteFixture(t, dbPath, map[string]string{KeyAccessToken: "tok"})
				return dbPath
			},
		},
		{
			name: "missing parent directory is created",
			setup: func(t *testing.T) string {
				tmpDir := testutil.CreateTempDir(t)
				return filepath.Join(tmpDir, "nested", "dir", "credentials.db")
			},
		},
		{
			name: "in memory",
			setup: func(t *testing.T) string {
				return ":memory:"
			},
		},
		{
			name: "path is a directory",
			setup: func(t *testing.T) string {
				return testutil.CreateTempDir(t)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := OpenCredentialStore(tt.setup(t))
			if (err != nil) != tt.wantErr {
				t.Fatalf("OpenCredentialStore() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer store.Close()

			if _, err := store.Get(context.Background(), KeyUser); err != nil {
				t.Errorf("Get() on fresh store error = %v", err)
			}
		})
	}
}

func TestOpenCredentialStore_ReadsExistingValues(t *testing.T) {
	dbPath := filepath.Join(testutil.CreateTempDir(t), "credentials.db")
	testutil.CreateSQLiteFixture(t, dbPath, map[string]string{
		KeyAccessToken: "access-1",
		KeyUser:        testutil.SampleUserJSON,
	})

	store, err := OpenCredentialStore(dbPath)
	if err != nil {
		t.Fatalf("OpenCredentialStore() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if got, _ := store.Get(ctx, KeyAccessToken); got != "access-1" {
		t.Errorf("Get(access_token) = %q, want %q", got, "access-1")
	}
	user, err := LoadUser(ctx, store)
	if err != nil {
		t.Fatalf("LoadUser() error = %v", err)
	}
	if user == nil || user.Email != "ann@example.com" || user.ID != "1" {
		t.Errorf("LoadUser() = %+v", user)
	}
}

func TestSQLiteStore_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	db := testutil.CreateInMemoryDB(t)
	store, err := NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}

	if got, err := store.Get(ctx, KeyRefreshToken); err != nil || got != "" {
		t.Fatalf("Get() on missing key = %q, %v; want empty, nil", got, err)
	}

	if err := store.Set(ctx, KeyRefreshToken, "r1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set(ctx, KeyRefreshToken, "r2"); err != nil {
		t.Fatalf("Set() overwrite error = %v", err)
	}
	if got, _ := store.Get(ctx, KeyRefreshToken); got != "r2" {
		t.Errorf("Get() = %q, want %q", got, "r2")
	}
	if n := testutil.CountCredentials(t, db); n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}

	if err := store.Set(ctx, KeyAccessToken, "a1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 2 || keys[0] != KeyAccessToken || keys[1] != KeyRefreshToken {
		t.Errorf("Keys() = %v", keys)
	}

	// removing a key that was never set is not an error
	if err := store.MultiRemove(ctx, CredentialKeys...); err != nil {
		t.Fatalf("MultiRemove() error = %v", err)
	}
	if n := testutil.CountCredentials(t, db); n != 0 {
		t.Errorf("rows after MultiRemove = %d, want 0", n)
	}
}

func TestSQLiteStore_CanceledContext(t *testing.T) {
	store, err := NewSQLiteStore(testutil.CreateInMemoryDB(t))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = store.Set(ctx, KeyAccessToken, "a")
	if err == nil {
		t.Fatal("Set() with canceled context succeeded")
	}
	var storageErr *StorageError
	if !errors.As(err, &storageErr) || storageErr.Op != "set" {
		t.Errorf("Set() error = %v, want *StorageError with op set", err)
	}
}
