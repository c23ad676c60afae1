package internal

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keys under which credentials are persisted
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// CredentialKeys lists every persisted credential key.
var CredentialKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// CredentialStore persists string values under fixed keys.
// Get returns "" for a key that is not stored.
type CredentialStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	MultiRemove(ctx context.Context, keys ...string) error
}

// LoadUser reads the stored user. It returns nil, nil when no user is stored.
func LoadUser(ctx context.Context, store CredentialStore) (*User, error) {
	raw, err := store.Get(ctx, KeyUser)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("failed to parse stored user: %w", err)
	}
	return &user, nil
}

// SaveUser serializes user as JSON under KeyUser.
func SaveUser(ctx context.Context, store CredentialStore, user *User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	return store.Set(ctx, KeyUser, string(data))
}

// SaveCredentials persists a login or registration outcome. The user is
// written before the access token so an interrupted write never leaves a
// token without its user. Empty refresh tokens and nil users are skipped.
func SaveCredentials(ctx context.Context, store CredentialStore, tokens TokenPair, user *User) error {
	if user != nil {
		if err := SaveUser(ctx, store, user); err != nil {
			return err
		}
	}
	if err := store.Set(ctx, KeyAccessToken, tokens.AccessToken); err != nil {
		return err
	}
	if tokens.RefreshToken != "" {
		if err := store.Set(ctx, KeyRefreshToken, tokens.RefreshToken); err != nil {
			return err
		}
	}
	return nil
}

// ClearCredentials removes every credential key.
func ClearCredentials(ctx context.Context, store CredentialStore) error {
	return store.MultiRemove(ctx, CredentialKeys...)
}
