package internal

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo summarizes the stored tokens
type TokenInfo struct {
	HasAccessToken    bool
	HasRefreshToken   bool
	AccessTokenExpiry *time.Time
	IsExpired         bool
}

// tokenExpiry decodes raw as a JWT without verifying the signature and
// returns its exp claim. ok is false when raw cannot be decoded or has no exp.
func tokenExpiry(raw string) (time.Time, bool) {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		LogDebug("Could not decode token: %v", err)
		return time.Time{}, false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// InspectTokens reports which tokens are stored and when the access token
// expires. A token that cannot be decoded has no expiry and is not reported
// as expired.
func InspectTokens(ctx context.Context, store CredentialStore, now time.Time) (TokenInfo, error) {
	access, err := store.Get(ctx, KeyAccessToken)
	if err != nil {
		return TokenInfo{IsExpired: true}, err
	}
	refresh, err := store.Get(ctx, KeyRefreshToken)
	if err != nil {
		return TokenInfo{IsExpired: true}, err
	}

	info := TokenInfo{
		HasAccessToken:  access != "",
		HasRefreshToken: refresh != "",
	}
	if access == "" {
		return info, nil
	}
	if exp, ok := tokenExpiry(access); ok {
		info.AccessTokenExpiry = &exp
		info.IsExpired = exp.Before(now)
	}
	return info, nil
}

// TokenExpired reports whether raw should be treated as expired at now.
// Empty or undecodable tokens, and tokens without exp, count as expired.
func TokenExpired(raw string, now time.Time) bool {
	if raw == "" {
		return true
	}
	exp, ok := tokenExpiry(raw)
	if !ok {
		return true
	}
	return !exp.After(now)
}
