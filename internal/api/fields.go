package api

import (
	"encoding/json"
	"strings"

	"github.com/iksnae/procrastinator/internal"
)

// Field names the API has used for tokens, in order of preference.
var (
	accessTokenFields  = []string{"accessToken", "token", "access_token"}
	refreshTokenFields = []string{"refreshToken", "refresh_token"}
)

// authPayload is what login, register and refresh responses carry
type authPayload struct {
	AccessToken  string
	RefreshToken string
	User         *internal.User
}

func (p authPayload) result() internal.AuthResult {
	return internal.AuthResult{
		Tokens: internal.TokenPair{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken},
		User:   p.User,
	}
}

// parseAuthPayload reads tokens and the optional user from a JSON body.
// Unknown shapes yield an empty payload rather than an error.
func parseAuthPayload(body []byte) authPayload {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		internal.LogDebug("Auth response is not a JSON object: %v", err)
		return authPayload{}
	}

	payload := authPayload{
		AccessToken:  firstString(fields, accessTokenFields),
		RefreshToken: firstString(fields, refreshTokenFields),
	}
	if raw, ok := fields["user"]; ok && string(raw) != "null" {
		var user internal.User
		if err := json.Unmarshal(raw, &user); err != nil {
			internal.LogWarn("Ignoring malformed user in auth response: %v", err)
		} else {
			payload.User = &user
		}
	}
	return payload
}

// firstString returns the first non-empty string value among names.
func firstString(fields map[string]json.RawMessage, names []string) string {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if s != "" {
			return s
		}
	}
	return ""
}

// errorMessage extracts the server supplied "message" or "error" text.
func errorMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, name := range []string{"message", "error"} {
		if msg := firstString(fields, []string{name}); msg != "" {
			return strings.TrimSpace(msg)
		}
	}
	return ""
}
