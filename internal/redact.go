package internal

import (
	"fmt"
	"strings"
)

// RedactEmail keeps the first character of the local part and the domain.
func RedactEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}

// RedactToken keeps a short prefix so tokens can be told apart in logs.
func RedactToken(token string) string {
	if token == "" {
		return "<none>"
	}
	if len(token) <= 8 {
		return "***"
	}
	return fmt.Sprintf("%s...(%d chars)", token[:6], len(token))
}
