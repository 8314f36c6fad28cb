package stdio

import (
	"os/user"
)

// UserProvider identifies the local peer. Stdio carries no credentials, so
// the identity is informational and only logged.
type UserProvider interface {
	CurrentUserID() (string, error)
}

// OSUserProvider resolves the user ID using the operating system's current user.
// The returned ID is user.Username when available; falling back to user.Uid.
type OSUserProvider struct{}

func (OSUserProvider) CurrentUserID() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	if u.Username != "" {
		return u.Username, nil
	}
	return u.Uid, nil
}

// StaticUserProvider returns a fixed ID.
type StaticUserProvider string

func (s StaticUserProvider) CurrentUserID() (string, error) { return string(s), nil }
