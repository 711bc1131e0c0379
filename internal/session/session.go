// Package session holds the signed-in user profile. The credential itself
// is treated as an opaque string: its middle claims segment is decoded for
// display purposes only, and it is never persisted.
package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

// ErrBadToken is returned when a pasted credential cannot be decoded.
var ErrBadToken = errors.New("unable to read credential")

// User is the display profile extracted from a credential.
type User struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
	Subject string `json:"sub,omitempty"`
}

// Session is the persisted sign-in state. Only the profile is stored;
// tokens stay in memory for the process lifetime at most.
type Session struct {
	User     *User  `json:"user"`
	LoggedIn bool   `json:"-"`
	ClientID string `json:"clientId,omitempty"`
}

// UnmarshalJSON derives LoggedIn from the presence of a stored user, the
// same way the persisted form omits it.
func (s *Session) UnmarshalJSON(data []byte) error {
	type alias Session
	if err := json.Unmarshal(data, (*alias)(s)); err != nil {
		return err
	}
	s.LoggedIn = s.User != nil
	return nil
}

// FromIDToken decodes the claims segment of a JWT-shaped credential and
// builds a session from its profile fields. No signature verification is
// performed; the token is an opaque proof handled elsewhere.
func FromIDToken(token string) (*Session, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrBadToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrBadToken
	}

	var claims struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
		Sub     string `json:"sub"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, ErrBadToken
	}

	name := claims.Name
	if name == "" {
		name = claims.Email
	}
	if name == "" {
		name = "Signed in"
	}

	return &Session{
		User: &User{
			Name:    name,
			Email:   claims.Email,
			Picture: claims.Picture,
			Subject: claims.Sub,
		},
		LoggedIn: true,
	}, nil
}
