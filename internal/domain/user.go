// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"unicode/utf8"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 20
	MinPasswordLen = 6
	MaxPasswordLen = 100
)

var (
	ErrUsernameTooLong  = errors.New("username too long")
	ErrUsernameTooShort = errors.New("username too short")
)

// Identity is the username asserted by a verified token.
type Identity string

func (i Identity) String() string { return string(i) }

// NewIdentity is a tiny helper to avoid ad-hoc conversions in adapters.
func NewIdentity(username string) (Identity, error) {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLen {
		return "", ErrUsernameTooShort
	}
	if n > MaxUsernameLen {
		return "", ErrUsernameTooLong
	}
	return Identity(username), nil
}
