// Package errs contains sentinel errors shared by the repository, service
// and handler layers so that failures map onto stable status codes.
package errs

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUserExists indicates the username is already taken.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound indicates login was attempted for an unknown username.
	ErrUserNotFound = errors.New("user not found")

	// ErrWrongPassword indicates the supplied password does not match the stored hash.
	ErrWrongPassword = errors.New("wrong password")

	// ErrKeyNotFound indicates the user is unknown or has no key material stored.
	ErrKeyNotFound = errors.New("key not found")
)
