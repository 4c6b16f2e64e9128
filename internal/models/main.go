// Package models defines the core data structures for users, key material
// and relayed messages.
package models

import "time"

// User represents a registered account.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Username is the login name chosen by the user. Unique across users.
	Username string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string
	// Key is the caller-supplied base64 key material. Empty when not stored.
	Key string
	// IV is the caller-supplied base64 initialization vector. Empty when not stored.
	IV string
}

// KeyMaterial is the opaque key/iv pair a client stores for itself.
type KeyMaterial struct {
	Key string `json:"key"`
	IV  string `json:"iv"`
}

// Message is an opaque ciphertext relayed from one user to another.
// Messages are never modified after insert.
type Message struct {
	// ID is the server-assigned identifier.
	ID string `json:"id"`
	// From is the sender identity. Not checked against registered users.
	From string `json:"from"`
	// To is the recipient identity. Not checked against registered users.
	To string `json:"to"`
	// Encrypted holds the ciphertext exactly as the sender supplied it.
	Encrypted string `json:"encrypted"`
	// Timestamp is assigned by the database at insert time.
	Timestamp time.Time `json:"timestamp"`
}
