package entity

// AuthUser is a login identity. It shares no key with User: a person may
// register under one email and manage User resources under another.
// Passwords are stored as bcrypt hashes in PasswordHash.
type AuthUser struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
}
