package domain

// UserID is the auth provider's stable identifier for a signed-in user.
type UserID string

// LoginID is the derived, address-shaped login identifier (see package identity).
// It is also the key of the permission collection.
type LoginID string

// EntryID identifies a taxonomy entry.
type EntryID string

// RegistrationID identifies a submitted registration record.
type RegistrationID string

// BulletinID identifies a posted bulletin.
type BulletinID string
