package model

import "time"

// Session is one signed-on user's entry in the session directory: the scoped
// token obtained at sign-on and the (partition, row) of the user's data
// entity. ExpiresAt mirrors the token's expiry so the directory can evict
// entries whose token can no longer authorize anything.
type Session struct {
	UserID    string
	Token     string
	Partition string
	Row       string
	ExpiresAt time.Time
}

// SessionStore is the process-wide session directory. Implementations must
// serialize mutations for the same user id; there is at most one session per
// user id at any time.
type SessionStore interface {
	Get(userID string) (Session, bool)
	Put(session Session)
	Delete(userID string) bool
}
