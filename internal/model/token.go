package model

import "time"

// Capability is the operation class a scoped token authorizes. A token is
// either read-only or read+update; the set is fixed at issuance and never
// upgraded.
type Capability string

const (
	CapabilityRead       Capability = "r"
	CapabilityReadUpdate Capability = "ru"
)

// Valid reports whether c is one of the two issued capability sets.
func (c Capability) Valid() bool {
	return c == CapabilityRead || c == CapabilityReadUpdate
}

// CanRead reports whether the capability permits reads. Both issued sets do.
func (c Capability) CanRead() bool {
	return c.Valid()
}

// CanUpdate reports whether the capability permits updates.
func (c Capability) CanUpdate() bool {
	return c == CapabilityReadUpdate
}

// Grant is the decoded content of a verified scoped token: the single
// (table, partition, row) it is bound to, the capability it carries and the
// moment it stops being honored.
type Grant struct {
	Table      string
	Partition  string
	Row        string
	Capability Capability
	ExpiresAt  time.Time
}

// TokenManager signs and verifies scoped tokens. Verification is stateless:
// validity is self-contained in the signed token.
type TokenManager interface {
	Generate(table, partition, row string, capability Capability) (string, error)
	Verify(token string) (Grant, error)
}
