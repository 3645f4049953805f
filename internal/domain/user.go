package domain

import "time"

// User is the identity supplied to ledger operations. Credentials stay in
// the user store; only the id travels through the ledger.
type User struct {
	ID             int64
	Username       string
	HashedPassword string
	Salt           string
	RegisteredAt   time.Time
}
