package repository

import "time"

// CachedCategory is one category row cached for a wallet.
type CachedCategory struct {
	WalletID  string
	ID        string
	Name      string
	Type      string
	ParentID  *string
	FetchedAt time.Time
}

// SessionToken is a cached access token for one ledger account.
type SessionToken struct {
	Account   string
	Token     string
	FetchedAt time.Time
}

// Fresh reports whether the token is younger than ttl.
func (t SessionToken) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(t.FetchedAt) < ttl
}
