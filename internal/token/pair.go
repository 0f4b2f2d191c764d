package token

import "time"

// Pair bundles a freshly minted access and refresh token. Both come from
// the session domain; the refresh value is also what gets persisted on
// the identity row as the single accepted refresh token.
type Pair struct {
	Access     string
	AccessExp  time.Time
	Refresh    string
	RefreshExp time.Time
}

// NewPair mints an access/refresh pair for a subject using the session
// signing domain.
func NewPair(session Domain, subject string, accessTTL, refreshTTL time.Duration) (Pair, error) {
	access, accessExp, err := session.Encode(subject, KindAccess, accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, refreshExp, err := session.Encode(subject, KindRefresh, refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{
		Access:     access,
		AccessExp:  accessExp,
		Refresh:    refresh,
		RefreshExp: refreshExp,
	}, nil
}
