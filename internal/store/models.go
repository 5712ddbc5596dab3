package store

import "time"

type Setting struct {
	Key   string
	Value string
}

// Cookie is a persisted session cookie. Expires is nil for session cookies.
type Cookie struct {
	Origin    string
	Name      string
	Value     string
	Expires   *time.Time
	UpdatedAt time.Time
}

// Profile is the last account that logged in against an origin.
type Profile struct {
	Origin    string
	UserID    int64
	Name      string
	Email     string
	UpdatedAt time.Time
}
