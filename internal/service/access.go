package service

import "errors"

// ErrPermissionDenied is returned when a non-admin invokes an admin-only action
var ErrPermissionDenied = errors.New("permission denied")

// AccessPolicy classifies callers against a fixed admin allow-list
type AccessPolicy struct {
	admins []int64
	index  map[int64]struct{}
}

// NewAccessPolicy creates an AccessPolicy for the given admin IDs
func NewAccessPolicy(adminIDs []int64) *AccessPolicy {
	p := &AccessPolicy{
		admins: append([]int64(nil), adminIDs...),
		index:  make(map[int64]struct{}, len(adminIDs)),
	}
	for _, id := range adminIDs {
		p.index[id] = struct{}{}
	}
	return p
}

// IsAdmin reports whether userID is on the allow-list
func (p *AccessPolicy) IsAdmin(userID int64) bool {
	_, ok := p.index[userID]
	return ok
}

// Admins returns the allow-list in configured order
func (p *AccessPolicy) Admins() []int64 {
	return append([]int64(nil), p.admins...)
}
