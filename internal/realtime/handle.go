//go:generate go run go.uber.org/mock/mockgen -source=handle.go -destination=../mocks/mock_handle.go -package=mocks

// Package realtime is the presence and message delivery core: which user is
// reachable on which live connection, who gets told when that changes, and
// how a chat message fans out to at most two connections.
//
// The package is transport agnostic. A transport supplies Handle values and
// feeds decoded commands to an Engine through Dispatch.
package realtime

import "context"

// Handle is an opaque reference to one live connection.
//
// Push must not block. It either queues the event for the connection or
// returns errs.ErrDeliveryDropped.
type Handle interface {
	ID() string
	Push(evt Event) error
}

// Entry binds a user to the connection it registered from.
type Entry struct {
	UserID string
	Handle Handle
}

// PresenceListener is told about every actual registry mutation, with the
// snapshot taken right after it.
type PresenceListener interface {
	PresenceChanged(snapshot []Entry)
}

// Audience lists every connection that should hear presence updates.
type Audience interface {
	Handles() []Handle
}

// ProfileFinder resolves the public profile of a user.
type ProfileFinder interface {
	FindProfile(ctx context.Context, userID string) (Profile, error)
}
