// File: /services/session_service.go
package services

import (
	"sync"
	"time"
)

// SessionEventKind distinguishes the session-change notifications.
type SessionEventKind string

const (
	SessionSignedIn  SessionEventKind = "signed-in"
	SessionSignedOut SessionEventKind = "signed-out"
)

// SessionEvent is one entry on the session-change stream.
type SessionEvent struct {
	Kind   SessionEventKind `json:"kind"`
	UserID string           `json:"user_id"`
	At     time.Time        `json:"at"`
}

// SessionService broadcasts sign-in and sign-out events to subscribers. The
// view layer (or any consumer) subscribes to track the current session.
type SessionService struct {
	mu      sync.Mutex
	subs    map[int]chan SessionEvent
	nextSub int
}

func NewSessionService() *SessionService {
	return &SessionService{
		subs: make(map[int]chan SessionEvent),
	}
}

// Subscribe returns the event channel and its cancel function. Events are
// dropped for subscribers that fall behind; the stream is a notification,
// not a log.
func (ss *SessionService) Subscribe() (<-chan SessionEvent, func()) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	id := ss.nextSub
	ss.nextSub++
	ch := make(chan SessionEvent, 8)
	ss.subs[id] = ch
	return ch, func() {
		ss.mu.Lock()
		defer ss.mu.Unlock()
		delete(ss.subs, id)
	}
}

// SignedIn publishes a sign-in event for the user.
func (ss *SessionService) SignedIn(userID string) {
	ss.publish(SessionEvent{Kind: SessionSignedIn, UserID: userID, At: time.Now().UTC()})
}

// SignedOut publishes a sign-out event for the user.
func (ss *SessionService) SignedOut(userID string) {
	ss.publish(SessionEvent{Kind: SessionSignedOut, UserID: userID, At: time.Now().UTC()})
}

func (ss *SessionService) publish(ev SessionEvent) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	for _, ch := range ss.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
