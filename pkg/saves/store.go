// Package saves holds the paused sessions a player can come back to.
package saves

import (
	"time"

	"github.com/cbodonnell/puzzleflow/pkg/game"
	"github.com/cbodonnell/puzzleflow/pkg/game/types"
	"github.com/samber/lo"
)

// Store keeps at most one session per slot key. Daily sessions share a single
// slot regardless of their game type.
// Store is not safe for concurrent use.
type Store struct {
	sessions []*game.Session
}

func NewStore() *Store {
	return &Store{}
}

func sameSlot(session *game.Session, key game.SlotKey) bool {
	return session.Key() == key
}

// Find returns the session saved under the exact key.
func (s *Store) Find(key game.SlotKey) (*game.Session, bool) {
	return lo.Find(s.sessions, func(session *game.Session) bool {
		return sameSlot(session, key)
	})
}

// FindBySubtype returns the first session of the given subtype, whatever its type.
func (s *Store) FindBySubtype(subtype types.GameSubtype) (*game.Session, bool) {
	return lo.Find(s.sessions, func(session *game.Session) bool {
		return session.Config().Subtype() == subtype
	})
}

// Lookup applies the slot rule of the subtype: daily sessions match on subtype
// only, everything else on the exact key.
func (s *Store) Lookup(key game.SlotKey) (*game.Session, bool) {
	if key.Subtype == types.GameSubtypeToday {
		return s.FindBySubtype(types.GameSubtypeToday)
	}
	return s.Find(key)
}

// Save replaces whatever occupies the session's slot.
func (s *Store) Save(session *game.Session) {
	key := session.Key()
	if key.Subtype == types.GameSubtypeToday {
		s.sessions = lo.Reject(s.sessions, func(saved *game.Session, _ int) bool {
			return saved.Config().Subtype() == types.GameSubtypeToday
		})
	} else {
		s.Remove(key)
	}
	s.sessions = append(s.sessions, session)
}

// Remove deletes every session saved under the exact key and returns them in save order.
func (s *Store) Remove(key game.SlotKey) []*game.Session {
	removed, kept := lo.FilterReject(s.sessions, func(session *game.Session, _ int) bool {
		return sameSlot(session, key)
	})
	s.sessions = kept
	return removed
}

// RemoveExpiredDailies deletes the daily sessions that were started on a
// different local calendar date than now.
func (s *Store) RemoveExpiredDailies(now time.Time) []*game.Session {
	expired, kept := lo.FilterReject(s.sessions, func(session *game.Session, _ int) bool {
		return session.Config().Subtype() == types.GameSubtypeToday && !SameLocalDate(session.StartTimestamp(), now)
	})
	s.sessions = kept
	return expired
}

// All returns the saved sessions in save order.
func (s *Store) All() []*game.Session {
	return append([]*game.Session(nil), s.sessions...)
}

func (s *Store) Len() int {
	return len(s.sessions)
}

func (s *Store) Clear() {
	s.sessions = nil
}

// SameLocalDate reports whether both instants fall on the same calendar date in the local time zone.
func SameLocalDate(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
