package memory

import (
	"time"

	"aroma-assistant-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository is the process-wide session state store. All operations
// are total functions over default-empty state: a user without an entry is
// simply in ModeNone with no mixture.
//
// The cache itself is safe for concurrent use; the single-writer-per-user
// discipline (no two turns mutating one user's state at once) is enforced by
// the dialogue dispatcher, not here.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Sessions never expire mid-flow; they are cleared explicitly by the
	// dialogue engine. The janitor only sweeps tombstones.
	c := cache.New(cache.NoExpiration, 10*time.Minute)
	return &SessionRepository{cache: c}
}

// Get returns the user's current mode and mixture accumulator (nil if none)
func (r *SessionRepository) Get(userID string) (store.Mode, *store.Mixture) {
	if x, found := r.cache.Get(userID); found {
		s := x.(*store.Session)
		return s.Mode, s.Mixture
	}
	return store.ModeNone, nil
}

// SetMode sets the user's mode, preserving any in-progress mixture
func (r *SessionRepository) SetMode(userID string, mode store.Mode) {
	s := r.getOrCreate(userID)
	s.Mode = mode
	r.cache.Set(userID, s, cache.NoExpiration)
}

// Clear removes the user's mode and mixture atomically
func (r *SessionRepository) Clear(userID string) {
	r.cache.Delete(userID)
}

// StartMixture creates an empty accumulator; no-op when one exists
func (r *SessionRepository) StartMixture(userID string) {
	s := r.getOrCreate(userID)
	if s.Mixture == nil {
		s.Mixture = &store.Mixture{}
	}
	r.cache.Set(userID, s, cache.NoExpiration)
}

// DiscardMixture drops the accumulator, keeping the session entry
func (r *SessionRepository) DiscardMixture(userID string) {
	s := r.getOrCreate(userID)
	s.Mixture = nil
	r.cache.Set(userID, s, cache.NoExpiration)
}

// AddLine appends a line item and adds its cost to the running total
func (r *SessionRepository) AddLine(userID string, description string, cost float64) {
	s := r.getOrCreate(userID)
	if s.Mixture == nil {
		s.Mixture = &store.Mixture{}
	}
	s.Mixture.Lines = append(s.Mixture.Lines, description)
	s.Mixture.RunningTotal += cost
	s.Mixture.PendingItem = ""
	r.cache.Set(userID, s, cache.NoExpiration)
}

// SetPending records the item awaiting a quantity
func (r *SessionRepository) SetPending(userID string, itemName string) {
	s := r.getOrCreate(userID)
	if s.Mixture == nil {
		s.Mixture = &store.Mixture{}
	}
	s.Mixture.PendingItem = itemName
	r.cache.Set(userID, s, cache.NoExpiration)
}

// TakeSnapshotAndClear returns the accumulated total and lines, then removes
// the session entirely.
func (r *SessionRepository) TakeSnapshotAndClear(userID string) (float64, []string) {
	var total float64
	var lines []string
	if x, found := r.cache.Get(userID); found {
		s := x.(*store.Session)
		if s.Mixture != nil {
			total = s.Mixture.RunningTotal
			lines = s.Mixture.Lines
		}
	}
	r.cache.Delete(userID)
	return total, lines
}

func (r *SessionRepository) getOrCreate(userID string) *store.Session {
	if x, found := r.cache.Get(userID); found {
		return x.(*store.Session)
	}
	return &store.Session{UserID: userID, Mode: store.ModeNone}
}
