// Package registry tracks every user who has contacted the bot.
// Membership only grows for the lifetime of the process and is not persisted.
package registry

import "sync"

type UserRegistry struct {
	mu    sync.RWMutex
	users map[int64]struct{}
}

func NewUserRegistry() *UserRegistry {
	return &UserRegistry{
		users: make(map[int64]struct{}),
	}
}

// Register inserts a user ID. Duplicate and concurrent calls are safe.
func (r *UserRegistry) Register(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID] = struct{}{}
}

// Snapshot returns a point-in-time copy of the membership. Registrations
// that happen after the snapshot do not affect an in-flight broadcast.
func (r *UserRegistry) Snapshot() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	return ids
}

func (r *UserRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
