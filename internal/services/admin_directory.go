package services

import (
	"github.com/rs/zerolog"

	"github.com/ad/go-telegram-broadcast/internal/db"
)

// AdminDirectory is the read-once set of privileged user IDs. It is loaded
// at startup and immutable for the process lifetime; runtime admin
// management is deliberately not supported.
type AdminDirectory struct {
	admins map[int64]struct{}
}

func NewAdminDirectory(ids []int64) *AdminDirectory {
	admins := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		admins[id] = struct{}{}
	}
	return &AdminDirectory{admins: admins}
}

// LoadAdminDirectory reads the admin list from the store. A read failure
// degrades to an empty directory instead of aborting startup.
func LoadAdminDirectory(repo *db.AdminConfigRepository, log zerolog.Logger) *AdminDirectory {
	ids, err := repo.GetAdminIDs()
	if err != nil {
		log.Error().Err(err).Msg("failed to load admin list, continuing with no admins")
		return NewAdminDirectory(nil)
	}
	if len(ids) == 0 {
		log.Warn().Msg("admin list is empty, broadcast entry is disabled")
	}
	return NewAdminDirectory(ids)
}

func (d *AdminDirectory) IsAdmin(userID int64) bool {
	_, ok := d.admins[userID]
	return ok
}

func (d *AdminDirectory) ShouldIgnore(userID int64) bool {
	return !d.IsAdmin(userID)
}

func (d *AdminDirectory) Len() int {
	return len(d.admins)
}
