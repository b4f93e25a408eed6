package models

import "time"

type BroadcastLogEntry struct {
	ID         int64
	OperatorID int64
	Text       string
	MediaKind  string
	Successful int
	Failed     int
	CreatedAt  time.Time
}
