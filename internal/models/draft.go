package models

import (
	tgmodels "github.com/go-telegram/bot/models"
)

type MediaKind string

const (
	MediaNone  MediaKind = ""
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// Draft is the in-progress broadcast content assembled by an operator.
// MediaFileID must be set if and only if MediaKind is photo or video.
type Draft struct {
	Text        string
	Entities    []tgmodels.MessageEntity
	MediaKind   MediaKind
	MediaFileID string
}

func (d *Draft) HasMedia() bool {
	return d.MediaKind != MediaNone
}

// ReadyToSend reports whether the draft can be broadcast: text is required,
// and a chosen media kind must have its payload attached.
func (d *Draft) ReadyToSend() bool {
	if d.Text == "" {
		return false
	}
	return (d.MediaKind == MediaNone) == (d.MediaFileID == "")
}
