package models

import "testing"

func TestDraftReadyToSend(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		want  bool
	}{
		{
			name:  "empty draft",
			draft: Draft{},
			want:  false,
		},
		{
			name:  "text only",
			draft: Draft{Text: "hello"},
			want:  true,
		},
		{
			name:  "photo chosen but not uploaded",
			draft: Draft{Text: "hello", MediaKind: MediaPhoto},
			want:  false,
		},
		{
			name:  "photo attached",
			draft: Draft{Text: "hello", MediaKind: MediaPhoto, MediaFileID: "file123"},
			want:  true,
		},
		{
			name:  "video attached",
			draft: Draft{Text: "hello", MediaKind: MediaVideo, MediaFileID: "file456"},
			want:  true,
		},
		{
			name:  "file id without kind",
			draft: Draft{Text: "hello", MediaFileID: "orphan"},
			want:  false,
		},
		{
			name:  "media without text",
			draft: Draft{MediaKind: MediaPhoto, MediaFileID: "file123"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.draft.ReadyToSend(); got != tt.want {
				t.Errorf("ReadyToSend() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDraftHasMedia(t *testing.T) {
	d := Draft{Text: "hi"}
	if d.HasMedia() {
		t.Error("Draft without media kind should not report media")
	}

	d.MediaKind = MediaVideo
	if !d.HasMedia() {
		t.Error("Draft with video kind should report media")
	}
}
