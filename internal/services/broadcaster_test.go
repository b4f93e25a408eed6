package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"pgregory.net/rapid"

	"github.com/ad/go-telegram-broadcast/internal/logx"
	"github.com/ad/go-telegram-broadcast/internal/models"
)

var errDelivery = errors.New("forbidden: bot was blocked by the user")

// fakeCourier records outbound sends and fails delivery for selected chats.
type fakeCourier struct {
	mu       sync.Mutex
	failFor  map[int64]bool
	messages []int64
	photos   []int64
	videos   []int64
}

func newFakeCourier(failFor ...int64) *fakeCourier {
	f := &fakeCourier{failFor: make(map[int64]bool)}
	for _, id := range failFor {
		f.failFor[id] = true
	}
	return f
}

func (f *fakeCourier) deliver(sink *[]int64, chatID int64) (*tgmodels.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[chatID] {
		return nil, errDelivery
	}
	*sink = append(*sink, chatID)
	return &tgmodels.Message{}, nil
}

func (f *fakeCourier) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*tgmodels.Message, error) {
	return f.deliver(&f.messages, params.ChatID.(int64))
}

func (f *fakeCourier) SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*tgmodels.Message, error) {
	return f.deliver(&f.photos, params.ChatID.(int64))
}

func (f *fakeCourier) SendVideo(ctx context.Context, params *bot.SendVideoParams) (*tgmodels.Message, error) {
	return f.deliver(&f.videos, params.ChatID.(int64))
}

func (f *fakeCourier) SendDocument(ctx context.Context, params *bot.SendDocumentParams) (*tgmodels.Message, error) {
	return &tgmodels.Message{}, nil
}

func (f *fakeCourier) AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	return true, nil
}

func (f *fakeCourier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages) + len(f.photos) + len(f.videos)
}

func TestBroadcastTallyWithPartialFailure(t *testing.T) {
	courier := newFakeCourier(2)
	b := NewBroadcaster(courier, 4, logx.Nop())

	tally := b.Broadcast(context.Background(), models.Draft{Text: "Hello"}, []int64{1, 2, 3})

	if tally.Successful != 2 || tally.Failed != 1 {
		t.Errorf("Expected successful=2 failed=1, got %+v", tally)
	}
	if tally.Total() != 3 {
		t.Errorf("Expected tally total 3, got %d", tally.Total())
	}
}

func TestBroadcastEmptyRegistry(t *testing.T) {
	courier := newFakeCourier()
	b := NewBroadcaster(courier, 4, logx.Nop())

	tally := b.Broadcast(context.Background(), models.Draft{Text: "Hello"}, nil)

	if tally.Successful != 0 || tally.Failed != 0 {
		t.Errorf("Expected empty tally, got %+v", tally)
	}
	if courier.sentCount() != 0 {
		t.Errorf("Expected no sends, got %d", courier.sentCount())
	}
}

func TestBroadcastRoutesByMediaKind(t *testing.T) {
	tests := []struct {
		name  string
		draft models.Draft
		check func(*fakeCourier) int
	}{
		{
			name:  "plain text",
			draft: models.Draft{Text: "hi"},
			check: func(f *fakeCourier) int { return len(f.messages) },
		},
		{
			name:  "photo with caption",
			draft: models.Draft{Text: "hi", MediaKind: models.MediaPhoto, MediaFileID: "photo1"},
			check: func(f *fakeCourier) int { return len(f.photos) },
		},
		{
			name:  "video with caption",
			draft: models.Draft{Text: "hi", MediaKind: models.MediaVideo, MediaFileID: "video1"},
			check: func(f *fakeCourier) int { return len(f.videos) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			courier := newFakeCourier()
			b := NewBroadcaster(courier, 2, logx.Nop())

			b.Broadcast(context.Background(), tt.draft, []int64{10, 11})

			if got := tt.check(courier); got != 2 {
				t.Errorf("Expected 2 sends of the right kind, got %d", got)
			}
			if courier.sentCount() != 2 {
				t.Errorf("Expected 2 sends total, got %d", courier.sentCount())
			}
		})
	}
}

func TestBroadcastAllRecipientsFail(t *testing.T) {
	courier := newFakeCourier(1, 2, 3)
	b := NewBroadcaster(courier, 4, logx.Nop())

	tally := b.Broadcast(context.Background(), models.Draft{Text: "Hello"}, []int64{1, 2, 3})

	if tally.Successful != 0 || tally.Failed != 3 {
		t.Errorf("Expected successful=0 failed=3, got %+v", tally)
	}
}

func TestProperty_TallyAlwaysMatchesSnapshot(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 100).Draw(rt, "recipients")
		workers := rapid.IntRange(1, 16).Draw(rt, "workers")

		recipients := make([]int64, n)
		var failing []int64
		wantFailed := 0
		for i := 0; i < n; i++ {
			recipients[i] = int64(i + 1)
			if rapid.Bool().Draw(rt, "fails") {
				failing = append(failing, int64(i+1))
				wantFailed++
			}
		}

		courier := newFakeCourier(failing...)
		b := NewBroadcaster(courier, workers, logx.Nop())

		tally := b.Broadcast(context.Background(), models.Draft{Text: "x"}, recipients)

		if tally.Total() != n {
			rt.Fatalf("Tally total %d does not match snapshot size %d", tally.Total(), n)
		}
		if tally.Failed != wantFailed {
			rt.Fatalf("Expected %d failures, got %d", wantFailed, tally.Failed)
		}
	})
}
