package synth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hragent/internal/domain"
)

type fakeClient struct {
	reply string
	err   error
	calls int
}

func (f *fakeClient) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func retrieved() []domain.SearchResult {
	return []domain.SearchResult{
		{Chunk: domain.Chunk{ChunkID: "d:0", Text: "Earned leave is capped at 30 days per year. Unused leave lapses in December.", Pages: []int{4}}, Score: 0.9},
		{Chunk: domain.Chunk{ChunkID: "d:1", Text: "Sick leave requires a medical certificate beyond 3 days.", Pages: []int{7}}, Score: 0.5},
	}
}

func newSynth(c ChatClient, b *Breaker) *Synthesizer {
	return New(c, b, time.Second, slog.New(slog.DiscardHandler))
}

func TestSynthesizeOnlineSuccess(t *testing.T) {
	client := &fakeClient{reply: "Earned leave is capped at 30 days [Page 4]."}
	s := newSynth(client, NewBreaker(3, time.Minute))

	res := s.Synthesize(context.Background(), "earned leave cap", retrieved(), nil)
	assert.Equal(t, ModeOnline, res.Mode)
	assert.Equal(t, []int{4}, res.Citations)
}

func TestSynthesizeOnlineUncitedReplyGetsRetrievedPages(t *testing.T) {
	client := &fakeClient{reply: "The cap is thirty days."}
	s := newSynth(client, NewBreaker(3, time.Minute))

	res := s.Synthesize(context.Background(), "earned leave cap", retrieved(), nil)
	assert.Equal(t, ModeOnline, res.Mode)
	assert.Equal(t, []int{4, 7}, res.Citations)
}

func TestSynthesizeFabricatedCitationsDropped(t *testing.T) {
	client := &fakeClient{reply: "See [Page 4] and [Page 99]."}
	s := newSynth(client, NewBreaker(3, time.Minute))

	res := s.Synthesize(context.Background(), "earned leave cap", retrieved(), nil)
	assert.Equal(t, []int{4}, res.Citations)
}

func TestSynthesizeFallsOfflineOnFailure(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	s := newSynth(client, NewBreaker(3, time.Minute))

	res := s.Synthesize(context.Background(), "earned leave cap", retrieved(), nil)
	assert.Equal(t, ModeOffline, res.Mode)
	require.NotEmpty(t, res.Citations, "offline answer over non-empty retrieval must cite")
	assert.Contains(t, res.Citations, 4)
}

func TestSynthesizeBreakerSuppressesOnlineAttempts(t *testing.T) {
	clock := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	breaker := NewBreaker(2, time.Minute)
	breaker.SetClock(func() time.Time { return clock })
	client := &fakeClient{err: errors.New("timeout")}
	s := newSynth(client, breaker)

	// Two failures trip the breaker.
	s.Synthesize(context.Background(), "q", retrieved(), nil)
	s.Synthesize(context.Background(), "q", retrieved(), nil)
	require.Equal(t, 2, client.calls)

	// While degraded, no request may touch the transport.
	for i := 0; i < 5; i++ {
		res := s.Synthesize(context.Background(), "q", retrieved(), nil)
		assert.Equal(t, ModeOffline, res.Mode)
	}
	assert.Equal(t, 2, client.calls)

	// After cool-down the next request probes online again.
	clock = clock.Add(2 * time.Minute)
	client.err = nil
	client.reply = "Answer [Page 4]."
	res := s.Synthesize(context.Background(), "q", retrieved(), nil)
	assert.Equal(t, ModeOnline, res.Mode)
	assert.Equal(t, 3, client.calls)
}

func TestSynthesizeEmptyRetrievalNeverGoesOnline(t *testing.T) {
	client := &fakeClient{reply: "made-up answer"}
	s := newSynth(client, NewBreaker(3, time.Minute))

	res := s.Synthesize(context.Background(), "anything", nil, nil)
	assert.Zero(t, client.calls, "no context means nothing to ground an online answer in")
	assert.Equal(t, NoGroundingText, res.Text)
	assert.Empty(t, res.Citations)
}

func TestSynthesizeNilClientUsesOffline(t *testing.T) {
	s := newSynth(nil, NewBreaker(3, time.Minute))
	res := s.Synthesize(context.Background(), "earned leave cap", retrieved(), nil)
	assert.Equal(t, ModeOffline, res.Mode)
}

func TestClassifyIntent(t *testing.T) {
	client := &fakeClient{reply: "Action"}
	s := newSynth(client, NewBreaker(3, time.Minute))

	kind, ok := s.ClassifyIntent(context.Background(), "sick leave tomorrow")
	assert.True(t, ok)
	assert.Equal(t, domain.Action, kind)
}

func TestClassifyIntentDegraded(t *testing.T) {
	breaker := NewBreaker(1, time.Hour)
	breaker.Failure()
	client := &fakeClient{reply: "action"}
	s := newSynth(client, breaker)

	_, ok := s.ClassifyIntent(context.Background(), "sick leave tomorrow")
	assert.False(t, ok)
	assert.Zero(t, client.calls)
}
