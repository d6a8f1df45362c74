package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"labeling-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	mu     sync.Mutex
	name   string
	errs   []error
	calls  int
	closed bool
}

func (f *fakeProvider) Suggest(_ context.Context, text string) (*models.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &models.Suggestion{Category: models.Normal, Justification: text, Provider: f.name}, nil
}

func (f *fakeProvider) Close() error {
	f.closed = true
	return nil
}

func (f *fakeProvider) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{"provider": f.name}
}

func TestMultiProviderSwitchesOnRateLimit(t *testing.T) {
	first := &fakeProvider{name: "first", errs: []error{errors.New("status 429: quota exceeded")}}
	second := &fakeProvider{name: "second"}

	c := NewMultiProviderClientWith([]Provider{first, second}, 3, zap.NewNop())

	s, err := c.Suggest(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "second", s.Provider)
	assert.Equal(t, 1, c.GetModelInfo()["provider_index"])

	// Sticks with the provider that worked.
	s, err = c.Suggest(context.Background(), "again")
	require.NoError(t, err)
	assert.Equal(t, "second", s.Provider)
	assert.Equal(t, 1, first.calls)
}

func TestMultiProviderSwitchesAfterMaxFailures(t *testing.T) {
	boom := errors.New("boom")
	first := &fakeProvider{name: "first", errs: []error{boom, boom}}
	second := &fakeProvider{name: "second", errs: []error{boom}}

	c := NewMultiProviderClientWith([]Provider{first, second}, 2, zap.NewNop())

	_, err := c.Suggest(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, first.calls)
	assert.Equal(t, 0, second.calls)

	// second is current now; its single failure stays below the limit.
	s, err := c.Suggest(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "second", s.Provider)
	assert.Equal(t, 2, second.calls)
}

func TestMultiProviderRespectsCancellation(t *testing.T) {
	p := &fakeProvider{name: "p"}
	c := NewMultiProviderClientWith([]Provider{p}, 1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Suggest(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, p.calls)
}

func TestMultiProviderClose(t *testing.T) {
	a, b := &fakeProvider{name: "a"}, &fakeProvider{name: "b"}
	c := NewMultiProviderClientWith([]Provider{a, b}, 0, zap.NewNop())

	require.NoError(t, c.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)

	info := c.GetProvidersInfo()
	require.Len(t, info, 2)
	assert.Equal(t, true, info[0]["is_current"])
	assert.Equal(t, false, info[1]["is_current"])
}

func TestNewMultiProviderClient(t *testing.T) {
	_, err := NewMultiProviderClient(MultiProviderConfig{}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewMultiProviderClient(MultiProviderConfig{
		Providers: []ProviderConfig{{Type: "openai", APIKey: "k"}, {Type: ProviderGroq}},
	}, zap.NewNop())
	assert.ErrorContains(t, err, "no providers could be initialized")

	c, err := NewMultiProviderClient(MultiProviderConfig{
		Providers: []ProviderConfig{{Type: ProviderGroq, APIKey: "k", RequestsPerMinute: 30}},
	}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "groq", c.GetModelInfo()["provider"])
	assert.Equal(t, 30, c.GetModelInfo()["rate_limit_burst"])
}

func TestRateLimitedProviderWaits(t *testing.T) {
	p := &fakeProvider{name: "p"}
	limited := NewRateLimitedProvider(p, 1, zap.NewNop())

	_, err := limited.Suggest(context.Background(), "first")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = limited.Suggest(ctx, "second")
	assert.Error(t, err)
	assert.Equal(t, 1, p.calls)
}

func TestIsRateLimitError(t *testing.T) {
	assert.True(t, isRateLimitError(errors.New("googleapi: Error 429")))
	assert.True(t, isRateLimitError(errors.New("Rate limit reached")))
	assert.False(t, isRateLimitError(errors.New("bad request")))
	assert.False(t, isRateLimitError(nil))
}
