package warmup_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/worker/warmup"
)

// MockWarmer is a mock of Warmer
type MockWarmer struct {
	mock.Mock
}

func (m *MockWarmer) Prepare(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockWarmer) Variant(ctx context.Context, mode domain.TimeMode) (*domain.StreetGraph, error) {
	args := m.Called(ctx, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StreetGraph), args.Error(1)
}

func (m *MockWarmer) CurrentMode() domain.TimeMode {
	args := m.Called()
	return args.Get(0).(domain.TimeMode)
}

func runWorker(t *testing.T, w *warmup.VariantWorker, d time.Duration) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, w.Start(context.Background()))
	}()
	time.Sleep(d)
	require.NoError(t, w.Stop())
	wg.Wait()
}

func TestVariantWorker_PreparesOnStart(t *testing.T) {
	warmer := &MockWarmer{}
	warmer.On("Prepare", mock.Anything).Return(nil).Once()
	warmer.On("CurrentMode").Return(domain.ModeDay)
	warmer.On("Variant", mock.Anything, domain.ModeDay).Return(domain.NewStreetGraph("x", "unit"), nil).Once()

	w := warmup.NewVariantWorker(warmer, 10*time.Millisecond, zap.NewNop())
	runWorker(t, w, 60*time.Millisecond)

	warmer.AssertExpectations(t)
	// режим не менялся - вариант запрошен один раз
	warmer.AssertNumberOfCalls(t, "Variant", 1)
	assert.True(t, w.IsStopped())
}

func TestVariantWorker_RetriesPrepare(t *testing.T) {
	warmer := &MockWarmer{}
	warmer.On("Prepare", mock.Anything).Return(assert.AnError).Once()
	warmer.On("Prepare", mock.Anything).Return(nil).Once()
	warmer.On("CurrentMode").Return(domain.ModeNight)
	warmer.On("Variant", mock.Anything, domain.ModeNight).Return(domain.NewStreetGraph("x", "unit"), nil)

	w := warmup.NewVariantWorker(warmer, 10*time.Millisecond, zap.NewNop())
	runWorker(t, w, 80*time.Millisecond)

	warmer.AssertNumberOfCalls(t, "Prepare", 2)
	warmer.AssertNumberOfCalls(t, "Variant", 1)
}

func TestVariantWorker_ContextCancel(t *testing.T) {
	warmer := &MockWarmer{}
	warmer.On("Prepare", mock.Anything).Return(nil)
	warmer.On("CurrentMode").Return(domain.ModeDay)
	warmer.On("Variant", mock.Anything, mock.Anything).Return(domain.NewStreetGraph("x", "unit"), nil)

	ctx, cancel := context.WithCancel(context.Background())
	w := warmup.NewVariantWorker(warmer, time.Hour, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
