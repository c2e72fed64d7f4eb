package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type blockingWorker struct {
	*BaseWorker
	started atomic.Int32
}

func (w *blockingWorker) Start(ctx context.Context) error {
	w.started.Add(1)
	select {
	case <-w.StopChan():
	case <-ctx.Done():
	}
	return nil
}

func TestWorkerManager(t *testing.T) {
	m := NewWorkerManager(zap.NewNop())
	require.Error(t, m.Start(context.Background()), "no workers registered")

	a := &blockingWorker{BaseWorker: NewBaseWorker("a", zap.NewNop())}
	b := &blockingWorker{BaseWorker: NewBaseWorker("b", zap.NewNop())}
	m.Register(a)
	m.Register(b)

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Stop())

	assert.Equal(t, int32(1), a.started.Load())
	assert.Equal(t, int32(1), b.started.Load())
	assert.True(t, a.IsStopped())
	assert.True(t, b.IsStopped())

	// повторная остановка безопасна
	require.NoError(t, a.Stop())
}

type stuckWorker struct {
	*BaseWorker
	release chan struct{}
}

func (w *stuckWorker) Start(ctx context.Context) error {
	<-w.release
	return nil
}

func TestWorkerManager_StopTimeout(t *testing.T) {
	w := &stuckWorker{BaseWorker: NewBaseWorker("stuck", zap.NewNop()), release: make(chan struct{})}
	defer close(w.release)

	m := NewWorkerManager(zap.NewNop(), WithShutdownTimeout(20*time.Millisecond))
	m.Register(w)

	require.NoError(t, m.Start(context.Background()))
	assert.ErrorContains(t, m.Stop(), "timed out")
}
