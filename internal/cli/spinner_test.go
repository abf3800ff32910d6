package cli

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards a buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDraws(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "Extracting")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	assert.Contains(t, out.String(), "Extracting")
	assert.False(t, s.Cancelled())
}

func TestSpinnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerTo(ctx, &syncBuffer{}, "Extracting")
	s.Start()
	cancel()

	assert.Eventually(t, s.Cancelled, time.Second, 10*time.Millisecond)
	s.Stop()
	assert.True(t, s.Cancelled())
}

func TestSpinnerTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	s := newSpinnerTo(ctx, &syncBuffer{}, "Extracting")
	s.Start()

	assert.Eventually(t, s.Cancelled, time.Second, 10*time.Millisecond)
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), &syncBuffer{}, "Extracting")
	s.Start()
	s.Stop()
	s.Stop()
	assert.False(t, s.Cancelled())
}

func TestSpin(t *testing.T) {
	boom := errors.New("boom")
	err := spin(context.Background(), "Working", "", func() error { return boom })
	require.ErrorIs(t, err, boom)

	calls := 0
	require.NoError(t, spin(context.Background(), "Working", "", func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls)
}
