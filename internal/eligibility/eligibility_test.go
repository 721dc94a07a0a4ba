package eligibility

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	count int
	err   error
}

func (f *fakeCounter) CountByEmail(context.Context, string, string) (int, error) {
	return f.count, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckQualifiesFreshEmail(t *testing.T) {
	c := NewChecker(&fakeCounter{count: 0}, time.Millisecond, discardLogger())

	out, err := c.Check(context.Background(), "acme", "jo@example.com")
	require.NoError(t, err)
	assert.True(t, out.Qualified)
	assert.False(t, out.Duplicate)
}

func TestCheckFlagsDuplicate(t *testing.T) {
	c := NewChecker(&fakeCounter{count: 3}, time.Millisecond, discardLogger())

	out, err := c.Check(context.Background(), "acme", "jo@example.com")
	require.NoError(t, err)
	assert.True(t, out.Qualified)
	assert.True(t, out.Duplicate)
}

func TestCheckWaitsOutTheDelay(t *testing.T) {
	delay := 50 * time.Millisecond
	c := NewChecker(&fakeCounter{}, delay, discardLogger())

	start := time.Now()
	_, err := c.Check(context.Background(), "acme", "jo@example.com")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), delay)
}

func TestCheckAbortsOnCancel(t *testing.T) {
	c := NewChecker(&fakeCounter{}, time.Minute, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Check(ctx, "acme", "jo@example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheckSurfacesStoreFailure(t *testing.T) {
	c := NewChecker(&fakeCounter{err: errors.New("store down")}, time.Millisecond, discardLogger())

	_, err := c.Check(context.Background(), "acme", "jo@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate screen")
}
