package ci

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worktrunk/worktrunk/internal/models"
)

type fakeProvider struct {
	calls  int
	status models.CIStatus
	err    error
}

func (f *fakeProvider) Status(ctx context.Context, branch, headSHA string) (models.CIStatus, error) {
	f.calls++
	return f.status, f.err
}

func TestCacheFetchesOnceWithinTTL(t *testing.T) {
	fp := &fakeProvider{status: models.CIStatus{State: models.CILoaded, Conclusion: "success", HeadSHA: "abc123"}}
	c := NewCache(fp)

	first, err := c.Status(context.Background(), "feature-x", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "success", first.Conclusion)
	assert.Equal(t, 1, fp.calls)

	second, err := c.Status(context.Background(), "feature-x", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "success", second.Conclusion)
	assert.Equal(t, 1, fp.calls, "second call within TTL should not refetch")
}

func TestCacheRefetchesAfterTTLExpires(t *testing.T) {
	fp := &fakeProvider{status: models.CIStatus{State: models.CILoaded, Conclusion: "success", HeadSHA: "abc123"}}
	c := NewCache(fp)
	c.TTL = time.Millisecond

	_, err := c.Status(context.Background(), "feature-x", "abc123")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = c.Status(context.Background(), "feature-x", "abc123")
	require.NoError(t, err)
	assert.Equal(t, 2, fp.calls)
}

func TestCacheMarksStaleWhenHeadMoved(t *testing.T) {
	fp := &fakeProvider{status: models.CIStatus{State: models.CILoaded, Conclusion: "success", HeadSHA: "abc123"}}
	c := NewCache(fp)

	_, err := c.Status(context.Background(), "feature-x", "abc123")
	require.NoError(t, err)

	second, err := c.Status(context.Background(), "feature-x", "def456")
	require.NoError(t, err)
	assert.True(t, second.Stale)
}

func TestCacheClearForcesRefetch(t *testing.T) {
	fp := &fakeProvider{status: models.CIStatus{State: models.CILoaded}}
	c := NewCache(fp)

	_, err := c.Status(context.Background(), "feature-x", "abc123")
	require.NoError(t, err)
	c.Clear()
	_, err = c.Status(context.Background(), "feature-x", "abc123")
	require.NoError(t, err)
	assert.Equal(t, 2, fp.calls)
}

func TestNoopProviderReportsNotLoaded(t *testing.T) {
	status, err := NoopProvider{}.Status(context.Background(), "feature-x", "abc123")
	require.NoError(t, err)
	assert.Equal(t, models.CINotLoaded, status.State)
}
