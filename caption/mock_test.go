package caption

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderAlwaysReturnsFromPool(t *testing.T) {
	p := NewMock()

	path := filepath.Join(t.TempDir(), "video.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not really a video"), 0o644))

	for range 50 {
		c, err := p.Generate(context.Background(), path)
		require.NoError(t, err)
		assert.NotEmpty(t, c)
		assert.True(t, slices.Contains(mockCaptions, c), "caption %q not in the fixed pool", c)
	}
}

func TestMockProviderMissingFile(t *testing.T) {
	p := NewMock()

	_, err := p.Generate(context.Background(), filepath.Join(t.TempDir(), "nope.mp4"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
}

func TestMockProviderName(t *testing.T) {
	assert.Equal(t, "mock", NewMock().Name())
}
