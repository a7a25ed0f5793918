package staging

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/sonote/internal/domain"
	"github.com/nguyentantai21042004/sonote/internal/logger"
)

func TestPath(t *testing.T) {
	a, err := New(filepath.Join(t.TempDir(), "uploads"), logger.Nop())
	require.NoError(t, err)

	p1, p2 := a.Path("../demo.mp3"), a.Path("demo.mp3")
	assert.NotEqual(t, p1, p2)
	assert.Equal(t, a.Dir(), filepath.Dir(p1))
	assert.True(t, strings.HasSuffix(p1, "_demo.mp3"))
	assert.True(t, a.Owns(p1))
}

func TestOwns(t *testing.T) {
	root := t.TempDir()
	a, err := New(filepath.Join(root, "uploads"), logger.Nop())
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"staged file", filepath.Join(root, "uploads", "x_a.mp3"), true},
		{"user file", filepath.Join(root, "input", "a.mp3"), false},
		{"nested", filepath.Join(root, "uploads", "sub", "a.mp3"), false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Owns(tt.path))
		})
	}
}

func TestRelease(t *testing.T) {
	root := t.TempDir()
	a, err := New(filepath.Join(root, "uploads"), logger.Nop())
	require.NoError(t, err)

	staged := a.Path("a.mp3")
	require.NoError(t, os.WriteFile(staged, []byte("a"), 0o644))
	user := filepath.Join(root, "a.mp3")
	require.NoError(t, os.WriteFile(user, []byte("a"), 0o644))

	ctx := context.Background()
	a.Release(ctx, domain.SourceFile{Path: staged})
	a.Release(ctx, domain.SourceFile{Path: user})
	// Releasing twice is harmless.
	a.Release(ctx, domain.SourceFile{Path: staged})

	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err), "staged file should be removed")
	_, err = os.Stat(user)
	assert.NoError(t, err, "user file must be kept")
}
