package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/datallboy/gofetch/internal/infra/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPolicy(c *fakeConfirmer) *ExistingFilePolicy {
	l := logger.NewWriter(&bytes.Buffer{}, logger.LevelInfo)
	if c == nil {
		return NewExistingFilePolicy(nil, l)
	}
	return NewExistingFilePolicy(c, l)
}

func TestPolicy_FreePath(t *testing.T) {
	c := &fakeConfirmer{}
	d, err := newPolicy(c).Decide(context.Background(), filepath.Join(t.TempDir(), "x.mp4"))
	require.NoError(t, err)
	assert.Equal(t, Proceed, d)
	assert.Empty(t, c.asked)
}

func TestPolicy_Existing(t *testing.T) {
	tests := []struct {
		name       string
		confirmer  *fakeConfirmer
		want       Decision
		keepsFile  bool
		wantPrompt bool
	}{
		{"unattended", nil, Skip, true, false},
		{"declined", &fakeConfirmer{answer: false}, Skip, true, true},
		{"accepted", &fakeConfirmer{answer: true}, Proceed, false, true},
		{"confirm error", &fakeConfirmer{err: errors.New("tty gone")}, Skip, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "clip.mp4")
			require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

			d, err := newPolicy(tt.confirmer).Decide(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)

			_, statErr := os.Stat(path)
			assert.Equal(t, tt.keepsFile, statErr == nil)

			if tt.confirmer != nil {
				assert.Equal(t, tt.wantPrompt, len(tt.confirmer.asked) == 1)
				if tt.wantPrompt {
					assert.Contains(t, tt.confirmer.asked[0], "clip.mp4 already exists")
				}
			}
		})
	}
}

func TestPolicy_DirectoryIsNeverRemoved(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.Mkdir(dir, 0755))

	c := &fakeConfirmer{answer: true}
	d, err := newPolicy(c).Decide(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, Skip, d)
	assert.Empty(t, c.asked)
	assert.DirExists(t, dir)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "skip", Skip.String())
	assert.Equal(t, "proceed", Proceed.String())
}
