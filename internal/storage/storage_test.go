package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDisk(t *testing.T) *Disk {
	t.Helper()
	d, err := NewDisk(t.TempDir())
	require.NoError(t, err)
	return d
}

func TestDiskSaveUploadRoundTrip(t *testing.T) {
	d := newTestDisk(t)
	id := d.NewJobID()

	path, size, err := d.SaveUpload(id, ".webm", strings.NewReader("audio-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, id+".webm"))
	assert.Equal(t, int64(len("audio-bytes")), size)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(data))
}

func TestDiskSanitizesHostileExtensions(t *testing.T) {
	d := newTestDisk(t)

	tests := []struct {
		ext  string
		want string
	}{
		{".mp3", ".mp3"},
		{"ogg", ".ogg"},
		{"", ".bin"},
		{"../../etc/passwd", ".bin"},
		{".tar.gz", ".bin"},
		{strings.Repeat("a", 20), ".bin"},
	}
	for _, tc := range tests {
		id := d.NewJobID()
		path, _, err := d.SaveUpload(id, tc.ext, strings.NewReader("x"))
		require.NoError(t, err)
		assert.Equal(t, id+tc.want, filepath.Base(path), "ext %q", tc.ext)
	}
}

func TestDiskSpeechWriteOpen(t *testing.T) {
	d := newTestDisk(t)
	id := d.NewJobID()

	path, err := d.WriteSpeech(id, []byte("mp3-bytes"))
	require.NoError(t, err)
	assert.Equal(t, d.SpeechPath(id), path)

	f, err := d.OpenSpeech(id)
	require.NoError(t, err)
	defer f.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mp3-bytes", string(data))
}

func TestDiskRemoveDeletesAllArtifacts(t *testing.T) {
	d := newTestDisk(t)
	id := d.NewJobID()

	upload, _, err := d.SaveUpload(id, ".webm", strings.NewReader("a"))
	require.NoError(t, err)
	speech, err := d.WriteSpeech(id, []byte("b"))
	require.NoError(t, err)

	require.NoError(t, d.Remove(id))
	assert.NoFileExists(t, upload)
	assert.NoFileExists(t, speech)

	// Removing again is a no-op.
	assert.NoError(t, d.Remove(id))
}

func TestDiskSweepRemovesOnlyExpired(t *testing.T) {
	d := newTestDisk(t)

	oldID, newID := d.NewJobID(), d.NewJobID()
	oldPath, _, err := d.SaveUpload(oldID, ".webm", strings.NewReader("old"))
	require.NoError(t, err)
	newPath, _, err := d.SaveUpload(newID, ".webm", strings.NewReader("new"))
	require.NoError(t, err)

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	removed, err := d.Sweep(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, oldPath)
	assert.FileExists(t, newPath)
}
