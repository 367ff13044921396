// Package storage keeps per-job artifacts on local disk: the uploaded audio
// a job was created from, and the synthesized speech a job produced. Paths
// are derived from the job ID so nothing about artifacts needs to be stored
// elsewhere.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	uploadsDir = "uploads"
	speechDir  = "speech"

	dirPerm  = 0o755
	filePerm = 0o644
)

// Disk is a filesystem-backed artifact store rooted at a base directory.
type Disk struct {
	base string
}

// NewDisk creates the store's directory layout under base and returns the
// store.
func NewDisk(base string) (*Disk, error) {
	for _, sub := range []string{uploadsDir, speechDir} {
		if err := os.MkdirAll(filepath.Join(base, sub), dirPerm); err != nil {
			return nil, fmt.Errorf("creating storage directory %s: %w", sub, err)
		}
	}
	return &Disk{base: base}, nil
}

// NewJobID returns a fresh identifier for a processing job. Artifacts saved
// under the same ID belong to the same job.
func (d *Disk) NewJobID() string {
	return uuid.NewString()
}

// SaveUpload streams an uploaded audio body to disk and returns its path and
// size. The extension is sanitized; anything unrecognizable falls back to .bin.
func (d *Disk) SaveUpload(jobID, ext string, r io.Reader) (string, int64, error) {
	path := filepath.Join(d.base, uploadsDir, jobID+sanitizeExt(ext))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return "", 0, fmt.Errorf("creating upload file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("writing upload file: %w", err)
	}
	return path, n, nil
}

// WriteSpeech stores a job's synthesized speech and returns its path.
func (d *Disk) WriteSpeech(jobID string, data []byte) (string, error) {
	path := d.SpeechPath(jobID)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return "", fmt.Errorf("writing speech file: %w", err)
	}
	return path, nil
}

// SpeechPath returns where a job's synthesized speech lives, whether or not
// it exists yet.
func (d *Disk) SpeechPath(jobID string) string {
	return filepath.Join(d.base, speechDir, jobID+".mp3")
}

// OpenSpeech opens a job's synthesized speech for reading. The caller closes
// the returned file.
func (d *Disk) OpenSpeech(jobID string) (*os.File, error) {
	f, err := os.Open(d.SpeechPath(jobID))
	if err != nil {
		return nil, fmt.Errorf("opening speech file: %w", err)
	}
	return f, nil
}

// Remove deletes all artifacts belonging to a job. Missing files are fine.
func (d *Disk) Remove(jobID string) error {
	var firstErr error
	for _, sub := range []string{uploadsDir, speechDir} {
		matches, err := filepath.Glob(filepath.Join(d.base, sub, jobID+".*"))
		if err != nil {
			continue
		}
		for _, m := range matches {
			if err := os.Remove(m); err != nil && !os.IsNotExist(err) && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Sweep deletes artifacts older than maxAge and returns how many files were
// removed.
func (d *Disk) Sweep(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, sub := range []string{uploadsDir, speechDir} {
		entries, err := os.ReadDir(filepath.Join(d.base, sub))
		if err != nil {
			return removed, fmt.Errorf("reading storage directory %s: %w", sub, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(cutoff) {
				continue
			}
			if err := os.Remove(filepath.Join(d.base, sub, entry.Name())); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

// sanitizeExt keeps only a plain dotted extension, defaulting to .bin.
func sanitizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" || strings.ContainsAny(ext, `/\.`) || len(ext) > 8 {
		return ".bin"
	}
	return "." + ext
}
