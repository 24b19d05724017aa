// Package artifact stages uploaded images on local disk for the duration of
// one classification. Every upload gets its own file, so concurrent requests
// never observe each other's bytes.
package artifact

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/blake2b"

	"potholeai/internal/ids"
	"potholeai/internal/media/sniffer"
)

const defaultDirName = "pothole-artifacts"

// Artifact is a staged image owned by exactly one request.
type Artifact struct {
	ID          string
	Path        string
	MIME        string
	Size        int64
	Fingerprint string
	Data        []byte
}

type Store struct {
	dir string
	log zerolog.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

func NewStore(dir string, log zerolog.Logger) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), defaultDirName)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &Store{dir: dir, log: log, active: make(map[string]struct{})}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Stage writes data under a fresh identifier. The file is created with
// O_EXCL so an id collision fails instead of overwriting another artifact.
func (s *Store) Stage(data []byte, kind sniffer.Result) (Artifact, error) {
	id := ids.New()
	path := filepath.Join(s.dir, id+kind.Extension())

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return Artifact{}, fmt.Errorf("create artifact: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return Artifact{}, fmt.Errorf("write artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return Artifact{}, fmt.Errorf("close artifact: %w", err)
	}

	s.mu.Lock()
	s.active[filepath.Base(path)] = struct{}{}
	s.mu.Unlock()

	return Artifact{
		ID:          id,
		Path:        path,
		MIME:        kind.MIME,
		Size:        int64(len(data)),
		Fingerprint: Fingerprint(data),
		Data:        data,
	}, nil
}

func (s *Store) Remove(a Artifact) error {
	if a.Path == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.active, filepath.Base(a.Path))
	s.mu.Unlock()

	if err := os.Remove(a.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove artifact %s: %w", a.ID, err)
	}
	return nil
}

// Sweep deletes staged files last modified before now-maxAge. Artifacts
// staged by this Store and not yet removed are skipped regardless of age, so
// only files orphaned by an earlier process are collected.
func (s *Store) Sweep(maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read artifact dir: %w", err)
	}

	cutoff := now.Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || s.inUse(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Str("file", entry.Name()).Msg("sweep remove failed")
			continue
		}
		removed++
	}
	return removed, nil
}

func (s *Store) inUse(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[name]
	return ok
}

// Fingerprint is the hex blake2b-256 digest of data.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
