package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/assys/brickguide/pkg/errors"
)

const sessionExt = ".json"

// FileStore keeps each session in <dir>/<id>.json. Writes go through a
// temporary file so a crash never leaves a half-written session behind.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates dir if needed. An empty dir means
// ~/.config/brickguide/sessions.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "locate session directory")
		}
		dir = filepath.Join(home, ".config", "brickguide", "sessions")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "create session directory")
	}
	return &FileStore{dir: dir}, nil
}

// file maps an ID to its session file; ok is false for IDs that would
// escape the directory.
func (s *FileStore) file(id string) (path string, ok bool) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", false
	}
	return filepath.Join(s.dir, id+sessionExt), true
}

func (s *FileStore) Get(_ context.Context, id string) (*Session, error) {
	path, ok := s.file(id)
	if !ok {
		return nil, nil
	}
	s.mu.RLock()
	sess, err := decodeFile(path)
	s.mu.RUnlock()
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.IsExpired() {
		s.mu.Lock()
		os.Remove(path)
		s.mu.Unlock()
		return nil, nil
	}
	return sess, nil
}

func (s *FileStore) Set(_ context.Context, sess *Session) error {
	path, ok := s.file(sess.ID)
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "session id %q", sess.ID)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode session %s", sess.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(s.dir, "."+sess.ID+"-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "save session %s", sess.ID)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeUnavailable, err, "save session %s", sess.ID)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "save session %s", sess.ID)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "save session %s", sess.ID)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	path, ok := s.file(id)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeUnavailable, err, "delete session %s", id)
	}
	return nil
}

func (s *FileStore) Latest(_ context.Context) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *Session
	err := s.scan(func(_ string, sess *Session) {
		if !sess.IsExpired() && (latest == nil || sess.UpdatedAt.After(latest.UpdatedAt)) {
			latest = sess
		}
	})
	return latest, err
}

func (s *FileStore) Cleanup(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	return s.scan(func(path string, sess *Session) {
		if now.After(sess.ExpiresAt) {
			os.Remove(path)
		}
	})
}

// Path returns the session directory.
func (s *FileStore) Path() string { return s.dir }

// scan calls fn for every decodable session file; unreadable files are
// skipped.
func (s *FileStore) scan(fn func(path string, sess *Session)) error {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*"+sessionExt))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "list sessions")
	}
	for _, path := range paths {
		if sess, err := decodeFile(path); err == nil && sess != nil {
			fn(path, sess)
		}
	}
	return nil
}

// decodeFile returns nil, nil when the file does not exist.
func decodeFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return nil, nil
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeUnavailable, err, "read %s", filepath.Base(path))
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode %s", filepath.Base(path))
	}
	return &sess, nil
}

var _ Store = (*FileStore)(nil)

const cliSessionID = "cli"

// CLIStore remembers the terminal guide's position between runs.
type CLIStore struct {
	store *FileStore
}

func NewCLIStore(dir string) (*CLIStore, error) {
	store, err := NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return &CLIStore{store: store}, nil
}

// Load returns the saved session, or nil when there is none.
func (c *CLIStore) Load(ctx context.Context) (*Session, error) {
	return c.store.Get(ctx, cliSessionID)
}

func (c *CLIStore) Save(ctx context.Context, sess *Session) error {
	sess.ID = cliSessionID
	return c.store.Set(ctx, sess)
}

func (c *CLIStore) Clear(ctx context.Context) error {
	return c.store.Delete(ctx, cliSessionID)
}

func (c *CLIStore) Path() string {
	path, _ := c.store.file(cliSessionID)
	return path
}
