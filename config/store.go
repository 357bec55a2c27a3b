package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

// lockRetryInterval is the pause between contended TryLock attempts in
// withLock. bctl/agent/config/client/systemd.go retries its own flock this
// way in a bare for-loop with no backoff at all; this repo adds one so a
// contended lock doesn't spin a full CPU core.
const lockRetryInterval = 5 * time.Millisecond

// Store is a YAML file backing a Session, guarded by an advisory file lock
// so two processes sharing a config path don't interleave writes — the
// same TryLock-spin-then-defer-Unlock pattern
// bctl/agent/config/client/systemd.go uses directly against
// github.com/gofrs/flock.
type Store struct {
	path string
	lock *flock.Flock
}

// Open returns a Store for path, creating the parent directory and an
// empty file if neither exists yet.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &FileError{Path: path, InnerErr: err}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if f, cerr := os.Create(path); cerr != nil {
			return nil, &FileError{Path: path, InnerErr: cerr}
		} else {
			f.Close()
		}
	} else if err != nil {
		return nil, &FileError{Path: path, InnerErr: err}
	}

	return &Store{path: path, lock: flock.New(path + ".lock")}, nil
}

// Load reads and parses the session file, applies DefaultSession for any
// unset zero-valued fields, then applies environment overrides. A missing
// or empty file yields DefaultSession with overrides applied.
func (s *Store) Load() (*Session, error) {
	if err := s.withLock(func() error { return nil }); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil && !os.IsNotExist(err) {
		return nil, &FileError{Path: s.path, InnerErr: err}
	}

	session := DefaultSession()
	if len(data) > 0 {
		var onDisk Session
		if err := yaml.Unmarshal(data, &onDisk); err != nil {
			return nil, &ValidationError{InnerErr: err}
		}
		mergeNonZero(session, &onDisk)
	}

	session.ApplyEnvOverrides()
	if err := session.Validate(); err != nil {
		return nil, err
	}
	return session, nil
}

// Save writes session to disk under the file lock, overwriting entirely —
// the same whole-file-replace approach as
// bzerolib/envconfig/yamlenvconfig.go's save().
func (s *Store) Save(session *Session) error {
	data, err := yaml.Marshal(session)
	if err != nil {
		return &ValidationError{InnerErr: err}
	}

	return s.withLock(func() error {
		if err := os.WriteFile(s.path, data, 0o644); err != nil {
			return &FileError{Path: s.path, InnerErr: err}
		}
		return nil
	})
}

func (s *Store) withLock(fn func() error) error {
	for {
		ok, err := s.lock.TryLock()
		if err != nil {
			return &FileError{Path: s.path, InnerErr: err}
		}
		if ok {
			break
		}
		time.Sleep(lockRetryInterval)
	}
	defer s.lock.Unlock()
	return fn()
}

// Watch calls onChange with the freshly reloaded Session every time the
// backing file is written, until stop is closed. Grounded on
// bctl/agent/config/client/systemd.go's WaitForRegistration fsnotify loop.
func (s *Store) Watch(stop <-chan struct{}, onChange func(*Session, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := watcher.Add(s.path); err != nil {
		watcher.Close()
		return &FileError{Path: s.path, InnerErr: err}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-stop:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write {
					session, err := s.Load()
					onChange(session, err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				onChange(nil, err)
			}
		}
	}()

	return nil
}

// mergeNonZero copies each non-zero-valued field of onDisk into session,
// leaving session's defaults in place for anything the file left unset.
func mergeNonZero(session, onDisk *Session) {
	if onDisk.TimeoutMillis > 0 {
		session.TimeoutMillis = onDisk.TimeoutMillis
	}
	if onDisk.MaxPacketLen > 0 {
		session.MaxPacketLen = onDisk.MaxPacketLen
	}
	if len(onDisk.CipherClientServer) > 0 {
		session.CipherClientServer = onDisk.CipherClientServer
	}
	if len(onDisk.CipherServerClient) > 0 {
		session.CipherServerClient = onDisk.CipherServerClient
	}
	if len(onDisk.MacClientServer) > 0 {
		session.MacClientServer = onDisk.MacClientServer
	}
	if len(onDisk.MacServerClient) > 0 {
		session.MacServerClient = onDisk.MacServerClient
	}
}
