package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWhenFileEmpty(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "session.yaml"))
	require.NoError(t, err)

	session, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 30_000, session.TimeoutMillis)
	require.Equal(t, 16384, session.MaxPacketLen)
	require.NotEmpty(t, session.CipherClientServer)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "session.yaml"))
	require.NoError(t, err)

	session := DefaultSession()
	session.TimeoutMillis = 5000
	session.MaxPacketLen = 8192
	require.NoError(t, store.Save(session))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 5000, loaded.TimeoutMillis)
	require.Equal(t, 8192, loaded.MaxPacketLen)
}

func TestEnvOverrideWinsOverFile(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "session.yaml"))
	require.NoError(t, err)

	session := DefaultSession()
	session.TimeoutMillis = 5000
	require.NoError(t, store.Save(session))

	t.Setenv("GOSSH_TIMEOUT_MS", "9999")
	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 9999, loaded.TimeoutMillis)
}

func TestValidateRejectsNonPositiveFields(t *testing.T) {
	s := DefaultSession()
	s.TimeoutMillis = 0
	require.Error(t, s.Validate())
}

func TestPreferencesFallsBackToDefaults(t *testing.T) {
	s := &Session{TimeoutMillis: 1, MaxPacketLen: 1}
	prefs := s.Preferences()
	require.NotEmpty(t, prefs.Get("encryption_client_to_server"))
}

func TestOpenCreatesMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "session.yaml")
	_, err := Open(path)
	require.NoError(t, err)

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)
}
