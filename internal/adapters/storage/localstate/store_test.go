package localstate_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tubot/internal/adapters/storage/localstate"
	"github.com/PabloGalante/tubot/internal/domain"
)

func TestInitEmpty(t *testing.T) {
	s := localstate.New(t.TempDir())

	_, ok, err := s.Init()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSaveInitClear(t *testing.T) {
	s := localstate.New(t.TempDir())
	rec := localstate.Record{
		User:    domain.User{ID: "u1", Username: "ana", Email: "ana@example.com"},
		Session: &domain.AuthSession{AccessToken: "tok", ExpiresAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	require.NoError(t, s.Save(rec))

	got, ok, err := s.Init()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, rec.User, got.User)
	require.Equal(t, "tok", got.AccessToken())

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())

	_, ok, err = s.Init()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInitDiscardsCorruptContent(t *testing.T) {
	for name, content := range map[string]string{
		"not json":   "{user:",
		"no user id": `{"user":{"email":"ana@example.com"}}`,
		"wrong type": `["tubot"]`,
	} {
		t.Run(name, func(t *testing.T) {
			s := localstate.New(t.TempDir())
			require.NoError(t, os.WriteFile(s.Path(), []byte(content), 0o600))

			_, ok, err := s.Init()
			require.NoError(t, err)
			require.False(t, ok)

			_, statErr := os.Stat(s.Path())
			require.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestSaveRejectsInvalidUser(t *testing.T) {
	s := localstate.New(t.TempDir())
	require.Error(t, s.Save(localstate.Record{User: domain.User{Username: "ana"}}))
}
