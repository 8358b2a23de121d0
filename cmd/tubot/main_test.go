package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/tubot/internal/adapters/storage/localstate"
	"github.com/PabloGalante/tubot/internal/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "--config", filepath.Join(t.TempDir(), "config.yaml"), "version")
	require.NoError(t, err)
	require.Contains(t, out, "tubot "+version)
}

func TestWhoAmI(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	_, err := execute(t, "--config", cfgPath, "whoami")
	require.ErrorIs(t, err, errSignedOut)

	require.NoError(t, localstate.New(dir).Save(localstate.Record{
		User: domain.User{ID: "u1", Username: "ana", Email: "ana@example.com"},
	}))

	out, err := execute(t, "--config", cfgPath, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "ana <ana@example.com>")
}

func TestLogoutWhenSignedOut(t *testing.T) {
	out, err := execute(t, "--config", filepath.Join(t.TempDir(), "config.yaml"), "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Sesión cerrada.")
}
