// Package localstate persists the signed-in user between shell runs.
package localstate

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/PabloGalante/tubot/internal/domain"
	"github.com/PabloGalante/tubot/internal/observability"
)

// Key names the single record this store keeps.
const Key = "tubot_user"

// Record is what survives a restart: the user and, when the backend issued
// one, the access token.
type Record struct {
	User    domain.User         `json:"user"`
	Session *domain.AuthSession `json:"session,omitempty"`
}

func (r Record) AccessToken() string {
	if r.Session == nil {
		return ""
	}
	return r.Session.AccessToken
}

type Store struct {
	path string
}

// New keeps the record in dir/tubot_user.json.
func New(dir string) *Store {
	return &Store{path: filepath.Join(dir, Key+".json")}
}

func (s *Store) Path() string {
	return s.path
}

// Init loads the stored record. Content that does not decode into a usable
// user is deleted and reported as signed out.
func (s *Store) Init() (Record, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, false, nil
		}
		return Record{}, false, errors.Wrap(err, "read local state")
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil || !rec.User.Valid() {
		observability.Logger().Warn().Str("path", s.path).Msg("discarding unreadable local state")
		if rmErr := s.Clear(); rmErr != nil {
			return Record{}, false, rmErr
		}
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Save replaces the stored record atomically.
func (s *Store) Save(rec Record) error {
	if !rec.User.Valid() {
		return errors.New("refusing to save a user without id or email")
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode local state")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "create state dir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), Key+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp state file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write local state")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "write local state")
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return errors.Wrap(err, "chmod local state")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replace local state")
}

// Clear removes the record. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove local state")
	}
	return nil
}
