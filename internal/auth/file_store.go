package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"

	"hrm-admin/console/pkg/models"
)

// ErrNoSession is returned by Load when nothing has been saved.
var ErrNoSession = errors.New("not signed in")

// FileSessionStore keeps the session of a CLI user between runs.
type FileSessionStore struct {
	path string
}

// NewFileSessionStore stores the session at path.
func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

type sessionFile struct {
	UserID      int64           `json:"userId"`
	Username    string          `json:"username"`
	Role        models.RoleName `json:"role"`
	AccessToken string          `json:"accessToken"`
	Expiry      time.Time       `json:"expiry,omitempty"`
}

// Save writes s readable only by the current user.
func (f *FileSessionStore) Save(s *Session) error {
	if s == nil || s.Token == nil {
		return errors.New("nothing to save")
	}
	data, err := json.MarshalIndent(sessionFile{
		UserID:      s.UserID,
		Username:    s.Username,
		Role:        s.Role,
		AccessToken: s.Token.AccessToken,
		Expiry:      s.Token.Expiry,
	}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(f.path, data, 0o600)
}

// Load reads the saved session. It does not check expiry.
func (f *FileSessionStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("decode session file %s: %w", f.path, err)
	}
	return &Session{
		UserID:   sf.UserID,
		Username: sf.Username,
		Role:     sf.Role,
		Token: &oauth2.Token{
			AccessToken: sf.AccessToken,
			TokenType:   "Bearer",
			Expiry:      sf.Expiry,
		},
	}, nil
}

// Clear removes the saved session. Clearing twice is not an error.
func (f *FileSessionStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
