package settings

import (
	"database/sql"
	"encoding/json"
	"errors"

	_ "modernc.org/sqlite"

	"github.com/alambare/gitlab-project-dashboard/internal/apperrors"
	"github.com/alambare/gitlab-project-dashboard/internal/domain"
)

// DefaultAPIBaseURL is used when neither the store nor the environment
// provides an instance URL.
const DefaultAPIBaseURL = "https://gitlab.com"

const (
	keyAPIBaseURL       = "api_base_url"
	keyAccessToken      = "access_token"
	keyCurrentContainer = "current_container"
)

// Store is the durable key-value home for user settings: instance URL, access
// token, and the last-selected container. Environment values act as defaults
// until the user saves their own.
type Store struct {
	db         *sql.DB
	defBaseURL string
	defToken   string
}

func Open(path, defaultBaseURL, defaultToken string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, defBaseURL: defaultBaseURL, defToken: defaultToken}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS settings (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`)
	return err
}

func (s *Store) Get(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrSettingNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`
INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value;
`, key, value)
	return err
}

// APIBaseURL implements gitlab.Source. Falls back to the environment default,
// then the public instance.
func (s *Store) APIBaseURL() string {
	if v, err := s.Get(keyAPIBaseURL); err == nil && v != "" {
		return v
	}
	if s.defBaseURL != "" {
		return s.defBaseURL
	}
	return DefaultAPIBaseURL
}

func (s *Store) SetAPIBaseURL(u string) error {
	return s.Set(keyAPIBaseURL, u)
}

// AccessToken implements gitlab.Source.
func (s *Store) AccessToken() string {
	if v, err := s.Get(keyAccessToken); err == nil && v != "" {
		return v
	}
	return s.defToken
}

func (s *Store) SetAccessToken(t string) error {
	return s.Set(keyAccessToken, t)
}

// CurrentContainer returns the persisted last-selected container, or nil when
// none was ever selected.
func (s *Store) CurrentContainer() (*domain.Container, error) {
	v, err := s.Get(keyCurrentContainer)
	if errors.Is(err, apperrors.ErrSettingNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var c domain.Container
	if err := json.Unmarshal([]byte(v), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) SetCurrentContainer(c domain.Container) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.Set(keyCurrentContainer, string(b))
}
