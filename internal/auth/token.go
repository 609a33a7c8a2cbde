// Package auth resolves the NoteHub bearer token and manages the local
// credentials file.
package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Token sources, in resolution order.
const (
	SourceEnv    = "env"
	SourceConfig = "config"
	SourceFile   = "file"
)

// EnvToken and EnvTokenLegacy are read before anything else.
const (
	EnvToken       = "NOTEHUB_TOKEN"
	EnvTokenLegacy = "VITE_NOTEHUB_TOKEN"
)

const credFileName = "credentials.json"

// TokenInfo is a resolved token and where it came from.
type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Store reads and writes ~/.notehub/credentials.json.
type Store struct {
	dir    string
	getenv func(string) string
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithDir puts the credentials file in dir instead of ~/.notehub.
func WithDir(dir string) Option {
	return func(s *Store) { s.dir = dir }
}

// WithGetenv replaces os.Getenv.
func WithGetenv(fn func(string) string) Option {
	return func(s *Store) { s.getenv = fn }
}

// NewStore returns a Store rooted at ~/.notehub unless WithDir is given.
func NewStore(opts ...Option) (*Store, error) {
	s := &Store{getenv: os.Getenv, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("home: %w", err)
		}
		s.dir = filepath.Join(home, ".notehub")
	}
	return s, nil
}

// Path is the credentials file location.
func (s *Store) Path() string { return filepath.Join(s.dir, credFileName) }

// Resolve returns the first token found in the environment, configToken,
// then the credentials file. It returns nil, nil when there is none.
func (s *Store) Resolve(configToken string) (*TokenInfo, error) {
	for _, key := range []string{EnvToken, EnvTokenLegacy} {
		if v := stripBearer(strings.TrimSpace(s.getenv(key))); v != "" {
			return &TokenInfo{Token: v, Source: SourceEnv}, nil
		}
	}
	if v := stripBearer(strings.TrimSpace(configToken)); v != "" {
		return &TokenInfo{Token: v, Source: SourceConfig}, nil
	}
	return s.Load()
}

// Load reads the credentials file, or returns nil, nil if it does not exist.
func (s *Store) Load() (*TokenInfo, error) {
	b, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	ti.Source = SourceFile
	if ti.Token == "" {
		return nil, nil
	}
	return &ti, nil
}

// Save writes token with owner-only permissions.
func (s *Store) Save(token string, expires *time.Time) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if expires == nil {
		expires = ExpiresAt(token)
	}
	ti := TokenInfo{Token: token, Source: SourceFile, CreatedAt: s.now(), ExpiresAt: expires}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(s.Path(), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Delete removes the credentials file. A missing file is not an error.
func (s *Store) Delete() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

var warnOnce sync.Once

// WarnIfMissing logs a single warning per process when ti carries no token.
func WarnIfMissing(logger *slog.Logger, ti *TokenInfo) {
	if ti != nil && ti.Token != "" {
		return
	}
	warnOnce.Do(func() {
		logger.Warn("no NoteHub token configured; requests will be rejected",
			slog.String("env", EnvToken))
	})
}

// Claims decodes the payload of a JWT without verifying it. Opaque tokens
// return false.
func Claims(token string) (map[string]any, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, false
	}
	var claims map[string]any
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, false
	}
	return claims, true
}

// ExpiresAt reads the exp claim of a JWT.
func ExpiresAt(token string) *time.Time {
	claims, ok := Claims(token)
	if !ok {
		return nil
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil
	}
	t := time.Unix(int64(exp), 0).UTC()
	return &t
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
