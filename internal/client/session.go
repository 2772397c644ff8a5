package client

import (
	"encoding/json"
	"os"
	"sync"
)

// Session is the shell state persisted between runs.
type Session struct {
	Token string `json:"token"`
	Lang  string `json:"lang"`

	path string
	mu   sync.Mutex
}

// DefaultSessionFile is where the shell keeps its session.
const DefaultSessionFile = "faultkeeper-session.json"

// LoadSession reads the session at path. A missing file yields an empty
// session bound to path.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the session back to its file, readable by the owner only.
func (s *Session) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

// SetLang changes the preferred language.
func (s *Session) SetLang(lang string) {
	s.mu.Lock()
	s.Lang = lang
	s.mu.Unlock()
}

// SetToken replaces the bearer token.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.Token = token
	s.mu.Unlock()
}
