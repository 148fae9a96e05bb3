package session

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const (
	configDirName   = "insight"
	sessionFileName = "session.json"
	keyringService  = "insight-cli"
)

// Storage is the durable backend for a session. Load returns empty
// strings for missing values; Save and Clear always act on both keys.
type Storage interface {
	Load() (userJSON, token string, err error)
	Save(userJSON, token string) error
	Clear() error
}

// sessionFile mirrors the two durable keys: the serialized user record
// and the opaque token
type sessionFile struct {
	User  string `json:"user,omitempty"`
	Token string `json:"token,omitempty"`
}

// FileStorage keeps the session in a JSON file under the user's config
// directory
type FileStorage struct {
	path string
}

// NewFileStorage creates a file-backed storage at the given path
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// DefaultSessionPath returns ~/.config/insight/session.json
func DefaultSessionPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName, sessionFileName), nil
}

// Load reads both keys from the session file. A missing file is not an
// error; it simply yields an empty session.
func (f *FileStorage) Load() (string, string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("failed to read session file: %w", err)
	}

	var file sessionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return "", "", fmt.Errorf("failed to parse session file: %w", err)
	}
	return file.User, file.Token, nil
}

// Save writes both keys to the session file
func (f *FileStorage) Save(userJSON, token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(sessionFile{User: userJSON, Token: token}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session file: %w", err)
	}

	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the session file
func (f *FileStorage) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// KeyringStorage keeps the token in the OS keychain/credential manager
// and delegates the user record to a file store. The keyring entry is
// keyed per server so sessions against different servers don't collide.
type KeyringStorage struct {
	files *FileStorage
	key   string
}

// NewKeyringStorage creates a keyring-backed storage for the given
// server URL
func NewKeyringStorage(files *FileStorage, serverURL string) *KeyringStorage {
	host := serverURL
	if u, err := url.Parse(serverURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return &KeyringStorage{
		files: files,
		key:   fmt.Sprintf("token-%s", host),
	}
}

func (k *KeyringStorage) Load() (string, string, error) {
	userJSON, _, err := k.files.Load()
	if err != nil {
		return "", "", err
	}

	token, err := keyring.Get(keyringService, k.key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return userJSON, "", nil
		}
		return "", "", fmt.Errorf("failed to load token: %w", err)
	}
	return userJSON, token, nil
}

func (k *KeyringStorage) Save(userJSON, token string) error {
	if err := k.files.Save(userJSON, ""); err != nil {
		return err
	}
	if err := keyring.Set(keyringService, k.key, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (k *KeyringStorage) Clear() error {
	if err := k.files.Clear(); err != nil {
		return err
	}
	if err := keyring.Delete(keyringService, k.key); err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
