package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Credential holds the secrets one connector needs to authenticate against
// its API.
type Credential struct {
	// Name identifies the connector or account the secret belongs to.
	Name         string    `json:"name"`
	APIKey       string    `json:"api_key,omitempty"`
	APISecret    string    `json:"api_secret,omitempty"`
	Token        string    `json:"token,omitempty"`
	Username     string    `json:"username,omitempty"`
	Password     string    `json:"password,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Authenticator builds the request authenticator this credential implies:
// bearer token first, then API key, then basic auth, else none.
func (c *Credential) Authenticator() Authenticator {
	switch {
	case c == nil:
		return None{}
	case c.Token != "":
		return &BearerToken{Token: c.Token}
	case c.APIKey != "":
		return &APIKey{Key: c.APIKey}
	case c.Username != "":
		return &BasicAuth{Username: c.Username, Password: c.Password}
	default:
		return None{}
	}
}

// CredentialStore persists connector credentials.
type CredentialStore interface {
	Store(cred *Credential) error
	Retrieve(name string) (*Credential, error)
	List() ([]*Credential, error)
	Delete(name string) error
	Exists(name string) bool
}

// Manager chains credential stores with fallback: writes go to the first
// store that accepts them, reads probe each store in order.
type Manager struct {
	stores []CredentialStore
}

// NewManager builds the default chain: keychain, encrypted file, environment.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := configDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}
	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to open encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)
	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores builds a manager over an explicit chain, mostly for
// tests.
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store writes the credential to the first store that accepts it.
func (m *Manager) Store(cred *Credential) error {
	if cred == nil || cred.Name == "" {
		return ErrInvalidCredentials
	}
	cred.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(cred); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = ErrStoreUnavailable
	}
	return fmt.Errorf("no store accepted the credential: %w", lastErr)
}

// Retrieve probes each store until one has the credential.
func (m *Manager) Retrieve(name string) (*Credential, error) {
	for _, store := range m.stores {
		cred, err := store.Retrieve(name)
		if err == nil {
			return cred, nil
		}
	}
	return nil, ErrCredentialsNotFound
}

// Delete removes the credential from every store that has it.
func (m *Manager) Delete(name string) error {
	deleted := false
	for _, store := range m.stores {
		if err := store.Delete(name); err == nil {
			deleted = true
		}
	}
	if !deleted {
		return ErrCredentialsNotFound
	}
	return nil
}

// Exists reports whether any store holds the credential.
func (m *Manager) Exists(name string) bool {
	for _, store := range m.stores {
		if store.Exists(name) {
			return true
		}
	}
	return false
}

func configDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "connkit")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}
