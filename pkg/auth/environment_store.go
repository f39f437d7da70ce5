package auth

import (
	"os"
	"strings"
	"time"
)

// EnvironmentStore reads credentials from CONNKIT_<NAME>_API_KEY style
// environment variables. It is read-only and sits last in the fallback chain.
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables.
func (e *EnvironmentStore) Store(*Credential) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Retrieve(name string) (*Credential, error) {
	if name == "" {
		return nil, ErrInvalidCredentials
	}
	prefix := "CONNKIT_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_")) + "_"

	cred := &Credential{
		Name:         name,
		APIKey:       os.Getenv(prefix + "API_KEY"),
		APISecret:    os.Getenv(prefix + "API_SECRET"),
		Token:        os.Getenv(prefix + "TOKEN"),
		Username:     os.Getenv(prefix + "USERNAME"),
		Password:     os.Getenv(prefix + "PASSWORD"),
		LastModified: time.Now(),
	}
	if cred.APIKey == "" && cred.Token == "" && cred.Username == "" {
		return nil, ErrCredentialsNotFound
	}
	return cred, nil
}

// List cannot enumerate names from the environment.
func (e *EnvironmentStore) List() ([]*Credential, error) {
	return []*Credential{}, nil
}

// Delete is not supported for environment variables.
func (e *EnvironmentStore) Delete(string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(name string) bool {
	_, err := e.Retrieve(name)
	return err == nil
}
