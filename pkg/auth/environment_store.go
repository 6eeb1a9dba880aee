package auth

import (
	"os"
	"time"
)

// Environment variables read by EnvironmentStore
const (
	EnvAccessToken = "GIGSLIDES_IG_ACCESS_TOKEN"
	EnvAccountID   = "GIGSLIDES_IG_ACCOUNT_ID"
	EnvGitHubToken = "GIGSLIDES_GITHUB_TOKEN"
)

// EnvironmentStore is a read-only store over GIGSLIDES_* variables, used in CI
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve ignores the name unless it is set; the environment holds one account
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	token := os.Getenv(EnvAccessToken)
	accountID := os.Getenv(EnvAccountID)
	if token == "" || accountID == "" {
		return nil, ErrCredentialsNotFound
	}
	if name == "" {
		name = "env"
	}
	return &Account{
		Name:              name,
		AccessToken:       token,
		BusinessAccountID: accountID,
		GitHubToken:       os.Getenv(EnvGitHubToken),
	}, nil
}

func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	// sorts behind anything saved to disk
	account.LastModified = time.Time{}
	return []*Account{account}, nil
}

func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv(EnvAccessToken) != "" && os.Getenv(EnvAccountID) != ""
}
