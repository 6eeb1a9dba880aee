package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"gigslides/pkg/config"
)

func testAccount(name string) *Account {
	return &Account{
		Name:              name,
		AccessToken:       "EAAGtoken1234567890",
		BusinessAccountID: "17841400000000000",
		GitHubToken:       "github_pat_abcdef123456",
	}
}

func clearEnv(t *testing.T) {
	t.Setenv(EnvAccessToken, "")
	t.Setenv(EnvAccountID, "")
	t.Setenv(EnvGitHubToken, "")
}

func TestManagerStoreAndRetrieve(t *testing.T) {
	store := newMockStore()
	m := NewManagerWithStores(store)

	require.NoError(t, m.Store(testAccount("lml")))

	got, err := m.Retrieve("lml")
	require.NoError(t, err)
	assert.Equal(t, "17841400000000000", got.BusinessAccountID)
	assert.False(t, got.LastModified.IsZero())

	require.NoError(t, m.Delete("lml"))
	_, err = m.Retrieve("lml")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.ErrorIs(t, m.Delete("lml"), ErrCredentialsNotFound)
}

func TestManagerStoreValidates(t *testing.T) {
	m := NewManagerWithStores(newMockStore())

	err := m.Store(&Account{Name: "lml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access token is required")
	assert.Contains(t, err.Error(), "business account ID is required")
	assert.ErrorIs(t, m.Store(nil), ErrInvalidCredentials)
}

func TestManagerStoreFallsBack(t *testing.T) {
	broken := newMockStore()
	broken.storeErr = errors.New("keychain locked")
	backup := newMockStore()

	m := NewManagerWithStores(broken, backup)
	require.NoError(t, m.Store(testAccount("lml")))
	assert.True(t, backup.Exists("lml"))
	assert.False(t, broken.Exists("lml"))
}

func TestManagerStoreAllFail(t *testing.T) {
	broken := newMockStore()
	broken.storeErr = errors.New("read-only")

	err := NewManagerWithStores(broken, NewEnvironmentStore()).Store(testAccount("lml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestManagerListNewestFirst(t *testing.T) {
	a, b := newMockStore(), newMockStore()
	old := testAccount("old")
	old.LastModified = time.Now().Add(-time.Hour)
	require.NoError(t, a.Store(old))

	stale := testAccount("new")
	stale.LastModified = time.Now().Add(-2 * time.Hour)
	stale.AccessToken = "stale"
	require.NoError(t, a.Store(stale))

	fresh := testAccount("new")
	fresh.LastModified = time.Now()
	require.NoError(t, b.Store(fresh))

	broken := newMockStore()
	broken.listErr = errors.New("boom")

	accounts, err := NewManagerWithStores(a, broken, b).List()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "new", accounts[0].Name)
	assert.Equal(t, fresh.AccessToken, accounts[0].AccessToken)
	assert.Equal(t, "old", accounts[1].Name)
}

func TestManagerApply(t *testing.T) {
	store := newMockStore()
	require.NoError(t, store.Store(testAccount("lml")))
	m := NewManagerWithStores(store)

	cfg := config.DefaultConfig()
	cfg.Hosting.Token = "from-config"
	require.NoError(t, m.Apply(cfg, ""))

	assert.Equal(t, "EAAGtoken1234567890", cfg.Instagram.AccessToken)
	assert.Equal(t, "17841400000000000", cfg.Instagram.BusinessAccountID)
	assert.Equal(t, "from-config", cfg.Hosting.Token)

	assert.ErrorIs(t, NewManagerWithStores(newMockStore()).Apply(cfg, ""), ErrCredentialsNotFound)
}

func TestEnvironmentStore(t *testing.T) {
	clearEnv(t)
	env := NewEnvironmentStore()
	assert.False(t, env.Exists(""))
	_, err := env.Retrieve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	t.Setenv(EnvAccessToken, "EAAGtoken")
	t.Setenv(EnvAccountID, "1784")
	t.Setenv(EnvGitHubToken, "ghp_x")

	got, err := env.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "env", got.Name)
	assert.Equal(t, "ghp_x", got.GitHubToken)

	accounts, err := env.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.ErrorIs(t, env.Store(got), ErrStoreUnavailable)
	assert.ErrorIs(t, env.Delete("env"), ErrStoreUnavailable)
}

func TestEncryptedFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")
	store, err := NewEncryptedFileStore(path, "correct horse")
	require.NoError(t, err)

	require.NoError(t, store.Store(testAccount("lml")))
	require.NoError(t, store.Store(testAccount("lml-test")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "EAAGtoken1234567890")

	reopened, err := NewEncryptedFileStore(path, "correct horse")
	require.NoError(t, err)
	got, err := reopened.Retrieve("lml")
	require.NoError(t, err)
	assert.Equal(t, "github_pat_abcdef123456", got.GitHubToken)

	accounts, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	wrong, err := NewEncryptedFileStore(path, "battery staple")
	require.NoError(t, err)
	_, err = wrong.Retrieve("lml")
	assert.Error(t, err)

	require.NoError(t, reopened.Delete("lml"))
	require.NoError(t, reopened.Delete("lml-test"))
	assert.NoFileExists(t, path)
	assert.ErrorIs(t, reopened.Delete("lml"), ErrCredentialsNotFound)
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	t.Setenv(EnvPassphrase, "")
	dir := t.TempDir()

	first, err := NewEncryptedFileStore(filepath.Join(dir, "c.enc"), "")
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, ".passphrase"))

	second, err := NewEncryptedFileStore(filepath.Join(dir, "c.enc"), "")
	require.NoError(t, err)
	assert.Equal(t, first.passphrase, second.passphrase)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)
	require.NoError(t, store.Store(testAccount("lml")))
	require.NoError(t, store.Store(testAccount("other")))

	assert.True(t, store.Exists("lml"))
	accounts, err := store.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	require.NoError(t, store.Delete("lml"))
	assert.False(t, store.Exists("lml"))
	assert.ErrorIs(t, store.Delete("lml"), ErrCredentialsNotFound)

	accounts, err = store.List()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "other", accounts[0].Name)
}

func TestSanitizeAccount(t *testing.T) {
	s := SanitizeAccount(testAccount("lml"))
	assert.Equal(t, "EAAG...7890", s.AccessToken)
	assert.Equal(t, "gith...3456", s.GitHubToken)
	assert.Equal(t, "17841400000000000", s.BusinessAccountID)
	assert.Nil(t, SanitizeAccount(nil))
	assert.Equal(t, "********", maskString("short"))
	assert.Empty(t, maskString(""))
}

func TestShowTokenGuide(t *testing.T) {
	var buf bytes.Buffer
	ShowTokenGuide(&buf)
	assert.Contains(t, buf.String(), "instagram_content_publish")
	assert.Contains(t, buf.String(), EnvAccessToken)
}
