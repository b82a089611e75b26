package followstate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"designhive/client"
	"designhive/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthAPI struct {
	login   func(ctx context.Context, email, password string) (*client.Credentials, error)
	logout  func(ctx context.Context) error
	profile func(ctx context.Context, email string) (*model.User, error)
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (*client.Credentials, error) {
	return f.login(ctx, email, password)
}
func (f *fakeAuthAPI) Logout(ctx context.Context) error {
	return f.logout(ctx)
}
func (f *fakeAuthAPI) Profile(ctx context.Context, email string) (*model.User, error) {
	return f.profile(ctx, email)
}

func testUser(email, username string) model.User {
	return model.User{ID: uuid.New(), Email: email, Username: username}
}

func TestSession_LoginPersistsAndBroadcasts(t *testing.T) {
	user := testUser("a@example.com", "alice")
	api := &fakeAuthAPI{
		login: func(ctx context.Context, email, password string) (*client.Credentials, error) {
			return &client.Credentials{Token: "issued-token", User: user}, nil
		},
	}
	storage := NewMemoryStorage()
	session := NewSession(api, storage)

	var seen *model.User
	unsubscribe := session.Subscribe(func(u *model.User) { seen = u })
	defer unsubscribe()

	got, err := session.Login(context.Background(), "a@example.com", "password123", true)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "issued-token", session.Token())
	require.NotNil(t, seen)
	assert.Equal(t, user.ID, seen.ID)

	// 持久化后新会话能恢复登录态
	restored := NewSession(api, storage)
	assert.Equal(t, "issued-token", restored.Token())
	require.NotNil(t, restored.Current())
	assert.Equal(t, "a@example.com", restored.Current().Email)
	assert.Equal(t, "a@example.com", restored.RememberedEmail())
}

// TestSession_LogoutClearsStateEvenOnAPIFailure 后端失败也要清除本地登录态，
// 但记住的邮箱保留供下次预填
func TestSession_LogoutClearsStateEvenOnAPIFailure(t *testing.T) {
	user := testUser("a@example.com", "alice")
	api := &fakeAuthAPI{
		login: func(ctx context.Context, email, password string) (*client.Credentials, error) {
			return &client.Credentials{Token: "issued-token", User: user}, nil
		},
		logout: func(ctx context.Context) error {
			return errors.New("backend down")
		},
	}
	storage := NewMemoryStorage()
	session := NewSession(api, storage)

	_, err := session.Login(context.Background(), "a@example.com", "password123", true)
	require.NoError(t, err)

	err = session.Logout(context.Background())
	require.Error(t, err)

	assert.Nil(t, session.Current())
	assert.Empty(t, session.Token())
	assert.Equal(t, "a@example.com", session.RememberedEmail())

	_, hasToken := storage.Get("auth_token")
	assert.False(t, hasToken)
}

func TestSession_RememberFlagControlsEmail(t *testing.T) {
	user := testUser("a@example.com", "alice")
	api := &fakeAuthAPI{
		login: func(ctx context.Context, email, password string) (*client.Credentials, error) {
			return &client.Credentials{Token: "issued-token", User: user}, nil
		},
	}
	session := NewSession(api, NewMemoryStorage())

	_, err := session.Login(context.Background(), "a@example.com", "password123", true)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", session.RememberedEmail())

	// remember=false 清除之前记住的邮箱
	_, err = session.Login(context.Background(), "a@example.com", "password123", false)
	require.NoError(t, err)
	assert.Empty(t, session.RememberedEmail())
}

// TestSession_RefreshFailureKeepsCachedCopy 刷新失败时保留缓存副本用于回退展示
func TestSession_RefreshFailureKeepsCachedCopy(t *testing.T) {
	user := testUser("a@example.com", "alice")
	refreshed := user
	refreshed.Username = "alice-renamed"
	failing := true

	api := &fakeAuthAPI{
		login: func(ctx context.Context, email, password string) (*client.Credentials, error) {
			return &client.Credentials{Token: "issued-token", User: user}, nil
		},
		profile: func(ctx context.Context, email string) (*model.User, error) {
			if failing {
				return nil, errors.New("backend down")
			}
			return &refreshed, nil
		},
	}
	session := NewSession(api, NewMemoryStorage())
	_, err := session.Login(context.Background(), "a@example.com", "password123", false)
	require.NoError(t, err)

	require.Error(t, session.Refresh(context.Background()))
	require.NotNil(t, session.Current())
	assert.Equal(t, "alice", session.Current().Username)

	failing = false
	require.NoError(t, session.Refresh(context.Background()))
	assert.Equal(t, "alice-renamed", session.Current().Username)
}

func TestSession_RedirectPathConsumeOnce(t *testing.T) {
	session := NewSession(&fakeAuthAPI{}, NewMemoryStorage())

	assert.Empty(t, session.ConsumeRedirectPath())

	session.SetRedirectPath("/profile")
	assert.Equal(t, "/profile", session.ConsumeRedirectPath())
	assert.Empty(t, session.ConsumeRedirectPath())
}

func TestSession_Unsubscribe(t *testing.T) {
	user := testUser("a@example.com", "alice")
	api := &fakeAuthAPI{
		login: func(ctx context.Context, email, password string) (*client.Credentials, error) {
			return &client.Credentials{Token: "issued-token", User: user}, nil
		},
	}
	session := NewSession(api, NewMemoryStorage())

	calls := 0
	unsubscribe := session.Subscribe(func(*model.User) { calls++ })
	unsubscribe()

	_, err := session.Login(context.Background(), "a@example.com", "password123", false)
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestFileStorage_RoundTripAndCorruptRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	fs, err := NewFileStorage(path)
	require.NoError(t, err)
	require.NoError(t, fs.Set("auth_token", "issued-token"))

	// 重新打开能读回
	reopened, err := NewFileStorage(path)
	require.NoError(t, err)
	value, ok := reopened.Get("auth_token")
	require.True(t, ok)
	assert.Equal(t, "issued-token", value)

	require.NoError(t, reopened.Delete("auth_token"))
	_, ok = reopened.Get("auth_token")
	assert.False(t, ok)

	// 文件损坏从空状态开始
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	corrupt, err := NewFileStorage(path)
	require.NoError(t, err)
	_, ok = corrupt.Get("auth_token")
	assert.False(t, ok)
}
