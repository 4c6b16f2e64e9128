package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/SecureTalk/internal/errs"
	"github.com/atinyakov/SecureTalk/internal/models"
	handler "github.com/atinyakov/SecureTalk/internal/server/handler/http"
	"github.com/atinyakov/SecureTalk/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memUsers is an in-memory service.UserRepository.
type memUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return errs.ErrUserExists
	}
	m.users[u.Username] = *u
	return nil
}

func (m *memUsers) UpdateKey(_ context.Context, username, key, iv string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[username]; ok {
		u.Key, u.IV = key, iv
		m.users[username] = u
	}
	return nil
}

func (m *memUsers) GetKey(_ context.Context, username string) (*models.KeyMaterial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok || u.Key == "" || u.IV == "" {
		return nil, errs.ErrNotFound
	}
	return &models.KeyMaterial{Key: u.Key, IV: u.IV}, nil
}

func (m *memUsers) hash(username string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[username].PasswordHash
}

// memMessages is an in-memory service.MessageRepository.
type memMessages struct {
	mu   sync.Mutex
	msgs []models.Message
}

func (m *memMessages) Insert(_ context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = time.Now().Format(time.RFC3339Nano)
	msg.Timestamp = time.Now().UTC()
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memMessages) FindByRecipient(_ context.Context, recipient string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, msg := range m.msgs {
		if msg.To == recipient {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func newTestServer(t *testing.T, staticDir string) (*httptest.Server, *memUsers) {
	t.Helper()
	users := &memUsers{users: map[string]models.User{}}
	msgs := &memMessages{}
	log := zap.NewNop()

	router := handler.NewRouter(
		&handler.AuthHandler{AuthService: service.NewAuthService(users), Log: log},
		&handler.KeyHandler{KeyService: service.NewKeyService(users), Log: log},
		&handler.MessageHandler{MessageService: service.NewMessageService(msgs), Log: log},
		staticDir,
		log,
	)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts, users
}

func post(t *testing.T, ts *httptest.Server, path string, body map[string]string) (int, []byte) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := ts.Client().Post(ts.URL+path, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestRouter_Scenario(t *testing.T) {
	ts, users := newTestServer(t, "")

	code, _ := post(t, ts, "/register", map[string]string{"username": "alice", "password": "pw1"})
	require.Equal(t, http.StatusOK, code)
	firstHash := users.hash("alice")

	code, body := post(t, ts, "/register", map[string]string{"username": "alice", "password": "pw2"})
	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Username already exists\n", string(body))
	assert.Equal(t, firstHash, users.hash("alice"), "duplicate register must not alter the hash")

	code, _ = post(t, ts, "/login", map[string]string{"username": "alice", "password": "pw1"})
	assert.Equal(t, http.StatusOK, code)

	code, _ = post(t, ts, "/login", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = post(t, ts, "/login", map[string]string{"username": "nobody", "password": "pw1"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = post(t, ts, "/storekey", map[string]string{"username": "alice", "key": "K", "iv": "I"})
	require.Equal(t, http.StatusOK, code)

	code, body = post(t, ts, "/getkey", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusOK, code)
	var km models.KeyMaterial
	require.NoError(t, json.Unmarshal(body, &km))
	assert.Equal(t, models.KeyMaterial{Key: "K", IV: "I"}, km)

	before := time.Now().UTC().Add(-time.Second)
	code, _ = post(t, ts, "/send", map[string]string{"from": "alice", "to": "bob", "encrypted": "ciphertext1"})
	require.Equal(t, http.StatusOK, code)

	code, body = post(t, ts, "/receive", map[string]string{"username": "bob"})
	require.Equal(t, http.StatusOK, code)
	var got []models.Message
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].From)
	assert.Equal(t, "bob", got[0].To)
	assert.Equal(t, "ciphertext1", got[0].Encrypted)
	assert.False(t, got[0].Timestamp.Before(before))

	// receive does not consume
	code, body = post(t, ts, "/receive", map[string]string{"username": "bob"})
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Len(t, got, 1)
}

func TestRouter_LongPassword(t *testing.T) {
	ts, _ := newTestServer(t, "")
	pw := strings.Repeat("p", 73)

	code, body := post(t, ts, "/register", map[string]string{"username": "alice", "password": pw})
	require.Equal(t, http.StatusOK, code, string(body))

	code, body = post(t, ts, "/login", map[string]string{"username": "alice", "password": pw})
	assert.Equal(t, http.StatusOK, code, string(body))

	code, _ = post(t, ts, "/login", map[string]string{"username": "alice", "password": strings.Repeat("q", 73)})
	assert.Equal(t, http.StatusForbidden, code)
}

func TestRouter_StoreKeyUnknownUserStillOK(t *testing.T) {
	ts, _ := newTestServer(t, "")

	code, body := post(t, ts, "/storekey", map[string]string{"username": "ghost", "key": "K", "iv": "I"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Key stored", string(body))

	code, _ = post(t, ts, "/getkey", map[string]string{"username": "ghost"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_ReceiveOrderAndEmpty(t *testing.T) {
	ts, _ := newTestServer(t, "")

	code, body := post(t, ts, "/receive", map[string]string{"username": "bob"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]\n", string(body))

	for _, c := range []string{"c1", "c2", "c3"} {
		code, _ = post(t, ts, "/send", map[string]string{"from": "alice", "to": "bob", "encrypted": c})
		require.Equal(t, http.StatusOK, code)
	}
	code, _ = post(t, ts, "/send", map[string]string{"from": "bob", "to": "alice", "encrypted": "other"})
	require.Equal(t, http.StatusOK, code)

	code, body = post(t, ts, "/receive", map[string]string{"username": "bob"})
	require.Equal(t, http.StatusOK, code)
	var got []models.Message
	require.NoError(t, json.Unmarshal(body, &got))
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Timestamp.Before(got[i-1].Timestamp), "timestamps must be non-decreasing")
	}
	assert.Equal(t, []string{"c1", "c2", "c3"}, []string{got[0].Encrypted, got[1].Encrypted, got[2].Encrypted})
}

func TestRouter_RejectsOtherContentTypes(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, err := ts.Client().Post(ts.URL+"/register", "text/plain", bytes.NewBufferString("username=alice"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestRouter_ServesStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0600))
	ts, _ := newTestServer(t, dir)

	resp, err := ts.Client().Get(ts.URL + "/app.js")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)", string(body))
}

func TestRouter_MissingStaticDir(t *testing.T) {
	ts, _ := newTestServer(t, filepath.Join(t.TempDir(), "absent"))

	resp, err := ts.Client().Get(ts.URL + "/index.html")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
