package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/7977Brahma/tailika-matrimony-platform/compat"
	"github.com/7977Brahma/tailika-matrimony-platform/discovery"
)

const testSecret = "test-secret-key-for-testing"

// fakeStore is an in-memory profileStore.
type fakeStore struct {
	*discovery.MemoryStore

	mu        sync.Mutex
	creds     map[string][2]string // email -> {id, hash}
	approvals map[string]string
	online    map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		MemoryStore: discovery.NewMemoryStore(),
		creds:       make(map[string][2]string),
		approvals:   make(map[string]string),
		online:      make(map[string]int),
	}
}

func (f *fakeStore) UpsertProfile(_ context.Context, p *compat.Profile) error {
	f.mu.Lock()
	approval, ok := f.approvals[p.ID]
	if !ok {
		approval = discovery.ApprovalPending
		f.approvals[p.ID] = approval
	}
	f.mu.Unlock()
	f.Put(*p, true, approval)
	return nil
}

func (f *fakeStore) Credentials(_ context.Context, email string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.creds[email]
	if !ok {
		return "", "", discovery.ErrNotFound
	}
	return c[0], c[1], nil
}

func (f *fakeStore) TouchOnline(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online[id]++
	return nil
}

func (f *fakeStore) onlineCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online[id]
}

// addUser registers credentials and, when p is non-nil, an approved
// complete profile. It returns a bearer token for the user.
func (f *fakeStore) addUser(t *testing.T, id, email, password string, p *compat.Profile) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	f.mu.Lock()
	f.creds[email] = [2]string{id, string(hash)}
	if p != nil {
		f.approvals[id] = discovery.ApprovalApproved
	}
	f.mu.Unlock()
	if p != nil {
		f.Put(*p, true, discovery.ApprovalApproved)
	}

	token, err := issueToken([]byte(testSecret), id, time.Hour)
	require.NoError(t, err)
	return token
}

func testProfile(id string, gender compat.Gender, age int) *compat.Profile {
	return &compat.Profile{
		ID:        id,
		Name:      "Test " + id,
		Gender:    gender,
		Age:       age,
		Location:  compat.Location{City: "Pune", State: "Maharashtra", Country: "India"},
		Education: compat.Education{Degree: "B.Tech", Field: "Computer Science"},
		Career:    compat.Career{JobTitle: "Engineer"},
		Lifestyle: compat.Lifestyle{Diet: compat.Veg, Smoking: compat.HabitNo, Drinking: compat.HabitNo},
		Family:    compat.Family{Type: compat.Nuclear, Values: compat.Traditional},
	}
}

func testConfig() *Config {
	cfg := defaultConfig()
	cfg.JWTSecret = testSecret
	cfg.RateLimit.Requests = 0
	return &cfg
}

type testEnv struct {
	app     *app
	store   *fakeStore
	handler http.Handler
	// Tokens for the seeded users.
	tokens map[string]string
}

// newTestEnv seeds a male subject m-1 with two compatible women (f-1
// scores 100, f-2 scores 94), an ineligible man m-2 and a user with no
// profile.
func newTestEnv(t *testing.T, cfg *Config) *testEnv {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}
	s := newFakeStore()

	f2 := testProfile("f-2", compat.Female, 30)
	f2.Location.City = "Mumbai"

	tokens := map[string]string{
		"m-1":   s.addUser(t, "m-1", "m1@example.com", "password1", testProfile("m-1", compat.Male, 30)),
		"f-1":   s.addUser(t, "f-1", "f1@example.com", "password2", testProfile("f-1", compat.Female, 33)),
		"f-2":   s.addUser(t, "f-2", "f2@example.com", "password3", f2),
		"m-2":   s.addUser(t, "m-2", "m2@example.com", "password4", testProfile("m-2", compat.Male, 31)),
		"new-1": s.addUser(t, "new-1", "new@example.com", "password5", nil),
	}

	a, err := newApp(cfg, s)
	require.NoError(t, err)
	return &testEnv{app: a, store: s, handler: newRouter(a), tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, w)["error"]
}
