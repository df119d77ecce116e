package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	domainStudent "students/internal/domain/student"
	usecaseStudent "students/internal/usecase/student"
)

const testAPIBasePath = DefaultAPIBasePath

func apiPath(route string) string {
	return testAPIBasePath + route
}

// testServer wraps httptest.Server for integration testing.
type testServer struct {
	*httptest.Server
}

// newTestServer creates a test HTTP server with the given handlers.
func newTestServer(t *testing.T, cfg RouterConfig) *testServer {
	t.Helper()
	if cfg.APIBasePath == "" {
		cfg.APIBasePath = testAPIBasePath
	}
	srv := httptest.NewServer(NewRouter(cfg))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv}
}

// newStudentServer wires the student handler over repo.
func newStudentServer(t *testing.T, repo *memRepo) *testServer {
	t.Helper()
	svc := usecaseStudent.NewService(repo, nil)
	return newTestServer(t, RouterConfig{
		StudentHandler: NewStudentHandler(svc, nil),
	})
}

func (ts *testServer) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (ts *testServer) doJSON(t *testing.T, method, path string, payload any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(payload))
	return ts.do(t, method, path, buf.String())
}

// decodeBody decodes the response body as JSON.
func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func decodeErrorBody(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var body errorResponse
	decodeBody(t, resp, &body)
	return body
}

// memRepo is an in-memory repository with a unique email index.
type memRepo struct {
	mu       sync.Mutex
	rows     []domainStudent.Student
	nextID   domainStudent.ID
	failWith error
}

func newMemRepo(seed ...domainStudent.Student) *memRepo {
	r := &memRepo{}
	for _, s := range seed {
		if s.ID > r.nextID {
			r.nextID = s.ID
		}
		r.rows = append(r.rows, s)
	}
	return r
}

func (m *memRepo) List(ctx context.Context) ([]domainStudent.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	return append([]domainStudent.Student{}, m.rows...), nil
}

func (m *memRepo) ExistsByID(ctx context.Context, id domainStudent.ID) (bool, error) {
	_, ok, err := m.FindByID(ctx, id)
	return ok, err
}

func (m *memRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return false, m.failWith
	}
	return m.emailIndex(email, 0) >= 0, nil
}

func (m *memRepo) FindByID(ctx context.Context, id domainStudent.ID) (domainStudent.Student, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return domainStudent.Student{}, false, m.failWith
	}
	for _, s := range m.rows {
		if s.ID == id {
			return s, true, nil
		}
	}
	return domainStudent.Student{}, false, nil
}

func (m *memRepo) Insert(ctx context.Context, s domainStudent.Student) (domainStudent.Student, error) {
	out, err := m.InsertMany(ctx, []domainStudent.Student{s})
	if err != nil {
		return domainStudent.Student{}, err
	}
	return out[0], nil
}

func (m *memRepo) InsertMany(ctx context.Context, batch []domainStudent.Student) ([]domainStudent.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	rows := append([]domainStudent.Student{}, m.rows...)
	next := m.nextID
	out := make([]domainStudent.Student, 0, len(batch))
	for _, s := range batch {
		for _, existing := range rows {
			if existing.Email == s.Email {
				return nil, &domainStudent.DuplicateEmailError{Email: s.Email}
			}
		}
		next++
		s.ID = next
		rows = append(rows, s)
		out = append(out, s)
	}
	m.rows, m.nextID = rows, next
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, s domainStudent.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if m.emailIndex(s.Email, s.ID) >= 0 {
		return &domainStudent.DuplicateEmailError{Email: s.Email}
	}
	for i := range m.rows {
		if m.rows[i].ID == s.ID {
			m.rows[i] = s
			return nil
		}
	}
	return domainStudent.ErrNotFound
}

func (m *memRepo) Delete(ctx context.Context, id domainStudent.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			break
		}
	}
	return nil
}

// emailIndex finds email among rows other than skipID.
func (m *memRepo) emailIndex(email string, skipID domainStudent.ID) int {
	for i, s := range m.rows {
		if s.Email == email && s.ID != skipID {
			return i
		}
	}
	return -1
}

func (m *memRepo) snapshot() []domainStudent.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domainStudent.Student{}, m.rows...)
}

var errConnectionLost = errors.New("pq: connection reset by peer")

type mockHealthChecker struct {
	healthCheckFunc func(ctx context.Context) error
}

func (m *mockHealthChecker) HealthCheck(ctx context.Context) error {
	if m.healthCheckFunc != nil {
		return m.healthCheckFunc(ctx)
	}
	return nil
}
