package handler

import (
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainStudent "students/internal/domain/student"
)

func seedStudents() []domainStudent.Student {
	return []domainStudent.Student{
		{ID: 1, Name: "John Doe", Email: "john@example.com", Gender: domainStudent.GenderMale},
		{ID: 2, Name: "Jane Doe", Email: "jane@example.com", Gender: domainStudent.GenderFemale},
	}
}

func TestStudentHandler_List(t *testing.T) {
	t.Run("returns all students", func(t *testing.T) {
		ts := newStudentServer(t, newMemRepo(seedStudents()...))

		resp := ts.do(t, http.MethodGet, apiPath("/students"), "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		var got []domainStudent.Student
		decodeBody(t, resp, &got)
		assert.Equal(t, seedStudents(), got)
	})

	t.Run("empty store encodes an empty array", func(t *testing.T) {
		ts := newStudentServer(t, newMemRepo())

		resp := ts.do(t, http.MethodGet, apiPath("/students"), "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(body))
	})

	t.Run("storage failure is masked", func(t *testing.T) {
		repo := newMemRepo()
		repo.failWith = errConnectionLost
		ts := newStudentServer(t, repo)

		resp := ts.do(t, http.MethodGet, apiPath("/students"), "")
		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeErrorBody(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", body.Error)
		assert.NotContains(t, body.Message, "pq:")
	})
}

func TestStudentHandler_Create(t *testing.T) {
	t.Run("assigns an id", func(t *testing.T) {
		repo := newMemRepo()
		ts := newStudentServer(t, repo)

		resp := ts.do(t, http.MethodPost, apiPath("/students"),
			`{"name":"Jamila","email":"jamila@gmail.com","gender":"FEMALE"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got domainStudent.Student
		decodeBody(t, resp, &got)
		assert.Equal(t, domainStudent.Student{ID: 1, Name: "Jamila", Email: "jamila@gmail.com", Gender: domainStudent.GenderFemale}, got)
		assert.Len(t, repo.snapshot(), 1)
	})

	t.Run("taken email", func(t *testing.T) {
		repo := newMemRepo(domainStudent.Student{ID: 1, Name: "Jamila", Email: "jamila@gmail.com", Gender: domainStudent.GenderFemale})
		ts := newStudentServer(t, repo)

		resp := ts.do(t, http.MethodPost, apiPath("/students"),
			`{"name":"Other","email":"jamila@gmail.com","gender":"MALE"}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeErrorBody(t, resp)
		assert.Equal(t, "BAD_REQUEST", body.Error)
		assert.Equal(t, "Email jamila@gmail.com taken", body.Message)
		assert.Len(t, repo.snapshot(), 1)
	})

	t.Run("missing name", func(t *testing.T) {
		ts := newStudentServer(t, newMemRepo())

		resp := ts.do(t, http.MethodPost, apiPath("/students"),
			`{"email":"jamila@gmail.com","gender":"FEMALE"}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeErrorBody(t, resp).Message, "field name is required")
	})
}

func TestStudentHandler_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed", `{"name":`},
		{"empty", ``},
		{"unknown field", `{"name":"a","email":"b","gender":"MALE","age":3}`},
		{"lowercase gender", `{"name":"a","email":"b","gender":"male"}`},
		{"numeric gender", `{"name":"a","email":"b","gender":1}`},
		{"trailing value", `{"name":"a","email":"b","gender":"MALE"}{}`},
		{"array instead of object", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			ts := newStudentServer(t, repo)

			resp := ts.do(t, http.MethodPost, apiPath("/students"), tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "BAD_REQUEST", decodeErrorBody(t, resp).Error)
			assert.Empty(t, repo.snapshot())
		})
	}
}

func TestStudentHandler_CreateBatch(t *testing.T) {
	t.Run("stores every member", func(t *testing.T) {
		repo := newMemRepo()
		ts := newStudentServer(t, repo)

		resp := ts.do(t, http.MethodPost, apiPath("/students/all"), `[
			{"name":"John Doe","email":"john@example.com","gender":"MALE"},
			{"name":"Jane Smith","email":"jane@example.com","gender":"FEMALE"},
			{"name":"Jamila","email":"jamila@gmail.com","gender":"FEMALE"}
		]`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got []domainStudent.Student
		decodeBody(t, resp, &got)
		require.Len(t, got, 3)
		for i, s := range got {
			assert.Equal(t, domainStudent.ID(i+1), s.ID)
		}
		assert.Equal(t, "jane@example.com", got[1].Email)
		assert.Len(t, repo.snapshot(), 3)
	})

	t.Run("collision stores nothing", func(t *testing.T) {
		repo := newMemRepo()
		ts := newStudentServer(t, repo)

		resp := ts.do(t, http.MethodPost, apiPath("/students/all"), `[
			{"name":"Jamila","email":"jamila@gmail.com","gender":"FEMALE"},
			{"name":"Jamila","email":"jamila@gmail.com","gender":"FEMALE"}
		]`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Email jamila@gmail.com taken", decodeErrorBody(t, resp).Message)
		assert.Empty(t, repo.snapshot())
	})

	t.Run("empty batch", func(t *testing.T) {
		ts := newStudentServer(t, newMemRepo())

		resp := ts.do(t, http.MethodPost, apiPath("/students/all"), `[]`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(body))
	})

	t.Run("object instead of array", func(t *testing.T) {
		ts := newStudentServer(t, newMemRepo())

		resp := ts.do(t, http.MethodPost, apiPath("/students/all"), `{"name":"a","email":"b","gender":"MALE"}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestStudentHandler_Update(t *testing.T) {
	t.Run("replaces the stored record", func(t *testing.T) {
		repo := newMemRepo(domainStudent.Student{ID: 1, Name: "Jamila", Email: "jamila@gmail.com", Gender: domainStudent.GenderFemale})
		ts := newStudentServer(t, repo)

		resp := ts.doJSON(t, http.MethodPut, apiPath("/students"), domainStudent.Student{
			ID: 1, Name: "Yan Rithy", Email: "yanrithy12357@gmail.com", Gender: domainStudent.GenderMale,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Empty(t, body)

		assert.Equal(t, []domainStudent.Student{
			{ID: 1, Name: "Yan Rithy", Email: "yanrithy12357@gmail.com", Gender: domainStudent.GenderMale},
		}, repo.snapshot())
	})

	t.Run("unknown id", func(t *testing.T) {
		repo := newMemRepo()
		ts := newStudentServer(t, repo)

		resp := ts.do(t, http.MethodPut, apiPath("/students"),
			`{"id":1,"name":"John Doe","email":"john@example.com","gender":"MALE"}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeErrorBody(t, resp)
		assert.Equal(t, "BAD_REQUEST", body.Error)
		assert.Equal(t, "Student with ID 1 not found.", body.Message)
		assert.Empty(t, repo.snapshot())
	})

	t.Run("email owned by another student", func(t *testing.T) {
		ts := newStudentServer(t, newMemRepo(seedStudents()...))

		resp := ts.do(t, http.MethodPut, apiPath("/students"),
			`{"id":1,"name":"John Doe","email":"jane@example.com","gender":"MALE"}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Email jane@example.com taken", decodeErrorBody(t, resp).Message)
	})
}

func TestStudentHandler_Delete(t *testing.T) {
	t.Run("removes the student", func(t *testing.T) {
		repo := newMemRepo(domainStudent.Student{ID: 10, Name: "Jamila", Email: "jamila@gmail.com", Gender: domainStudent.GenderFemale})
		ts := newStudentServer(t, repo)

		resp := ts.do(t, http.MethodDelete, apiPath("/students/10"), "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, repo.snapshot())
	})

	t.Run("unknown id", func(t *testing.T) {
		ts := newStudentServer(t, newMemRepo())

		resp := ts.do(t, http.MethodDelete, apiPath("/students/10"), "")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeErrorBody(t, resp)
		assert.Equal(t, "NOT_FOUND", body.Error)
		assert.Equal(t, "Student with id 10 does not exists", body.Message)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		ts := newStudentServer(t, newMemRepo())

		resp := ts.do(t, http.MethodDelete, apiPath("/students/abc"), "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "id must be an integer", decodeErrorBody(t, resp).Message)
	})
}

func TestStudentHandler_NilService(t *testing.T) {
	ts := newTestServer(t, RouterConfig{StudentHandler: NewStudentHandler(nil, nil)})

	resp := ts.do(t, http.MethodGet, apiPath("/students"), "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}
