package handler

import (
	"log/slog"
	"net/http"

	domainStudent "students/internal/domain/student"
	usecaseStudent "students/internal/usecase/student"
)

// StudentHandler exposes the student CRUD endpoints.
type StudentHandler struct {
	service *usecaseStudent.Service
	logger  *slog.Logger
}

// NewStudentHandler builds a StudentHandler.
func NewStudentHandler(service *usecaseStudent.Service, logger *slog.Logger) *StudentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StudentHandler{service: service, logger: logger}
}

// RegisterRoutes wires student endpoints.
func (h *StudentHandler) RegisterRoutes(r chiRouter) {
	r.Get("/students", h.handleList)
	r.Post("/students", h.handleCreate)
	r.Post("/students/all", h.handleCreateBatch)
	r.Put("/students", h.handleUpdate)
	r.Delete("/students/{id}", h.handleDelete)
}

func (h *StudentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, errServiceUnavailable)
		return
	}
	students, err := h.service.GetAllStudents(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if students == nil {
		students = []domainStudent.Student{}
	}
	writeJSON(w, http.StatusOK, students)
}

func (h *StudentHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, errServiceUnavailable)
		return
	}
	var req domainStudent.Student
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.service.AddStudent(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *StudentHandler) handleCreateBatch(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, errServiceUnavailable)
		return
	}
	var req []domainStudent.Student
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	created, err := h.service.AddStudents(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *StudentHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, errServiceUnavailable)
		return
	}
	var req domainStudent.Student
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.service.EditStudent(r.Context(), req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *StudentHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, errServiceUnavailable)
		return
	}
	id, err := parseStudentID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.service.DeleteStudent(r.Context(), id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *StudentHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch domainStudent.KindOf(err) {
	case domainStudent.KindBadRequest:
		writeError(w, http.StatusBadRequest, err)
	case domainStudent.KindNotFound:
		writeError(w, http.StatusNotFound, err)
	default:
		h.logger.ErrorContext(r.Context(), "student request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, err)
	}
}
