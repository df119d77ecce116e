package student

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"students/internal/domain/repository"
	domainStudent "students/internal/domain/student"
)

// Service enforces the student rules in front of the repository.
type Service struct {
	repo     repository.StudentRepository
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService instantiates the service.
func NewService(repo repository.StudentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)
	return &Service{
		repo:     repo,
		validate: validate,
		logger:   logger,
	}
}

// GetAllStudents returns every stored student.
func (s *Service) GetAllStudents(ctx context.Context) ([]domainStudent.Student, error) {
	return s.repo.List(ctx)
}

// AddStudent stores a new student after checking that its email is free.
// The pre-check is advisory; a concurrent insert that wins the race is
// reported through the store's unique constraint with the same message.
func (s *Service) AddStudent(ctx context.Context, candidate domainStudent.Student) (domainStudent.Student, error) {
	candidate.ID = 0
	if err := s.validateStudent(candidate); err != nil {
		return domainStudent.Student{}, err
	}

	taken, err := s.repo.ExistsByEmail(ctx, candidate.Email)
	if err != nil {
		return domainStudent.Student{}, err
	}
	if taken {
		return domainStudent.Student{}, emailTaken(candidate.Email)
	}

	created, err := s.repo.Insert(ctx, candidate)
	if err != nil {
		if errors.Is(err, domainStudent.ErrDuplicateEmail) {
			return domainStudent.Student{}, emailTaken(candidate.Email)
		}
		return domainStudent.Student{}, err
	}

	s.logger.Info("student created", "id", created.ID)
	return created, nil
}

// AddStudents stores a batch atomically. Email uniqueness is left to the store.
func (s *Service) AddStudents(ctx context.Context, candidates []domainStudent.Student) ([]domainStudent.Student, error) {
	if len(candidates) == 0 {
		return []domainStudent.Student{}, nil
	}
	batch := make([]domainStudent.Student, len(candidates))
	for i, c := range candidates {
		c.ID = 0
		if err := s.validateStudent(c); err != nil {
			return nil, domainStudent.BadRequest("students[%d]: %s", i, err.Error())
		}
		batch[i] = c
	}

	created, err := s.repo.InsertMany(ctx, batch)
	if err != nil {
		var dup *domainStudent.DuplicateEmailError
		if errors.As(err, &dup) {
			return nil, emailTaken(dup.Email)
		}
		return nil, err
	}

	s.logger.Info("students created", "count", len(created))
	return created, nil
}

// EditStudent replaces name, email and gender of an existing student.
func (s *Service) EditStudent(ctx context.Context, target domainStudent.Student) error {
	_, found, err := s.repo.FindByID(ctx, target.ID)
	if err != nil {
		return err
	}
	if !found {
		return studentNotFoundForEdit(target.ID)
	}
	if err := s.validateStudent(target); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, target); err != nil {
		switch {
		case errors.Is(err, domainStudent.ErrDuplicateEmail):
			return emailTaken(target.Email)
		case errors.Is(err, domainStudent.ErrNotFound):
			return studentNotFoundForEdit(target.ID)
		}
		return err
	}

	s.logger.Info("student updated", "id", target.ID)
	return nil
}

// DeleteStudent removes a student that is known to exist.
func (s *Service) DeleteStudent(ctx context.Context, id domainStudent.ID) error {
	exists, err := s.repo.ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return domainStudent.NotFound("Student with id %d does not exists", id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("student deleted", "id", id)
	return nil
}

func emailTaken(email string) error {
	return domainStudent.BadRequest("Email %s taken", email)
}

func studentNotFoundForEdit(id domainStudent.ID) error {
	return domainStudent.BadRequest("Student with ID %d not found.", id)
}

func (s *Service) validateStudent(candidate domainStudent.Student) error {
	err := s.validate.Struct(candidate)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate student: %w", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("field %s is required", fe.Field()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("field %s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		default:
			messages = append(messages, fmt.Sprintf("field %s is invalid", fe.Field()))
		}
	}
	return domainStudent.BadRequest("%s", strings.Join(messages, ", "))
}
