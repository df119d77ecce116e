package repository

import (
	"context"

	"students/internal/domain/student"
)

// StudentRepository defines storage operations for students.
//
// Insert, InsertMany and Update report email collisions as
// *student.DuplicateEmailError (errors.Is student.ErrDuplicateEmail).
type StudentRepository interface {
	List(ctx context.Context) ([]student.Student, error)
	ExistsByID(ctx context.Context, id student.ID) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByID(ctx context.Context, id student.ID) (student.Student, bool, error)
	Insert(ctx context.Context, s student.Student) (student.Student, error)
	// InsertMany stores all rows or none; ids follow input order.
	InsertMany(ctx context.Context, students []student.Student) ([]student.Student, error)
	Update(ctx context.Context, s student.Student) error
	Delete(ctx context.Context, id student.ID) error
}
