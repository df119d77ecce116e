package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"students/internal/domain/repository"
	"students/internal/domain/student"
)

var _ repository.StudentRepository = (*StudentRepository)(nil)

const uniqueViolation = "23505"

// StudentRepository implements repository.StudentRepository backed by PostgreSQL.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// List returns every student ordered by id.
func (r *StudentRepository) List(ctx context.Context) ([]student.Student, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, email, gender FROM student ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	students := []student.Student{}
	for rows.Next() {
		var s student.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Gender); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ExistsByID reports whether a student with id is stored.
func (r *StudentRepository) ExistsByID(ctx context.Context, id student.ID) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM student WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("student exists by id: %w", err)
	}
	return exists, nil
}

// ExistsByEmail reports whether any student uses email.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM student WHERE email = $1)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("student exists by email: %w", err)
	}
	return exists, nil
}

// FindByID retrieves a student; the bool is false when no row matches.
func (r *StudentRepository) FindByID(ctx context.Context, id student.ID) (student.Student, bool, error) {
	var s student.Student
	err := r.pool.QueryRow(ctx, `SELECT id, name, email, gender FROM student WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Email, &s.Gender)
	if errors.Is(err, pgx.ErrNoRows) {
		return student.Student{}, false, nil
	}
	if err != nil {
		return student.Student{}, false, fmt.Errorf("find student: %w", err)
	}
	return s, true, nil
}

// Insert stores s and returns it with the assigned id.
func (r *StudentRepository) Insert(ctx context.Context, s student.Student) (student.Student, error) {
	created, err := insertStudent(ctx, r.pool, s)
	if err != nil {
		return student.Student{}, fmt.Errorf("insert student: %w", err)
	}
	return created, nil
}

// InsertMany stores the batch in one transaction.
func (r *StudentRepository) InsertMany(ctx context.Context, students []student.Student) ([]student.Student, error) {
	created := make([]student.Student, 0, len(students))
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, s := range students {
			row, err := insertStudent(ctx, tx, s)
			if err != nil {
				return err
			}
			created = append(created, row)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("insert students: %w", err)
	}
	return created, nil
}

// Update overwrites name, email and gender of s.ID.
func (r *StudentRepository) Update(ctx context.Context, s student.Student) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE student SET name = $2, email = $3, gender = $4 WHERE id = $1`,
		s.ID, s.Name, s.Email, string(s.Gender))
	if err != nil {
		return fmt.Errorf("update student: %w", mapWriteError(err, s.Email))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update student %d: %w", s.ID, student.ErrNotFound)
	}
	return nil
}

// Delete removes a student. Missing rows are not an error.
func (r *StudentRepository) Delete(ctx context.Context, id student.ID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM student WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertStudent(ctx context.Context, q queryRower, s student.Student) (student.Student, error) {
	const query = `
INSERT INTO student (name, email, gender)
VALUES ($1, $2, $3)
RETURNING id`
	if err := q.QueryRow(ctx, query, s.Name, s.Email, string(s.Gender)).Scan(&s.ID); err != nil {
		return student.Student{}, mapWriteError(err, s.Email)
	}
	return s, nil
}

func mapWriteError(err error, email string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &student.DuplicateEmailError{Email: email}
	}
	return err
}
