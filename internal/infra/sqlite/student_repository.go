// Package sqlite is the embedded store used for local runs and the admin CLI.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"students/internal/domain/repository"
	"students/internal/domain/student"
)

var _ repository.StudentRepository = (*StudentRepository)(nil)

// Open opens the database file at path. The schema is applied by the migration runner.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single writer avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// StudentRepository implements repository.StudentRepository on SQLite.
type StudentRepository struct {
	db *sql.DB
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

func (r *StudentRepository) List(ctx context.Context) ([]student.Student, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, email, gender FROM student ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	students := []student.Student{}
	for rows.Next() {
		var s student.Student
		var gender string
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &gender); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		s.Gender = student.Gender(gender)
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

func (r *StudentRepository) ExistsByID(ctx context.Context, id student.ID) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM student WHERE id = ?)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("student exists by id: %w", err)
	}
	return exists, nil
}

func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM student WHERE email = ?)`, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("student exists by email: %w", err)
	}
	return exists, nil
}

func (r *StudentRepository) FindByID(ctx context.Context, id student.ID) (student.Student, bool, error) {
	var s student.Student
	var gender string
	err := r.db.QueryRowContext(ctx, `SELECT id, name, email, gender FROM student WHERE id = ?`, id).
		Scan(&s.ID, &s.Name, &s.Email, &gender)
	if errors.Is(err, sql.ErrNoRows) {
		return student.Student{}, false, nil
	}
	if err != nil {
		return student.Student{}, false, fmt.Errorf("find student: %w", err)
	}
	s.Gender = student.Gender(gender)
	return s, true, nil
}

func (r *StudentRepository) Insert(ctx context.Context, s student.Student) (student.Student, error) {
	created, err := insertStudent(ctx, r.db, s)
	if err != nil {
		return student.Student{}, fmt.Errorf("insert student: %w", err)
	}
	return created, nil
}

// InsertMany stores the batch in one transaction; nothing is kept on failure.
func (r *StudentRepository) InsertMany(ctx context.Context, students []student.Student) (_ []student.Student, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insert students: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	created := make([]student.Student, 0, len(students))
	for _, s := range students {
		row, err := insertStudent(ctx, tx, s)
		if err != nil {
			return nil, fmt.Errorf("insert students: %w", err)
		}
		created = append(created, row)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert students: %w", err)
	}
	return created, nil
}

func (r *StudentRepository) Update(ctx context.Context, s student.Student) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE student SET name = ?, email = ?, gender = ? WHERE id = ?`,
		s.Name, s.Email, string(s.Gender), s.ID)
	if err != nil {
		return fmt.Errorf("update student: %w", mapWriteError(err, s.Email))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update student %d: %w", s.ID, student.ErrNotFound)
	}
	return nil
}

func (r *StudentRepository) Delete(ctx context.Context, id student.ID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM student WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertStudent(ctx context.Context, e execer, s student.Student) (student.Student, error) {
	res, err := e.ExecContext(ctx,
		`INSERT INTO student (name, email, gender) VALUES (?, ?, ?)`,
		s.Name, s.Email, string(s.Gender))
	if err != nil {
		return student.Student{}, mapWriteError(err, s.Email)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return student.Student{}, fmt.Errorf("last insert id: %w", err)
	}
	s.ID = id
	return s, nil
}

func mapWriteError(err error, email string) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return &student.DuplicateEmailError{Email: email}
	}
	return err
}
