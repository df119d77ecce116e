package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	testcontainers "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"students/internal/domain/student"
	"students/internal/platform/migration"
)

// setupPostgres starts a disposable PostgreSQL container with the schema applied.
// Tests are skipped when docker is unavailable.
func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16"),
		tcpostgres.WithDatabase("test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping postgres integration test: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	runner, err := migration.New(migration.Config{Driver: "postgres", DatabaseURL: connStr})
	require.NoError(t, err)
	require.NoError(t, runner.Up())
	require.NoError(t, runner.Close())

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

// cleanupTables empties the student table and resets its sequence.
func cleanupTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), "TRUNCATE TABLE student RESTART IDENTITY")
	require.NoError(t, err, "failed to cleanup table student")
}

// testStudent creates a student with a unique email.
func testStudent(overrides ...func(*student.Student)) student.Student {
	s := student.Student{
		Name:   "Test Student",
		Email:  fmt.Sprintf("student-%s@example.com", uuid.NewString()),
		Gender: student.GenderFemale,
	}
	for _, override := range overrides {
		override(&s)
	}
	return s
}

// countStudents returns the number of stored rows.
func countStudents(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()

	var n int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM student`).Scan(&n))
	return n
}
