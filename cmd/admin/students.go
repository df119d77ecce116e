package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	domainStudent "students/internal/domain/student"
)

func runStudents(ctx context.Context, args []string, stdout io.Writer, connect connectFunc) error {
	if len(args) < 1 {
		printUsage()
		return fmt.Errorf("missing students subcommand")
	}
	switch args[0] {
	case "list":
		return runStudentsList(ctx, args[1:], stdout, connect)
	case "import":
		return runStudentsImport(ctx, args[1:], stdout, connect)
	case "delete":
		return runStudentsDelete(ctx, args[1:], stdout, connect)
	default:
		printUsage()
		return fmt.Errorf("unknown students subcommand: %s", args[0])
	}
}

func runStudentsList(ctx context.Context, args []string, stdout io.Writer, connect connectFunc) error {
	fs := flag.NewFlagSet("students list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, closeAll, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeAll()

	students, err := svc.GetAllStudents(ctx)
	if err != nil {
		return fmt.Errorf("list students: %w", err)
	}
	return writeStudents(stdout, students)
}

func runStudentsImport(ctx context.Context, args []string, stdout io.Writer, connect connectFunc) error {
	fs := flag.NewFlagSet("students import", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	file := fs.String("file", "", "JSON array of students (required, - for stdin)")
	yes := fs.Bool("yes", false, "required confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return fmt.Errorf("--yes is required")
	}
	if *file == "" {
		return fmt.Errorf("--file is required")
	}

	batch, err := readStudents(*file)
	if err != nil {
		return err
	}

	svc, closeAll, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeAll()

	created, err := svc.AddStudents(ctx, batch)
	if err != nil {
		return fmt.Errorf("import students: %w", err)
	}
	return writeStudents(stdout, created)
}

func runStudentsDelete(ctx context.Context, args []string, stdout io.Writer, connect connectFunc) error {
	fs := flag.NewFlagSet("students delete", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.Int64("id", 0, "student id (required)")
	yes := fs.Bool("yes", false, "required confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return fmt.Errorf("--yes is required")
	}
	if *id <= 0 {
		return fmt.Errorf("--id is required")
	}

	svc, closeAll, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeAll()

	if err := svc.DeleteStudent(ctx, *id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	fmt.Fprintf(stdout, "deleted student %d\n", *id)
	return nil
}

func readStudents(path string) ([]domainStudent.Student, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	var batch []domainStudent.Student
	if err := dec.Decode(&batch); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return batch, nil
}

func writeStudents(w io.Writer, students []domainStudent.Student) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(students)
}
