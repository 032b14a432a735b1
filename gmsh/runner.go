// Package gmsh drives the external gmsh mesher and reads back what it wrote.
package gmsh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ExitError is returned when gmsh ran and exited non-zero.
type ExitError struct {
	Code int
	Args []string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("gmsh %s: exit status %d", strings.Join(e.Args, " "), e.Code)
}

type Runner struct {
	Binary         string
	Dir            string // working directory, the current one when empty
	Stdout, Stderr io.Writer
}

func NewRunner() *Runner {
	return &Runner{Binary: "gmsh", Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run blocks until gmsh exits. Cancelling ctx kills it.
func (r *Runner) Run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Dir = r.Dir
	cmd.Stdout, cmd.Stderr = r.Stdout, r.Stderr
	err := cmd.Run()
	var ee *exec.ExitError
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("gmsh %s: %w", strings.Join(args, " "), ctx.Err())
	case errors.As(err, &ee):
		return &ExitError{Code: ee.ExitCode(), Args: args}
	default:
		return fmt.Errorf("gmsh: %w", err)
	}
}

// Mesh3D meshes the volumes of a geometry script into a version 2 .msh file
// next to it.
func (r *Runner) Mesh3D(ctx context.Context, geo string) error {
	return r.Run(ctx, "-3", "-v", "3", "-format", "msh2", geo)
}

// ParseAndExit runs a script for its side effects, such as Save statements.
func (r *Runner) ParseAndExit(ctx context.Context, script string) error {
	return r.Run(ctx, script, "-parse_and_exit")
}

// Unroll evaluates a script and returns the path of the flat geometry gmsh
// writes beside it.
func (r *Runner) Unroll(ctx context.Context, script string) (string, error) {
	if err := r.Run(ctx, script, "-0"); err != nil {
		return "", err
	}
	unrolled := script + "_unrolled"
	if _, err := os.Stat(unrolled); err != nil {
		return "", fmt.Errorf("gmsh wrote no unrolled geometry: %w", err)
	}
	return unrolled, nil
}
