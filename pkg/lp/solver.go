package lp

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrSolverFailed = errors.New("solver failed")

// Solution holds the value of every variable, indexed by id
type Solution []float64

type LPSolver interface {
	Solve(problem Problem) (Solution, error) // Returns nil (and no error) when the problem is infeasible
}

// workspace is a temporary directory holding the model handed to an external solver
type workspace struct {
	dir string
}

func newWorkspace(problem Problem) (workspace, error) {
	dir, err := os.MkdirTemp("", "lptimetabling-*")
	if err != nil {
		return workspace{}, fmt.Errorf("failed to create temporary directory: %v", err)
	}

	ws := workspace{dir: dir}
	if err := os.WriteFile(ws.modelFile(), []byte(problem.ToCPLEX()), 0644); err != nil {
		_ = ws.remove()
		return workspace{}, fmt.Errorf("failed to write model to temporary file: %v", err)
	}
	return ws, nil
}

func (ws workspace) modelFile() string {
	return filepath.Join(ws.dir, "model.lp")
}

func (ws workspace) solutionFile() string {
	return filepath.Join(ws.dir, "solution.txt")
}

func (ws workspace) remove() error {
	if err := os.RemoveAll(ws.dir); err != nil {
		return fmt.Errorf("failed to remove temporary directory %s: %w", ws.dir, err)
	}
	return nil
}
