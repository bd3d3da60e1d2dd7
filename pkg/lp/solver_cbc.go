package lp

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

type cbcSolver struct {
	path string
}

func NewCbcSolver(path string) LPSolver {
	return &cbcSolver{path: path}
}

func (solver *cbcSolver) Solve(problem Problem) (solution Solution, err error) {
	ws, err := newWorkspace(problem)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, ws.remove())
	}()

	cmd := exec.Command(solver.path, ws.modelFile(), "-solve", "-solu", ws.solutionFile())

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: cbc execution: %v : %v", ErrSolverFailed, err.Error(), stderr.String())
	}

	output, err := os.ReadFile(ws.solutionFile())
	if err != nil {
		return nil, fmt.Errorf("%w: cbc wrote no solution: %v : %v", ErrSolverFailed, err, stdOut.String())
	}
	return parseCbcSolution(problem, string(output))
}

// parseCbcSolution reads cbc's solution file: a status line followed by
// "index name value reduced-cost" lines for the non-zero variables
func parseCbcSolution(problem Problem, output string) (Solution, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	status := strings.TrimSpace(lines[0])

	switch {
	case strings.Contains(strings.ToLower(status), "infeasible"):
		return nil, nil
	case !strings.HasPrefix(status, "Optimal"):
		return nil, fmt.Errorf("%w: cbc status %q", ErrSolverFailed, status)
	}

	solution := make(Solution, len(problem.Names))
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		// Infeasible rows and columns are flagged with a leading "**"
		if len(fields) > 0 && fields[0] == "**" {
			fields = fields[1:]
		}
		if len(fields) < 3 {
			continue
		}

		id, ok := problem.variableIndex(fields[1])
		if !ok {
			return nil, fmt.Errorf("%w: unknown variable %q in cbc solution", ErrSolverFailed, fields[1])
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid value %q in cbc solution", ErrSolverFailed, fields[2])
		}
		solution[id] = value
	}
	return solution, nil
}
