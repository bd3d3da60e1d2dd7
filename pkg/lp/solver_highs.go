package lp

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

type highsSolver struct {
	path string
}

func NewHighsSolver(path string) LPSolver {
	return &highsSolver{path: path}
}

func (solver *highsSolver) Solve(problem Problem) (solution Solution, err error) {
	ws, err := newWorkspace(problem)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, ws.remove())
	}()

	cmd := exec.Command(solver.path, "--model_file", ws.modelFile(), "--solution_file", ws.solutionFile())

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: highs execution: %v : %v", ErrSolverFailed, err.Error(), stderr.String())
	}

	output, err := os.ReadFile(ws.solutionFile())
	if err != nil {
		// HiGHS writes no solution file when the model is proven infeasible
		if strings.Contains(stdOut.String(), "Infeasible") {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: highs wrote no solution: %v : %v", ErrSolverFailed, err, stdOut.String())
	}
	return parseHighsSolution(problem, string(output))
}

// parseHighsSolution reads the "Model status" block and the "# Columns" block of a HiGHS
// solution file
func parseHighsSolution(problem Problem, output string) (Solution, error) {
	lines := lo.Map(strings.Split(output, "\n"), func(line string, _ int) string { return strings.TrimSpace(line) })

	_, statusIndex, ok := lo.FindIndexOf(lines, func(line string) bool { return line == "Model status" })
	if !ok || statusIndex+1 >= len(lines) {
		return nil, fmt.Errorf("%w: highs solution has no model status", ErrSolverFailed)
	}
	status := lines[statusIndex+1]
	switch {
	case strings.Contains(status, "Infeasible"):
		return nil, nil
	case status != "Optimal":
		return nil, fmt.Errorf("%w: highs status %q", ErrSolverFailed, status)
	}

	header, columnsIndex, ok := lo.FindIndexOf(lines, func(line string) bool { return strings.HasPrefix(line, "# Columns") })
	if !ok {
		return nil, fmt.Errorf("%w: highs solution has no columns", ErrSolverFailed)
	}
	columns, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(header, "# Columns")))
	if err != nil || columnsIndex+columns >= len(lines) {
		return nil, fmt.Errorf("%w: invalid columns header %q", ErrSolverFailed, header)
	}

	solution := make(Solution, len(problem.Names))
	for _, line := range lines[columnsIndex+1 : columnsIndex+1+columns] {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: invalid column line %q", ErrSolverFailed, line)
		}
		id, ok := problem.variableIndex(fields[0])
		if !ok {
			return nil, fmt.Errorf("%w: unknown variable %q in highs solution", ErrSolverFailed, fields[0])
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid value %q in highs solution", ErrSolverFailed, fields[1])
		}
		solution[id] = value
	}
	return solution, nil
}
