package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/limaJavier/lptimetabling/internal/config"
	"github.com/limaJavier/lptimetabling/internal/logger"
	"github.com/limaJavier/lptimetabling/pkg/lp"
	"github.com/limaJavier/lptimetabling/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Exit codes shared with the benchmark
const (
	exitSolved     = 10
	exitVerify     = 15
	exitInfeasible = 20
)

var errTimetableMismatch = errors.New("timetable does not satisfy the input")

var (
	validFormats = []string{"text", "json"}
	validSolvers = []string{"none", "cbc", "highs"}
)

func main() {
	// Define arguments
	filePathPtr := flag.String("file", "", "Path to the input file")
	formatPtr := flag.String("format", "", "Input format: \"text\" or \"json\"; if empty, it's taken from the file extension (\".json\" or anything else for text)")
	outFilePathPtr := flag.String("out", "", "Path to the file where the timetable will be written; if empty, it'll be written into the Standard Output")
	lpFilePathPtr := flag.String("lp", "", "Path to the file where the model will be written in CPLEX-LP format; with solver \"none\" and no path, the model is written into the Standard Output")
	solverPtr := flag.String("solver", "none", "Solver to use. Allowed values are: \"none\" (only export the model), \"cbc\", \"highs\", where \"none\" is the default")
	parallelPtr := flag.Bool("parallel", false, "Generate constraint families concurrently (overrides model.parallel)")
	configPathPtr := flag.String("config", "", "Path to the config file; if empty, config.json next to the executable is used when present")
	flag.Parse()
	filePath := *filePathPtr
	format := strings.ToLower(*formatPtr)
	solverStr := strings.ToLower(*solverPtr)

	// Validate arguments
	if filePath == "" {
		fatal("an input file must be specified")
	} else if format != "" && !slices.Contains(validFormats, format) {
		fatal(fmt.Sprintf("%v is not a valid format", format))
	} else if !slices.Contains(validSolvers, solverStr) {
		fatal(fmt.Sprintf("%v is not a valid solver", solverStr))
	}

	configPath := *configPathPtr
	if configPath == "" {
		configPath = defaultConfigPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fatal(err.Error())
	}
	if *parallelPtr {
		cfg.Model.Parallel = true
	}

	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		fatal(err.Error())
	}
	exit := func(code int) {
		_ = log.Sync()
		os.Exit(code)
	}

	// Extract input
	input, err := readInput(filePath, format)
	if err != nil {
		log.Fatal("cannot parse input file", zap.String("file", filePath), zap.Error(err))
	}
	log.Info("input read",
		zap.Int("classes", len(input.Classes)),
		zap.Int("teachers", len(input.Teachers)),
		zap.Int("requirements", len(input.Requirements)),
		zap.Uint64s("week", input.Week.HoursPerDay),
	)

	if err := model.CheckCapacity(input); err != nil {
		log.Warn("input cannot be scheduled", zap.Error(err))
		exit(exitInfeasible)
	}

	// Build model
	start := time.Now()
	built, err := cfg.Builder().Build(input)
	if err != nil {
		log.Fatal("an error occurred during model construction", zap.Error(err))
	}
	log.Info("model built", append(logger.ModelFields(built),
		zap.Bool("parallel", cfg.Model.Parallel),
		zap.Stringer("direction", built.Direction()),
		zap.Duration("elapsed", time.Since(start)),
	)...)

	problem := lp.FromModel(built)
	if *lpFilePathPtr != "" {
		if err := os.WriteFile(*lpFilePathPtr, []byte(problem.ToCPLEX()), 0666); err != nil {
			log.Fatal("an error occurred while writing the model", zap.Error(err))
		}
	} else if solverStr == "none" {
		fmt.Print(problem.ToCPLEX())
	}
	if solverStr == "none" {
		exit(0)
	}

	// Solve
	solver := newSolver(solverStr, cfg)
	start = time.Now()
	solution, err := solver.Solve(problem)
	if err != nil {
		log.Fatal("an error occurred while solving", zap.String("solver", solverStr), zap.Error(err))
	} else if solution == nil {
		log.Warn("model is infeasible", zap.String("solver", solverStr), zap.Duration("elapsed", time.Since(start)))
		exit(exitInfeasible)
	}

	// Verify solution correctness
	timetable, objective, err := checkSolution(built, input, solution)
	if err != nil {
		log.Error("solution does not hold", zap.String("solver", solverStr), zap.Error(err))
		exit(exitVerify)
	}
	log.Info("model solved", zap.String("solver", solverStr), zap.Float64("objective", objective), zap.Duration("elapsed", time.Since(start)))

	// Marshal output into json
	perClassTimetableJson, err := json.Marshal(perClassTimetable(timetable, input))
	if err != nil {
		log.Fatal("an error occurred while building output json", zap.Error(err))
	}

	// Verify outfile is empty, if so then write the results to the Standard Output
	if *outFilePathPtr == "" {
		fmt.Println(string(perClassTimetableJson))
	} else if err := os.WriteFile(*outFilePathPtr, perClassTimetableJson, 0666); err != nil {
		log.Fatal("an error occurred while writing to the output file", zap.Error(err))
	}

	exit(exitSolved)
}

func readInput(filePath, format string) (model.ModelInput, error) {
	if format == "" {
		format = "text"
		if strings.EqualFold(filepath.Ext(filePath), ".json") {
			format = "json"
		}
	}
	if format == "json" {
		return model.InputFromJson(filePath)
	}
	return model.InputFromTextFile(filePath)
}

// checkSolution verifies a solver's values against the model and the input, and decodes them
func checkSolution(built *model.Model, input model.ModelInput, solution lp.Solution) (model.Timetable, float64, error) {
	objective, err := built.ObjectiveValue(solution)
	if err != nil {
		return nil, 0, err
	}
	if err := built.Check(solution); err != nil {
		return nil, 0, err
	}
	timetable, err := model.DecodeTimetable(input, built.Registry(), solution)
	if err != nil {
		return nil, 0, err
	}
	if !model.VerifyTimetable(timetable, input) {
		return nil, 0, errTimetableMismatch
	}
	return timetable, objective, nil
}

func newSolver(name string, cfg *config.Config) lp.LPSolver {
	if name == "highs" {
		return lp.NewHighsSolver(cfg.Solvers.Highs)
	}
	return lp.NewCbcSolver(cfg.Solvers.Cbc)
}

// perClassTimetable groups placements by the external class id, using external teacher ids
func perClassTimetable(timetable model.Timetable, input model.ModelInput) map[uint64][]map[string]uint64 {
	return lo.MapEntries(timetable.ByClass(), func(class uint64, placements model.Timetable) (uint64, []map[string]uint64) {
		return input.Classes[class].Key, lo.Map(placements, func(placement model.Placement, _ int) map[string]uint64 {
			return map[string]uint64{
				"day":     placement.Day,
				"hour":    placement.Hour,
				"teacher": input.Teachers[placement.Teacher].Key,
			}
		})
	})
}

// defaultConfigPath returns config.json next to the executable, or "" when there is none
func defaultConfigPath() string {
	execPath, err := os.Executable()
	if err != nil {
		fatal(fmt.Sprintf("cannot determine executable path: %v", err))
	}
	configPath := path.Join(path.Dir(execPath), "config.json")
	if _, err := os.Stat(configPath); err != nil {
		return ""
	}
	return configPath
}

// fatal reports failures that happen before the logger exists
func fatal(message string) {
	fmt.Fprintln(os.Stderr, message)
	os.Exit(1)
}
