package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/limaJavier/lptimetabling/pkg/model"
	"github.com/samber/lo"
)

const MB float32 = 1024

type SolverType int

const (
	none SolverType = iota
	cbc
	highs
)

type ResultType int

const (
	solved ResultType = iota
	infeasible
	exported
)

var (
	solverTypes = map[SolverType]string{
		none:  "none",
		cbc:   "cbc",
		highs: "highs",
	}
	resultTypes = map[ResultType]string{
		solved:     "solved",
		infeasible: "infeasible",
		exported:   "exported",
	}
)

type TestMetadata struct {
	Name         string
	Days         uint64
	Slots        uint64
	Classes      int
	Teachers     int
	Requirements int
}

// ModelMetadata describes the model built in-process for a test
type ModelMetadata struct {
	Variables          uint64
	Booleans           uint64
	Constraints        int
	SequentialDuration int64
	ParallelDuration   int64
}

type BenchmarkResult struct {
	Solver        SolverType
	Test          TestMetadata
	Model         ModelMetadata
	Duration      int64
	Memory        float32
	CpuPercentage int64
	Result        ResultType
}

func main() {
	directoryPtr := flag.String("dir", "../../test/inputs/", "Directory holding the input files")
	executablePtr := flag.String("exec", "../../bin/lptimetabling", "Path to the cli executable")
	solversPtr := flag.String("solvers", "none,cbc,highs", "Comma-separated solvers passed to the cli")
	outPtr := flag.String("out", "benchmark_results.csv", "Path to the CSV file to write")
	flag.Parse()

	tests := getTests(*directoryPtr)
	solvers := getSolvers(*solversPtr)
	results := make([]BenchmarkResult, 0, len(tests)*len(solvers))

	for _, test := range tests {
		modelMetadata := buildModels(test.Name)
		for _, solver := range solvers {
			fmt.Printf("Benchmarking test \"%v\" with solver \"%v\"\n", test.Name, solverTypes[solver])

			duration, maxMemory, cpuPercentage, result := measure(*executablePtr, solver, test.Name)

			results = append(results, BenchmarkResult{
				Solver:        solver,
				Test:          test,
				Model:         modelMetadata,
				Duration:      duration,
				Memory:        maxMemory,
				CpuPercentage: cpuPercentage,
				Result:        result,
			})
		}
	}

	toCsv(*outPtr, results)
}

func readInput(filename string) (model.ModelInput, error) {
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		return model.InputFromJson(filename)
	}
	return model.InputFromTextFile(filename)
}

func getTests(directory string) []TestMetadata {
	testFiles, err := os.ReadDir(directory)
	if err != nil {
		log.Fatalf("cannot read directory: %v", err)
	}

	tests := make([]TestMetadata, 0, len(testFiles))
	for _, file := range testFiles {
		if file.IsDir() {
			continue
		}
		filename := filepath.Join(directory, file.Name())
		input, err := readInput(filename)
		if err != nil {
			log.Fatalf("cannot parse input file: %v", err)
		}

		tests = append(tests, TestMetadata{
			Name:         filename,
			Days:         input.Week.Days(),
			Slots:        input.Week.TotalHours(),
			Classes:      len(input.Classes),
			Teachers:     len(input.Teachers),
			Requirements: len(input.Requirements),
		})
	}

	return tests
}

func getSolvers(solvers string) []SolverType {
	return lo.Map(strings.Split(solvers, ","), func(name string, _ int) SolverType {
		solver, ok := lo.FindKey(solverTypes, strings.TrimSpace(name))
		if !ok {
			log.Fatalf("%v is not a valid solver", name)
		}
		return solver
	})
}

// buildModels times both builders in-process
func buildModels(filename string) ModelMetadata {
	input := lo.Must(readInput(filename))

	start := time.Now()
	sequential := lo.Must(model.NewSequentialBuilder(model.Minimize).Build(input))
	sequentialDuration := time.Since(start).Milliseconds()

	start = time.Now()
	lo.Must(model.NewParallelBuilder(model.Minimize).Build(input))
	parallelDuration := time.Since(start).Milliseconds()

	return ModelMetadata{
		Variables:          sequential.Registry().NumVariables(),
		Booleans:           sequential.Registry().NumBoolean(),
		Constraints:        sequential.NumConstraints(),
		SequentialDuration: sequentialDuration,
		ParallelDuration:   parallelDuration,
	}
}

func measure(executablePath string, solver SolverType, testFile string) (duration int64, maxMemory float32, cpuPercentage int64, result ResultType) {
	args := []string{"-v", executablePath, "-solver", solverTypes[solver], "-file", testFile, "-out", os.DevNull}
	if solver == none {
		args = append(args, "-lp", os.DevNull)
	}
	cmd := exec.Command("/usr/bin/time", args...)

	var stdOut bytes.Buffer
	cmd.Stdout = &stdOut
	var stdErr bytes.Buffer
	cmd.Stderr = &stdErr

	cmd.Run()
	switch cmd.ProcessState.ExitCode() {
	case 0:
		result = exported
	case 10:
		result = solved
	case 20:
		result = infeasible
	default:
		log.Fatalf("an error occurred during the execution of the cli at test \"%v\" using solver \"%v\": %v\n", testFile, solverTypes[solver], stdErr.String())
	}

	splits := strings.Split(stdErr.String(), "\n")
	getLine := func(substr string) string {
		line, ok := lo.Find(splits, func(line string) bool {
			return strings.Contains(strings.ToLower(line), substr)
		})
		if !ok {
			log.Fatalf("Substring \"%v\" could not be found", substr)
		}
		return line
	}

	duration = parseDurationLine(getLine("wall clock"))
	maxMemory = parseMemoryLine(getLine("maximum resident set size"))
	cpuPercentage = parseCpuPercentageLine(getLine("percent of cpu"))

	return duration, maxMemory, cpuPercentage, result
}

func toCsv(filename string, results []BenchmarkResult) {
	file, err := os.Create(filename)
	if err != nil {
		log.Panicf("cannot create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeader()); err != nil {
		log.Panicf("cannot write CSV header: %v", err)
	}
	for _, result := range results {
		if err := writer.Write(csvRecord(result)); err != nil {
			log.Panicf("cannot write CSV record: %v", err)
		}
	}
}

func csvHeader() []string {
	return []string{"Solver", "Test", "Days", "Slots", "Classes", "Teachers", "Requirements", "Variables", "Booleans", "Constraints", "SequentialBuild(ms)", "ParallelBuild(ms)", "Duration(ms)", "Memory(MB)", "CPU(%)", "Result"}
}

func csvRecord(result BenchmarkResult) []string {
	return []string{
		solverTypes[result.Solver],
		result.Test.Name,
		fmt.Sprintf("%d", result.Test.Days),
		fmt.Sprintf("%d", result.Test.Slots),
		fmt.Sprintf("%d", result.Test.Classes),
		fmt.Sprintf("%d", result.Test.Teachers),
		fmt.Sprintf("%d", result.Test.Requirements),
		fmt.Sprintf("%d", result.Model.Variables),
		fmt.Sprintf("%d", result.Model.Booleans),
		fmt.Sprintf("%d", result.Model.Constraints),
		fmt.Sprintf("%d", result.Model.SequentialDuration),
		fmt.Sprintf("%d", result.Model.ParallelDuration),
		fmt.Sprintf("%d", result.Duration),
		fmt.Sprintf("%.1f", result.Memory),
		fmt.Sprintf("%d", result.CpuPercentage),
		resultTypes[result.Result],
	}
}

func parseDurationLine(line string) int64 {
	durationStr := strings.Split(line, "(h:mm:ss or m:ss):")[1][1:]
	return parseDuration(durationStr)
}

// parseDuration reads GNU time's elapsed format into milliseconds
func parseDuration(durationStr string) int64 {
	parts := strings.Split(durationStr, ":")
	secondsParts := strings.Split(parts[len(parts)-1], ".")
	seconds := lo.Must(strconv.Atoi(secondsParts[0]))
	hundredthOfSeconds := lo.Must(strconv.Atoi(secondsParts[1]))

	var minutes, hours int
	switch len(parts) {
	case 3: // h:mm:ss
		hours = lo.Must(strconv.Atoi(parts[0]))
		minutes = lo.Must(strconv.Atoi(parts[1]))
	case 2: // m:ss
		minutes = lo.Must(strconv.Atoi(parts[0]))
	default:
		log.Fatalf("unexpected duration format: %v", durationStr)
	}
	return int64(hours*3600+minutes*60+seconds)*1000 + int64(hundredthOfSeconds*10)
}

func parseMemoryLine(line string) float32 {
	memoryStr := strings.TrimSpace(strings.Split(line, ":")[1])
	return float32(lo.Must(strconv.ParseFloat(memoryStr, 32))) / MB
}

func parseCpuPercentageLine(line string) int64 {
	percentageStr := strings.TrimSuffix(strings.TrimSpace(strings.Split(line, ":")[1]), "%")
	return int64(lo.Must(strconv.Atoi(percentageStr)))
}
