// gtest compiles every test source with boltc and compares the exit code,
// the diagnostics and the emitted assembly against per-file golden JSON.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

type Execution struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
	TimedOut bool          `json:"timed_out"`
}

// Golden is what a single compilation is expected to produce.
type Golden struct {
	Hash     string    `json:"hash"`
	Args     []string  `json:"args,omitempty"`
	Compile  Execution `json:"compile"`
	Assembly string    `json:"assembly"`
}

type FileTestResult struct {
	File    string  `json:"file"`
	Status  string  `json:"status"` // PASS, FAIL, SKIP, ERROR
	Message string  `json:"message,omitempty"`
	Diff    string  `json:"diff,omitempty"`
	Target  *Golden `json:"target,omitempty"`
}

var (
	targetCompiler = flag.String("target-compiler", "./boltc", "Path to the compiler to test.")
	targetArgs     = flag.String("target-args", "", "Extra arguments for the compiler (space-separated).")
	testFiles      = flag.String("test-files", "tests/*.c", "Glob pattern(s) for files to test (space-separated).")
	skipFiles      = flag.String("skip-files", "", "Files to skip (space-separated).")
	update         = flag.Bool("update", false, "Write golden files instead of comparing against them.")
	outputJSON     = flag.String("output", ".test_results.json", "Output file for the JSON test report.")
	jsonDir        = flag.String("dir", "", "Directory to store/read golden JSON files (defaults to source file dir).")
	timeout        = flag.Duration("timeout", 5*time.Second, "Timeout for each compiler invocation.")
	jobs           = flag.Int("j", 4, "Number of parallel test jobs.")
	verbose        = flag.Bool("v", false, "Enable verbose logging.")
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cCyan   = "\x1b[96m"
	cNone   = "\x1b[0m"
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	tempDir, err := os.MkdirTemp("", "gtest-*")
	if err != nil {
		log.Fatalf("%s[ERROR]%s Failed to create temp directory: %v\n", cRed, cNone, err)
	}
	defer os.RemoveAll(tempDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	files, err := expandGlobPatterns(*testFiles, strings.Fields(*skipFiles))
	if err != nil {
		log.Fatalf("%s[ERROR]%s Invalid glob pattern(s): %v\n", cRed, cNone, err)
	}
	if len(files) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return
	}

	results := runAll(ctx, files, tempDir)
	printSummary(results)
	if err := writeJSONReport(results); err != nil {
		log.Printf("%s[WARN]%s Could not write report: %v\n", cYellow, cNone, err)
	}
	if ctx.Err() != nil {
		fmt.Printf("\n%s[INTERRUPT]%s Test run cancelled.\n", cYellow, cNone)
		os.Exit(1)
	}
	for _, r := range results {
		if r.Status == "FAIL" || r.Status == "ERROR" {
			os.Exit(1)
		}
	}
}

func runAll(ctx context.Context, files []string, tempDir string) []*FileTestResult {
	results := make([]*FileTestResult, len(files))
	sem := make(chan struct{}, max(*jobs, 1))
	seen := make(map[string]string)
	var wg sync.WaitGroup

	for i, file := range files {
		fileHash, err := hashFile(file)
		if err != nil {
			results[i] = &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not hash file: %v", err)}
			continue
		}
		if prev, dup := seen[fileHash]; dup {
			results[i] = &FileTestResult{File: file, Status: "SKIP", Message: fmt.Sprintf("Identical to %s", prev)}
			continue
		}
		seen[fileHash] = file

		wg.Add(1)
		go func(i int, file, fileHash string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if ctx.Err() != nil {
				results[i] = &FileTestResult{File: file, Status: "SKIP", Message: "Cancelled"}
				return
			}
			if *update {
				results[i] = generateGolden(ctx, file, tempDir, fileHash)
			} else {
				results[i] = testFile(ctx, file, tempDir, fileHash)
			}
		}(i, file, fileHash)
	}
	wg.Wait()
	return results
}

func getJSONPath(sourceFile string) string {
	jsonFileName := "." + filepath.Base(sourceFile) + ".json"
	if *jsonDir != "" {
		return filepath.Join(*jsonDir, jsonFileName)
	}
	return filepath.Join(filepath.Dir(sourceFile), jsonFileName)
}

// hashFile computes the xxhash of a file's content
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}

func generateGolden(ctx context.Context, file, tempDir, fileHash string) *FileTestResult {
	result := compile(ctx, file, tempDir, fileHash)
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to marshal golden data: %v", err)}
	}
	goldenFile := getJSONPath(file)
	if *jsonDir != "" {
		if err := os.MkdirAll(*jsonDir, 0o755); err != nil {
			return &FileTestResult{File: file, Status: "ERROR", Message: err.Error()}
		}
	}
	if err := os.WriteFile(goldenFile, data, 0o644); err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to write golden file: %v", err)}
	}
	return &FileTestResult{File: file, Status: "PASS", Message: "Golden file written to " + goldenFile, Target: result}
}

func testFile(ctx context.Context, file, tempDir, fileHash string) *FileTestResult {
	goldenFile := getJSONPath(file)
	data, err := os.ReadFile(goldenFile)
	if errors.Is(err, os.ErrNotExist) {
		return &FileTestResult{File: file, Status: "SKIP", Message: "No golden file, run with --update to create one"}
	}
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not read golden file %s: %v", goldenFile, err)}
	}
	var golden Golden
	if err := json.Unmarshal(data, &golden); err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not parse golden file %s: %v", goldenFile, err)}
	}

	got := compile(ctx, file, tempDir, fileHash)
	if golden.Hash != "" && golden.Hash != fileHash && *verbose {
		log.Printf("[%s] source changed since the golden file was written", file)
	}

	diff := cmp.Diff(&golden, got,
		cmpopts.IgnoreFields(Golden{}, "Hash", "Args"),
		cmpopts.IgnoreFields(Execution{}, "Duration"),
	)
	if diff != "" {
		return &FileTestResult{File: file, Status: "FAIL", Message: "Output differs from golden file", Diff: diff, Target: got}
	}
	return &FileTestResult{File: file, Status: "PASS", Message: fmt.Sprintf("Matches golden file (%s)", formatDuration(got.Compile.Duration)), Target: got}
}

// normalizeOutput strips the per-run temp directory so paths compare equal
// across runs.
func normalizeOutput(s, tempDir string) string {
	return strings.ReplaceAll(s, tempDir+string(filepath.Separator), "")
}

func compile(ctx context.Context, file, tempDir, fileHash string) *Golden {
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	outPath := filepath.Join(tempDir, fileHash+".asm")
	args := append([]string{"-o", outPath}, strings.Fields(*targetArgs)...)
	args = append(args, file)

	result := &Golden{Hash: fileHash, Args: strings.Fields(*targetArgs)}
	result.Compile = executeCommand(ctx, *targetCompiler, args...)
	result.Compile.Stdout = normalizeOutput(result.Compile.Stdout, tempDir)
	result.Compile.Stderr = normalizeOutput(result.Compile.Stderr, tempDir)
	if asm, err := os.ReadFile(outPath); err == nil {
		result.Assembly = string(asm)
		os.Remove(outPath)
	}
	return result
}

func executeCommand(ctx context.Context, command string, args ...string) Execution {
	startTime := time.Now()
	cmd := exec.CommandContext(ctx, command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	execResult := Execution{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(startTime),
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		execResult.TimedOut = true
		execResult.ExitCode = -1
	case errors.As(err, &exitErr):
		execResult.ExitCode = exitErr.ExitCode()
	case err != nil:
		execResult.ExitCode = -2
		execResult.Stderr += "\nExecution error: " + err.Error()
	}
	return execResult
}

func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
}

func printSummary(results []*FileTestResult) {
	var passed, failed, skipped, errored int
	for _, result := range results {
		fmt.Println("----------------------------------------------------------------------")
		fmt.Printf("Testing %s%s%s...\n", cCyan, result.File, cNone)
		switch result.Status {
		case "PASS":
			passed++
			fmt.Printf("  [%sPASS%s] %s\n", cGreen, cNone, result.Message)
		case "FAIL":
			failed++
			fmt.Printf("  [%sFAIL%s] %s\n", cRed, cNone, result.Message)
			fmt.Println(formatDiff(result.Diff))
		case "SKIP":
			skipped++
			fmt.Printf("  [%sSKIP%s] %s\n", cYellow, cNone, result.Message)
		default:
			errored++
			fmt.Printf("  [%sERROR%s] %s\n", cRed, cNone, result.Message)
		}
	}
	fmt.Println("----------------------------------------------------------------------")
	fmt.Printf("%d passed, %d failed, %d skipped, %d errors (%d files)\n", passed, failed, skipped, errored, len(results))
}

func formatDiff(diff string) string {
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(strings.TrimSpace(line), "-"):
			fmt.Fprintf(&sb, "    %s%s%s\n", cRed, line, cNone)
		case strings.HasPrefix(strings.TrimSpace(line), "+"):
			fmt.Fprintf(&sb, "    %s%s%s\n", cGreen, line, cNone)
		default:
			fmt.Fprintf(&sb, "    %s\n", line)
		}
	}
	return sb.String()
}

func writeJSONReport(results []*FileTestResult) error {
	report := make(map[string]*FileTestResult, len(results))
	for _, r := range results {
		report[r.File] = r
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	outputFile := *outputJSON
	if *jsonDir != "" {
		outputFile = filepath.Join(*jsonDir, *outputJSON)
	}
	return os.WriteFile(outputFile, data, 0o644)
}

func expandGlobPatterns(patterns string, skip []string) ([]string, error) {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[filepath.Clean(s)] = true
	}
	unique := make(map[string]bool)
	for _, pattern := range strings.Fields(patterns) {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern '%s': %w", pattern, err)
		}
		for _, m := range matches {
			if !skipped[filepath.Clean(m)] {
				unique[m] = true
			}
		}
	}
	files := make([]string, 0, len(unique))
	for f := range unique {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}
