package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ExecutionRequest is one sandbox invocation: a single source file run
// against a single stdin.
type ExecutionRequest struct {
	Language string
	Version  string
	Code     string
	Stdin    string
}

// ExecutionResult separates the compile phase from the run phase; callers
// decide verdicts, this client only reports what the sandbox said.
type ExecutionResult struct {
	CompileFailed bool
	CompileStderr string
	Stdout        string
	Stderr        string
	ExitCode      int
	TimeSec       float64
	MemoryKb      float64
}

// Executor is the external code-execution sandbox boundary. It is untrusted
// and possibly slow; a returned error means the sandbox itself failed, never
// a test verdict.
type Executor interface {
	Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error)
}

type PistonClient struct {
	url    string
	client *http.Client
}

func NewPistonClient(url string, timeout time.Duration) *PistonClient {
	return &PistonClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type pistonFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type pistonRequest struct {
	Language string       `json:"language"`
	Version  string       `json:"version"`
	Files    []pistonFile `json:"files"`
	Stdin    string       `json:"stdin"`
}

type pistonPhase struct {
	Stdout string  `json:"stdout"`
	Stderr string  `json:"stderr"`
	Code   int     `json:"code"`
	Time   float64 `json:"time"`
	Memory float64 `json:"memory"`
}

type pistonResponse struct {
	Compile *pistonPhase `json:"compile,omitempty"`
	Run     *pistonPhase `json:"run,omitempty"`
}

func (c *PistonClient) Execute(ctx context.Context, req ExecutionRequest) (*ExecutionResult, error) {
	payload := pistonRequest{
		Language: req.Language,
		Version:  req.Version,
		Files: []pistonFile{
			{Name: "Main." + FileExtension(req.Language), Content: req.Code},
		},
		Stdin: req.Stdin,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("piston: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("piston: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("piston: execute call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("piston: unexpected status %d", resp.StatusCode)
	}

	var decoded pistonResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("piston: decode response: %w", err)
	}

	result := &ExecutionResult{}
	// Piston reports a compile object only for compiled languages; a
	// non-zero compile exit code or compile stderr means the build failed.
	if decoded.Compile != nil && (decoded.Compile.Code != 0 || decoded.Compile.Stderr != "") {
		result.CompileFailed = true
		result.CompileStderr = decoded.Compile.Stderr
		return result, nil
	}
	if decoded.Run == nil {
		return nil, fmt.Errorf("piston: response missing run phase")
	}

	result.Stdout = decoded.Run.Stdout
	result.Stderr = decoded.Run.Stderr
	result.ExitCode = decoded.Run.Code
	result.TimeSec = decoded.Run.Time
	result.MemoryKb = decoded.Run.Memory
	return result, nil
}

// FileExtension maps a language slug to its source file extension.
func FileExtension(language string) string {
	switch strings.ToLower(language) {
	case "python":
		return "py"
	case "java":
		return "java"
	case "c":
		return "c"
	case "cpp", "c++":
		return "cpp"
	case "javascript":
		return "js"
	case "go":
		return "go"
	case "ruby":
		return "rb"
	case "php":
		return "php"
	default:
		return "txt"
	}
}

// DefaultVersion maps a language slug to the sandbox runtime version used
// when the client does not pin one.
func DefaultVersion(language string) string {
	switch strings.ToLower(language) {
	case "python":
		return "3.10.0"
	case "java":
		return "15.0.2"
	case "cpp", "c++", "c":
		return "10.2.0"
	case "javascript":
		return "18.15.0"
	case "go":
		return "1.16.2"
	default:
		return "latest"
	}
}
