// Package validator runs an Arazzo document through the validation pipeline.
//
// The pipeline is linear: the path argument is checked and resolved, the document is parsed,
// checked against the Arazzo JSON Schema and the Arazzo semantic rules, and finally handed to an
// external validator CLI when one is installed. Each stage produces a StageResult and the
// aggregated Result maps onto a process exit code.
package validator

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/SteakFisher/arazzo-writer/arazzo"
	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/internal/logger"
	"github.com/SteakFisher/arazzo-writer/schema"
	"github.com/SteakFisher/arazzo-writer/system"
	"github.com/SteakFisher/arazzo-writer/validation"
	"github.com/SteakFisher/arazzo-writer/yml"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// ErrMissingArgument is returned when no document path was given.
	ErrMissingArgument = errors.Error("missing argument: a path to an Arazzo document is required")
	// ErrFileNotFound is returned when the document path does not exist.
	ErrFileNotFound = errors.Error("file not found")
	// ErrNotAFile is returned when the document path is a directory.
	ErrNotAFile = errors.Error("not a file")
	// ErrNoMatches is returned when a glob pattern matched no files.
	ErrNoMatches = errors.Error("no files matched")
)

// StdinPath is the path argument that reads the document from standard input.
const StdinPath = "-"

// DefaultExternalCommand is the external validator invoked when none is configured.
const DefaultExternalCommand = "openapi arazzo validate"

const (
	DefaultTimeout     = time.Minute
	DefaultConcurrency = 4
)

// Stage names one step of the pipeline.
type Stage string

const (
	StageSyntax   Stage = "syntax"
	StageSchema   Stage = "schema"
	StageSemantic Stage = "semantic"
	StageExternal Stage = "external"
)

// Stages lists the pipeline stages in execution order.
var Stages = []Stage{StageSyntax, StageSchema, StageSemantic, StageExternal}

// Status is the outcome of a stage.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// StageResult records what a single stage found.
type StageResult struct {
	Stage    Stage
	Status   Status
	Errors   []error
	Output   string
	Reason   string
	Duration time.Duration
}

// Result is the outcome of validating one document.
type Result struct {
	// Path is the resolved absolute path, or StdinPath.
	Path   string
	Stages []StageResult
	// Err is set when the document could not be loaded, in which case no stage ran.
	Err error
}

// Passed reports whether the document was loaded and no stage failed.
func (r *Result) Passed() bool {
	if r.Err != nil {
		return false
	}
	for _, s := range r.Stages {
		if s.Status == StatusFailed {
			return false
		}
	}
	return true
}

// ExitCode is 0 when every stage that ran passed and 1 otherwise.
func (r *Result) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}

// Stage returns the result of stage s.
func (r *Result) Stage(s Stage) (StageResult, bool) {
	for _, sr := range r.Stages {
		if sr.Stage == s {
			return sr, true
		}
	}
	return StageResult{}, false
}

// Findings returns the errors of every stage in pipeline order.
func (r *Result) Findings() []error {
	var all []error
	for _, s := range r.Stages {
		all = append(all, s.Errors...)
	}
	return all
}

// Validator runs the pipeline. It is safe for concurrent use.
type Validator struct {
	fs              system.VirtualFS
	runner          Runner
	stdin           io.Reader
	externalCommand string
	timeout         time.Duration
	concurrency     int
	skip            map[Stage]bool
}

// Option configures a Validator.
type Option func(v *Validator)

// WithFileSystem sets the filesystem documents are read from.
func WithFileSystem(fsys system.VirtualFS) Option {
	return func(v *Validator) {
		v.fs = fsys
	}
}

// WithRunner sets how the external validator is located and executed.
func WithRunner(r Runner) Option {
	return func(v *Validator) {
		v.runner = r
	}
}

// WithStdin sets the reader used for the StdinPath argument.
func WithStdin(r io.Reader) Option {
	return func(v *Validator) {
		v.stdin = r
	}
}

// WithExternalCommand sets the external validator command line. The document path is appended as the last argument.
// An empty command disables the external stage.
func WithExternalCommand(command string) Option {
	return func(v *Validator) {
		v.externalCommand = command
	}
}

// WithTimeout bounds how long the external validator may run. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) {
		v.timeout = d
	}
}

// WithConcurrency bounds how many documents ValidateAll checks at once.
func WithConcurrency(n int) Option {
	return func(v *Validator) {
		v.concurrency = n
	}
}

// WithSkipStage disables a stage. Disabled stages are reported as skipped.
func WithSkipStage(s Stage) Option {
	return func(v *Validator) {
		v.skip[s] = true
	}
}

// New creates a Validator reading from the OS filesystem and executing the default external command.
func New(opts ...Option) *Validator {
	v := &Validator{
		fs:              &system.FileSystem{},
		runner:          &ExecRunner{},
		stdin:           os.Stdin,
		externalCommand: DefaultExternalCommand,
		timeout:         DefaultTimeout,
		concurrency:     DefaultConcurrency,
		skip:            map[Stage]bool{},
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.concurrency < 1 {
		v.concurrency = 1
	}
	return v
}

// Validate runs the pipeline for the document at path.
// Usage and lookup failures are returned as errors; findings about the document are reported in the Result.
func (v *Validator) Validate(ctx context.Context, path string) (*Result, error) {
	if path == "" {
		return nil, ErrMissingArgument
	}

	resolved, data, err := v.load(path)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithFields(ctx, logrus.Fields{"path": resolved})
	res := &Result{Path: resolved}

	if err := v.check(ctx, res, data); err != nil {
		return nil, err
	}

	external, err := v.runExternal(ctx, resolved, data)
	if err != nil {
		return nil, err
	}
	res.Stages = append(res.Stages, external)

	logger.G(ctx).WithField("exit_code", res.ExitCode()).Debug("validation finished")

	return res, nil
}

func (v *Validator) load(path string) (string, []byte, error) {
	if path == StdinPath {
		data, err := io.ReadAll(v.stdin)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return StdinPath, data, nil
	}

	resolved, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	info, err := v.fs.Stat(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, ErrFileNotFound.Wrapf("%s", path)
		}
		return "", nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return "", nil, ErrNotAFile.Wrapf("%s is a directory", path)
	}

	data, err := v.fs.ReadFile(resolved)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return resolved, data, nil
}

var yamlLineRegex = regexp.MustCompile(`line (\d+)`)

func (v *Validator) runSyntax(ctx context.Context, data []byte) (*yaml.Node, StageResult) {
	start := time.Now()
	sr := StageResult{Stage: StageSyntax}

	if v.skip[StageSyntax] {
		sr.Status = StatusSkipped
		sr.Reason = "disabled"
	}

	// later stages need the tree even when this stage is not reported
	root, err := yml.Parse(data)
	sr.Duration = time.Since(start)

	if err != nil {
		if sr.Status == StatusSkipped {
			return nil, sr
		}

		node := &yaml.Node{Line: 1, Column: 1}
		if m := yamlLineRegex.FindStringSubmatch(err.Error()); m != nil {
			node.Line, _ = strconv.Atoi(m[1])
		}
		sr.Status = StatusFailed
		sr.Errors = []error{validation.NewNodeError(validation.RuleValidationInvalidSyntax, node, "%s", err.Error())}
		logger.G(ctx).WithError(err).Debug("syntax check failed")
		return nil, sr
	}

	if sr.Status != StatusSkipped {
		sr.Status = StatusPassed
	}
	return root, sr
}

func (v *Validator) runInProcess(ctx context.Context, stage Stage, root *yaml.Node) StageResult {
	start := time.Now()

	var errs []error
	switch stage {
	case StageSchema:
		errs = schema.Validate(ctx, root)
	case StageSemantic:
		_, errs = arazzo.UnmarshalNode(ctx, root)
	}

	sr := StageResult{Stage: stage, Status: StatusPassed, Errors: errs, Duration: time.Since(start)}
	if hasErrors(errs) {
		sr.Status = StatusFailed
	}

	logger.G(ctx).WithFields(logrus.Fields{
		"stage":    stage,
		"findings": len(errs),
		"duration": sr.Duration,
	}).Debug("stage finished")

	return sr
}

// hasErrors reports whether errs holds anything more severe than a warning.
func hasErrors(errs []error) bool {
	for _, err := range errs {
		var vErr *validation.Error
		if !errors.As(err, &vErr) || vErr.Severity == validation.SeverityError {
			return true
		}
	}
	return false
}

// ValidateBytes runs the in-process stages over an in-memory document. The external stage is skipped.
func (v *Validator) ValidateBytes(ctx context.Context, name string, data []byte) (*Result, error) {
	res := &Result{Path: name}

	if err := v.check(ctx, res, data); err != nil {
		return nil, err
	}
	res.Stages = append(res.Stages, StageResult{Stage: StageExternal, Status: StatusSkipped, Reason: "in-memory document"})

	return res, nil
}

// check runs the syntax, schema and semantic stages and appends their results to res.
func (v *Validator) check(ctx context.Context, res *Result, data []byte) error {
	root, syntax := v.runSyntax(ctx, data)
	res.Stages = append(res.Stages, syntax)

	unparsed := "syntax check failed"
	if syntax.Status == StatusSkipped {
		unparsed = "document could not be parsed"
	}

	for _, stage := range []Stage{StageSchema, StageSemantic} {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch {
		case v.skip[stage]:
			res.Stages = append(res.Stages, StageResult{Stage: stage, Status: StatusSkipped, Reason: "disabled"})
		case root == nil:
			res.Stages = append(res.Stages, StageResult{Stage: stage, Status: StatusSkipped, Reason: unparsed})
		default:
			res.Stages = append(res.Stages, v.runInProcess(ctx, stage, root))
		}
	}

	return ctx.Err()
}
