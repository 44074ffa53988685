package validator

import (
	"encoding/json"

	"github.com/SteakFisher/arazzo-writer/errors"
	"github.com/SteakFisher/arazzo-writer/validation"
)

type findingReport struct {
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Severity string `json:"severity"`
	Rule     string `json:"rule,omitempty"`
	Message  string `json:"message"`
}

type stageReport struct {
	Stage      Stage           `json:"stage"`
	Status     Status          `json:"status"`
	Reason     string          `json:"reason,omitempty"`
	DurationMS int64           `json:"durationMs"`
	Findings   []findingReport `json:"findings,omitempty"`
	Output     string          `json:"output,omitempty"`
}

type resultReport struct {
	Path     string        `json:"path"`
	ExitCode int           `json:"exitCode"`
	Error    string        `json:"error,omitempty"`
	Stages   []stageReport `json:"stages"`
}

// MarshalJSON renders the result in the shape used by the --format json output.
func (r *Result) MarshalJSON() ([]byte, error) {
	out := resultReport{
		Path:     r.Path,
		ExitCode: r.ExitCode(),
		Stages:   make([]stageReport, 0, len(r.Stages)),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}

	for _, s := range r.Stages {
		sr := stageReport{
			Stage:      s.Stage,
			Status:     s.Status,
			Reason:     s.Reason,
			DurationMS: s.Duration.Milliseconds(),
			Output:     s.Output,
		}
		for _, err := range s.Errors {
			sr.Findings = append(sr.Findings, toFinding(err))
		}
		out.Stages = append(out.Stages, sr)
	}

	return json.Marshal(out)
}

func toFinding(err error) findingReport {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		return findingReport{
			Line:     max(vErr.GetLineNumber(), 0),
			Column:   max(vErr.GetColumnNumber(), 0),
			Severity: vErr.Severity.String(),
			Rule:     vErr.Rule,
			Message:  vErr.Message(),
		}
	}
	return findingReport{Severity: validation.SeverityError.String(), Message: err.Error()}
}
