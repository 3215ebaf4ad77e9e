package decision

import "github.com/garyjia/sip-workflow/internal/domain/workflow"

// Stage names one step of the decision pipeline
type Stage string

const (
	StagePermission       Stage = "permission"
	StageBusinessRule     Stage = "business_rule"
	StagePolicy           Stage = "policy"
	StageTerminalStatus   Stage = "terminal_status"
	StageTargetResolution Stage = "target_resolution"
	StageTransition       Stage = "transition"
)

// StepOutcome is what happened at one trace step
type StepOutcome string

const (
	OutcomePassed  StepOutcome = "passed"
	OutcomeDenied  StepOutcome = "denied"
	OutcomeWarned  StepOutcome = "warned"
	OutcomeSkipped StepOutcome = "skipped"
)

// TraceStep records the outcome of one check. Each layer returns its own
// steps and the engine concatenates them.
type TraceStep struct {
	Stage    Stage                  `json:"stage"`
	Name     string                 `json:"name"`
	Outcome  StepOutcome            `json:"outcome"`
	Code     workflow.ReasonCode    `json:"code,omitempty"`
	Message  string                 `json:"message,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func passed(stage Stage, name string) TraceStep {
	return TraceStep{Stage: stage, Name: name, Outcome: OutcomePassed}
}

func skipped(stage Stage, name, why string) TraceStep {
	return TraceStep{Stage: stage, Name: name, Outcome: OutcomeSkipped, Message: why}
}

func denied(stage Stage, name string, d *workflow.Denial) TraceStep {
	return TraceStep{
		Stage:    stage,
		Name:     name,
		Outcome:  OutcomeDenied,
		Code:     d.Code,
		Message:  d.Message,
		Metadata: d.Metadata,
	}
}

// Summary condenses a trace into "stage:name=outcome" entries
func Summary(steps []TraceStep) []string {
	out := make([]string, 0, len(steps))
	for _, s := range steps {
		out = append(out, string(s.Stage)+":"+s.Name+"="+string(s.Outcome))
	}
	return out
}
