package swarm

import "strings"

// Directive is the coordinator's routing decision for a round. Every
// coordinator output is translated into exactly one of these variants;
// downstream code never inspects the raw command text.
type Directive int

const (
	DirectiveUnrecognized Directive = iota
	DirectiveExtract
	DirectiveDiagnose
	DirectivePlan
	DirectiveConsult
	DirectiveFinish
)

func (d Directive) String() string {
	switch d {
	case DirectiveExtract:
		return "extract"
	case DirectiveDiagnose:
		return "diagnose"
	case DirectivePlan:
		return "plan"
	case DirectiveConsult:
		return "consult"
	case DirectiveFinish:
		return "finish"
	default:
		return "unrecognized"
	}
}

// Coordinator command vocabulary, matched case-insensitively
const (
	cmdExtract  = "CALL: MEDICAL_DATA_EXTRACTOR"
	cmdDiagnose = "CALL: DIAGNOSTIC_SPECIALIST"
	cmdPlan     = "CALL: TREATMENT_PLANNER"
	cmdConsult  = "CALL: SPECIALIST_CONSULTANT"
	cmdFinish   = "FINISH"
)

// ParseDirective is the single translation point from the coordinator's
// free-text command to a Directive. Anything outside the vocabulary is
// Unrecognized; callers decide what that means.
func ParseDirective(raw string) Directive {
	s := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, cmdExtract):
		return DirectiveExtract
	case strings.Contains(s, cmdDiagnose):
		return DirectiveDiagnose
	case strings.Contains(s, cmdPlan):
		return DirectivePlan
	case strings.Contains(s, cmdConsult):
		return DirectiveConsult
	case strings.Contains(s, cmdFinish):
		return DirectiveFinish
	default:
		return DirectiveUnrecognized
	}
}
