package swarm

import "testing"

func TestParseDirective(t *testing.T) {
	cases := []struct {
		in   string
		want Directive
	}{
		{"CALL: MEDICAL_DATA_EXTRACTOR", DirectiveExtract},
		{"call: medical_data_extractor", DirectiveExtract},
		{"I think we should CALL: DIAGNOSTIC_SPECIALIST next.", DirectiveDiagnose},
		{"CALL: TREATMENT_PLANNER", DirectivePlan},
		{"  CALL: SPECIALIST_CONSULTANT  ", DirectiveConsult},
		{"FINISH", DirectiveFinish},
		{"finish", DirectiveFinish},
		{"The analysis is complete. FINISH.", DirectiveFinish},
		{"CALL: RADIOLOGIST", DirectiveUnrecognized},
		{"", DirectiveUnrecognized},
		{"let's keep going", DirectiveUnrecognized},
	}
	for _, tc := range cases {
		if got := ParseDirective(tc.in); got != tc.want {
			t.Fatalf("ParseDirective(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestDirectiveString(t *testing.T) {
	if DirectiveExtract.String() != "extract" || DirectiveUnrecognized.String() != "unrecognized" {
		t.Fatal("unexpected directive names")
	}
}
