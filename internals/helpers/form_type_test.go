package helper

import "testing"

func TestFormTypeCode(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Graduate Petition Form", "petition"},
		{"Graduate Petition", "petition"},
		{"Term Withdrawal Form", "withdrawal"},
		{"Posthumous Degree Request", "pdr"},
		{"Reinstatement", "reinstatem"},
		{"Café", "cafe"},
	}
	for _, tc := range cases {
		if got := FormTypeCode(tc.name); got != tc.want {
			t.Errorf("FormTypeCode(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSnakeName(t *testing.T) {
	if got := SnakeName("Graduate Petition Form"); got != "graduate_petition_form" {
		t.Fatalf("SnakeName = %q", got)
	}
	if got := SnakeName("  Term-Withdrawal (2024) "); got != "term_withdrawal_2024" {
		t.Fatalf("SnakeName = %q", got)
	}
}
