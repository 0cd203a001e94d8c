package dto

import "strings"

// DecisionRequest serves approve, reject and return. Comments are mandatory for
// reject and return; the lifecycle enforces that.
type DecisionRequest struct {
	Comments        string   `json:"comments"          validate:"max=5000"`
	FieldsToCorrect []string `json:"fields_to_correct" validate:"omitempty,dive,required,max=100"`
}

func (r *DecisionRequest) Normalize() {
	r.Comments = strings.TrimSpace(r.Comments)
	out := r.FieldsToCorrect[:0]
	for _, f := range r.FieldsToCorrect {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	r.FieldsToCorrect = out
}
