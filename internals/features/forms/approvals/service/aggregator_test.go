package service

import (
	"context"
	"testing"

	"github.com/sudoneoox/Picton/internals/constants"
	"github.com/sudoneoox/Picton/internals/features/forms/approvals/model"
	submissionModel "github.com/sudoneoox/Picton/internals/features/forms/submissions/model"
	templateModel "github.com/sudoneoox/Picton/internals/features/forms/templates/model"
)

func steps(required ...bool) []templateModel.FormApprovalWorkflowModel {
	out := make([]templateModel.FormApprovalWorkflowModel, len(required))
	for i, r := range required {
		out[i] = templateModel.FormApprovalWorkflowModel{WorkflowOrder: i + 1, WorkflowIsRequired: r}
	}
	return out
}

func decided(pairs ...any) []model.FormApprovalModel {
	var out []model.FormApprovalModel
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, model.FormApprovalModel{
			ApprovalStepNumber: pairs[i].(int),
			ApprovalDecision:   pairs[i+1].(constants.Decision),
		})
	}
	return out
}

func TestAggregate(t *testing.T) {
	cases := []struct {
		name      string
		steps     []templateModel.FormApprovalWorkflowModel
		approvals []model.FormApprovalModel
		required  int
		want      Outcome
	}{
		{
			name:     "nothing decided",
			steps:    steps(true, false, true),
			required: 2,
			want:     Outcome{Status: constants.StatusPending},
		},
		{
			name:      "rejection wins over approvals",
			steps:     steps(true, true, true),
			approvals: decided(1, constants.DecisionApproved, 2, constants.DecisionRejected, 3, constants.DecisionNone),
			required:  3,
			want:      Outcome{Status: constants.StatusRejected, Completed: 2},
		},
		{
			name:      "rejection wins over return",
			steps:     steps(true, true),
			approvals: decided(1, constants.DecisionReturned, 2, constants.DecisionRejected),
			required:  2,
			want:      Outcome{Status: constants.StatusRejected, Completed: 2},
		},
		{
			name:      "return on optional step",
			steps:     steps(true, false, true),
			approvals: decided(1, constants.DecisionApproved, 2, constants.DecisionReturned),
			required:  2,
			want:      Outcome{Status: constants.StatusReturned, Completed: 1},
		},
		{
			name:      "optional decisions do not count",
			steps:     steps(true, false, true),
			approvals: decided(1, constants.DecisionApproved, 2, constants.DecisionApproved),
			required:  2,
			want:      Outcome{Status: constants.StatusPending, Completed: 1},
		},
		{
			name:      "all required approved, optional skipped",
			steps:     steps(true, false, true),
			approvals: decided(1, constants.DecisionApproved, 3, constants.DecisionApproved),
			required:  2,
			want:      Outcome{Status: constants.StatusApproved, Completed: 2},
		},
		{
			name:      "all optional approves on first decision",
			steps:     steps(false, false),
			approvals: decided(1, constants.DecisionApproved),
			required:  0,
			want:      Outcome{Status: constants.StatusApproved},
		},
		{
			name:      "required count snapshot below current steps",
			steps:     steps(true, true, true),
			approvals: decided(1, constants.DecisionApproved, 2, constants.DecisionApproved),
			required:  2,
			want:      Outcome{Status: constants.StatusApproved, Completed: 2},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Aggregate(tc.steps, tc.approvals, tc.required); got != tc.want {
				t.Fatalf("Aggregate = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestRecomputeWritesStatus(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sub := e.pending(t, e.cs)

	first, _ := e.eng.Resolve(ctx, sub, nil, 1)
	third, _ := e.eng.Resolve(ctx, sub, nil, 3)
	e.decide(t, first.ApprovalID, constants.DecisionApproved)

	out, err := e.eng.Recompute(ctx, sub)
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if out.Status != constants.StatusPending || out.Completed != 1 {
		t.Fatalf("after step 1 = %+v", out)
	}

	e.decide(t, third.ApprovalID, constants.DecisionApproved)
	if _, err := e.eng.Recompute(ctx, sub); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	var stored submissionModel.FormSubmissionModel
	e.db.First(&stored, sub.SubmissionID)
	if stored.SubmissionStatus != constants.StatusApproved || stored.SubmissionCompletedApprovalCount != 2 {
		t.Fatalf("stored = %s/%d, want approved/2", stored.SubmissionStatus, stored.SubmissionCompletedApprovalCount)
	}
	if sub.SubmissionStatus != constants.StatusApproved {
		t.Fatalf("in-memory status = %s", sub.SubmissionStatus)
	}
}

func TestRecomputeIgnoresDrafts(t *testing.T) {
	e := newEnv(t)
	sub := e.pending(t, e.cs)
	sub.SubmissionStatus = constants.StatusDraft
	e.db.Model(sub).Update("form_submission_status", constants.StatusDraft)

	out, err := e.eng.Recompute(context.Background(), sub)
	if err != nil || out.Status != constants.StatusDraft {
		t.Fatalf("Recompute(draft) = %+v, %v", out, err)
	}
}
