package service

import (
	"context"
	"testing"
	"time"
)

func TestPendingForMaterializesDelegateApproval(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.delegate(t, e.advisor, e.stand, t0, t0.Add(48*time.Hour))
	sub := e.pending(t, e.cs)

	items, err := e.eng.PendingFor(ctx, e.stand.ID)
	if err != nil {
		t.Fatalf("PendingFor: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("delegate sees %d items, want 1", len(items))
	}
	it := items[0]
	if it.Submission.SubmissionID != sub.SubmissionID || !it.Delegated {
		t.Fatalf("item = %+v", it)
	}
	if it.UnitRole != "Graduate Advisor" || it.UnitName != "Computer Science" {
		t.Fatalf("role/unit = %q/%q", it.UnitRole, it.UnitName)
	}
	if it.Approval.ApprovalDelegatedByID == nil || *it.Approval.ApprovalDelegatedByID != e.advisor.ID {
		t.Fatalf("delegated_by = %v", it.Approval.ApprovalDelegatedByID)
	}

	own, err := e.eng.PendingFor(ctx, e.advisor.ID)
	if err != nil {
		t.Fatalf("PendingFor(advisor): %v", err)
	}
	if len(own) != 0 {
		t.Fatalf("delegator still sees %d items", len(own))
	}
}

func TestPendingForPicksUpLateDelegation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sub := e.pending(t, e.cs)
	if _, err := e.eng.Resolve(ctx, sub, nil, 1); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	e.delegate(t, e.advisor, e.stand, t0.Add(time.Hour), t0.Add(48*time.Hour))
	e.now = t0.Add(2 * time.Hour)

	items, err := e.eng.PendingFor(ctx, e.stand.ID)
	if err != nil {
		t.Fatalf("PendingFor: %v", err)
	}
	if len(items) != 1 || items[0].Approval.ApprovalApproverID != e.stand.ID {
		t.Fatalf("late delegation not applied: %+v", items)
	}
}

func TestPendingForSkipsOutOfScopeAndOtherSteps(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	// chair's step is 2; the submission is still at step 1
	e.pending(t, e.cs)

	items, err := e.eng.PendingFor(ctx, e.chair.ID)
	if err != nil {
		t.Fatalf("PendingFor: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("chair sees %d items before their step", len(items))
	}

	// advisor is scoped to CS and must not pick up a graduate school submission
	e.pending(t, e.grad)
	items, err = e.eng.PendingFor(ctx, e.advisor.ID)
	if err != nil {
		t.Fatalf("PendingFor: %v", err)
	}
	for _, it := range items {
		if it.Submission.SubmissionUnitID != nil && *it.Submission.SubmissionUnitID == e.grad.UnitID {
			t.Fatal("out of scope submission routed to advisor")
		}
	}
	if len(items) != 1 {
		t.Fatalf("advisor sees %d items, want 1", len(items))
	}
}

func TestPendingForShowsDelegatedOrgWideStep(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.delegateAt(t, e.grad, e.dean, e.stand, t0.Add(-time.Hour), t0.Add(72*time.Hour))
	sub := e.pending(t, e.cs)
	if err := e.db.Model(sub).Update("form_submission_current_step", 3).Error; err != nil {
		t.Fatalf("advance: %v", err)
	}

	items, err := e.eng.PendingFor(ctx, e.stand.ID)
	if err != nil {
		t.Fatalf("PendingFor: %v", err)
	}
	if len(items) != 1 || items[0].Submission.SubmissionID != sub.SubmissionID || !items[0].Delegated {
		t.Fatalf("delegate sees %+v, want the dean's step", items)
	}

	own, err := e.eng.PendingFor(ctx, e.dean.ID)
	if err != nil {
		t.Fatalf("PendingFor(dean): %v", err)
	}
	if len(own) != 0 {
		t.Fatalf("dean still sees %d items", len(own))
	}
}
