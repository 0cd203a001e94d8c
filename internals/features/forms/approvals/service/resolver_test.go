package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sudoneoox/Picton/internals/constants"
	"github.com/sudoneoox/Picton/internals/databases/dbtest"
	"github.com/sudoneoox/Picton/internals/features/forms/approvals/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

func TestResolveIsIdempotent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sub := e.pending(t, e.cs)

	first, err := e.eng.Resolve(ctx, sub, nil, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first.ApprovalApproverID != e.advisor.ID || first.ApprovalDelegatedByID != nil {
		t.Fatalf("routed to %d (delegated_by %v), want advisor", first.ApprovalApproverID, first.ApprovalDelegatedByID)
	}
	second, err := e.eng.Resolve(ctx, sub, nil, 1)
	if err != nil {
		t.Fatalf("Resolve again: %v", err)
	}
	if second.ApprovalID != first.ApprovalID {
		t.Fatalf("second resolve created approval %d, want %d", second.ApprovalID, first.ApprovalID)
	}

	var n int64
	e.db.Model(&model.FormApprovalModel{}).Where("form_approval_submission_id = ?", sub.SubmissionID).Count(&n)
	if n != 1 {
		t.Fatalf("approval rows = %d, want 1", n)
	}
}

func TestResolveRoutesOrgWideStepFromAncestor(t *testing.T) {
	e := newEnv(t)
	sub := e.pending(t, e.cs)

	a, err := e.eng.Resolve(context.Background(), sub, nil, 3)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if a.ApprovalApproverID != e.dean.ID {
		t.Fatalf("step 3 routed to %d, want dean %d", a.ApprovalApproverID, e.dean.ID)
	}
}

func TestResolveHonoursDelegationWindow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.delegate(t, e.advisor, e.stand, t0.Add(24*time.Hour), t0.Add(72*time.Hour))

	e.now = t0.Add(48 * time.Hour)
	inside, err := e.eng.Resolve(ctx, e.pending(t, e.cs), nil, 1)
	if err != nil {
		t.Fatalf("Resolve inside window: %v", err)
	}
	if inside.ApprovalApproverID != e.stand.ID {
		t.Fatalf("inside window routed to %d, want delegate %d", inside.ApprovalApproverID, e.stand.ID)
	}
	if inside.ApprovalDelegatedByID == nil || *inside.ApprovalDelegatedByID != e.advisor.ID {
		t.Fatalf("delegated_by = %v, want advisor", inside.ApprovalDelegatedByID)
	}

	e.now = t0.Add(96 * time.Hour)
	after, err := e.eng.Resolve(ctx, e.pending(t, e.cs), nil, 1)
	if err != nil {
		t.Fatalf("Resolve after window: %v", err)
	}
	if after.ApprovalApproverID != e.advisor.ID || after.ApprovalDelegatedByID != nil {
		t.Fatalf("after window routed to %d (delegated_by %v), want advisor", after.ApprovalApproverID, after.ApprovalDelegatedByID)
	}
}

func TestResolveReroutesUndecidedApproval(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sub := e.pending(t, e.cs)

	row, err := e.eng.Resolve(ctx, sub, nil, 1)
	if err != nil || row.ApprovalApproverID != e.advisor.ID {
		t.Fatalf("initial routing = %+v, %v", row, err)
	}

	id := e.delegate(t, e.advisor, e.stand, t0.Add(time.Hour), t0.Add(48*time.Hour))
	e.now = t0.Add(2 * time.Hour)
	moved, err := e.eng.Resolve(ctx, sub, nil, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if moved.ApprovalID != row.ApprovalID || moved.ApprovalApproverID != e.stand.ID {
		t.Fatalf("undecided row not moved to delegate: %+v", moved)
	}

	if err := e.reg.Cancel(ctx, id, e.advisor.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	back, err := e.eng.Resolve(ctx, sub, nil, 1)
	if err != nil {
		t.Fatalf("Resolve after cancel: %v", err)
	}
	if back.ApprovalApproverID != e.advisor.ID || back.ApprovalDelegatedByID != nil {
		t.Fatalf("row not returned to holder: %+v", back)
	}
}

func TestResolveLeavesDecidedApprovalAlone(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sub := e.pending(t, e.cs)

	row, err := e.eng.Resolve(ctx, sub, nil, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	e.decide(t, row.ApprovalID, constants.DecisionApproved)

	e.delegate(t, e.advisor, e.stand, t0.Add(time.Hour), t0.Add(48*time.Hour))
	e.now = t0.Add(2 * time.Hour)
	again, err := e.eng.Resolve(ctx, sub, nil, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if again.ApprovalApproverID != e.advisor.ID || again.ApprovalDecision != constants.DecisionApproved {
		t.Fatalf("decided row changed: %+v", again)
	}
}

func TestResolveNothingToRoute(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("missing step", func(t *testing.T) {
		_, err := e.eng.Resolve(ctx, e.pending(t, e.cs), nil, 4)
		if !helper.IsNothingToRoute(err) {
			t.Fatalf("err = %v, want nothing to route", err)
		}
	})
	t.Run("no unit", func(t *testing.T) {
		_, err := e.eng.Resolve(ctx, e.pending(t, nil), nil, 1)
		if !helper.IsNothingToRoute(err) {
			t.Fatalf("err = %v, want nothing to route", err)
		}
	})
	t.Run("no approver anywhere", func(t *testing.T) {
		// the graduate school has no advisor and nothing above it does either
		sub := e.pending(t, e.grad)
		_, err := e.eng.Resolve(ctx, sub, nil, 1)
		if !helper.IsNothingToRoute(err) {
			t.Fatalf("err = %v, want nothing to route", err)
		}
		var n int64
		e.db.Model(&model.FormApprovalModel{}).Where("form_approval_submission_id = ?", sub.SubmissionID).Count(&n)
		if n != 0 {
			t.Fatalf("routing gap created %d approvals", n)
		}
	})
	t.Run("unknown submission", func(t *testing.T) {
		sub := e.pending(t, e.cs)
		sub.SubmissionID = 9999
		if _, err := e.eng.Resolve(ctx, sub, nil, 1); !helper.IsNotFound(err) {
			t.Fatalf("err = %v, want not found", err)
		}
	})
}

func TestResolveUsesRequestedApprover(t *testing.T) {
	e := newEnv(t)
	sub := e.pending(t, e.cs)

	a, err := e.eng.Resolve(context.Background(), sub, &e.chair.ID, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if a.ApprovalApproverID != e.chair.ID {
		t.Fatalf("routed to %d, want requested %d", a.ApprovalApproverID, e.chair.ID)
	}
}

func TestResolveAppliesDelegationGivenAtOrgWideUnit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	// the dean approves from the graduate school, which is not on the CS path
	e.delegateAt(t, e.grad, e.dean, e.stand, t0.Add(-time.Hour), t0.Add(72*time.Hour))

	a, err := e.eng.Resolve(ctx, e.pending(t, e.cs), nil, 3)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if a.ApprovalApproverID != e.stand.ID {
		t.Fatalf("step 3 routed to %d, want delegate %d", a.ApprovalApproverID, e.stand.ID)
	}
	if a.ApprovalDelegatedByID == nil || *a.ApprovalDelegatedByID != e.dean.ID {
		t.Fatalf("delegated_by = %v, want dean", a.ApprovalDelegatedByID)
	}
}

func TestResolveAppliesDelegationGivenAtAncestorUnit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	nsm, err := e.eng.Directory.ByCode(ctx, "NSM")
	if err != nil {
		t.Fatalf("ByCode: %v", err)
	}
	assoc := dbtest.SignedUser(t, e.db, "assoc")
	dbtest.Approver(t, e.db, nsm, assoc, "Associate Dean", false)
	e.delegateAt(t, nsm, assoc, e.stand, t0.Add(-time.Hour), t0.Add(24*time.Hour))

	a, err := e.eng.Resolve(ctx, e.pending(t, e.cs), &assoc.ID, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if a.ApprovalApproverID != e.stand.ID {
		t.Fatalf("routed to %d, want delegate %d", a.ApprovalApproverID, e.stand.ID)
	}

	// a delegation for one department does not leak to an unrelated unit
	hist := dbtest.Unit(t, e.db, "HIST", "History", nil)
	e.delegate(t, e.advisor, e.chair, t0.Add(-time.Hour), t0.Add(24*time.Hour))
	other, err := e.eng.Resolve(ctx, e.pending(t, hist), &e.advisor.ID, 1)
	if err != nil {
		t.Fatalf("Resolve(HIST): %v", err)
	}
	if other.ApprovalApproverID != e.advisor.ID || other.ApprovalDelegatedByID != nil {
		t.Fatalf("HIST routed to %d (delegated_by %v), want advisor", other.ApprovalApproverID, other.ApprovalDelegatedByID)
	}
}

func TestConcurrentResolvesShareOneApproval(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sub := e.pending(t, e.cs)

	// sqlite serializes these through its single connection; postgres
	// serializes them on the submission row lock and the open-step index.
	const workers = 8
	ids := make(chan uint, workers)
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		var requested *uint
		if i%2 == 1 {
			requested = &e.chair.ID
		}
		wg.Add(1)
		go func(requested *uint) {
			defer wg.Done()
			a, err := e.eng.Resolve(ctx, sub, requested, 1)
			if err != nil {
				errs <- err
				return
			}
			ids <- a.ApprovalID
		}(requested)
	}
	wg.Wait()
	close(ids)
	close(errs)

	for err := range errs {
		t.Fatalf("Resolve: %v", err)
	}
	var first uint
	for id := range ids {
		if first == 0 {
			first = id
		}
		if id != first {
			t.Fatalf("resolves returned approvals %d and %d", first, id)
		}
	}
	var n int64
	e.db.Model(&model.FormApprovalModel{}).Where("form_approval_submission_id = ?", sub.SubmissionID).Count(&n)
	if n != 1 {
		t.Fatalf("approval rows = %d, want 1", n)
	}
}

func TestOpenStepIndexRejectsSecondUndecidedRow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sub := e.pending(t, e.cs)
	a, err := e.eng.Resolve(ctx, sub, nil, 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	dup := model.FormApprovalModel{
		ApprovalSubmissionID: sub.SubmissionID,
		ApprovalApproverID:   e.chair.ID,
		ApprovalStepNumber:   1,
		ApprovalWorkflowID:   a.ApprovalWorkflowID,
		ApprovalReceivedAt:   e.now,
	}
	if err := e.db.Create(&dup).Error; !helper.IsUniqueViolation(err) {
		t.Fatalf("second undecided row err = %v, want unique violation", err)
	}
}
