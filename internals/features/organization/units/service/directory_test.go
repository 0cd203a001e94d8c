package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sudoneoox/Picton/internals/constants"
	"github.com/sudoneoox/Picton/internals/databases/dbtest"
	"github.com/sudoneoox/Picton/internals/features/organization/units/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

func codes(units []model.OrganizationalUnitModel) []string {
	out := make([]string, len(units))
	for i, u := range units {
		out[i] = u.UnitCode
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestHierarchyPath(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	uh := dbtest.Unit(t, db, "UH", "University of Houston", nil)
	nsm := dbtest.Unit(t, db, "NSM", "College of Natural Sciences and Mathematics", uh)
	cs := dbtest.Unit(t, db, "CS", "Computer Science", nsm)

	path, err := NewDirectory(db).HierarchyPath(ctx, cs.UnitID)
	if err != nil {
		t.Fatalf("HierarchyPath: %v", err)
	}
	if got := codes(path); !equal(got, []string{"UH", "NSM", "CS"}) {
		t.Fatalf("path = %v", got)
	}
}

func TestHierarchyPathDetectsCycle(t *testing.T) {
	db := dbtest.Open(t)
	a := dbtest.Unit(t, db, "A", "A", nil)
	b := dbtest.Unit(t, db, "B", "B", a)
	// corrupt the data behind the service's back
	if err := db.Model(a).Update("unit_parent_id", b.UnitID).Error; err != nil {
		t.Fatal(err)
	}
	_, err := NewDirectory(db).HierarchyPath(context.Background(), b.UnitID)
	if !errors.Is(err, helper.ErrHierarchyCycle) {
		t.Fatalf("err = %v, want ErrHierarchyCycle", err)
	}
}

func TestApproversForOrdersScopedBeforeOrgWide(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	uh := dbtest.Unit(t, db, "UH", "University of Houston", nil)
	cs := dbtest.Unit(t, db, "CS", "Computer Science", uh)

	wide := dbtest.User(t, db, "wide", constants.RoleStaff)
	second := dbtest.User(t, db, "second", constants.RoleStaff)
	first := dbtest.User(t, db, "first", constants.RoleStaff)
	other := dbtest.User(t, db, "other", constants.RoleStaff)

	dbtest.Approver(t, db, uh, wide, "Graduate Advisor", true)
	dbtest.Approver(t, db, cs, first, "Graduate Advisor", false)
	dbtest.Approver(t, db, cs, second, "Graduate Advisor", false)
	dbtest.Approver(t, db, cs, other, "Department Chair", false)
	inactive := dbtest.Approver(t, db, cs, other, "Graduate Advisor", false)
	if err := db.Model(inactive).Update("unit_approver_is_active", false).Error; err != nil {
		t.Fatal(err)
	}

	got, err := NewDirectory(db).ApproversFor(ctx, cs.UnitID, "Graduate Advisor")
	if err != nil {
		t.Fatalf("ApproversFor: %v", err)
	}
	// second was created before first, so it has the lower user id
	want := []uint{second.ID, first.ID, wide.ID}
	if len(got) != len(want) {
		t.Fatalf("approvers = %+v", got)
	}
	if second.ID > first.ID {
		want[0], want[1] = first.ID, second.ID
	}
	for i := range want {
		if got[i].UnitApproverUserID != want[i] {
			t.Fatalf("approver[%d] = user %d, want %d", i, got[i].UnitApproverUserID, want[i])
		}
	}
}

func TestEligibleApproversWalksUpToNearestUnit(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	uh := dbtest.Unit(t, db, "UH", "University of Houston", nil)
	nsm := dbtest.Unit(t, db, "NSM", "Natural Sciences and Mathematics", uh)
	cs := dbtest.Unit(t, db, "CS", "Computer Science", nsm)

	dean := dbtest.User(t, db, "dean", constants.RoleStaff)
	provost := dbtest.User(t, db, "provost", constants.RoleStaff)
	dbtest.Approver(t, db, nsm, dean, "Associate Dean for Graduate Studies", false)
	dbtest.Approver(t, db, uh, provost, "Associate Dean for Graduate Studies", false)

	dir := NewDirectory(db)
	direct, err := dir.ApproversFor(ctx, cs.UnitID, "Associate Dean for Graduate Studies")
	if err != nil {
		t.Fatal(err)
	}
	if len(direct) != 0 {
		t.Fatalf("ApproversFor(CS) = %+v, want none", direct)
	}

	got, err := dir.EligibleApprovers(ctx, cs.UnitID, "Associate Dean for Graduate Studies")
	if err != nil {
		t.Fatalf("EligibleApprovers: %v", err)
	}
	if len(got) != 1 || got[0].UnitApproverUserID != dean.ID {
		t.Fatalf("eligible = %+v, want only the NSM dean", got)
	}
}

func TestUniqueApproverAndUnitCode(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	dir := NewDirectory(db)

	uh, err := dir.CreateUnit(ctx, CreateUnitInput{Name: "University of Houston", Code: "uh"})
	if err != nil {
		t.Fatalf("CreateUnit: %v", err)
	}
	if uh.UnitCode != "UH" || uh.UnitLevel != 0 {
		t.Fatalf("unit = %+v", uh)
	}
	if _, err := dir.CreateUnit(ctx, CreateUnitInput{Name: "Duplicate", Code: "UH"}); !helper.IsValidation(err) {
		t.Fatalf("duplicate code err = %v, want validation", err)
	}

	u := dbtest.User(t, db, "advisor", constants.RoleStaff)
	in := AssignApproverInput{UnitID: uh.UnitID, UserID: u.ID, Role: "Graduate Advisor"}
	if _, err := dir.AssignApprover(ctx, in); err != nil {
		t.Fatalf("AssignApprover: %v", err)
	}
	if _, err := dir.AssignApprover(ctx, in); !helper.IsValidation(err) {
		t.Fatalf("duplicate approver err = %v, want validation", err)
	}
	in.Role = "Department Chair"
	if _, err := dir.AssignApprover(ctx, in); err != nil {
		t.Fatalf("different role should be allowed: %v", err)
	}
}

func TestReparentRejectsCycleAndRelevels(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	dir := NewDirectory(db)

	uh, _ := dir.CreateUnit(ctx, CreateUnitInput{Name: "UH", Code: "UH"})
	grad, _ := dir.CreateUnit(ctx, CreateUnitInput{Name: "Graduate School", Code: "GRAD", ParentID: &uh.UnitID})
	nsm, _ := dir.CreateUnit(ctx, CreateUnitInput{Name: "NSM", Code: "NSM", ParentID: &uh.UnitID})
	cs, err := dir.CreateUnit(ctx, CreateUnitInput{Name: "CS", Code: "CS", ParentID: &nsm.UnitID})
	if err != nil {
		t.Fatal(err)
	}
	if cs.UnitLevel != 2 {
		t.Fatalf("cs level = %d", cs.UnitLevel)
	}

	if _, err := dir.Reparent(ctx, nsm.UnitID, &cs.UnitID); !helper.IsValidation(err) {
		t.Fatalf("cycle reparent err = %v, want validation", err)
	}
	if _, err := dir.Reparent(ctx, nsm.UnitID, &nsm.UnitID); !helper.IsValidation(err) {
		t.Fatalf("self reparent err = %v, want validation", err)
	}

	moved, err := dir.Reparent(ctx, nsm.UnitID, &grad.UnitID)
	if err != nil {
		t.Fatalf("Reparent: %v", err)
	}
	if moved.UnitLevel != 2 {
		t.Fatalf("nsm level = %d, want 2", moved.UnitLevel)
	}
	csNow, _ := dir.Get(ctx, cs.UnitID)
	if csNow.UnitLevel != 3 {
		t.Fatalf("cs level after move = %d, want 3", csNow.UnitLevel)
	}

	root, err := dir.Reparent(ctx, nsm.UnitID, nil)
	if err != nil || root.UnitLevel != 0 || root.UnitParentID != nil {
		t.Fatalf("reparent to root = %+v, %v", root, err)
	}
}

func TestUnitsForUserAndPrimaryUnit(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	uh := dbtest.Unit(t, db, "UH", "UH", nil)
	cs := dbtest.Unit(t, db, "CS", "CS", uh)
	u := dbtest.User(t, db, "chair", constants.RoleStaff)
	dbtest.Approver(t, db, cs, u, "Department Chair", false)
	dbtest.Approver(t, db, uh, u, "Reviewer", false)

	dir := NewDirectory(db)
	units, err := dir.UnitsForUser(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := codes(units); !equal(got, []string{"UH", "CS"}) {
		t.Fatalf("units = %v", got)
	}
	primary, err := dir.PrimaryUnitForUser(ctx, u.ID)
	if err != nil || primary == nil || primary.UnitCode != "CS" {
		t.Fatalf("primary = %+v, %v", primary, err)
	}
	none, err := dir.PrimaryUnitForUser(ctx, 9999)
	if err != nil || none != nil {
		t.Fatalf("primary for stranger = %+v, %v", none, err)
	}
}
