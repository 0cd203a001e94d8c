package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sudoneoox/Picton/internals/constants"
	"github.com/sudoneoox/Picton/internals/databases/dbtest"
	notification "github.com/sudoneoox/Picton/internals/features/home/notifications/service"
	"github.com/sudoneoox/Picton/internals/features/organization/delegations/model"
	unitModel "github.com/sudoneoox/Picton/internals/features/organization/units/model"
	unitService "github.com/sudoneoox/Picton/internals/features/organization/units/service"
	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	"gorm.io/gorm"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu   sync.Mutex
	sent []notification.Notification
}

func (r *recorder) Notify(_ context.Context, n notification.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

type fixture struct {
	db        *gorm.DB
	reg       *Registry
	notes     *recorder
	cs        *unitModel.OrganizationalUnitModel
	chair     *userModel.UserModel
	stand     *userModel.UserModel
	admin     *userModel.UserModel
	bystander *userModel.UserModel
}

func newFixture(t *testing.T) *fixture {
	db := dbtest.Open(t)
	uh := dbtest.Unit(t, db, "UH", "University of Houston", nil)
	cs := dbtest.Unit(t, db, "CS", "Computer Science", uh)
	chair := dbtest.User(t, db, "chair", constants.RoleStaff)
	stand := dbtest.User(t, db, "stand", constants.RoleStaff)
	admin := dbtest.User(t, db, "admin", constants.RoleAdmin)
	bystander := dbtest.User(t, db, "bystander", constants.RoleStaff)
	dbtest.Approver(t, db, cs, chair, "Department Chair", false)

	notes := &recorder{}
	reg := NewRegistry(db, unitService.NewDirectory(db), notes)
	reg.Now = func() time.Time { return t0 }
	return &fixture{db: db, reg: reg, notes: notes, cs: cs, chair: chair, stand: stand, admin: admin, bystander: bystander}
}

func (f *fixture) create(t *testing.T, actor uint, start, end time.Time) (*model.ApprovalDelegationModel, error) {
	t.Helper()
	return f.reg.Create(context.Background(), actor, CreateInput{
		DelegatorID: f.chair.ID,
		DelegateID:  f.stand.ID,
		UnitID:      f.cs.UnitID,
		StartDate:   start,
		EndDate:     end,
		Reason:      "conference travel",
	})
}

func TestActiveDelegateForRespectsWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	t1 := t0.Add(72 * time.Hour)
	if _, err := f.create(t, f.chair.ID, t0, t1); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before", t0.Add(-time.Second), false},
		{"start", t0, true},
		{"middle", t0.Add(24 * time.Hour), true},
		{"end", t1, true},
		{"after", t1.Add(time.Second), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok, err := f.reg.ActiveDelegateFor(ctx, f.chair.ID, &f.cs.UnitID, tc.at)
			if err != nil {
				t.Fatal(err)
			}
			if ok != tc.want || (ok && id != f.stand.ID) {
				t.Fatalf("ActiveDelegateFor = %d, %v; want ok=%v", id, ok, tc.want)
			}
		})
	}

	other := uint(999)
	if _, ok, _ := f.reg.ActiveDelegateFor(ctx, f.chair.ID, &other, t0); ok {
		t.Fatal("delegation leaked to another unit")
	}
	if _, ok, _ := f.reg.ActiveDelegateFor(ctx, f.chair.ID, nil, t0); !ok {
		t.Fatal("unit-less lookup should find the delegation")
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.create(t, f.chair.ID, t0, t0); !helper.IsValidation(err) {
		t.Fatalf("end == start err = %v", err)
	}
	if _, err := f.reg.Create(ctx, f.chair.ID, CreateInput{
		DelegatorID: f.chair.ID, DelegateID: f.chair.ID, UnitID: f.cs.UnitID,
		StartDate: t0, EndDate: t0.Add(time.Hour),
	}); !helper.IsValidation(err) {
		t.Fatalf("self delegation err = %v", err)
	}
	// bystander holds no approver row in CS
	if _, err := f.reg.Create(ctx, f.bystander.ID, CreateInput{
		DelegatorID: f.bystander.ID, DelegateID: f.stand.ID, UnitID: f.cs.UnitID,
		StartDate: t0, EndDate: t0.Add(time.Hour),
	}); !helper.IsPermission(err) {
		t.Fatalf("non-approver err = %v, want permission", err)
	}
	// nobody but an admin delegates someone else's authority
	if _, err := f.create(t, f.bystander.ID, t0, t0.Add(time.Hour)); !helper.IsPermission(err) {
		t.Fatalf("foreign delegator err = %v, want permission", err)
	}
	if _, err := f.create(t, f.admin.ID, t0, t0.Add(time.Hour)); err != nil {
		t.Fatalf("admin create: %v", err)
	}
}

func TestOverlappingDelegationRejected(t *testing.T) {
	f := newFixture(t)
	if _, err := f.create(t, f.chair.ID, t0, t0.Add(48*time.Hour)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.create(t, f.chair.ID, t0.Add(24*time.Hour), t0.Add(96*time.Hour)); !helper.IsValidation(err) {
		t.Fatalf("overlap err = %v, want validation", err)
	}
	if _, err := f.create(t, f.chair.ID, t0.Add(49*time.Hour), t0.Add(96*time.Hour)); err != nil {
		t.Fatalf("adjacent window should be accepted: %v", err)
	}
}

func TestCreateWritesHistoryAndNotifies(t *testing.T) {
	f := newFixture(t)
	d, err := f.create(t, f.chair.ID, t0, t0.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	hist, err := f.reg.History(context.Background(), d.DelegationID)
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].HistoryAction != constants.DelegationCreated {
		t.Fatalf("history = %+v", hist)
	}
	if len(f.notes.sent) != 1 || f.notes.sent[0].UserID != f.stand.ID {
		t.Fatalf("notifications = %+v", f.notes.sent)
	}
}

func TestCancelPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	d, err := f.create(t, f.chair.ID, t0, t0.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	if err := f.reg.Cancel(ctx, d.DelegationID, f.stand.ID); !helper.IsPermission(err) {
		t.Fatalf("cancel by delegate err = %v, want permission", err)
	}
	if err := f.reg.Cancel(ctx, d.DelegationID, f.chair.ID); err != nil {
		t.Fatalf("cancel by delegator: %v", err)
	}
	if _, ok, _ := f.reg.ActiveDelegateFor(ctx, f.chair.ID, &f.cs.UnitID, t0.Add(time.Hour)); ok {
		t.Fatal("cancelled delegation still active")
	}
	if err := f.reg.Cancel(ctx, d.DelegationID, f.admin.ID); !helper.IsValidation(err) {
		t.Fatalf("second cancel err = %v, want validation", err)
	}

	hist, _ := f.reg.History(ctx, d.DelegationID)
	if len(hist) != 2 || hist[1].HistoryAction != constants.DelegationCancelled {
		t.Fatalf("history = %+v", hist)
	}
	if last := f.notes.sent[len(f.notes.sent)-1]; last.Title != "Delegation Cancelled" {
		t.Fatalf("last notification = %+v", last)
	}
}

func TestExpireLapsed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	past, err := f.create(t, f.chair.ID, t0.Add(-72*time.Hour), t0.Add(-48*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	current, err := f.create(t, f.chair.ID, t0.Add(-time.Hour), t0.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	n, err := f.reg.ExpireLapsed(ctx)
	if err != nil || n != 1 {
		t.Fatalf("ExpireLapsed = %d, %v", n, err)
	}
	if n, _ := f.reg.ExpireLapsed(ctx); n != 0 {
		t.Fatalf("second sweep expired %d", n)
	}

	got, _ := f.reg.Get(ctx, past.DelegationID)
	if got.DelegationIsActive {
		t.Fatal("lapsed delegation still active")
	}
	still, _ := f.reg.Get(ctx, current.DelegationID)
	if !still.DelegationIsActive {
		t.Fatal("current delegation expired early")
	}
	hist, _ := f.reg.History(ctx, past.DelegationID)
	if len(hist) != 2 || hist[1].HistoryAction != constants.DelegationExpired || hist[1].HistoryActorID != nil {
		t.Fatalf("history = %+v", hist)
	}
}

func TestReceivedAndMine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.create(t, f.chair.ID, t0, t0.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	got, err := f.reg.ActiveDelegationsReceivedBy(ctx, f.stand.ID, t0.Add(time.Minute))
	if err != nil || len(got) != 1 {
		t.Fatalf("received = %+v, %v", got, err)
	}
	given, _ := f.reg.ActiveDelegationsGivenBy(ctx, f.chair.ID, t0.Add(time.Minute))
	if len(given) != 1 {
		t.Fatalf("given = %+v", given)
	}
	mine, _ := f.reg.ListMine(ctx, f.stand.ID)
	if len(mine) != 1 {
		t.Fatalf("mine = %+v", mine)
	}
}
