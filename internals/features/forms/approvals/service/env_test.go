package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/constants"
	"github.com/sudoneoox/Picton/internals/databases/dbtest"
	submissionModel "github.com/sudoneoox/Picton/internals/features/forms/submissions/model"
	templateModel "github.com/sudoneoox/Picton/internals/features/forms/templates/model"
	templateService "github.com/sudoneoox/Picton/internals/features/forms/templates/service"
	delegationService "github.com/sudoneoox/Picton/internals/features/organization/delegations/service"
	unitModel "github.com/sudoneoox/Picton/internals/features/organization/units/model"
	unitService "github.com/sudoneoox/Picton/internals/features/organization/units/service"
	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type env struct {
	db  *gorm.DB
	eng *Engine
	reg *delegationService.Registry
	wf  *templateService.Workflows
	now time.Time

	tpl     *templateModel.FormTemplateModel
	cs      *unitModel.OrganizationalUnitModel
	grad    *unitModel.OrganizationalUnitModel
	student *userModel.UserModel
	advisor *userModel.UserModel
	chair   *userModel.UserModel
	dean    *userModel.UserModel
	stand   *userModel.UserModel
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := dbtest.Open(t)
	e := &env{db: db, now: t0}

	uh := dbtest.Unit(t, db, "UH", "University of Houston", nil)
	e.grad = dbtest.Unit(t, db, "GRAD", "Graduate School", uh)
	nsm := dbtest.Unit(t, db, "NSM", "College of Natural Sciences and Mathematics", uh)
	e.cs = dbtest.Unit(t, db, "CS", "Computer Science", nsm)

	e.student = dbtest.User(t, db, "student", constants.RoleStudent)
	e.advisor = dbtest.SignedUser(t, db, "advisor")
	e.chair = dbtest.SignedUser(t, db, "chair")
	e.dean = dbtest.SignedUser(t, db, "dean")
	e.stand = dbtest.SignedUser(t, db, "stand")
	dbtest.Approver(t, db, e.cs, e.advisor, "Graduate Advisor", false)
	dbtest.Approver(t, db, e.cs, e.chair, "Department Chair", false)
	dbtest.Approver(t, db, e.grad, e.dean, "Vice Provost/Dean of the Graduate School", true)

	clock := func() time.Time { return e.now }
	dir := unitService.NewDirectory(db)
	e.wf = templateService.NewWorkflows(db)
	e.reg = delegationService.NewRegistry(db, dir, nil)
	e.reg.Now = clock
	e.eng = NewEngine(db, dir, e.reg, e.wf)
	e.eng.Now = clock

	tpl, err := e.wf.CreateTemplate(context.Background(), templateService.CreateTemplateInput{
		Name:        "Graduate Petition Form",
		FieldSchema: []byte(`{"fields":[{"name":"reason","type":"textarea","required":true}]}`),
		Steps: []templateService.StepInput{
			{ApprovalPosition: "Graduate Advisor", IsRequired: true, Order: 1},
			{ApprovalPosition: "Department Chair", IsRequired: false, Order: 2},
			{ApprovalPosition: "Vice Provost/Dean of the Graduate School", IsRequired: true, Order: 3},
		},
	})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	e.tpl = tpl
	return e
}

// pending inserts a submission already past submit, sitting at step 1.
func (e *env) pending(t *testing.T, unit *unitModel.OrganizationalUnitModel) *submissionModel.FormSubmissionModel {
	t.Helper()
	sub := &submissionModel.FormSubmissionModel{
		SubmissionTemplateID:            e.tpl.FormTemplateID,
		SubmissionSubmitterID:           e.student.ID,
		SubmissionFormData:              datatypes.JSON(`{"reason":"late drop"}`),
		SubmissionStatus:                constants.StatusPending,
		SubmissionCurrentStep:           1,
		SubmissionRequiredApprovalCount: 2,
	}
	if unit != nil {
		sub.SubmissionUnitID = &unit.UnitID
	}
	if err := e.db.Create(sub).Error; err != nil {
		t.Fatalf("create submission: %v", err)
	}
	return sub
}

func (e *env) delegate(t *testing.T, from, to *userModel.UserModel, start, end time.Time) uint {
	t.Helper()
	return e.delegateAt(t, e.cs, from, to, start, end)
}

func (e *env) delegateAt(t *testing.T, unit *unitModel.OrganizationalUnitModel, from, to *userModel.UserModel, start, end time.Time) uint {
	t.Helper()
	d, err := e.reg.Create(context.Background(), from.ID, delegationService.CreateInput{
		DelegatorID: from.ID,
		DelegateID:  to.ID,
		UnitID:      unit.UnitID,
		StartDate:   start,
		EndDate:     end,
		Reason:      "conference travel",
	})
	if err != nil {
		t.Fatalf("create delegation: %v", err)
	}
	return d.DelegationID
}

func (e *env) decide(t *testing.T, approvalID uint, d constants.Decision) {
	t.Helper()
	if err := e.db.Table("form_approvals").
		Where("form_approval_id = ?", approvalID).
		Updates(map[string]any{"form_approval_decision": d, "form_approval_decided_at": e.now}).Error; err != nil {
		t.Fatalf("decide: %v", err)
	}
}
