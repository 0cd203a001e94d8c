// Package seeds loads the demo university: hierarchy, approvers, users and form templates.
package seeds

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/constants"
	templateModel "github.com/sudoneoox/Picton/internals/features/forms/templates/model"
	templateService "github.com/sudoneoox/Picton/internals/features/forms/templates/service"
	unitModel "github.com/sudoneoox/Picton/internals/features/organization/units/model"
	unitService "github.com/sudoneoox/Picton/internals/features/organization/units/service"
	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
	userService "github.com/sudoneoox/Picton/internals/features/users/user/service"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

//go:embed university.yaml
var universityYAML []byte

type unitSeed struct {
	Code        string     `yaml:"code"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	College     bool       `yaml:"college"`
	Children    []unitSeed `yaml:"children"`
}

type positionSeed struct {
	Suffix   string `yaml:"suffix"`
	Title    string `yaml:"title"`
	Position string `yaml:"position"`
}

type approverSeed struct {
	UserName  string `yaml:"user_name"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Unit      string `yaml:"unit"`
	Position  string `yaml:"position"`
	OrgWide   bool   `yaml:"organization_wide"`
}

type userSeed struct {
	UserName  string `yaml:"user_name"`
	Email     string `yaml:"email"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Role      string `yaml:"role"`
	Superuser bool   `yaml:"superuser"`
}

type stepSeed struct {
	Order    int    `yaml:"order"`
	Role     string `yaml:"role"`
	Position string `yaml:"position"`
	Required bool   `yaml:"required"`
}

type templateSeed struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Document    string         `yaml:"document"`
	Steps       []stepSeed     `yaml:"steps"`
	Schema      map[string]any `yaml:"schema"`
}

type File struct {
	DemoPassword        string         `yaml:"demo_password"`
	Units               []unitSeed     `yaml:"units"`
	DepartmentPositions []positionSeed `yaml:"department_positions"`
	CollegePosition     string         `yaml:"college_position"`
	Approvers           []approverSeed `yaml:"approvers"`
	Users               []userSeed     `yaml:"users"`
	Templates           []templateSeed `yaml:"templates"`
}

// Summary counts rows created by a run; existing rows are not counted.
type Summary struct {
	Units     int
	Users     int
	Approvers int
	Templates int
}

func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	if f.DemoPassword == "" {
		return nil, fmt.Errorf("seed file has no demo_password")
	}
	return &f, nil
}

// Default returns the embedded university seed.
func Default() (*File, error) {
	return Parse(universityYAML)
}

type runner struct {
	db    *gorm.DB
	dir   *unitService.Directory
	wf    *templateService.Workflows
	users *userService.Service
	file  *File
	log   *zap.Logger
	sum   Summary
}

// Run applies f. It can be re-run: units, users and approver links are matched
// by code or name, and existing templates get their workflow replaced.
func Run(ctx context.Context, db *gorm.DB, f *File) (Summary, error) {
	r := &runner{
		db:    db,
		dir:   unitService.NewDirectory(db),
		wf:    templateService.NewWorkflows(db),
		users: userService.New(db),
		file:  f,
		log:   zap.L().Named("seeds"),
	}

	var colleges []*unitModel.OrganizationalUnitModel
	var departments []*unitModel.OrganizationalUnitModel
	for _, u := range f.Units {
		if err := r.unitTree(ctx, u, nil, false, &colleges, &departments); err != nil {
			return r.sum, err
		}
	}

	for _, dept := range departments {
		code := strings.ToLower(dept.UnitCode)
		for _, p := range f.DepartmentPositions {
			err := r.approver(ctx, approverSeed{
				UserName:  code + "_" + p.Suffix,
				FirstName: p.Title,
				LastName:  dept.UnitCode,
				Unit:      dept.UnitCode,
				Position:  p.Position,
			})
			if err != nil {
				return r.sum, err
			}
		}
	}
	if f.CollegePosition != "" {
		for _, col := range colleges {
			err := r.approver(ctx, approverSeed{
				UserName:  strings.ToLower(col.UnitCode) + "_dean",
				FirstName: "Associate Dean",
				LastName:  col.UnitCode,
				Unit:      col.UnitCode,
				Position:  f.CollegePosition,
			})
			if err != nil {
				return r.sum, err
			}
		}
	}
	for _, a := range f.Approvers {
		if err := r.approver(ctx, a); err != nil {
			return r.sum, err
		}
	}

	for _, u := range f.Users {
		if _, err := r.user(ctx, u); err != nil {
			return r.sum, err
		}
	}
	for _, t := range f.Templates {
		if err := r.template(ctx, t); err != nil {
			return r.sum, err
		}
	}

	r.log.Info("seed finished",
		zap.Int("units", r.sum.Units),
		zap.Int("users", r.sum.Users),
		zap.Int("approvers", r.sum.Approvers),
		zap.Int("templates", r.sum.Templates))
	return r.sum, nil
}

func (r *runner) unitTree(ctx context.Context, s unitSeed, parent *unitModel.OrganizationalUnitModel, underCollege bool, colleges, departments *[]*unitModel.OrganizationalUnitModel) error {
	u, err := r.dir.ByCode(ctx, s.Code)
	switch {
	case err == nil:
		r.log.Debug("unit exists, skipped", zap.String("code", u.UnitCode))
	case helper.IsNotFound(err):
		in := unitService.CreateUnitInput{Name: s.Name, Code: s.Code, Description: s.Description}
		if parent != nil {
			in.ParentID = &parent.UnitID
		}
		if in.Description == "" {
			in.Description = s.Name
		}
		if u, err = r.dir.CreateUnit(ctx, in); err != nil {
			return fmt.Errorf("unit %s: %w", s.Code, err)
		}
		r.sum.Units++
	default:
		return err
	}

	if s.College {
		*colleges = append(*colleges, u)
	}
	if underCollege {
		*departments = append(*departments, u)
	}
	for _, child := range s.Children {
		if err := r.unitTree(ctx, child, u, s.College, colleges, departments); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) user(ctx context.Context, s userSeed) (*userModel.UserModel, error) {
	var existing userModel.UserModel
	err := r.db.WithContext(ctx).Where("user_name = ?", s.UserName).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !helper.IsRecordNotFound(err) {
		return nil, err
	}

	email := s.Email
	if email == "" {
		email = s.UserName + "@uh.edu"
	}
	role := constants.Role(s.Role)
	if role == "" {
		role = constants.RoleStaff
	}
	u, err := r.users.Create(ctx, userService.CreateInput{
		UserName:    s.UserName,
		Email:       email,
		Password:    r.file.DemoPassword,
		FirstName:   s.FirstName,
		LastName:    s.LastName,
		Role:        role,
		IsSuperuser: s.Superuser,
	})
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", s.UserName, err)
	}
	r.sum.Users++
	r.log.Info("user created", zap.String("user_name", u.UserName))
	return u, nil
}

func (r *runner) approver(ctx context.Context, s approverSeed) error {
	unit, err := r.dir.ByCode(ctx, s.Unit)
	if err != nil {
		return fmt.Errorf("approver %s: %w", s.UserName, err)
	}
	u, err := r.user(ctx, userSeed{UserName: s.UserName, FirstName: s.FirstName, LastName: s.LastName})
	if err != nil {
		return err
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&unitModel.UnitApproverModel{}).
		Where("unit_approver_unit_id = ? AND unit_approver_user_id = ? AND unit_approver_role = ?", unit.UnitID, u.ID, s.Position).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := r.dir.AssignApprover(ctx, unitService.AssignApproverInput{
		UnitID:  unit.UnitID,
		UserID:  u.ID,
		Role:    s.Position,
		OrgWide: s.OrgWide,
	}); err != nil {
		return fmt.Errorf("approver %s: %w", s.UserName, err)
	}
	r.sum.Approvers++
	return nil
}

func (r *runner) template(ctx context.Context, s templateSeed) error {
	raw, err := sonic.Marshal(s.Schema)
	if err != nil {
		return fmt.Errorf("template %s: %w", s.Name, err)
	}
	steps := make([]templateService.StepInput, 0, len(s.Steps))
	for _, st := range s.Steps {
		steps = append(steps, templateService.StepInput{
			ApproverRole:     constants.Role(st.Role),
			ApprovalPosition: st.Position,
			IsRequired:       st.Required,
			Order:            st.Order,
		})
	}

	var existing templateModel.FormTemplateModel
	err = r.db.WithContext(ctx).Where("form_template_name = ?", s.Name).First(&existing).Error
	switch {
	case err == nil:
		if _, err := r.wf.ReplaceSteps(ctx, existing.FormTemplateID, steps); err != nil {
			return fmt.Errorf("template %s: %w", s.Name, err)
		}
		r.log.Info("template workflow refreshed", zap.String("name", s.Name))
		return nil
	case !helper.IsRecordNotFound(err):
		return err
	}

	if _, err := r.wf.CreateTemplate(ctx, templateService.CreateTemplateInput{
		Name:                 s.Name,
		Description:          s.Description,
		FieldSchema:          raw,
		DocumentTemplatePath: s.Document,
		Steps:                steps,
	}); err != nil {
		return fmt.Errorf("template %s: %w", s.Name, err)
	}
	r.sum.Templates++
	r.log.Info("template created", zap.String("name", s.Name))
	return nil
}
