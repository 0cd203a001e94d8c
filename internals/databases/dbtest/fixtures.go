package dbtest

import (
	"testing"

	"gorm.io/gorm"

	"github.com/sudoneoox/Picton/internals/constants"
	unitModel "github.com/sudoneoox/Picton/internals/features/organization/units/model"
	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
)

// User inserts an active user with a throwaway password hash.
func User(t *testing.T, db *gorm.DB, name string, role constants.Role) *userModel.UserModel {
	t.Helper()
	u := &userModel.UserModel{
		UserName:  name,
		Email:     name + "@uh.edu",
		Password:  "x",
		FirstName: name,
		Role:      role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// SignedUser is a staff user with a signature on file.
func SignedUser(t *testing.T, db *gorm.DB, name string) *userModel.UserModel {
	t.Helper()
	u := User(t, db, name, constants.RoleStaff)
	if err := db.Model(u).Updates(map[string]any{"has_signature": true, "signature_key": "signatures/" + name + ".webp"}).Error; err != nil {
		t.Fatalf("sign user %s: %v", name, err)
	}
	u.HasSignature = true
	return u
}

func Unit(t *testing.T, db *gorm.DB, code, name string, parent *unitModel.OrganizationalUnitModel) *unitModel.OrganizationalUnitModel {
	t.Helper()
	u := &unitModel.OrganizationalUnitModel{UnitCode: code, UnitName: name}
	if parent != nil {
		u.UnitParentID = &parent.UnitID
		u.UnitLevel = parent.UnitLevel + 1
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create unit %s: %v", code, err)
	}
	return u
}

func Approver(t *testing.T, db *gorm.DB, unit *unitModel.OrganizationalUnitModel, user *userModel.UserModel, role string, orgWide bool) *unitModel.UnitApproverModel {
	t.Helper()
	a := &unitModel.UnitApproverModel{
		UnitApproverUnitID:  unit.UnitID,
		UnitApproverUserID:  user.ID,
		UnitApproverRole:    role,
		UnitApproverOrgWide: orgWide,
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("create approver %s/%s: %v", unit.UnitCode, role, err)
	}
	return a
}
