package service

import (
	"context"
	"testing"
	"time"

	"github.com/sudoneoox/Picton/internals/constants"
	"github.com/sudoneoox/Picton/internals/databases/dbtest"
	userService "github.com/sudoneoox/Picton/internals/features/users/user/service"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	helperAuth "github.com/sudoneoox/Picton/internals/helpers/auth"
)

func TestLoginLogoutAndPurge(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	users := userService.New(db)
	if _, err := users.Create(ctx, userService.CreateInput{
		UserName: "advisor", Email: "advisor@uh.edu", Password: "correct horse", Role: constants.RoleStaff,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	svc := New(db, users, "s3cret", time.Hour)

	if _, err := svc.Login(ctx, "advisor", "wrong"); !helper.IsPermission(err) {
		t.Fatalf("bad password err = %v", err)
	}
	res, err := svc.Login(ctx, "ADVISOR@uh.edu", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := helperAuth.ParseAccessToken("s3cret", res.AccessToken)
	if err != nil || claims.UserID != res.User.ID {
		t.Fatalf("claims = %+v, %v", claims, err)
	}

	if revoked, _ := svc.IsRevoked(ctx, res.AccessToken); revoked {
		t.Fatal("fresh token revoked")
	}
	if err := svc.Logout(ctx, res.AccessToken, res.User.ID, res.ExpiresAt); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if err := svc.Logout(ctx, res.AccessToken, res.User.ID, res.ExpiresAt); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if revoked, _ := svc.IsRevoked(ctx, res.AccessToken); !revoked {
		t.Fatal("token not revoked after logout")
	}

	svc.Now = func() time.Time { return res.ExpiresAt.Add(time.Minute) }
	n, err := svc.PurgeExpired(ctx)
	if err != nil || n != 1 {
		t.Fatalf("PurgeExpired = %d, %v", n, err)
	}
}
