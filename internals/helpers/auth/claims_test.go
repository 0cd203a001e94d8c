package auth

import (
	"testing"
	"time"

	"github.com/sudoneoox/Picton/internals/constants"
)

func TestIssueAndParseAccessToken(t *testing.T) {
	raw, exp, err := IssueAccessToken("s3cret", time.Hour, 42, "advisor", constants.RoleStaff, false, time.Now())
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry %v already passed", exp)
	}
	claims, err := ParseAccessToken("s3cret", raw)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "staff" || claims.Subject != "42" {
		t.Fatalf("claims = %+v", claims)
	}

	if _, err := ParseAccessToken("other", raw); err == nil {
		t.Fatal("token accepted with the wrong secret")
	}
	expired, _, _ := IssueAccessToken("s3cret", time.Minute, 42, "advisor", constants.RoleStaff, false, time.Now().Add(-time.Hour))
	if _, err := ParseAccessToken("s3cret", expired); err == nil {
		t.Fatal("expired token accepted")
	}
	if _, _, err := IssueAccessToken("", time.Hour, 1, "x", constants.RoleStudent, false, time.Now()); err == nil {
		t.Fatal("empty secret accepted")
	}
}
