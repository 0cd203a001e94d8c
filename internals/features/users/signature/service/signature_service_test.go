package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/sudoneoox/Picton/internals/constants"
	"github.com/sudoneoox/Picton/internals/databases/dbtest"
	userModel "github.com/sudoneoox/Picton/internals/features/users/user/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
	"github.com/sudoneoox/Picton/internals/helpers/storage"
)

func signaturePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1200, 300))
	for x := 100; x < 1100; x++ {
		img.Set(x, 150+(x%40)-20, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestUploadReplacesSignature(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	store := storage.NewLocalStore(t.TempDir())
	svc := New(db, store)
	u := dbtest.User(t, db, "chair", constants.RoleStaff)

	st, err := svc.Check(ctx, u.ID)
	if err != nil || st.HasSignature {
		t.Fatalf("Check before upload = %+v, %v", st, err)
	}

	first, err := svc.Upload(ctx, u.ID, signaturePNG(t))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !first.HasSignature || !strings.HasSuffix(first.URL, ".webp") {
		t.Fatalf("status = %+v", first)
	}
	var stored userModel.UserModel
	db.First(&stored, u.ID)
	firstKey := stored.SignatureKey
	if !stored.HasSignature || firstKey == "" {
		t.Fatalf("user not updated: %+v", stored)
	}
	if _, err := store.Get(ctx, firstKey); err != nil {
		t.Fatalf("stored signature missing: %v", err)
	}

	if _, err := svc.Upload(ctx, u.ID, signaturePNG(t)); err != nil {
		t.Fatalf("second Upload: %v", err)
	}
	db.First(&stored, u.ID)
	if stored.SignatureKey == firstKey {
		t.Fatal("signature key not replaced")
	}
	if _, err := store.Get(ctx, firstKey); err == nil {
		t.Fatal("old signature still stored")
	}
}

func TestUploadRejectsNonImages(t *testing.T) {
	db := dbtest.Open(t)
	svc := New(db, storage.NewLocalStore(t.TempDir()))
	u := dbtest.User(t, db, "chair", constants.RoleStaff)

	for name, data := range map[string][]byte{
		"empty": nil,
		"pdf":   []byte("%PDF-1.7 definitely not an image"),
		"huge":  make([]byte, storage.MaxImageBytes+1),
	} {
		if _, err := svc.Upload(context.Background(), u.ID, data); !helper.IsValidation(err) {
			t.Errorf("%s: err = %v, want validation error", name, err)
		}
	}
}
