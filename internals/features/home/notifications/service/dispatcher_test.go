package service

import (
	"context"
	"testing"

	"github.com/sudoneoox/Picton/internals/databases/dbtest"
	"github.com/sudoneoox/Picton/internals/features/home/notifications/model"
	helper "github.com/sudoneoox/Picton/internals/helpers"
)

func TestDispatcherWritesInboxRows(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	d := NewDispatcher(db, 2, 16)
	d.Start(ctx)
	d.Notify(ctx, Notification{UserID: 7, Title: "Delegation Assigned", Message: "You are a delegate", Kind: "delegation"})
	d.Notify(ctx, Notification{UserID: 7, Title: "Form Approved", Kind: "approval", Tags: []string{"FRM-1"}})
	d.Notify(ctx, Notification{UserID: 0, Title: "ignored"})
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// late notifications are dropped, not a panic
	d.Notify(ctx, Notification{UserID: 7, Title: "late"})

	var n int64
	if err := db.Model(&model.NotificationModel{}).Where("notification_user_id = ?", 7).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("inbox rows = %d, want 2", n)
	}
}

func TestInboxListAndMarkRead(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	for _, title := range []string{"a", "b", "c"} {
		if err := db.Create(&model.NotificationModel{NotificationUserID: 3, NotificationTitle: title, NotificationKind: "approval"}).Error; err != nil {
			t.Fatal(err)
		}
	}
	other := model.NotificationModel{NotificationUserID: 4, NotificationTitle: "x", NotificationKind: "approval"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatal(err)
	}

	inbox := NewInbox(db)
	rows, total, err := inbox.List(ctx, 3, false, helper.Paging{Page: 1, PerPage: 2, Offset: 0, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(rows) != 2 {
		t.Fatalf("List total=%d len=%d, want 3 and 2", total, len(rows))
	}

	if err := inbox.MarkRead(ctx, 3, rows[0].NotificationID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if err := inbox.MarkRead(ctx, 3, other.NotificationID); !helper.IsNotFound(err) {
		t.Fatalf("MarkRead on foreign row err = %v, want not found", err)
	}

	_, unread, err := inbox.List(ctx, 3, true, helper.Paging{Page: 1, PerPage: 10, Limit: 10})
	if err != nil {
		t.Fatal(err)
	}
	if unread != 2 {
		t.Fatalf("unread = %d, want 2", unread)
	}
}
