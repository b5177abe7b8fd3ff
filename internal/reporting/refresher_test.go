package reporting

import (
	"context"
	"testing"

	"ledgerly/internal/balance"
	"ledgerly/internal/models"
	"ledgerly/internal/testutil"
)

func TestNewRefresher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	if _, ok := NewRefresher(db, true).(*SnapshotRefresher); !ok {
		t.Errorf("expected snapshot refresher for sqlite")
	}
}

func TestSnapshotRefresher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	l := testutil.CreateTestLedger(t, db)
	tag := testutil.CreateTestTag(t, db, l.Team.ID)
	idle := testutil.CreateTestMerchant(t, db, l.Team.ID)

	testutil.InsertTestTransaction(t, db, l, 1500, tag.ID)
	testutil.InsertTestTransaction(t, db, l, -400)
	deleted := testutil.InsertTestTransaction(t, db, l, 9999, tag.ID)
	testutil.AssertNoError(t, db.Delete(deleted).Error)

	r := &SnapshotRefresher{}
	for _, view := range balance.Views() {
		testutil.AssertNoError(t, r.Refresh(context.Background(), db, view))
	}

	t.Run("merchant_summaries", func(t *testing.T) {
		var rows []models.MerchantSummary
		testutil.AssertNoError(t, db.Order("balance DESC").Find(&rows).Error)
		if len(rows) != 2 {
			t.Fatalf("expected 2 merchant rows, got %d", len(rows))
		}
		if rows[0].MerchantID != l.Merchant.ID || rows[0].Balance != 1100 || rows[0].TransactionCount != 2 {
			t.Errorf("unexpected active merchant row: %+v", rows[0])
		}
		if rows[1].MerchantID != idle.ID || rows[1].Balance != 0 || rows[1].TransactionCount != 0 {
			t.Errorf("unexpected idle merchant row: %+v", rows[1])
		}
	})

	t.Run("category_summaries", func(t *testing.T) {
		var row models.CategorySummary
		testutil.AssertNoError(t, db.Where("category_id = ?", l.Category.ID).Take(&row).Error)
		if row.Balance != 1100 || row.TeamID != l.Team.ID {
			t.Errorf("unexpected category row: %+v", row)
		}
	})

	t.Run("tag_summaries", func(t *testing.T) {
		var row models.TagSummary
		testutil.AssertNoError(t, db.Where("tag_id = ?", tag.ID).Take(&row).Error)
		if row.Balance != 1500 || row.TransactionCount != 1 {
			t.Errorf("unexpected tag row: %+v", row)
		}
	})

	t.Run("rebuild_replaces_rows", func(t *testing.T) {
		testutil.InsertTestTransaction(t, db, l, 100)
		testutil.AssertNoError(t, r.Refresh(context.Background(), db, balance.ViewMerchantSummaries))

		var row models.MerchantSummary
		testutil.AssertNoError(t, db.Where("merchant_id = ?", l.Merchant.ID).Take(&row).Error)
		if row.Balance != 1200 || row.TransactionCount != 3 {
			t.Errorf("expected rebuilt row, got %+v", row)
		}
		var count int64
		db.Model(&models.MerchantSummary{}).Count(&count)
		if count != 2 {
			t.Errorf("expected 2 rows after rebuild, got %d", count)
		}
	})

	t.Run("unknown_view", func(t *testing.T) {
		err := r.Refresh(context.Background(), db, balance.View("budget_summaries"))
		testutil.AssertAppError(t, err, "INVALID_VIEW")
	})
}

func TestMaterializedViewRefresher_RejectsUnknownView(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	r := &MaterializedViewRefresher{Concurrently: true}
	err := r.Refresh(context.Background(), db, balance.View("accounts; DROP TABLE teams"))
	testutil.AssertAppError(t, err, "INVALID_VIEW")
}

func TestRecordingRefresher(t *testing.T) {
	r := &RecordingRefresher{Fail: map[balance.View]error{balance.ViewTagSummaries: context.Canceled}}

	if err := r.Refresh(context.Background(), nil, balance.ViewMerchantSummaries); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Refresh(context.Background(), nil, balance.ViewTagSummaries); err != context.Canceled {
		t.Fatalf("expected configured failure, got %v", err)
	}
	if got := r.Calls(); len(got) != 2 {
		t.Errorf("expected 2 calls, got %v", got)
	}
	r.Reset()
	if got := r.Calls(); len(got) != 0 {
		t.Errorf("expected no calls after reset, got %v", got)
	}
}
