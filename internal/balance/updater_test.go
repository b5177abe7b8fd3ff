package balance

import (
	"math/rand"
	"reflect"
	"testing"
	"time"
)

func entry(amount int64, account, merchant, category string, tags ...string) Entry {
	return Entry{
		ID:         "tx-1",
		TeamID:     "team-1",
		Amount:     amount,
		Date:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		AccountID:  account,
		MerchantID: merchant,
		CategoryID: category,
		TagIDs:     tags,
	}
}

func d(typ EntityType, id string, amount int64) Delta {
	return Delta{Key: Key{Type: typ, ID: id}, Amount: amount}
}

// apply folds deltas into a balance map, the way the store would.
func apply(balances map[Key]int64, deltas []Delta) {
	for _, delta := range deltas {
		balances[delta.Key] += delta.Amount
	}
}

func TestCreateDeltas(t *testing.T) {
	t.Run("every_owner_gains_amount", func(t *testing.T) {
		got := CreateDeltas(entry(5000, "a1", "m1", "c1", "t2", "t1"))
		want := []Delta{
			d(EntityAccount, "a1", 5000),
			d(EntityMerchant, "m1", 5000),
			d(EntityCategory, "c1", 5000),
			d(EntityTag, "t1", 5000),
			d(EntityTag, "t2", 5000),
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("duplicate_tags_counted_once", func(t *testing.T) {
		got := CreateDeltas(entry(100, "a1", "m1", "c1", "t1", "t1"))
		if len(got) != 4 {
			t.Fatalf("expected 4 deltas, got %d: %v", len(got), got)
		}
		if got[3] != d(EntityTag, "t1", 100) {
			t.Errorf("expected single +100 on t1, got %v", got[3])
		}
	})

	t.Run("zero_amount_moves_nothing", func(t *testing.T) {
		if got := CreateDeltas(entry(0, "a1", "m1", "c1", "t1")); len(got) != 0 {
			t.Errorf("expected no deltas, got %v", got)
		}
	})

	t.Run("restore_equals_create", func(t *testing.T) {
		e := entry(-250, "a1", "m1", "c1", "t1")
		if !reflect.DeepEqual(RestoreDeltas(e), CreateDeltas(e)) {
			t.Error("restore should re-apply exactly the create effect")
		}
	})
}

func TestDeleteDeltas(t *testing.T) {
	e := entry(-2000, "a1", "m1", "c1", "t1")
	balances := map[Key]int64{}
	apply(balances, CreateDeltas(e))
	apply(balances, DeleteDeltas(e))

	for k, v := range balances {
		if v != 0 {
			t.Errorf("expected %v back at 0 after create+delete, got %d", k, v)
		}
	}
}

func TestUpdateDeltas(t *testing.T) {
	t.Run("amount_change_applies_difference", func(t *testing.T) {
		got := UpdateDeltas(entry(1500, "a1", "m1", "c1"), entry(1000, "a1", "m1", "c1"))
		want := []Delta{
			d(EntityAccount, "a1", 500),
			d(EntityMerchant, "m1", 500),
			d(EntityCategory, "c1", 500),
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("moved_owner_swaps_amounts", func(t *testing.T) {
		got := UpdateDeltas(entry(1200, "a2", "m1", "c1"), entry(1000, "a1", "m1", "c1"))
		want := []Delta{
			d(EntityAccount, "a1", -1000),
			d(EntityAccount, "a2", 1200),
			d(EntityMerchant, "m1", 200),
			d(EntityCategory, "c1", 200),
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("added_tag_gains_amount_kept_tag_unchanged", func(t *testing.T) {
		got := UpdateDeltas(entry(700, "a1", "m1", "c1", "t1", "t2"), entry(700, "a1", "m1", "c1", "t1"))
		want := []Delta{d(EntityTag, "t2", 700)}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("tag_set_diff_with_amount_change", func(t *testing.T) {
		got := UpdateDeltas(entry(300, "a1", "m1", "c1", "t2", "t3"), entry(100, "a1", "m1", "c1", "t1", "t2"))
		want := []Delta{
			d(EntityAccount, "a1", 200),
			d(EntityMerchant, "m1", 200),
			d(EntityCategory, "c1", 200),
			d(EntityTag, "t1", -100),
			d(EntityTag, "t2", 200),
			d(EntityTag, "t3", 300),
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("no_relevant_change", func(t *testing.T) {
		if got := UpdateDeltas(entry(100, "a1", "m1", "c1", "t1"), entry(100, "a1", "m1", "c1", "t1")); len(got) != 0 {
			t.Errorf("expected no deltas, got %v", got)
		}
	})
}

// TestUpdateEquivalence checks that an update always lands on the same
// balances as deleting the old snapshot and creating the new one.
func TestUpdateEquivalence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pick := func(prefix string) string {
		return prefix + string(rune('0'+rng.Intn(3)))
	}
	randomEntry := func() Entry {
		var tags []string
		for i := rng.Intn(4); i > 0; i-- {
			tags = append(tags, pick("t"))
		}
		return entry(rng.Int63n(20001)-10000, pick("a"), pick("m"), pick("c"), tags...)
	}

	for i := 0; i < 500; i++ {
		oldEntry, newEntry := randomEntry(), randomEntry()

		viaUpdate := map[Key]int64{}
		apply(viaUpdate, CreateDeltas(oldEntry))
		apply(viaUpdate, UpdateDeltas(newEntry, oldEntry))

		viaReplace := map[Key]int64{}
		apply(viaReplace, CreateDeltas(oldEntry))
		apply(viaReplace, DeleteDeltas(oldEntry))
		apply(viaReplace, CreateDeltas(newEntry))

		for _, m := range []map[Key]int64{viaUpdate, viaReplace} {
			for k, v := range m {
				if v == 0 {
					delete(m, k)
				}
			}
		}
		if !reflect.DeepEqual(viaUpdate, viaReplace) {
			t.Fatalf("iteration %d: update %v != delete+create %v (old=%+v new=%+v)", i, viaUpdate, viaReplace, oldEntry, newEntry)
		}
	}
}

func TestDeltasAreLockOrdered(t *testing.T) {
	got := UpdateDeltas(entry(10, "a9", "m9", "c9", "t9", "t1"), entry(20, "a1", "m1", "c1", "t5"))
	for i := 1; i < len(got); i++ {
		if !got[i-1].Key.less(got[i].Key) {
			t.Fatalf("deltas out of order at %d: %v", i, got)
		}
	}
}
