// Package balance keeps the denormalized balances of accounts, merchants,
// categories and tags consistent with the transaction ledger.
//
// The persistence layer reports every ledger mutation to an Observer inside
// the same database transaction. The observer turns the mutation into a set
// of signed deltas, applies them to the owning rows under row locks and asks
// a Refresher to rebuild the reporting views the mutation touched.
package balance

import (
	"sort"
	"time"

	apperrors "ledgerly/internal/errors"
)

// EntityType names a kind of balance owner.
type EntityType string

const (
	EntityAccount  EntityType = "account"
	EntityMerchant EntityType = "merchant"
	EntityCategory EntityType = "category"
	EntityTag      EntityType = "tag"
)

// entityOrder is the order in which owner rows are locked.
var entityOrder = []EntityType{EntityAccount, EntityMerchant, EntityCategory, EntityTag}

// EntityTypes returns every balance owner type in lock order.
func EntityTypes() []EntityType {
	out := make([]EntityType, len(entityOrder))
	copy(out, entityOrder)
	return out
}

// ParseEntityType validates s as an entity type.
func ParseEntityType(s string) (EntityType, error) {
	t := EntityType(s)
	if t.rank() < 0 {
		return "", apperrors.WithMessage(apperrors.ErrInvalidEntityType, "unsupported entity type: "+s)
	}
	return t, nil
}

func (t EntityType) rank() int {
	for i, et := range entityOrder {
		if et == t {
			return i
		}
	}
	return -1
}

// table returns the table holding owners of this type and their balance column.
func (t EntityType) table() string {
	switch t {
	case EntityAccount:
		return "accounts"
	case EntityMerchant:
		return "merchants"
	case EntityCategory:
		return "categories"
	case EntityTag:
		return "tags"
	}
	return ""
}

func (t EntityType) notFound() *apperrors.AppError {
	switch t {
	case EntityAccount:
		return apperrors.ErrAccountNotFound
	case EntityMerchant:
		return apperrors.ErrMerchantNotFound
	case EntityCategory:
		return apperrors.ErrCategoryNotFound
	case EntityTag:
		return apperrors.ErrTagNotFound
	}
	return apperrors.ErrNotFound
}

// Key identifies one aggregate balance.
type Key struct {
	Type EntityType `json:"entity_type"`
	ID   string     `json:"entity_id"`
}

func (k Key) less(o Key) bool {
	if k.Type != o.Type {
		return k.Type.rank() < o.Type.rank()
	}
	return k.ID < o.ID
}

// Delta is a signed adjustment to one aggregate balance.
type Delta struct {
	Key
	Amount int64 `json:"amount"`
}

// Entry is a snapshot of a ledger entry as seen by the balance subsystem.
type Entry struct {
	ID         string
	TeamID     string
	Amount     int64
	Date       time.Time
	AccountID  string
	MerchantID string
	CategoryID string
	TagIDs     []string

	// Revision identifies the lifecycle event that produced this snapshot.
	// Zero disables duplicate detection.
	Revision int64
}

// keys returns every aggregate the entry contributes to, tags deduplicated.
func (e Entry) keys() []Key {
	keys := []Key{
		{Type: EntityAccount, ID: e.AccountID},
		{Type: EntityMerchant, ID: e.MerchantID},
		{Type: EntityCategory, ID: e.CategoryID},
	}
	for _, id := range uniqueSorted(e.TagIDs) {
		keys = append(keys, Key{Type: EntityTag, ID: id})
	}
	return keys
}

func uniqueSorted(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sameTags(a, b []string) bool {
	ua, ub := uniqueSorted(a), uniqueSorted(b)
	if len(ua) != len(ub) {
		return false
	}
	for i := range ua {
		if ua[i] != ub[i] {
			return false
		}
	}
	return true
}
