package balance

import (
	apperrors "ledgerly/internal/errors"
)

// EventKind is the lifecycle transition of a ledger entry.
type EventKind string

const (
	EventCreated  EventKind = "created"
	EventUpdated  EventKind = "updated"
	EventDeleted  EventKind = "deleted"
	EventRestored EventKind = "restored"
)

// Event is one ledger mutation. Entry is the snapshot after the mutation
// (for deletions, the entry being deleted); Previous is set only for updates.
type Event struct {
	Kind     EventKind
	Entry    Entry
	Previous *Entry
}

// CreatedEvent reports a newly persisted entry.
func CreatedEvent(e Entry) Event { return Event{Kind: EventCreated, Entry: e} }

// UpdatedEvent reports an entry changing from oldEntry to newEntry.
func UpdatedEvent(newEntry, oldEntry Entry) Event {
	return Event{Kind: EventUpdated, Entry: newEntry, Previous: &oldEntry}
}

// DeletedEvent reports a soft-deleted entry.
func DeletedEvent(e Entry) Event { return Event{Kind: EventDeleted, Entry: e} }

// RestoredEvent reports a soft-deleted entry returning to active state.
func RestoredEvent(e Entry) Event { return Event{Kind: EventRestored, Entry: e} }

// Validate checks the event is well formed. It does not touch the database.
func (ev Event) Validate() error {
	switch ev.Kind {
	case EventCreated, EventDeleted, EventRestored:
		if ev.Previous != nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "only update events carry a previous snapshot")
		}
	case EventUpdated:
		if ev.Previous == nil {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "update event requires the previous snapshot")
		}
		if ev.Previous.ID != ev.Entry.ID {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "update snapshots describe different transactions")
		}
		if ev.Previous.TeamID != ev.Entry.TeamID {
			return apperrors.WithMessage(apperrors.ErrInvalidRelationship, "a transaction cannot move between teams")
		}
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown event kind: "+string(ev.Kind))
	}

	e := ev.Entry
	if e.ID == "" || e.TeamID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction and team IDs are required")
	}
	if e.AccountID == "" || e.MerchantID == "" || e.CategoryID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidRelationship, "account, merchant and category are required")
	}
	return nil
}

// Deltas returns the balance adjustments implied by the event.
func (ev Event) Deltas() []Delta {
	switch ev.Kind {
	case EventCreated:
		return CreateDeltas(ev.Entry)
	case EventDeleted:
		return DeleteDeltas(ev.Entry)
	case EventRestored:
		return RestoreDeltas(ev.Entry)
	case EventUpdated:
		if ev.Previous == nil {
			return nil
		}
		return UpdateDeltas(ev.Entry, *ev.Previous)
	}
	return nil
}

// TouchedViews returns the reporting views whose rows can differ after the
// event. Every view summarizes balance, count and latest date per owner, so
// an update that changes none of amount, date, owners or tags touches
// nothing.
func (ev Event) TouchedViews() []View {
	e := ev.Entry
	var merchant, category, tag bool

	if ev.Kind == EventUpdated && ev.Previous != nil {
		old := *ev.Previous
		valueChanged := e.Amount != old.Amount || !e.Date.Equal(old.Date)
		merchant = valueChanged || e.MerchantID != old.MerchantID
		category = valueChanged || e.CategoryID != old.CategoryID
		hasTags := len(e.TagIDs) > 0 || len(old.TagIDs) > 0
		tag = !sameTags(e.TagIDs, old.TagIDs) || (valueChanged && hasTags)
	} else {
		merchant, category = true, true
		tag = len(e.TagIDs) > 0
	}

	var views []View
	if merchant {
		views = append(views, ViewMerchantSummaries)
	}
	if category {
		views = append(views, ViewCategorySummaries)
	}
	if tag {
		views = append(views, ViewTagSummaries)
	}
	return views
}
