package balance

import "sort"

// deltaSet accumulates signed amounts per aggregate.
type deltaSet map[Key]int64

func (s deltaSet) add(e Entry, sign int64) {
	for _, k := range e.keys() {
		s[k] += sign * e.Amount
	}
}

// deltas returns the non-zero adjustments in lock order.
func (s deltaSet) deltas() []Delta {
	out := make([]Delta, 0, len(s))
	for k, amount := range s {
		if amount == 0 {
			continue
		}
		out = append(out, Delta{Key: k, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.less(out[j].Key) })
	return out
}

// CreateDeltas adds the entry's amount to its account, merchant, category
// and every tag.
func CreateDeltas(e Entry) []Delta {
	s := deltaSet{}
	s.add(e, 1)
	return s.deltas()
}

// DeleteDeltas is the inverse of CreateDeltas.
func DeleteDeltas(e Entry) []Delta {
	s := deltaSet{}
	s.add(e, -1)
	return s.deltas()
}

// RestoreDeltas re-adds the effect of a soft-deleted entry.
func RestoreDeltas(e Entry) []Delta {
	return CreateDeltas(e)
}

// UpdateDeltas diffs two snapshots of the same entry. An owner present only
// in the old snapshot loses the old amount, an owner present only in the new
// one gains the new amount, and an owner present in both moves by the
// difference. Owners whose balance does not move are omitted.
func UpdateDeltas(newEntry, oldEntry Entry) []Delta {
	s := deltaSet{}
	s.add(oldEntry, -1)
	s.add(newEntry, 1)
	return s.deltas()
}
