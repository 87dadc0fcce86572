package signals

import "sort"

// SelectContacts ranks contacts by message volume, descending, and keeps
// the top limits.MaxContacts. The sort is stable, so equal-volume contacts
// keep their input order; no finer tie-break is needed.
func SelectContacts(contacts []Contact, limits Limits) []Contact {
	out := append([]Contact(nil), contacts...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MessageCount > out[j].MessageCount
	})
	if limits.MaxContacts > 0 && len(out) > limits.MaxContacts {
		out = out[:limits.MaxContacts]
	}
	return out
}
