package register

// FilterAll is the sentinel that disables a role or status predicate.
const FilterAll = "All"

// Query narrows the record set shown to the admin. Zero values and FilterAll
// disable the corresponding predicate; predicates compose with AND.
type Query struct {
	Date   string // exact match on the record's date, "" disables
	Role   string
	Status string
}

// Filter returns the records satisfying every enabled predicate. Pure function;
// input order is preserved (callers deliver records pre-sorted newest first).
func Filter(records []Record, q Query) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if q.Date != "" && r.Date != q.Date {
			continue
		}
		if q.Role != "" && q.Role != FilterAll && string(r.Role) != q.Role {
			continue
		}
		if q.Status != "" && q.Status != FilterAll && string(r.Status) != q.Status {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ActiveCount counts open sessions across the unfiltered set. The admin view
// shows it as a live occupancy figure independent of the filter selection.
func ActiveCount(records []Record) int {
	n := 0
	for _, r := range records {
		if r.Active() {
			n++
		}
	}
	return n
}
