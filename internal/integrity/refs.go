package integrity

// HasRef reports whether id is in refs.
func HasRef(refs []string, id string) bool {
	for _, r := range refs {
		if r == id {
			return true
		}
	}
	return false
}

// AddRef appends id unless present and reports whether refs changed.
func AddRef(refs *[]string, id string) bool {
	if HasRef(*refs, id) {
		return false
	}
	*refs = append(*refs, id)
	return true
}

// RemoveRef deletes every occurrence of id and reports whether refs changed.
func RemoveRef(refs *[]string, id string) bool {
	out := (*refs)[:0]
	for _, r := range *refs {
		if r != id {
			out = append(out, r)
		}
	}
	changed := len(out) != len(*refs)
	*refs = out
	return changed
}

// Dedupe keeps the first occurrence of each id, in order.
func Dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Diff returns the ids of prev that are not in next.
func Diff(prev, next []string) []string {
	var out []string
	for _, id := range prev {
		if !HasRef(next, id) {
			out = append(out, id)
		}
	}
	return out
}
