package helpers

import "strings"

// NullIfEmpty trims s and returns nil when nothing is left.
// Optional unique columns (email, phone) are stored as NULL rather than "".
func NullIfEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// DedupeIDs removes duplicates and non-positive ids, keeping first-seen order
func DedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
