package report

import "sort"

// OrderVariants returns variant display names in reporting order: pinned
// first (when present), the rest sorted by name length ascending. The sort
// is stable so equal-length names keep their input order. The same order is
// used for summary table columns and plot hue order.
func OrderVariants(pinned string, names []string) []string {
	rest := make([]string, 0, len(names))
	pinnedSeen := false
	for _, n := range names {
		if n == pinned && !pinnedSeen {
			pinnedSeen = true
			continue
		}
		rest = append(rest, n)
	}
	sort.SliceStable(rest, func(i, j int) bool { return len(rest[i]) < len(rest[j]) })

	out := make([]string, 0, len(names))
	if pinnedSeen {
		out = append(out, pinned)
	}
	return append(out, rest...)
}
