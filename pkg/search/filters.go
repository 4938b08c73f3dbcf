package search

import "github.com/biocat-io/biocat/pkg/core"

// NormalizeFilters reshapes a caller-supplied filter map into the filter
// set a provider understands. Keys in the recognized set are copied
// verbatim (values stay an OR-set); everything else is dropped. The
// function is pure and never fails: an empty or entirely unrecognized
// filter map degenerates to "no filtering".
//
// No value-level validation happens here. An invalid phase string is
// passed through and simply matches zero rows.
func NormalizeFilters(recognized []string, raw map[string][]string) core.Filters {
	if len(raw) == 0 || len(recognized) == 0 {
		return core.Filters{}
	}

	allowed := make(map[string]bool, len(recognized))
	for _, key := range recognized {
		allowed[key] = true
	}

	normalized := make(core.Filters)
	for key, values := range raw {
		if !allowed[key] || len(values) == 0 {
			continue
		}
		normalized[key] = append([]string(nil), values...)
	}
	return normalized
}
