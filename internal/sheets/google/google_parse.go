package google

import (
	"fmt"
	"strconv"
	"strings"
)

// parseIDColumn collects the numeric IDs of a single-column values matrix
// as returned by the Sheets API. Header and blank cells are skipped.
func parseIDColumn(values [][]any) map[int64]struct{} {
	ids := make(map[int64]struct{}, len(values))
	for _, row := range values {
		cols := toStrings(row)
		if len(cols) == 0 {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(cols[0], ".0"), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids[id] = struct{}{}
	}
	return ids
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
