package tag

import (
	"strings"

	"github.com/spf13/cast"
)

// Separator joins multiple tags into the single query value the catalog
// endpoint expects.
const Separator = ","

// Join renders tags as one comma separated filter value. Surrounding
// whitespace is trimmed, empty entries are dropped and order is kept. A single
// tag passes through unchanged.
func Join(tags []string) string {
	kept := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			kept = append(kept, t)
		}
	}
	return strings.Join(kept, Separator)
}

// Normalize accepts a scalar or a collection and returns the query value.
// Strings pass through as they are; slices are joined with Join; any other
// scalar is rendered with cast.
func Normalize(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []string:
		return Join(t), nil
	case []any:
		s, err := cast.ToStringSliceE(t)
		if err != nil {
			return "", err
		}
		return Join(s), nil
	default:
		return cast.ToStringE(v)
	}
}

// Split is the inverse of Join, used when tags arrive as one flag value.
func Split(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, Separator)
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
