package headers

import (
	"fmt"
	"strings"
)

// ParseStrict converts "Key: Value" strings into a map and rejects malformed entries
func ParseStrict(h []string) (map[string]string, error) {
	m := make(map[string]string, len(h))
	for _, hdr := range h {
		key, value, ok := split(hdr)
		if !ok {
			return nil, fmt.Errorf("invalid header %q: want \"Key: Value\"", hdr)
		}
		m[key] = value
	}
	return m, nil
}

// Merge returns base overlaid with extra; keys are compared case-insensitively
func Merge(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		for existing := range out {
			if strings.EqualFold(existing, k) {
				delete(out, existing)
			}
		}
		out[k] = v
	}
	return out
}

func split(hdr string) (string, string, bool) {
	key, value, found := strings.Cut(hdr, ":")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}
