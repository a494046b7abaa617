// Package cfgctx holds the container's resolved configuration: a deep-merged
// key/value map produced by format-specific loaders, plus the canonical hash
// used to memoize build plans against unchanged configuration.
package cfgctx

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
)

// Map is the merged configuration passed to hooks and facet initializers.
// Values are plain Go types: strings, bools, float64/int, nested Maps
// (as map[string]any) and slices.
type Map map[string]any

// Loader is the interface for a format-specific configuration loader.
// Implementations translate files on disk into the format-agnostic Map.
type Loader interface {
	// Load reads configuration from the given paths, later paths taking
	// precedence, and returns the merged result.
	Load(ctx context.Context, paths ...string) (Map, error)
}

// Merge deep-merges src into a copy of dst and returns the result. Nested
// maps are merged recursively; any other value in src replaces the value in
// dst. Neither input is mutated.
func Merge(dst, src Map) Map {
	out := dst.Clone()
	for k, v := range src {
		sv, srcIsMap := asMap(v)
		dv, dstIsMap := asMap(out[k])
		if srcIsMap && dstIsMap {
			out[k] = map[string]any(Merge(dv, sv))
			continue
		}
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of the map. Nested maps and slices are copied;
// leaf values are shared.
func (m Map) Clone() Map {
	if m == nil {
		return Map{}
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// Hash returns a stable fingerprint of the map: a sha256 over a canonical
// rendering with recursively sorted keys. Two maps with equal contents hash
// identically regardless of construction order.
func Hash(m Map) string {
	h := sha256.New()
	writeCanonical(h, map[string]any(m))
	return hex.EncodeToString(h.Sum(nil))
}

func asMap(v any) (Map, bool) {
	switch t := v.(type) {
	case Map:
		return t, true
	case map[string]any:
		return Map(t), true
	}
	return nil, false
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Map:
		return map[string]any(t.Clone())
	case map[string]any:
		return map[string]any(Map(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

func writeCanonical(w io.Writer, v any) {
	switch t := v.(type) {
	case Map:
		writeCanonical(w, map[string]any(t))
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		io.WriteString(w, "{")
		for _, k := range keys {
			fmt.Fprintf(w, "%q:", k)
			writeCanonical(w, t[k])
			io.WriteString(w, ",")
		}
		io.WriteString(w, "}")
	case []any:
		io.WriteString(w, "[")
		for _, e := range t {
			writeCanonical(w, e)
			io.WriteString(w, ",")
		}
		io.WriteString(w, "]")
	case nil:
		io.WriteString(w, "null")
	default:
		fmt.Fprintf(w, "%T:%v", t, t)
	}
}
