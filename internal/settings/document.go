// Package settings persists scribe configuration, encrypting the API
// credential at rest and defaulting any missing or malformed state.
package settings

import "strings"

// Document is a schemaless settings tree as decoded from JSON. Keys outside
// the default schema are preserved across load/save so newer configs survive
// older binaries.
type Document map[string]any

// Lookup walks a dotted path ("audio.sample_rate") and reports whether a
// value exists at it. Missing segments are not an error.
func (d Document) Lookup(path string) (any, bool) {
	var current any = map[string]any(d)
	for _, segment := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Set assigns value at a dotted path, creating intermediate mappings as
// needed. A non-mapping intermediate is replaced rather than erroring.
func (d Document) Set(path string, value any) {
	segments := strings.Split(path, ".")
	target := map[string]any(d)

	for _, segment := range segments[:len(segments)-1] {
		next, ok := asMap(target[segment])
		if !ok {
			next = map[string]any{}
			target[segment] = next
		}
		target = next
	}

	target[segments[len(segments)-1]] = value
}

// Merge deep-merges src into the document. Mappings present on both sides
// merge recursively; any other overlap is replaced by the src value.
func (d Document) Merge(src map[string]any) {
	mergeMaps(map[string]any(d), src)
}

// Clone returns a deep copy sharing no mappings or slices with the original.
func (d Document) Clone() Document {
	return Document(cloneMap(map[string]any(d)))
}

func mergeMaps(target, src map[string]any) {
	for key, value := range src {
		srcMap, srcIsMap := asMap(value)
		targetMap, targetIsMap := asMap(target[key])
		if srcIsMap && targetIsMap {
			mergeMaps(targetMap, srcMap)
			continue
		}
		target[key] = cloneValue(value)
	}
}

func cloneMap(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case Document:
		return cloneMap(map[string]any(v))
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}

// asMap normalizes the two mapping representations that can appear in a
// document tree (Document at the root, map[string]any below it).
func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case Document:
		return map[string]any(v), true
	default:
		return nil, false
	}
}
