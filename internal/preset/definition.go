// Package preset resolves subscription definitions from YAML subscription
// files and from the option maps synthesized by `ytsub dl`.
//
// A subscription may inherit from presets declared in the config file via
// its `preset:` key, and every subscription in a file inherits the file's
// `__preset__` block.
package preset

import (
	"fmt"
	"strings"
)

// Definition is one named, fully resolved subscription. It is immutable: the
// constructor and every accessor copy the underlying options.
type Definition struct {
	name    string
	options map[string]any
}

// NewDefinition returns a Definition owning a deep copy of options.
func NewDefinition(name string, options map[string]any) Definition {
	return Definition{name: name, options: copyMap(options)}
}

// Name returns the subscription name.
func (d Definition) Name() string { return d.name }

// Options returns a deep copy of the resolved options.
func (d Definition) Options() map[string]any { return copyMap(d.options) }

// Get looks up a dotted path such as "output_options.output_directory".
func (d Definition) Get(path string) (any, bool) {
	var node any = d.options
	for _, part := range strings.Split(path, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return copyValue(node), true
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

// copyValue deep-copies YAML-decoded values. Mappings with non-string keys
// are normalized to string keys.
func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyMap(t)
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = copyValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = copyValue(val)
		}
		return out
	default:
		return v
	}
}

// merge returns a new map with src laid over dst. Nested mappings merge
// recursively; any other value in src replaces the one in dst.
func merge(dst, src map[string]any) map[string]any {
	out := copyMap(dst)
	for k, v := range src {
		srcMap, srcIsMap := asMap(v)
		dstMap, dstIsMap := asMap(out[k])
		if srcIsMap && dstIsMap {
			out[k] = merge(dstMap, srcMap)
			continue
		}
		out[k] = copyValue(v)
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch v.(type) {
	case map[string]any, map[any]any:
		return copyValue(v).(map[string]any), true
	}
	return nil, false
}
