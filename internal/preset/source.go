package preset

import (
	"errors"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/backmassage/ytsub/internal/config"
	"github.com/backmassage/ytsub/internal/failure"
)

// FilePresetKey names the per-file base preset inherited by every
// subscription in that file.
const FilePresetKey = "__preset__"

// OptionRoots are the top-level keys a subscription may set.
var OptionRoots = []string{"preset", "download", "output_options", "ytdl_options", "overrides"}

// mappingRoots must hold a mapping when present.
var mappingRoots = map[string]bool{
	"download":       true,
	"output_options": true,
	"ytdl_options":   true,
	"overrides":      true,
}

// Source builds Definitions. It holds no state; the zero value is ready.
type Source struct{}

// FromFilePath returns the subscriptions declared in the YAML file at path,
// in declaration order.
func (Source) FromFilePath(cfg *config.Config, path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, failure.Wrapf(failure.KindFileNotFound, err, "subscription file '%s' does not exist", path)
	}
	if err != nil {
		return nil, failure.Wrapf(failure.KindFileNotFound, err, "cannot read subscription file '%s': %v", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, failure.Wrapf(failure.KindInvalidConfig, err, "invalid yaml in '%s': %v", path, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, failure.Newf(failure.KindInvalidConfig,
			"subscription file '%s' must be a mapping of subscription names to options", path)
	}

	type entry struct {
		name    string
		options map[string]any
	}
	var (
		entries    []entry
		filePreset map[string]any
		seen       = map[string]bool{}
	)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		name := keyNode.Value
		if seen[name] {
			return nil, failure.Newf(failure.KindValidation,
				"subscription '%s' is defined more than once in '%s' (line %d)", name, path, keyNode.Line)
		}
		seen[name] = true

		if valNode.Kind != yaml.MappingNode {
			return nil, failure.Newf(failure.KindValidation,
				"subscription '%s' in '%s' must be a mapping of options (line %d)", name, path, valNode.Line)
		}
		var opts map[string]any
		if err := valNode.Decode(&opts); err != nil {
			return nil, failure.Wrapf(failure.KindInvalidConfig, err, "invalid yaml for '%s' in '%s': %v", name, path, err)
		}
		opts = copyMap(opts)

		switch {
		case name == FilePresetKey:
			filePreset = opts
		case strings.HasPrefix(name, "__"):
			return nil, failure.Newf(failure.KindValidation,
				"'%s' in '%s' is not a valid subscription name: names starting with '__' are reserved", name, path)
		default:
			entries = append(entries, entry{name: name, options: opts})
		}
	}

	defs := make([]Definition, 0, len(entries))
	for _, e := range entries {
		opts := e.options
		if filePreset != nil {
			opts = withFilePreset(filePreset, opts)
		}
		def, err := Source{}.FromDict(cfg, e.name, opts)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// withFilePreset lays a subscription over the file preset. Their `preset:`
// references are concatenated, the file's first, so both are inherited.
func withFilePreset(filePreset, opts map[string]any) map[string]any {
	merged := merge(filePreset, opts)
	fileParents, _ := presetNames(filePreset["preset"])
	subParents, _ := presetNames(opts["preset"])
	if len(fileParents) > 0 && len(subParents) > 0 {
		parents := make([]any, 0, len(fileParents)+len(subParents))
		for _, p := range append(fileParents, subParents...) {
			parents = append(parents, p)
		}
		merged["preset"] = parents
	}
	return merged
}

// FromDict resolves a single subscription from an options map, applying any
// presets it references.
func (Source) FromDict(cfg *config.Config, name string, dict map[string]any) (Definition, error) {
	if strings.TrimSpace(name) == "" {
		return Definition{}, failure.New(failure.KindValidation, "subscription name must not be empty")
	}
	if err := checkOptions(name, dict); err != nil {
		return Definition{}, err
	}

	parents, err := presetNames(dict["preset"])
	if err != nil {
		return Definition{}, failure.Newf(failure.KindValidation, "subscription '%s': %v", name, err)
	}

	resolved := map[string]any{}
	for _, parent := range parents {
		p, err := resolvePreset(cfg, parent, []string{name})
		if err != nil {
			return Definition{}, err
		}
		resolved = merge(resolved, p)
	}
	own := copyMap(dict)
	delete(own, "preset")
	return NewDefinition(name, merge(resolved, own)), nil
}

// resolvePreset flattens a config preset and its ancestors, depth first.
// chain holds the names being resolved, for cycle detection.
func resolvePreset(cfg *config.Config, name string, chain []string) (map[string]any, error) {
	for _, c := range chain {
		if c == name {
			return nil, failure.Newf(failure.KindValidation,
				"preset cycle detected: %s -> %s", strings.Join(chain, " -> "), name)
		}
	}
	raw, ok := cfg.Presets[name]
	if !ok {
		return nil, failure.Newf(failure.KindValidation,
			"preset '%s' does not exist. Available presets: %s", name, availablePresets(cfg))
	}
	if err := checkOptions(name, raw); err != nil {
		return nil, err
	}
	parents, err := presetNames(raw["preset"])
	if err != nil {
		return nil, failure.Newf(failure.KindValidation, "preset '%s': %v", name, err)
	}

	chain = append(chain, name)
	resolved := map[string]any{}
	for _, parent := range parents {
		p, err := resolvePreset(cfg, parent, chain)
		if err != nil {
			return nil, err
		}
		resolved = merge(resolved, p)
	}
	own := copyMap(raw)
	delete(own, "preset")
	return merge(resolved, own), nil
}

func checkOptions(name string, opts map[string]any) error {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !isRoot(k) {
			return failure.Newf(failure.KindValidation,
				"'%s' is not a valid option for '%s'. Allowed options: %s", k, name, strings.Join(OptionRoots, ", "))
		}
		if mappingRoots[k] {
			if _, ok := asMap(opts[k]); !ok {
				return failure.Newf(failure.KindValidation, "'%s' in '%s' must be a mapping", k, name)
			}
		}
	}
	return nil
}

func isRoot(k string) bool {
	for _, r := range OptionRoots {
		if r == k {
			return true
		}
	}
	return false
}

// presetNames accepts a single preset name or a list of names.
func presetNames(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		if t == "" {
			return nil, errors.New("'preset' must not be empty")
		}
		return []string{t}, nil
	case []any:
		names := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok || s == "" {
				return nil, errors.New("'preset' list entries must be non-empty strings")
			}
			names = append(names, s)
		}
		return names, nil
	}
	return nil, errors.New("'preset' must be a string or a list of strings")
}

func availablePresets(cfg *config.Config) string {
	names := cfg.PresetNames()
	if len(names) == 0 {
		return "(none defined)"
	}
	return strings.Join(names, ", ")
}
