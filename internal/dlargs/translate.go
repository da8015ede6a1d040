// Package dlargs translates the free-form options given to `ytsub dl` into a
// subscription options map and a deterministic hash of those options.
//
// The hash names the one-off subscription (`cli-dl-<hash>`), and the
// download archive is keyed by that name, so the same options must always
// produce the same hash no matter the order they were typed in.
package dlargs

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/backmassage/ytsub/internal/failure"
)

// JobNamePrefix prefixes the name of every one-off subscription.
const JobNamePrefix = "cli-dl-"

// Schema describes which options `dl` accepts.
type Schema struct {
	Roots   map[string]bool   // Allowed first path segments, e.g. "download".
	Aliases map[string]string // alias -> replacement tokens, from dl_aliases.
}

// NewSchema builds a Schema from a list of root keys and the config aliases.
func NewSchema(roots []string, aliases map[string]string) Schema {
	s := Schema{Roots: make(map[string]bool, len(roots)), Aliases: map[string]string{}}
	for _, r := range roots {
		s.Roots[r] = true
	}
	for k, v := range aliases {
		s.Aliases[k] = v
	}
	return s
}

// Result is the output of [Translate].
type Result struct {
	Args ArgumentMap
	Hash ArgumentsHash
}

// JobName returns the one-off subscription name, cli-dl-<hash>.
func (r Result) JobName() string { return JobNamePrefix + string(r.Hash) }

var keyPattern = regexp.MustCompile(`^([A-Za-z0-9_-]+(?:\.[A-Za-z0-9_-]+)*)(?:\[(\d+)\])?$`)

type indexedValue struct {
	index int
	value any
}

// Translate parses tokens against schema. Every failure is a validation
// failure naming the offending token.
func Translate(tokens []string, schema Schema) (Result, error) {
	expanded := expandAliases(tokens, schema.Aliases)

	plain := map[string]any{}
	indexed := map[string][]indexedValue{}
	seenIndex := map[string]bool{}

	for i := 0; i < len(expanded); i++ {
		tok := expanded[i]
		if !strings.HasPrefix(tok, "--") || tok == "--" {
			return Result{}, failure.Newf(failure.KindValidation,
				"unexpected argument '%s': dl options must be given as --key value or --key=value", tok)
		}

		keyPart, raw, hasValue := strings.Cut(strings.TrimPrefix(tok, "--"), "=")
		m := keyPattern.FindStringSubmatch(keyPart)
		if m == nil {
			return Result{}, failure.Newf(failure.KindValidation, "invalid option name '%s'", tok)
		}
		key, idxStr := m[1], m[2]

		root, _, _ := strings.Cut(key, ".")
		if !schema.Roots[root] {
			return Result{}, failure.Newf(failure.KindValidation,
				"unknown option '%s'. Allowed options start with one of: %s", tok, strings.Join(sortedRoots(schema), ", "))
		}

		var value any = true
		switch {
		case hasValue:
			value = parseValue(raw)
		case i+1 < len(expanded) && !strings.HasPrefix(expanded[i+1], "--"):
			i++
			value = parseValue(expanded[i])
		}

		if idxStr == "" {
			if _, dup := plain[key]; dup || len(indexed[key]) > 0 {
				return Result{}, failure.Newf(failure.KindValidation, "option '--%s' is specified more than once", key)
			}
			plain[key] = value
			continue
		}

		idx, err := strconv.Atoi(idxStr)
		if err != nil {
			return Result{}, failure.Newf(failure.KindValidation, "invalid list index in '%s'", tok)
		}
		if _, dup := plain[key]; dup {
			return Result{}, failure.Newf(failure.KindValidation,
				"option '--%s' is given both with and without a list index", key)
		}
		slot := key + "[" + strconv.Itoa(idx) + "]"
		if seenIndex[slot] {
			return Result{}, failure.Newf(failure.KindValidation, "option '--%s' is specified more than once", slot)
		}
		seenIndex[slot] = true
		indexed[key] = append(indexed[key], indexedValue{index: idx, value: value})
	}

	args := ArgumentMap{}
	for k, v := range plain {
		args[k] = v
	}
	for k, vals := range indexed {
		sort.Slice(vals, func(a, b int) bool { return vals[a].index < vals[b].index })
		list := make([]any, len(vals))
		for i, iv := range vals {
			list[i] = iv.value
		}
		args[k] = list
	}

	if err := args.checkPaths(); err != nil {
		return Result{}, err
	}
	return Result{Args: args, Hash: args.Hash()}, nil
}

// expandAliases replaces `--alias` (and `--alias=value`) tokens with the
// alias expansion. Expansions are not themselves expanded again.
func expandAliases(tokens []string, aliases map[string]string) []string {
	if len(aliases) == 0 {
		return tokens
	}
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !strings.HasPrefix(tok, "--") {
			out = append(out, tok)
			continue
		}
		name, value, hasValue := strings.Cut(strings.TrimPrefix(tok, "--"), "=")
		expansion, ok := aliases[name]
		if !ok {
			out = append(out, tok)
			continue
		}
		fields := strings.Fields(expansion)
		if hasValue && len(fields) > 0 {
			fields[len(fields)-1] += "=" + value
		}
		out = append(out, fields...)
	}
	return out
}

// parseValue types a raw token. Numbers are only converted when the
// conversion round-trips, so "001" or "1.50" stay strings.
func parseValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil && strconv.FormatInt(n, 10) == raw {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) &&
		strconv.FormatFloat(f, 'f', -1, 64) == raw {
		return f
	}
	return raw
}

func sortedRoots(s Schema) []string {
	roots := make([]string, 0, len(s.Roots))
	for r := range s.Roots {
		roots = append(roots, r)
	}
	sort.Strings(roots)
	return roots
}

func (m ArgumentMap) checkPaths() error {
	for _, key := range m.Keys() {
		parts := strings.Split(key, ".")
		for i := 1; i < len(parts); i++ {
			parent := strings.Join(parts[:i], ".")
			if _, ok := m[parent]; ok {
				return failure.Newf(failure.KindValidation,
					"option '--%s' conflicts with '--%s': a value cannot also have sub-options", parent, key)
			}
		}
	}
	return nil
}

// String renders the map as sorted `--key=value` pairs, for logs.
func (m ArgumentMap) String() string {
	parts := make([]string, 0, len(m))
	for _, k := range m.Keys() {
		parts = append(parts, fmt.Sprintf("--%s=%v", k, m[k]))
	}
	return strings.Join(parts, " ")
}
