package subscription

import (
	"sort"
	"strings"

	"github.com/backmassage/ytsub/internal/failure"
)

// formatOverrides substitutes {name} placeholders in s with values from vars.
// yt-dlp's own %(field)s templates are left alone.
func formatOverrides(field, s string, vars map[string]string) (string, error) {
	var b strings.Builder
	for {
		start := strings.IndexByte(s, '{')
		end := strings.IndexByte(s, '}')
		if start < 0 && end < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		if start < 0 || (end >= 0 && end < start) {
			return "", failure.Newf(failure.KindStringFormatting,
				"'%s' has a '}' without a matching '{'", field)
		}
		if end < 0 {
			return "", failure.Newf(failure.KindStringFormatting,
				"'%s' has a '{' without a matching '}'", field)
		}

		name := s[start+1 : end]
		if name == "" || strings.ContainsAny(name, "{ ") {
			return "", failure.Newf(failure.KindStringFormatting,
				"'%s' contains an invalid variable '{%s}'", field, name)
		}
		value, ok := vars[name]
		if !ok {
			return "", failure.Newf(failure.KindVariableNotFound,
				"Format variable '%s' does not exist in '%s'. Available variables: %s",
				name, field, strings.Join(varNames(vars), ", "))
		}
		b.WriteString(s[:start])
		b.WriteString(value)
		s = s[end+1:]
	}
}

func varNames(vars map[string]string) []string {
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
