package pipeline

import (
	"fmt"
	"strings"

	"github.com/shaiso/skyfetch/internal/domain"
)

// Parse разбирает текст задания в список TaskSpec.
//
// Грамматика:
//
//	pipeline := call ( "->" call )*
//	call     := kind [ "(" params ")" ]
//	params   := k "=" v ( "," k "=" v )*
//
// Значения параметров могут быть заключены в двойные кавычки, если
// содержат запятую, скобку или стрелку. Parse проверяет только
// синтаксис; грамматику топологии и известность видов проверяет
// ValidateTopology.
func Parse(text string) ([]domain.TaskSpec, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewValidationError(-1, "", "empty pipeline text", ErrEmptyPipeline)
	}

	segments := splitOutsideQuotes(text, "->")
	specs := make([]domain.TaskSpec, 0, len(segments))

	for i, seg := range segments {
		spec, err := parseCall(i, seg)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

// parseCall разбирает одну задачу вида kind(k=v, ...).
func parseCall(pos int, s string) (domain.TaskSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.TaskSpec{}, NewValidationError(pos, "", "empty task", ErrSyntax)
	}

	name := s
	var inner string
	hasParams := false

	if i := strings.IndexByte(s, '('); i >= 0 {
		if !strings.HasSuffix(s, ")") {
			return domain.TaskSpec{}, NewValidationError(pos, "", "missing closing parenthesis", ErrSyntax)
		}
		name = strings.TrimSpace(s[:i])
		inner = s[i+1 : len(s)-1]
		hasParams = true
	}

	if !isIdent(name) {
		return domain.TaskSpec{}, NewValidationError(pos, "",
			fmt.Sprintf("invalid task name %q", name), ErrSyntax)
	}

	spec := domain.TaskSpec{Kind: domain.Kind(name)}
	if !hasParams || strings.TrimSpace(inner) == "" {
		return spec, nil
	}

	params, err := parseParams(pos, name, inner)
	if err != nil {
		return domain.TaskSpec{}, err
	}
	spec.Params = params

	return spec, nil
}

// parseParams разбирает список k=v, разделённый запятыми.
func parseParams(pos int, kind, inner string) (map[string]string, error) {
	params := make(map[string]string)

	for _, pair := range splitOutsideQuotes(inner, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, NewValidationError(pos, kind,
				fmt.Sprintf("parameter %q is not key=value", pair), ErrSyntax)
		}

		k = strings.TrimSpace(k)
		if !isIdent(k) {
			return nil, NewValidationError(pos, kind,
				fmt.Sprintf("invalid parameter name %q", k), ErrSyntax)
		}
		if _, dup := params[k]; dup {
			return nil, NewValidationError(pos, kind,
				fmt.Sprintf("duplicate parameter %q", k), ErrSyntax)
		}

		params[k] = unquote(strings.TrimSpace(v))
	}

	if len(params) == 0 {
		return nil, nil
	}
	return params, nil
}

// splitOutsideQuotes режет s по sep, игнорируя sep внутри "двойных кавычек".
func splitOutsideQuotes(s, sep string) []string {
	var parts []string
	var buf strings.Builder
	inQuotes := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' {
			inQuotes = !inQuotes
			buf.WriteByte(c)
			continue
		}
		if !inQuotes && strings.HasPrefix(s[i:], sep) {
			parts = append(parts, buf.String())
			buf.Reset()
			i += len(sep) - 1
			continue
		}
		buf.WriteByte(c)
	}
	parts = append(parts, buf.String())

	return parts
}

// unquote снимает окружающие двойные кавычки, если они есть.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// isIdent проверяет, что s — идентификатор: [a-z][a-z0-9_]*.
func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c == '_' && i > 0:
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
