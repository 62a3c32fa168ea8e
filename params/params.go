// Package params parses the transform-parameter mini-language:
//
//	object_name:param_name = value;
//
// Values may be quoted strings, numbers or comma-separated numeric lists
// and may span multiple lines until the terminating semicolon. Comments run
// from '#' to end of line. The statement
//
//	@include "name";
//
// splices in additional parameter text, located through a pluggable
// Resolver so the parser stays decoupled from filesystem access.
package params

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Statement is one parsed object:param = value assignment.
type Statement struct {
	Object string
	Param  string
	Value  string
}

// Resolver locates include targets by name and returns their text.
type Resolver interface {
	Resolve(name string) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) (string, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(name string) (string, error) {
	return f(name)
}

// DirResolver resolves include names against a directory.
func DirResolver(dir string) Resolver {
	return ResolverFunc(func(name string) (string, error) {
		b, err := os.ReadFile(filepath.Join(dir, filepath.Clean("/"+name)))
		if err != nil {
			return "", err
		}
		return string(b), nil
	})
}

// Parse parses text into its statements. Any malformed statement or
// unresolvable include fails the whole parse; a nil resolver rejects every
// include directive.
func Parse(text string, resolver Resolver) ([]Statement, error) {
	var stmts []Statement
	if err := parseInto(&stmts, text, resolver, map[string]bool{}); err != nil {
		return nil, err
	}
	return stmts, nil
}

func parseInto(stmts *[]Statement, text string, resolver Resolver, including map[string]bool) error {
	line := 1
	for {
		raw, rest, startLine, restLine, ok, err := nextStatement(text, line)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		text, line = rest, restLine
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if name, isInclude := strings.CutPrefix(raw, "@include"); isInclude {
			target, err := unquote(strings.TrimSpace(name))
			if err != nil {
				return errors.Wrapf(err, "line %d: @include", startLine)
			}
			if resolver == nil {
				return errors.Newf("line %d: @include %q: no include resolver", startLine, target)
			}
			if including[target] {
				return errors.Newf("line %d: @include cycle through %q", startLine, target)
			}
			included, err := resolver.Resolve(target)
			if err != nil {
				return errors.Wrapf(err, "line %d: @include %q", startLine, target)
			}
			including[target] = true
			if err := parseInto(stmts, included, resolver, including); err != nil {
				return errors.Wrapf(err, "included from %q", target)
			}
			delete(including, target)
			continue
		}
		stmt, err := parseStatement(raw, startLine)
		if err != nil {
			return err
		}
		*stmts = append(*stmts, stmt)
	}
}

// nextStatement scans text up to the next unquoted ';', stripping comments.
// It returns the statement body, the remaining text, the line the statement
// started on, the line the remaining text starts on, and whether a
// statement was found. Non-blank trailing text with no terminating ';' is
// an error.
func nextStatement(text string, line int) (body, rest string, startLine, restLine int, found bool, err error) {
	var b strings.Builder
	startLine = line
	started := false
	inQuote := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '\n':
			line++
			b.WriteByte(c)
		case c == '"':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '#' && !inQuote:
			for i < len(text) && text[i] != '\n' {
				i++
			}
			i-- // reprocess the newline
		case c == ';' && !inQuote:
			return b.String(), text[i+1:], startLine, line, true, nil
		default:
			if !started && !isSpace(c) {
				started = true
				startLine = line
			}
			b.WriteByte(c)
		}
	}
	if inQuote {
		return "", "", startLine, line, false, errors.Newf("line %d: unterminated string", startLine)
	}
	if strings.TrimSpace(b.String()) != "" {
		return "", "", startLine, line, false,
			errors.Newf("line %d: statement missing terminating ';'", startLine)
	}
	return "", "", startLine, line, false, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func parseStatement(raw string, line int) (Statement, error) {
	head, value, ok := strings.Cut(raw, "=")
	if !ok {
		return Statement{}, errors.Newf("line %d: statement %q missing '='", line, firstLine(raw))
	}
	obj, param, ok := strings.Cut(strings.TrimSpace(head), ":")
	if !ok {
		return Statement{}, errors.Newf("line %d: statement %q missing ':' in name", line, firstLine(raw))
	}
	obj = strings.TrimSpace(obj)
	param = strings.TrimSpace(param)
	if obj == "" || param == "" || strings.ContainsAny(param, " \t") {
		return Statement{}, errors.Newf("line %d: bad parameter name %q:%q", line, obj, param)
	}
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, `"`) {
		unq, err := unquote(value)
		if err != nil {
			return Statement{}, errors.Wrapf(err, "line %d", line)
		}
		value = unq
	}
	return Statement{Object: obj, Param: param, Value: value}, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + "..."
	}
	return s
}

func unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", errors.Newf("expected quoted string, got %q", s)
	}
	return s[1 : len(s)-1], nil
}
