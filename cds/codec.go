package cds

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Deterministic array <-> text codec. Numeric arrays render as
// comma+space-separated decimal tokens with enough digits to round-trip
// exactly; char arrays are raw text with no delimiter interpretation.

// ArrayToString renders data as text.
func ArrayToString(t Type, data any) (string, error) {
	const op = "array to string"
	if err := checkType(op, t); err != nil {
		return "", err
	}
	if t == TypeChar {
		if data == nil {
			return "", nil
		}
		b, ok := data.([]byte)
		if !ok {
			return "", errors.Wrapf(ErrInvalidArgument, "%s: char array is %T", op, data)
		}
		return string(b), nil
	}
	n, err := arrayLen(t, data)
	if err != nil {
		return "", errors.Wrap(err, op)
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(formatElem(t, data, i))
	}
	return b.String(), nil
}

func formatElem(t Type, data any, i int) string {
	switch t {
	case TypeFloat:
		return strconv.FormatFloat(float64(data.([]float32)[i]), 'g', -1, 32)
	case TypeDouble:
		return strconv.FormatFloat(data.([]float64)[i], 'g', -1, 64)
	default:
		return strconv.FormatInt(int64(getElem(t, data, i)), 10)
	}
}

// StringToArray parses s into a fresh array of type t. Numeric tokens may be
// separated by whitespace and/or commas; a malformed token fails with
// ErrParse. A char array is the raw bytes of s.
func StringToArray(t Type, s string) (any, error) {
	const op = "string to array"
	if err := checkType(op, t); err != nil {
		return nil, err
	}
	if t == TypeChar {
		return []byte(s), nil
	}
	tokens := splitTokens(s)
	out := newArrayOf(t, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, errors.Wrapf(ErrParse, "%s: bad numeric token %q", op, tok)
		}
		setElem(t, out, i, v)
	}
	return out, nil
}

// splitTokens splits on any run of whitespace and/or commas.
func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}
