// Package unitdb is the default units-database collaborator for the cds
// converter. A unit string parses into a linear mapping onto SI base units
// plus a dimension vector; two unit strings are compatible exactly when
// their dimension vectors match, and the conversion between them is the
// resulting scale and offset.
//
// The grammar covers the unit strings found in scientific array files:
// products of symbols separated by whitespace or '*', quotients with '/',
// integer exponents as a suffix or after '^' (m2, m^2, s-1), SI prefixes,
// and affine temperature units (degC, degF) when they stand alone.
package unitdb

import (
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ctessum/unit"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-cds/cds"
)

// moleDim extends the SI dimension set; ctessum/unit reserves the "mol"
// symbol, so the amount-of-substance dimension is registered as "mole".
var moleDim = unit.NewDimension("mole")

type entry struct {
	scale  float64
	offset float64 // into SI; meaningful only for standalone use
	dims   unit.Dimensions
}

// DB maps unit symbols to their SI definitions. The zero value is not
// usable; call New.
type DB struct {
	units map[string]entry
}

// New returns a database loaded with the built-in unit table.
func New() *DB {
	db := &DB{units: make(map[string]entry, len(builtins))}
	for sym, e := range builtins {
		db.units[sym] = e
	}
	return db
}

var builtins = map[string]entry{
	// SI base and supplementary
	"m":   {1, 0, unit.Meter},
	"g":   {1e-3, 0, unit.Kilogram},
	"s":   {1, 0, unit.Second},
	"A":   {1, 0, unit.Dimensions{unit.CurrentDim: 1}},
	"K":   {1, 0, unit.Kelvin},
	"cd":  {1, 0, unit.Dimensions{unit.LuminousIntensityDim: 1}},
	"rad": {1, 0, unit.Dimensions{unit.AngleDim: 1}},
	"mol": {1, 0, unit.Dimensions{moleDim: 1}},
	// Derived
	"Hz":  {1, 0, unit.Herz},
	"N":   {1, 0, unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 1, unit.TimeDim: -2}},
	"Pa":  {1, 0, unit.Pascal},
	"J":   {1, 0, unit.Joule},
	"W":   {1, 0, unit.Watt},
	"C":   {1, 0, unit.Dimensions{unit.CurrentDim: 1, unit.TimeDim: 1}},
	"V":   {1, 0, unit.Dimensions{unit.MassDim: 1, unit.LengthDim: 2, unit.TimeDim: -3, unit.CurrentDim: -1}},
	"L":   {1e-3, 0, unit.Meter3},
	"bar": {1e5, 0, unit.Pascal},
	// Time in common use
	"min": {60, 0, unit.Second},
	"h":   {3600, 0, unit.Second},
	"hr":  {3600, 0, unit.Second},
	"day": {86400, 0, unit.Second},
	// Temperature, affine into Kelvin
	"degK": {1, 0, unit.Kelvin},
	"degC": {1, 273.15, unit.Kelvin},
	"degF": {5. / 9., 459.67 * 5. / 9., unit.Kelvin},
	// Dimensionless
	"1":        {1, 0, unit.Dimless},
	"count":    {1, 0, unit.Dimless},
	"unitless": {1, 0, unit.Dimless},
	"%":        {0.01, 0, unit.Dimless},
}

// prefixes are the SI scale prefixes, tried only when a symbol has no exact
// table entry. "u" is accepted for micro alongside "μ".
var prefixes = map[string]float64{
	"Y": 1e24, "Z": 1e21, "E": 1e18, "P": 1e15, "T": 1e12,
	"G": 1e9, "M": 1e6, "k": 1e3, "h": 1e2, "da": 1e1,
	"d": 1e-1, "c": 1e-2, "m": 1e-3, "μ": 1e-6, "u": 1e-6,
	"n": 1e-9, "p": 1e-12, "f": 1e-15, "a": 1e-18,
	"z": 1e-21, "y": 1e-24,
}

// Define registers symbol as scale*base + offset, where base is any
// expression the database already resolves. An existing symbol is
// redefined.
func (db *DB) Define(symbol string, scale, offset float64, base string) error {
	if symbol == "" || strings.ContainsAny(symbol, " \t/*^") {
		return errors.Wrapf(cds.ErrInvalidArgument, "bad unit symbol %q", symbol)
	}
	e := entry{scale: 1, dims: unit.Dimless}
	if base != "" {
		var err error
		e, err = db.resolve(base)
		if err != nil {
			return err
		}
	}
	db.units[symbol] = entry{
		scale:  scale * e.scale,
		offset: offset*e.scale + e.offset,
		dims:   e.dims,
	}
	return nil
}

// definitionsFile is the YAML shape accepted by LoadDefinitions.
type definitionsFile struct {
	Units []struct {
		Symbol string  `yaml:"symbol"`
		Scale  float64 `yaml:"scale"`
		Offset float64 `yaml:"offset"`
		Base   string  `yaml:"base"`
	} `yaml:"units"`
}

// LoadDefinitions registers supplemental units declared in YAML:
//
//	units:
//	  - symbol: mph
//	    scale: 0.44704
//	    base: "m/s"
func (db *DB) LoadDefinitions(r io.Reader) error {
	var f definitionsFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return errors.Wrapf(cds.ErrParse, "unit definitions: %v", err)
	}
	for _, u := range f.Units {
		scale := u.Scale
		if scale == 0 {
			scale = 1
		}
		if err := db.Define(u.Symbol, scale, u.Offset, u.Base); err != nil {
			return err
		}
	}
	return nil
}

// Convert returns the linear mapping taking values in `from` to values in
// `to`. It fails with cds.ErrIncompatibleUnits when either string does not
// resolve or the dimension vectors differ.
func (db *DB) Convert(from, to string) (scale, offset float64, err error) {
	f, err := db.resolve(from)
	if err != nil {
		return 0, 0, err
	}
	t, err := db.resolve(to)
	if err != nil {
		return 0, 0, err
	}
	if !f.dims.Matches(t.dims) {
		return 0, 0, errors.Wrapf(cds.ErrIncompatibleUnits,
			"%q [%v] vs %q [%v]", from, f.dims, to, t.dims)
	}
	return f.scale / t.scale, (f.offset - t.offset) / t.scale, nil
}

// resolve parses a unit expression into its SI mapping. Offsets survive
// only for a standalone affine unit; in any product or power the affine
// unit contributes its scale alone.
func (db *DB) resolve(expr string) (entry, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return entry{scale: 1, dims: unit.Dimless}, nil
	}
	if e, ok := db.units[s]; ok {
		return e, nil
	}

	result := entry{scale: 1, dims: unit.Dimensions{}}
	sign := 1
	for _, tok := range splitFactors(s) {
		if tok == "/" {
			sign = -sign
			continue
		}
		sym, exp, err := splitExponent(tok)
		if err != nil {
			return entry{}, errors.Wrapf(cds.ErrIncompatibleUnits, "unit %q: %v", expr, err)
		}
		if f, err := strconv.ParseFloat(sym, 64); err == nil {
			result.scale *= pow(f, sign*exp)
			continue
		}
		e, err := db.lookupSymbol(sym)
		if err != nil {
			return entry{}, errors.Wrapf(err, "unit %q", expr)
		}
		result.scale *= pow(e.scale, sign*exp)
		for d, p := range e.dims {
			result.dims[d] += p * sign * exp
			if result.dims[d] == 0 {
				delete(result.dims, d)
			}
		}
	}
	return result, nil
}

// lookupSymbol finds a bare symbol: exact table entry first, then an SI
// prefix followed by a table entry.
func (db *DB) lookupSymbol(sym string) (entry, error) {
	if e, ok := db.units[sym]; ok {
		return e, nil
	}
	for plen := 2; plen >= 1; plen-- {
		if len(sym) <= plen {
			continue
		}
		scale, ok := prefixes[sym[:plen]]
		if !ok {
			continue
		}
		if e, ok := db.units[sym[plen:]]; ok {
			return entry{scale: scale * e.scale, dims: e.dims}, nil
		}
	}
	return entry{}, errors.Wrapf(cds.ErrIncompatibleUnits, "unknown unit symbol %q", sym)
}

// splitFactors tokenizes on whitespace and '*', keeping "/" as its own
// token.
func splitFactors(s string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch r {
		case ' ', '\t', '*':
			flush()
		case '/':
			flush()
			out = append(out, "/")
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// splitExponent splits a token into its symbol and integer exponent:
// "m2" -> (m, 2), "s-1" -> (s, -1), "m^2" -> (m, 2), "kg" -> (kg, 1).
func splitExponent(tok string) (string, int, error) {
	if sym, expStr, ok := strings.Cut(tok, "^"); ok {
		exp, err := strconv.Atoi(expStr)
		if err != nil {
			return "", 0, errors.Newf("bad exponent in %q", tok)
		}
		return sym, exp, nil
	}
	i := len(tok)
	for i > 0 && (tok[i-1] >= '0' && tok[i-1] <= '9') {
		i--
	}
	if i == len(tok) {
		return tok, 1, nil
	}
	start := i
	if start > 0 && (tok[start-1] == '-' || tok[start-1] == '+') {
		start--
	}
	if start == 0 {
		// Purely numeric token, treated as a scale factor.
		return tok, 1, nil
	}
	exp, err := strconv.Atoi(tok[start:])
	if err != nil {
		return "", 0, errors.Newf("bad exponent in %q", tok)
	}
	return tok[:start], exp, nil
}

func pow(base float64, exp int) float64 {
	if exp < 0 {
		return 1 / pow(base, -exp)
	}
	out := 1.0
	for ; exp > 0; exp-- {
		out *= base
	}
	return out
}
