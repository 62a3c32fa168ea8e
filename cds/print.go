package cds

import (
	"fmt"
	"io"
	"strings"
)

// Textual dump of the data model. Pure presentation: renders current state
// through the array codec, adds no semantics.

type dumpConfig struct {
	indent   string
	withAtts bool
	withData bool
	maxWidth int
}

// DumpOption adjusts dump rendering.
type DumpOption func(*dumpConfig)

// WithIndent sets the per-level indentation width in spaces.
func WithIndent(spaces int) DumpOption {
	return func(c *dumpConfig) { c.indent = strings.Repeat(" ", spaces) }
}

// WithoutAttributes omits attribute values from the dump.
func WithoutAttributes() DumpOption {
	return func(c *dumpConfig) { c.withAtts = false }
}

// WithData includes variable sample data in the dump.
func WithData() DumpOption {
	return func(c *dumpConfig) { c.withData = true }
}

// WithMaxWidth caps rendered value lines at n characters (0 = no cap).
func WithMaxWidth(n int) DumpOption {
	return func(c *dumpConfig) { c.maxWidth = n }
}

// Dump writes a textual rendering of the group and everything it owns.
func Dump(w io.Writer, g *Group, opts ...DumpOption) error {
	c := &dumpConfig{indent: "    ", withAtts: true, maxWidth: 0}
	for _, o := range opts {
		o(c)
	}
	return dumpGroup(w, g, c, "")
}

func dumpGroup(w io.Writer, g *Group, c *dumpConfig, pad string) error {
	if _, err := fmt.Fprintf(w, "%sGroup %s {\n", pad, g.name); err != nil {
		return err
	}
	inner := pad + c.indent

	for _, d := range g.dims {
		tag := ""
		if d.unlimited {
			tag = " (unlimited)"
		}
		if _, err := fmt.Fprintf(w, "%sdim %s = %d%s\n", inner, d.name, d.length, tag); err != nil {
			return err
		}
	}
	if c.withAtts {
		for _, a := range g.atts {
			if err := dumpAttribute(w, a, c, inner); err != nil {
				return err
			}
		}
	}
	for _, v := range g.vars {
		if err := dumpVariable(w, v, c, inner); err != nil {
			return err
		}
	}
	for _, vg := range g.varGroups {
		if _, err := fmt.Fprintf(w, "%svargroup %s {\n", inner, vg.name); err != nil {
			return err
		}
		for _, va := range vg.arrays {
			names := make([]string, len(va.vars))
			for i, v := range va.vars {
				names[i] = v.name
			}
			if _, err := fmt.Fprintf(w, "%s%s%s = [%s]\n",
				inner, c.indent, va.name, strings.Join(names, ", ")); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s}\n", inner); err != nil {
			return err
		}
	}
	for _, sub := range g.groups {
		if err := dumpGroup(w, sub, c, inner); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s}\n", pad)
	return err
}

func dumpAttribute(w io.Writer, a *Attribute, c *dumpConfig, pad string) error {
	text := a.Text()
	if a.t == TypeChar {
		text = fmt.Sprintf("%q", text)
	}
	_, err := fmt.Fprintf(w, "%satt %s : %s = %s\n", pad, a.name, a.t, clip(text, c.maxWidth))
	return err
}

func dumpVariable(w io.Writer, v *Variable, c *dumpConfig, pad string) error {
	if _, err := fmt.Fprintf(w, "%svar %s : %s(%s)  samples=%d\n",
		pad, v.name, v.t, strings.Join(dimensionNames(v.dims), ", "), v.sampleCount); err != nil {
		return err
	}
	if c.withAtts {
		for _, a := range v.atts {
			if err := dumpAttribute(w, a, c, pad+c.indent); err != nil {
				return err
			}
		}
	}
	if c.withData && v.sampleCount > 0 {
		if err := dumpVariableData(w, v, c, pad+c.indent); err != nil {
			return err
		}
	}
	return nil
}

// dumpVariableData renders one line per sample.
func dumpVariableData(w io.Writer, v *Variable, c *dumpConfig, pad string) error {
	ss := v.SampleSize()
	for s := 0; s < v.sampleCount; s++ {
		row := sliceRange(v.t, v.data, s*ss, (s+1)*ss)
		text, err := ArrayToString(v.t, row)
		if err != nil {
			return err
		}
		if v.t == TypeChar {
			text = fmt.Sprintf("%q", text)
		}
		if _, err := fmt.Fprintf(w, "%sdata[%d] = %s\n", pad, s, clip(text, c.maxWidth)); err != nil {
			return err
		}
	}
	return nil
}

func clip(s string, maxWidth int) string {
	if maxWidth <= 0 || len(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return s[:maxWidth]
	}
	return s[:maxWidth-3] + "..."
}
