// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Write renders the model back into concept definition text. Parsing the
// output produces a model equal to the input, modulo source locations.
func Write(m *Model) string {
	var builder strings.Builder
	builder.WriteString("namespace ")
	builder.WriteString(m.Namespace.Name)
	if m.Namespace.Version != nil {
		if v := m.Namespace.Version.String(); v != "" {
			builder.WriteString("@")
			builder.WriteString(v)
		}
	}
	builder.WriteString("\n")
	for _, decl := range m.Declarations {
		builder.WriteString("\nconcept ")
		builder.WriteString(decl.Name)
		builder.WriteString(" {\n")
		for _, prop := range decl.Properties {
			writeProperty(&builder, prop)
		}
		builder.WriteString("}\n")
	}
	return builder.String()
}

func (m *Model) String() string {
	return Write(m)
}

func writeProperty(builder *strings.Builder, prop Property) {
	builder.WriteString("  o ")
	switch p := prop.(type) {
	case *StringProperty:
		writePropertyHead(builder, "String", p.Name, p.IsArray)
		if p.DefaultValue != nil {
			fmt.Fprintf(builder, " default=%s", writeText(*p.DefaultValue))
		}
		if p.Regex != nil {
			fmt.Fprintf(builder, " regex=/%s/%s", p.Regex.Pattern, p.Regex.Flags)
		}
		if p.Length != nil {
			fmt.Fprintf(builder, " length=[%s,%s]", writeBound(p.Length.MinLength), writeBound(p.Length.MaxLength))
		}
	case *IntegerProperty:
		writePropertyHead(builder, "Integer", p.Name, p.IsArray)
		if p.DefaultValue != nil {
			fmt.Fprintf(builder, " default=%d", *p.DefaultValue)
		}
		if p.Domain != nil {
			fmt.Fprintf(builder, " range=[%s,%s]", writeBound(p.Domain.Lower), writeBound(p.Domain.Upper))
		}
	case *LongProperty:
		writePropertyHead(builder, "Long", p.Name, p.IsArray)
		if p.DefaultValue != nil {
			fmt.Fprintf(builder, " default=%d", *p.DefaultValue)
		}
		if p.Domain != nil {
			fmt.Fprintf(builder, " range=[%s,%s]", writeBound(p.Domain.Lower), writeBound(p.Domain.Upper))
		}
	case *DoubleProperty:
		writePropertyHead(builder, "Double", p.Name, p.IsArray)
		if p.DefaultValue != nil {
			fmt.Fprintf(builder, " default=%s", writeDouble(*p.DefaultValue))
		}
		if p.Domain != nil {
			fmt.Fprintf(builder, " range=[%s,%s]", writeDoubleBound(p.Domain.Lower), writeDoubleBound(p.Domain.Upper))
		}
	case *BooleanProperty:
		writePropertyHead(builder, "Boolean", p.Name, p.IsArray)
		if p.DefaultValue != nil {
			fmt.Fprintf(builder, " default=%t", *p.DefaultValue)
		}
	case *DateTimeProperty:
		writePropertyHead(builder, "DateTime", p.Name, p.IsArray)
		if p.DefaultValue != nil {
			fmt.Fprintf(builder, " default=%s", writeText(*p.DefaultValue))
		}
	case *ReferenceProperty:
		writePropertyHead(builder, p.TypeName, p.Name, p.IsArray)
	}
	if prop.Optional() {
		builder.WriteString(" optional")
	}
	builder.WriteString("\n")
}

func writePropertyHead(builder *strings.Builder, typeName string, name string, isArray bool) {
	builder.WriteString(typeName)
	if isArray {
		builder.WriteString("[]")
	}
	builder.WriteString(" ")
	builder.WriteString(name)
}

func writeBound[T int32 | int64](bound *T) string {
	if bound == nil {
		return ""
	}
	return strconv.FormatInt(int64(*bound), 10)
}

func writeDoubleBound(bound *float64) string {
	if bound == nil {
		return ""
	}
	return writeDouble(*bound)
}

func writeDouble(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.IsNaN(v):
		return "NaN"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	// The renderer must produce a float literal, not an integer one.
	if !strings.ContainsAny(s, ".eE") {
		s = s + ".0"
	}
	return s
}

func writeText(v string) string {
	var builder strings.Builder
	builder.WriteString(`"`)
	for _, r := range v {
		switch r {
		case '\\':
			builder.WriteString(`\\`)
		case '"':
			builder.WriteString(`\"`)
		case '\n':
			builder.WriteString(`\n`)
		case '\r':
			builder.WriteString(`\r`)
		case '\t':
			builder.WriteString(`\t`)
		case '\b':
			builder.WriteString(`\b`)
		case '\f':
			builder.WriteString(`\f`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&builder, `\u{%x}`, r)
				continue
			}
			builder.WriteRune(r)
		}
	}
	builder.WriteString(`"`)
	return builder.String()
}
