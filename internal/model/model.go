// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

// Package model contains the data model produced by parsing concept
// definition files. The types here are deliberately free of any parser
// state so they can be constructed directly, compared in tests, and
// round-tripped through the JSON form.
package model

// Model is the result of parsing a single concept definition file.
type Model struct {
	URI          string
	Namespace    Namespace
	Declarations []*Declaration
}

// Namespace identifies the model by a dotted name and an optional version.
type Namespace struct {
	Name    string
	Version Version
}

// Declaration is a named concept containing an ordered list of properties.
type Declaration struct {
	Name       string
	Properties []Property
}

// Property is the closed set of typed concept properties. Concrete types
// are StringProperty, IntegerProperty, LongProperty, DoubleProperty,
// BooleanProperty, DateTimeProperty, and ReferenceProperty.
type Property interface {
	PropertyName() string
	Optional() bool
	Array() bool
	property()
}

// RegexValidator constrains a string property to values matching a pattern.
type RegexValidator struct {
	Pattern string
	Flags   string
}

// LengthValidator constrains the length of a string property. At least one
// of the bounds is set.
type LengthValidator struct {
	MinLength *int32
	MaxLength *int32
}

// IntegerDomain constrains an integer property to an inclusive range. At
// least one of the bounds is set.
type IntegerDomain struct {
	Lower *int32
	Upper *int32
}

// LongDomain constrains a long property to an inclusive range. At least one
// of the bounds is set.
type LongDomain struct {
	Lower *int64
	Upper *int64
}

// DoubleDomain constrains a double property to an inclusive range. At least
// one of the bounds is set.
type DoubleDomain struct {
	Lower *float64
	Upper *float64
}

type StringProperty struct {
	Name         string
	IsOptional   bool
	IsArray      bool
	DefaultValue *string
	Regex        *RegexValidator
	Length       *LengthValidator
}

type IntegerProperty struct {
	Name         string
	IsOptional   bool
	IsArray      bool
	DefaultValue *int32
	Domain       *IntegerDomain
}

type LongProperty struct {
	Name         string
	IsOptional   bool
	IsArray      bool
	DefaultValue *int64
	Domain       *LongDomain
}

type DoubleProperty struct {
	Name         string
	IsOptional   bool
	IsArray      bool
	DefaultValue *float64
	Domain       *DoubleDomain
}

type BooleanProperty struct {
	Name         string
	IsOptional   bool
	IsArray      bool
	DefaultValue *bool
}

// DateTimeProperty holds an optional default in ISO-8601 text form.
type DateTimeProperty struct {
	Name         string
	IsOptional   bool
	IsArray      bool
	DefaultValue *string
}

// ReferenceProperty is a property whose type is another declared concept
// rather than one of the primitive types.
type ReferenceProperty struct {
	Name       string
	TypeName   string
	IsOptional bool
	IsArray    bool
}

func (p *StringProperty) PropertyName() string    { return p.Name }
func (p *IntegerProperty) PropertyName() string   { return p.Name }
func (p *LongProperty) PropertyName() string      { return p.Name }
func (p *DoubleProperty) PropertyName() string    { return p.Name }
func (p *BooleanProperty) PropertyName() string   { return p.Name }
func (p *DateTimeProperty) PropertyName() string  { return p.Name }
func (p *ReferenceProperty) PropertyName() string { return p.Name }

func (p *StringProperty) Optional() bool    { return p.IsOptional }
func (p *IntegerProperty) Optional() bool   { return p.IsOptional }
func (p *LongProperty) Optional() bool      { return p.IsOptional }
func (p *DoubleProperty) Optional() bool    { return p.IsOptional }
func (p *BooleanProperty) Optional() bool   { return p.IsOptional }
func (p *DateTimeProperty) Optional() bool  { return p.IsOptional }
func (p *ReferenceProperty) Optional() bool { return p.IsOptional }

func (p *StringProperty) Array() bool    { return p.IsArray }
func (p *IntegerProperty) Array() bool   { return p.IsArray }
func (p *LongProperty) Array() bool      { return p.IsArray }
func (p *DoubleProperty) Array() bool    { return p.IsArray }
func (p *BooleanProperty) Array() bool   { return p.IsArray }
func (p *DateTimeProperty) Array() bool  { return p.IsArray }
func (p *ReferenceProperty) Array() bool { return p.IsArray }

func (p *StringProperty) property()    {}
func (p *IntegerProperty) property()   {}
func (p *LongProperty) property()      {}
func (p *DoubleProperty) property()    {}
func (p *BooleanProperty) property()   {}
func (p *DateTimeProperty) property()  {}
func (p *ReferenceProperty) property() {}
