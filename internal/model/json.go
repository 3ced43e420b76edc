// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"encoding/json"
	"fmt"
)

// The $class values mirror the Concerto metamodel type names so that the
// JSON form is recognizable to existing tooling.
const (
	classModel              = "concerto.metamodel.Model"
	classConceptDeclaration = "concerto.metamodel.ConceptDeclaration"
	classStringProperty     = "concerto.metamodel.StringProperty"
	classIntegerProperty    = "concerto.metamodel.IntegerProperty"
	classLongProperty       = "concerto.metamodel.LongProperty"
	classDoubleProperty     = "concerto.metamodel.DoubleProperty"
	classBooleanProperty    = "concerto.metamodel.BooleanProperty"
	classDateTimeProperty   = "concerto.metamodel.DateTimeProperty"
	classObjectProperty     = "concerto.metamodel.ObjectProperty"
	classRegexValidator     = "concerto.metamodel.StringRegexValidator"
	classLengthValidator    = "concerto.metamodel.StringLengthValidator"
	classIntegerDomain      = "concerto.metamodel.IntegerDomainValidator"
	classLongDomain         = "concerto.metamodel.LongDomainValidator"
	classDoubleDomain       = "concerto.metamodel.DoubleDomainValidator"
)

type jsonModel struct {
	Class        string            `json:"$class"`
	Namespace    string            `json:"namespace"`
	Version      string            `json:"version,omitempty"`
	Declarations []json.RawMessage `json:"declarations"`
}

func (m *Model) MarshalJSON() ([]byte, error) {
	decls := make([]json.RawMessage, 0, len(m.Declarations))
	for _, decl := range m.Declarations {
		b, err := json.Marshal(decl)
		if err != nil {
			return nil, err
		}
		decls = append(decls, b)
	}
	version := ""
	if m.Namespace.Version != nil {
		version = m.Namespace.Version.String()
	}
	return json.Marshal(jsonModel{
		Class:        classModel,
		Namespace:    m.Namespace.Name,
		Version:      version,
		Declarations: decls,
	})
}

func (m *Model) UnmarshalJSON(b []byte) error {
	var raw jsonModel
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	version, err := ParseVersion(raw.Version)
	if err != nil {
		return err
	}
	m.Namespace = Namespace{Name: raw.Namespace, Version: version}
	m.Declarations = make([]*Declaration, 0, len(raw.Declarations))
	for _, rawDecl := range raw.Declarations {
		decl := &Declaration{}
		if err := json.Unmarshal(rawDecl, decl); err != nil {
			return err
		}
		m.Declarations = append(m.Declarations, decl)
	}
	return nil
}

type jsonDeclaration struct {
	Class      string            `json:"$class"`
	Name       string            `json:"name"`
	Properties []json.RawMessage `json:"properties"`
}

func (d *Declaration) MarshalJSON() ([]byte, error) {
	props := make([]json.RawMessage, 0, len(d.Properties))
	for _, prop := range d.Properties {
		b, err := json.Marshal(prop)
		if err != nil {
			return nil, err
		}
		props = append(props, b)
	}
	return json.Marshal(jsonDeclaration{
		Class:      classConceptDeclaration,
		Name:       d.Name,
		Properties: props,
	})
}

func (d *Declaration) UnmarshalJSON(b []byte) error {
	var raw jsonDeclaration
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Class != classConceptDeclaration {
		return fmt.Errorf("unsupported declaration $class %q", raw.Class)
	}
	d.Name = raw.Name
	d.Properties = make([]Property, 0, len(raw.Properties))
	for _, rawProp := range raw.Properties {
		prop, err := unmarshalProperty(rawProp)
		if err != nil {
			return err
		}
		d.Properties = append(d.Properties, prop)
	}
	return nil
}

type jsonRegexValidator struct {
	Class   string `json:"$class"`
	Pattern string `json:"pattern"`
	Flags   string `json:"flags,omitempty"`
}

type jsonLengthValidator struct {
	Class     string `json:"$class"`
	MinLength *int32 `json:"minLength,omitempty"`
	MaxLength *int32 `json:"maxLength,omitempty"`
}

type jsonDomain[T any] struct {
	Class string `json:"$class"`
	Lower *T     `json:"lower,omitempty"`
	Upper *T     `json:"upper,omitempty"`
}

type jsonStringProperty struct {
	Class        string               `json:"$class"`
	Name         string               `json:"name"`
	IsOptional   bool                 `json:"isOptional"`
	IsArray      bool                 `json:"isArray"`
	DefaultValue *string              `json:"defaultValue,omitempty"`
	Regex        *jsonRegexValidator  `json:"validator,omitempty"`
	Length       *jsonLengthValidator `json:"lengthValidator,omitempty"`
}

func (p *StringProperty) MarshalJSON() ([]byte, error) {
	raw := jsonStringProperty{
		Class:        classStringProperty,
		Name:         p.Name,
		IsOptional:   p.IsOptional,
		IsArray:      p.IsArray,
		DefaultValue: p.DefaultValue,
	}
	if p.Regex != nil {
		raw.Regex = &jsonRegexValidator{
			Class:   classRegexValidator,
			Pattern: p.Regex.Pattern,
			Flags:   p.Regex.Flags,
		}
	}
	if p.Length != nil {
		raw.Length = &jsonLengthValidator{
			Class:     classLengthValidator,
			MinLength: p.Length.MinLength,
			MaxLength: p.Length.MaxLength,
		}
	}
	return json.Marshal(raw)
}

type jsonNumberProperty[T any] struct {
	Class        string         `json:"$class"`
	Name         string         `json:"name"`
	IsOptional   bool           `json:"isOptional"`
	IsArray      bool           `json:"isArray"`
	DefaultValue *T             `json:"defaultValue,omitempty"`
	Domain       *jsonDomain[T] `json:"validator,omitempty"`
}

func (p *IntegerProperty) MarshalJSON() ([]byte, error) {
	raw := jsonNumberProperty[int32]{
		Class:        classIntegerProperty,
		Name:         p.Name,
		IsOptional:   p.IsOptional,
		IsArray:      p.IsArray,
		DefaultValue: p.DefaultValue,
	}
	if p.Domain != nil {
		raw.Domain = &jsonDomain[int32]{Class: classIntegerDomain, Lower: p.Domain.Lower, Upper: p.Domain.Upper}
	}
	return json.Marshal(raw)
}

func (p *LongProperty) MarshalJSON() ([]byte, error) {
	raw := jsonNumberProperty[int64]{
		Class:        classLongProperty,
		Name:         p.Name,
		IsOptional:   p.IsOptional,
		IsArray:      p.IsArray,
		DefaultValue: p.DefaultValue,
	}
	if p.Domain != nil {
		raw.Domain = &jsonDomain[int64]{Class: classLongDomain, Lower: p.Domain.Lower, Upper: p.Domain.Upper}
	}
	return json.Marshal(raw)
}

func (p *DoubleProperty) MarshalJSON() ([]byte, error) {
	raw := jsonNumberProperty[float64]{
		Class:        classDoubleProperty,
		Name:         p.Name,
		IsOptional:   p.IsOptional,
		IsArray:      p.IsArray,
		DefaultValue: p.DefaultValue,
	}
	if p.Domain != nil {
		raw.Domain = &jsonDomain[float64]{Class: classDoubleDomain, Lower: p.Domain.Lower, Upper: p.Domain.Upper}
	}
	return json.Marshal(raw)
}

type jsonBooleanProperty struct {
	Class        string `json:"$class"`
	Name         string `json:"name"`
	IsOptional   bool   `json:"isOptional"`
	IsArray      bool   `json:"isArray"`
	DefaultValue *bool  `json:"defaultValue,omitempty"`
}

func (p *BooleanProperty) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonBooleanProperty{
		Class:        classBooleanProperty,
		Name:         p.Name,
		IsOptional:   p.IsOptional,
		IsArray:      p.IsArray,
		DefaultValue: p.DefaultValue,
	})
}

type jsonDateTimeProperty struct {
	Class        string  `json:"$class"`
	Name         string  `json:"name"`
	IsOptional   bool    `json:"isOptional"`
	IsArray      bool    `json:"isArray"`
	DefaultValue *string `json:"defaultValue,omitempty"`
}

func (p *DateTimeProperty) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonDateTimeProperty{
		Class:        classDateTimeProperty,
		Name:         p.Name,
		IsOptional:   p.IsOptional,
		IsArray:      p.IsArray,
		DefaultValue: p.DefaultValue,
	})
}

type jsonReferenceProperty struct {
	Class      string `json:"$class"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	IsOptional bool   `json:"isOptional"`
	IsArray    bool   `json:"isArray"`
}

func (p *ReferenceProperty) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonReferenceProperty{
		Class:      classObjectProperty,
		Name:       p.Name,
		Type:       p.TypeName,
		IsOptional: p.IsOptional,
		IsArray:    p.IsArray,
	})
}

func unmarshalProperty(b []byte) (Property, error) {
	var head struct {
		Class string `json:"$class"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, err
	}
	switch head.Class {
	case classStringProperty:
		var raw jsonStringProperty
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, err
		}
		prop := &StringProperty{
			Name:         raw.Name,
			IsOptional:   raw.IsOptional,
			IsArray:      raw.IsArray,
			DefaultValue: raw.DefaultValue,
		}
		if raw.Regex != nil {
			prop.Regex = &RegexValidator{Pattern: raw.Regex.Pattern, Flags: raw.Regex.Flags}
		}
		if raw.Length != nil {
			prop.Length = &LengthValidator{MinLength: raw.Length.MinLength, MaxLength: raw.Length.MaxLength}
		}
		return prop, nil
	case classIntegerProperty:
		var raw jsonNumberProperty[int32]
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, err
		}
		prop := &IntegerProperty{
			Name:         raw.Name,
			IsOptional:   raw.IsOptional,
			IsArray:      raw.IsArray,
			DefaultValue: raw.DefaultValue,
		}
		if raw.Domain != nil {
			prop.Domain = &IntegerDomain{Lower: raw.Domain.Lower, Upper: raw.Domain.Upper}
		}
		return prop, nil
	case classLongProperty:
		var raw jsonNumberProperty[int64]
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, err
		}
		prop := &LongProperty{
			Name:         raw.Name,
			IsOptional:   raw.IsOptional,
			IsArray:      raw.IsArray,
			DefaultValue: raw.DefaultValue,
		}
		if raw.Domain != nil {
			prop.Domain = &LongDomain{Lower: raw.Domain.Lower, Upper: raw.Domain.Upper}
		}
		return prop, nil
	case classDoubleProperty:
		var raw jsonNumberProperty[float64]
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, err
		}
		prop := &DoubleProperty{
			Name:         raw.Name,
			IsOptional:   raw.IsOptional,
			IsArray:      raw.IsArray,
			DefaultValue: raw.DefaultValue,
		}
		if raw.Domain != nil {
			prop.Domain = &DoubleDomain{Lower: raw.Domain.Lower, Upper: raw.Domain.Upper}
		}
		return prop, nil
	case classBooleanProperty:
		var raw jsonBooleanProperty
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, err
		}
		return &BooleanProperty{
			Name:         raw.Name,
			IsOptional:   raw.IsOptional,
			IsArray:      raw.IsArray,
			DefaultValue: raw.DefaultValue,
		}, nil
	case classDateTimeProperty:
		var raw jsonDateTimeProperty
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, err
		}
		return &DateTimeProperty{
			Name:         raw.Name,
			IsOptional:   raw.IsOptional,
			IsArray:      raw.IsArray,
			DefaultValue: raw.DefaultValue,
		}, nil
	case classObjectProperty:
		var raw jsonReferenceProperty
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, err
		}
		return &ReferenceProperty{
			Name:       raw.Name,
			TypeName:   raw.Type,
			IsOptional: raw.IsOptional,
			IsArray:    raw.IsArray,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported property $class %q", head.Class)
	}
}
