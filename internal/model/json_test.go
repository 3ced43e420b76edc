// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func testModel() *Model {
	return &Model{
		Namespace: Namespace{
			Name:    "com.example.demo",
			Version: SemanticVersion{Major: 1, Minor: 0, Patch: 0},
		},
		Declarations: []*Declaration{
			{
				Name: "Person",
				Properties: []Property{
					&StringProperty{
						Name:         "city",
						DefaultValue: ptr("Dublin"),
						Regex:        &RegexValidator{Pattern: "^[A-Z].*$", Flags: "i"},
						Length: &LengthValidator{
							MinLength: ptr(int32(1)),
							MaxLength: ptr(int32(64)),
						},
					},
					&IntegerProperty{
						Name:       "age",
						IsOptional: true,
						Domain:     &IntegerDomain{Lower: ptr(int32(0)), Upper: ptr(int32(150))},
					},
					&LongProperty{
						Name:         "counter",
						DefaultValue: ptr(int64(1 << 40)),
					},
					&DoubleProperty{
						Name:   "score",
						Domain: &DoubleDomain{Upper: ptr(100.5)},
					},
					&BooleanProperty{
						Name:         "active",
						DefaultValue: ptr(true),
					},
					&DateTimeProperty{
						Name:         "since",
						DefaultValue: ptr("2024-01-15T10:30:00Z"),
					},
					&ReferenceProperty{
						Name:       "addresses",
						TypeName:   "Address",
						IsOptional: true,
						IsArray:    true,
					},
				},
			},
		},
	}
}

func TestModelMarshalJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(testModel())
	require.Nil(t, err)
	require.JSONEq(t, `{
		"$class": "concerto.metamodel.Model",
		"namespace": "com.example.demo",
		"version": "1.0.0",
		"declarations": [
			{
				"$class": "concerto.metamodel.ConceptDeclaration",
				"name": "Person",
				"properties": [
					{
						"$class": "concerto.metamodel.StringProperty",
						"name": "city",
						"isOptional": false,
						"isArray": false,
						"defaultValue": "Dublin",
						"validator": {
							"$class": "concerto.metamodel.StringRegexValidator",
							"pattern": "^[A-Z].*$",
							"flags": "i"
						},
						"lengthValidator": {
							"$class": "concerto.metamodel.StringLengthValidator",
							"minLength": 1,
							"maxLength": 64
						}
					},
					{
						"$class": "concerto.metamodel.IntegerProperty",
						"name": "age",
						"isOptional": true,
						"isArray": false,
						"validator": {
							"$class": "concerto.metamodel.IntegerDomainValidator",
							"lower": 0,
							"upper": 150
						}
					},
					{
						"$class": "concerto.metamodel.LongProperty",
						"name": "counter",
						"isOptional": false,
						"isArray": false,
						"defaultValue": 1099511627776
					},
					{
						"$class": "concerto.metamodel.DoubleProperty",
						"name": "score",
						"isOptional": false,
						"isArray": false,
						"validator": {
							"$class": "concerto.metamodel.DoubleDomainValidator",
							"upper": 100.5
						}
					},
					{
						"$class": "concerto.metamodel.BooleanProperty",
						"name": "active",
						"isOptional": false,
						"isArray": false,
						"defaultValue": true
					},
					{
						"$class": "concerto.metamodel.DateTimeProperty",
						"name": "since",
						"isOptional": false,
						"isArray": false,
						"defaultValue": "2024-01-15T10:30:00Z"
					},
					{
						"$class": "concerto.metamodel.ObjectProperty",
						"name": "addresses",
						"type": "Address",
						"isOptional": true,
						"isArray": true
					}
				]
			}
		]
	}`, string(b))
}

func TestModelJSONRoundTrip(t *testing.T) {
	t.Parallel()

	original := testModel()
	b, err := json.Marshal(original)
	require.Nil(t, err)

	decoded := &Model{}
	require.Nil(t, json.Unmarshal(b, decoded))
	require.Equal(t, original, decoded)
}

func TestModelUnmarshalJSONUnversioned(t *testing.T) {
	t.Parallel()

	decoded := &Model{}
	require.Nil(t, json.Unmarshal([]byte(`{
		"$class": "concerto.metamodel.Model",
		"namespace": "com.example",
		"declarations": []
	}`), decoded))
	require.Equal(t, Namespace{Name: "com.example", Version: Unversioned{}}, decoded.Namespace)
	require.Empty(t, decoded.Declarations)
}

func TestModelUnmarshalJSONErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name  string
		input string
	}{
		{
			name:  "invalid version",
			input: `{"$class": "concerto.metamodel.Model", "namespace": "a", "version": "1.3", "declarations": []}`,
		},
		{
			name:  "unsupported declaration class",
			input: `{"$class": "concerto.metamodel.Model", "namespace": "a", "declarations": [{"$class": "concerto.metamodel.EnumDeclaration", "name": "E", "properties": []}]}`,
		},
		{
			name:  "unsupported property class",
			input: `{"$class": "concerto.metamodel.Model", "namespace": "a", "declarations": [{"$class": "concerto.metamodel.ConceptDeclaration", "name": "C", "properties": [{"$class": "concerto.metamodel.MapProperty", "name": "m"}]}]}`,
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			decoded := &Model{}
			require.Error(t, json.Unmarshal([]byte(testCase.input), decoded))
		})
	}
}
