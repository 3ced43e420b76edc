// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

package cto

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"gopkg.ctolang.org/ctoc/internal/exc"
	"gopkg.ctolang.org/ctoc/internal/fs"
	"gopkg.ctolang.org/ctoc/internal/idl"
	"gopkg.ctolang.org/ctoc/internal/model"
)

func ptr[T any](v T) *T {
	return &v
}

func prepare(t *testing.T, input string) (*parserCTOTokens, exc.Reporter) {
	t.Helper()
	ctx := context.Background()
	file := fs.NewFileString("/test", input, idl.FileKindCTO)
	rep := exc.NewReporter(nil)
	lexer := NewLexerCTO(rep)
	lexerFile, err := lexer.Lex(ctx, file)
	require.Nil(t, err)
	parser := NewParserCTO(rep)
	p, err := parser.PrepareParse(ctx, lexerFile)
	require.Nil(t, err)
	return p, rep
}

func TestParser(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name          string
		input         string
		parser        func(p *parserCTOTokens) any
		expected      any
		expectedCodes []string
	}{
		{
			name:   "namespace without version",
			input:  "namespace com.example.foo",
			parser: func(p *parserCTOTokens) any { return p.parseNamespace() },
			expected: &model.Namespace{
				Name:    "com.example.foo",
				Version: model.Unversioned{},
			},
		},
		{
			name:   "namespace with version",
			input:  "namespace com.example@1.3.5",
			parser: func(p *parserCTOTokens) any { return p.parseNamespace() },
			expected: &model.Namespace{
				Name:    "com.example",
				Version: model.SemanticVersion{Major: 1, Minor: 3, Patch: 5},
			},
		},
		{
			name:   "namespace with release version",
			input:  "namespace com.example.foo@1.3.5-pre",
			parser: func(p *parserCTOTokens) any { return p.parseNamespace() },
			expected: &model.Namespace{
				Name: "com.example.foo",
				Version: model.ReleaseVersion{
					SemanticVersion: model.SemanticVersion{Major: 1, Minor: 3, Patch: 5},
					Release:         "pre",
				},
			},
		},
		{
			name:          "version with too few components",
			input:         "namespace com.example@1.3",
			parser:        func(p *parserCTOTokens) any { return p.parseNamespace() },
			expected:      (*model.Namespace)(nil),
			expectedCodes: []string{exc.CodeInvalidVersionFormat},
		},
		{
			name:          "version with empty release tag",
			input:         "namespace com.example@1.3.5-",
			parser:        func(p *parserCTOTokens) any { return p.parseNamespace() },
			expected:      (*model.Namespace)(nil),
			expectedCodes: []string{exc.CodeInvalidVersionFormat},
		},
		{
			name:          "version missing after at",
			input:         "namespace com.example@",
			parser:        func(p *parserCTOTokens) any { return p.parseNamespace() },
			expected:      (*model.Namespace)(nil),
			expectedCodes: []string{exc.CodeUnexpectedEOF},
		},
		{
			name:          "version is not a version token",
			input:         "namespace com.example@beta",
			parser:        func(p *parserCTOTokens) any { return p.parseNamespace() },
			expected:      (*model.Namespace)(nil),
			expectedCodes: []string{exc.CodeInvalidVersionFormat},
		},
		{
			name:          "qualified name with trailing dot",
			input:         "namespace com.",
			parser:        func(p *parserCTOTokens) any { return p.parseNamespace() },
			expected:      (*model.Namespace)(nil),
			expectedCodes: []string{exc.CodeUnexpectedEOF},
		},
		{
			name:   "plain string property",
			input:  "o String firstName",
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.StringProperty{
				Name: "firstName",
			},
		},
		{
			name:   "string property with default and optional",
			input:  `o String city default="Dublin" optional`,
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.StringProperty{
				Name:         "city",
				IsOptional:   true,
				DefaultValue: ptr("Dublin"),
			},
		},
		{
			name:   "string property with regex and length",
			input:  "o String email regex=/^.+@.+$/ length=[3,254]",
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.StringProperty{
				Name:  "email",
				Regex: &model.RegexValidator{Pattern: "^.+@.+$"},
				Length: &model.LengthValidator{
					MinLength: ptr(int32(3)),
					MaxLength: ptr(int32(254)),
				},
			},
		},
		{
			name:   "string property with regex flags",
			input:  "o String code regex=/[a-z]+/i",
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.StringProperty{
				Name:  "code",
				Regex: &model.RegexValidator{Pattern: "[a-z]+", Flags: "i"},
			},
		},
		{
			name:   "repeated meta overwrites",
			input:  `o String city default="Cork" default="Dublin"`,
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.StringProperty{
				Name:         "city",
				DefaultValue: ptr("Dublin"),
			},
		},
		{
			name:   "string array property",
			input:  "o String[] tags",
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.StringProperty{
				Name:    "tags",
				IsArray: true,
			},
		},
		{
			name:          "array property with a default",
			input:         `o String[] tags default="x"`,
			parser:        func(p *parserCTOTokens) any { return p.parseProperty() },
			expected:      nil,
			expectedCodes: []string{exc.CodeInvalidDefaultLiteral},
		},
		{
			name:   "integer property with range",
			input:  "o Integer age range=[0,150] optional",
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.IntegerProperty{
				Name:       "age",
				IsOptional: true,
				Domain: &model.IntegerDomain{
					Lower: ptr(int32(0)),
					Upper: ptr(int32(150)),
				},
			},
		},
		{
			name:   "integer property with negative default",
			input:  "o Integer offset default=-5",
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.IntegerProperty{
				Name:         "offset",
				DefaultValue: ptr(int32(-5)),
			},
		},
		{
			name:   "integer range with open upper bound",
			input:  "o Integer age range=[5,]",
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.IntegerProperty{
				Name: "age",
				Domain: &model.IntegerDomain{
					Lower: ptr(int32(5)),
				},
			},
		},
		{
			name:          "range with no bounds",
			input:         "o Integer age range=[,]",
			parser:        func(p *parserCTOTokens) any { return p.parseProperty() },
			expected:      nil,
			expectedCodes: []string{exc.CodeUnexpectedToken},
		},
		{
			name:          "integer default out of range",
			input:         "o Integer age default=9999999999",
			parser:        func(p *parserCTOTokens) any { return p.parseProperty() },
			expected:      nil,
			expectedCodes: []string{exc.CodeInvalidLiteral},
		},
		{
			name:          "integer default of the wrong kind",
			input:         `o Integer age default="x"`,
			parser:        func(p *parserCTOTokens) any { return p.parseProperty() },
			expected:      nil,
			expectedCodes: []string{exc.CodeInvalidDefaultLiteral},
		},
		{
			name:   "long property with large default",
			input:  "o Long counter default=9223372036854775807",
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.LongProperty{
				Name:         "counter",
				DefaultValue: ptr(int64(9223372036854775807)),
			},
		},
		{
			name:   "double property with default and range",
			input:  "o Double score default=2.5 range=[,100.5]",
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.DoubleProperty{
				Name:         "score",
				DefaultValue: ptr(2.5),
				Domain: &model.DoubleDomain{
					Upper: ptr(100.5),
				},
			},
		},
		{
			name:   "double property with negative infinity default",
			input:  "o Double score default=-Infinity",
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.DoubleProperty{
				Name:         "score",
				DefaultValue: ptr(math.Inf(-1)),
			},
		},
		{
			name:   "boolean property with default",
			input:  "o Boolean active default=true",
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.BooleanProperty{
				Name:         "active",
				DefaultValue: ptr(true),
			},
		},
		{
			name:          "boolean default of the wrong kind",
			input:         "o Boolean active default=1",
			parser:        func(p *parserCTOTokens) any { return p.parseProperty() },
			expected:      nil,
			expectedCodes: []string{exc.CodeInvalidDefaultLiteral},
		},
		{
			name:   "datetime property with timestamp default",
			input:  `o DateTime since default="2024-01-15T10:30:00Z"`,
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.DateTimeProperty{
				Name:         "since",
				DefaultValue: ptr("2024-01-15T10:30:00Z"),
			},
		},
		{
			name:   "datetime property with date only default",
			input:  `o DateTime since default="2024-01-15"`,
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.DateTimeProperty{
				Name:         "since",
				DefaultValue: ptr("2024-01-15"),
			},
		},
		{
			name:          "datetime default that is not a datetime",
			input:         `o DateTime since default="tomorrow"`,
			parser:        func(p *parserCTOTokens) any { return p.parseProperty() },
			expected:      nil,
			expectedCodes: []string{exc.CodeInvalidDefaultLiteral},
		},
		{
			name:   "reference property",
			input:  "o Address address optional",
			parser: func(p *parserCTOTokens) any { return p.parseProperty() },
			expected: &model.ReferenceProperty{
				Name:       "address",
				TypeName:   "Address",
				IsOptional: true,
			},
		},
		{
			name:          "property type is not an identifier",
			input:         "o 123 name",
			parser:        func(p *parserCTOTokens) any { return p.parseProperty() },
			expected:      nil,
			expectedCodes: []string{exc.CodeUnknownPropertyType},
		},
		{
			name:   "empty concept",
			input:  "concept Empty {}",
			parser: func(p *parserCTOTokens) any { return p.parseDeclaration() },
			expected: &model.Declaration{
				Name: "Empty",
			},
		},
		{
			name:  "concept with properties",
			input: "concept Person {\n  o String firstName\n  o Integer age optional\n}",
			parser: func(p *parserCTOTokens) any {
				return p.parseDeclaration()
			},
			expected: &model.Declaration{
				Name: "Person",
				Properties: []model.Property{
					&model.StringProperty{Name: "firstName"},
					&model.IntegerProperty{Name: "age", IsOptional: true},
				},
			},
		},
		{
			name:          "concept with duplicate property names",
			input:         "concept Person {\n  o String name\n  o Integer name\n}",
			parser:        func(p *parserCTOTokens) any { return p.parseDeclaration() },
			expected:      (*model.Declaration)(nil),
			expectedCodes: []string{exc.CodeDuplicateName},
		},
		{
			name:          "concept without a name",
			input:         "concept { o String name }",
			parser:        func(p *parserCTOTokens) any { return p.parseDeclaration() },
			expected:      (*model.Declaration)(nil),
			expectedCodes: []string{exc.CodeUnexpectedToken},
		},
		{
			name:          "concept with unterminated body",
			input:         "concept Person {\n  o String name\n",
			parser:        func(p *parserCTOTokens) any { return p.parseDeclaration() },
			expected:      (*model.Declaration)(nil),
			expectedCodes: []string{exc.CodeUnexpectedEOF},
		},
		{
			name:          "model requires a namespace",
			input:         "concept Person {}",
			parser:        func(p *parserCTOTokens) any { return p.ParseModel() },
			expected:      (*model.Model)(nil),
			expectedCodes: []string{exc.CodeUnexpectedToken},
		},
		{
			name:          "model rejects trailing tokens",
			input:         "namespace com.example\n\nconcept Person {}\n]",
			parser:        func(p *parserCTOTokens) any { return p.ParseModel() },
			expected:      (*model.Model)(nil),
			expectedCodes: []string{exc.CodeUnexpectedToken},
		},
		{
			name: "person and address",
			input: `
    namespace com.example.foo@1.3.5-pre

    concept Person {
      o String name
      o Integer age optional
      o Address mainAddress
    }

    concept Address {
      o String street
      o Integer number optional
      o String city default="Dublin"
    }

    `,
			parser: func(p *parserCTOTokens) any { return p.ParseModel() },
			expected: &model.Model{
				URI: "/test",
				Namespace: model.Namespace{
					Name: "com.example.foo",
					Version: model.ReleaseVersion{
						SemanticVersion: model.SemanticVersion{Major: 1, Minor: 3, Patch: 5},
						Release:         "pre",
					},
				},
				Declarations: []*model.Declaration{
					{
						Name: "Person",
						Properties: []model.Property{
							&model.StringProperty{Name: "name"},
							&model.IntegerProperty{Name: "age", IsOptional: true},
							&model.ReferenceProperty{Name: "mainAddress", TypeName: "Address"},
						},
					},
					{
						Name: "Address",
						Properties: []model.Property{
							&model.StringProperty{Name: "street"},
							&model.IntegerProperty{Name: "number", IsOptional: true},
							&model.StringProperty{Name: "city", DefaultValue: ptr("Dublin")},
						},
					},
				},
			},
		},
		{
			name: "full model",
			input: `namespace com.example.demo@1.0.0

// The people in the system.
concept Person {
  o String firstName
  o String lastName
  o Integer age range=[0,150] optional
  o Address address optional
}

concept Address {
  o String street
  o String city default="Dublin"
  o String postalCode regex=/^[0-9A-Za-z ]+$/ optional
}
`,
			parser: func(p *parserCTOTokens) any { return p.ParseModel() },
			expected: &model.Model{
				URI: "/test",
				Namespace: model.Namespace{
					Name:    "com.example.demo",
					Version: model.SemanticVersion{Major: 1, Minor: 0, Patch: 0},
				},
				Declarations: []*model.Declaration{
					{
						Name: "Person",
						Properties: []model.Property{
							&model.StringProperty{Name: "firstName"},
							&model.StringProperty{Name: "lastName"},
							&model.IntegerProperty{
								Name:       "age",
								IsOptional: true,
								Domain: &model.IntegerDomain{
									Lower: ptr(int32(0)),
									Upper: ptr(int32(150)),
								},
							},
							&model.ReferenceProperty{
								Name:       "address",
								TypeName:   "Address",
								IsOptional: true,
							},
						},
					},
					{
						Name: "Address",
						Properties: []model.Property{
							&model.StringProperty{Name: "street"},
							&model.StringProperty{Name: "city", DefaultValue: ptr("Dublin")},
							&model.StringProperty{
								Name:       "postalCode",
								IsOptional: true,
								Regex:      &model.RegexValidator{Pattern: "^[0-9A-Za-z ]+$"},
							},
						},
					},
				},
			},
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		name := testCase.name
		if name == "" {
			name = testCase.input
		}
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			p, rep := prepare(t, testCase.input)
			actual := testCase.parser(p)
			require.Equal(t, testCase.expected, actual)
			codes := make([]string, 0, len(rep.Reported()))
			for _, e := range rep.Reported() {
				codes = append(codes, e.Code())
			}
			require.Equal(t, testCase.expectedCodes, codesOrNil(codes))
		})
	}
}

func TestParserErrorLocation(t *testing.T) {
	t.Parallel()

	p, rep := prepare(t, "concept { o String name }")
	require.Nil(t, p.parseDeclaration())
	reported := rep.Reported()
	require.Len(t, reported, 1)
	require.Equal(t, exc.CodeUnexpectedToken, reported[0].Code())
	require.Equal(t, "/test", reported[0].Location().URI)
	require.Equal(t, idl.Location{Line: 1, Column: 7, Offset: 6}, reported[0].Location().Location)
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"namespace com.example\n",
		"namespace com.example.foo@1.3.5-pre\n",
		"namespace com.example@2.0.0\n\nconcept Empty {\n}\n",
		`namespace com.example.demo@1.0.0

concept Person {
  o String firstName
  o String city default="Dublin" optional
  o Integer age range=[0,150] optional
  o Double score default=2.5 range=[,100.5]
  o Boolean active default=true
  o DateTime since default="2024-01-15T10:30:00Z"
  o String[] tags
  o Address address optional
}
`,
	}
	for _, input := range inputs {
		input := input
		t.Run(input[:min(len(input), 40)], func(t *testing.T) {
			t.Parallel()
			p, rep := prepare(t, input)
			first := p.ParseModel()
			require.NotNil(t, first, rep.Reported())
			require.Empty(t, rep.Reported())

			rendered := model.Write(first)
			p2, rep2 := prepare(t, rendered)
			second := p2.ParseModel()
			require.NotNil(t, second, rep2.Reported())
			require.Empty(t, rep2.Reported())
			require.Equal(t, first, second)

			require.Equal(t, rendered, model.Write(second))
		})
	}
}
