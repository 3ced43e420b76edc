// © 2024 Ctolang Authors
//
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		input    *Model
		expected string
	}{
		{
			name: "namespace only",
			input: &Model{
				Namespace: Namespace{Name: "com.example", Version: Unversioned{}},
			},
			expected: "namespace com.example\n",
		},
		{
			name: "versioned namespace",
			input: &Model{
				Namespace: Namespace{
					Name: "com.example",
					Version: ReleaseVersion{
						SemanticVersion: SemanticVersion{Major: 1, Minor: 3, Patch: 5},
						Release:         "pre",
					},
				},
			},
			expected: "namespace com.example@1.3.5-pre\n",
		},
		{
			name: "empty concept",
			input: &Model{
				Namespace:    Namespace{Name: "com.example", Version: Unversioned{}},
				Declarations: []*Declaration{{Name: "Empty"}},
			},
			expected: "namespace com.example\n\nconcept Empty {\n}\n",
		},
		{
			name: "string property meta",
			input: &Model{
				Namespace: Namespace{Name: "com.example", Version: Unversioned{}},
				Declarations: []*Declaration{
					{
						Name: "Address",
						Properties: []Property{
							&StringProperty{
								Name:         "city",
								IsOptional:   true,
								DefaultValue: ptr("Dublin"),
								Regex:        &RegexValidator{Pattern: "^[A-Z].*$", Flags: "i"},
								Length:       &LengthValidator{MinLength: ptr(int32(1))},
							},
						},
					},
				},
			},
			expected: "namespace com.example\n" +
				"\n" +
				"concept Address {\n" +
				"  o String city default=\"Dublin\" regex=/^[A-Z].*$/i length=[1,] optional\n" +
				"}\n",
		},
		{
			name: "numeric properties",
			input: &Model{
				Namespace: Namespace{Name: "com.example", Version: Unversioned{}},
				Declarations: []*Declaration{
					{
						Name: "Stats",
						Properties: []Property{
							&IntegerProperty{
								Name:         "age",
								DefaultValue: ptr(int32(-5)),
								Domain:       &IntegerDomain{Lower: ptr(int32(0)), Upper: ptr(int32(150))},
							},
							&LongProperty{
								Name:   "counter",
								Domain: &LongDomain{Upper: ptr(int64(1 << 40))},
							},
							&DoubleProperty{
								Name:         "score",
								DefaultValue: ptr(2.0),
								Domain:       &DoubleDomain{Lower: ptr(-0.5)},
							},
						},
					},
				},
			},
			expected: "namespace com.example\n" +
				"\n" +
				"concept Stats {\n" +
				"  o Integer age default=-5 range=[0,150]\n" +
				"  o Long counter range=[,1099511627776]\n" +
				"  o Double score default=2.0 range=[-0.5,]\n" +
				"}\n",
		},
		{
			name: "arrays and references",
			input: &Model{
				Namespace: Namespace{Name: "com.example", Version: Unversioned{}},
				Declarations: []*Declaration{
					{
						Name: "Person",
						Properties: []Property{
							&StringProperty{Name: "tags", IsArray: true},
							&BooleanProperty{Name: "active", DefaultValue: ptr(false)},
							&DateTimeProperty{Name: "since", DefaultValue: ptr("2024-01-15")},
							&ReferenceProperty{Name: "addresses", TypeName: "Address", IsArray: true, IsOptional: true},
						},
					},
				},
			},
			expected: "namespace com.example\n" +
				"\n" +
				"concept Person {\n" +
				"  o String[] tags\n" +
				"  o Boolean active default=false\n" +
				"  o DateTime since default=\"2024-01-15\"\n" +
				"  o Address[] addresses optional\n" +
				"}\n",
		},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, Write(testCase.input))
			require.Equal(t, testCase.expected, testCase.input.String())
		})
	}
}

func TestWriteDouble(t *testing.T) {
	t.Parallel()

	require.Equal(t, "2.5", writeDouble(2.5))
	require.Equal(t, "2.0", writeDouble(2))
	require.Equal(t, "-0.5", writeDouble(-0.5))
	require.Equal(t, "1e+100", writeDouble(1e100))
	require.Equal(t, "Infinity", writeDouble(math.Inf(1)))
	require.Equal(t, "-Infinity", writeDouble(math.Inf(-1)))
	require.Equal(t, "NaN", writeDouble(math.NaN()))
}

func TestWriteText(t *testing.T) {
	t.Parallel()

	require.Equal(t, `"Dublin"`, writeText("Dublin"))
	require.Equal(t, `"a\"b"`, writeText(`a"b`))
	require.Equal(t, `"a\\b"`, writeText(`a\b`))
	require.Equal(t, `"line\nbreak"`, writeText("line\nbreak"))
	require.Equal(t, `"tab\there"`, writeText("tab\there"))
	require.Equal(t, `"bell\u{7}"`, writeText("bell\a"))
	require.Equal(t, `"snowman ☃"`, writeText("snowman ☃"))
}
