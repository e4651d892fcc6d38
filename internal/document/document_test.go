package document

import (
	"bytes"
	"errors"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"

	"github.com/eugenenazirov/layercfg/internal/tree"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		expected    []tree.Mapping
	}{
		{
			name:  "flow mapping",
			input: `{a: [1, "2", 3], b: 3}`,
			expected: []tree.Mapping{{
				"a": tree.Sequence{tree.Scalar{V: 1}, tree.Scalar{V: "2"}, tree.Scalar{V: 3}},
				"b": tree.Scalar{V: 3},
			}},
		},
		{
			name:  "multiple documents",
			input: "a: 1\n---\nb: 2\n",
			expected: []tree.Mapping{
				{"a": tree.Scalar{V: 1}},
				{"b": tree.Scalar{V: 2}},
			},
		},
		{
			name:  "numeric keys",
			input: "1:\n  2: 11\n4: 13\n",
			expected: []tree.Mapping{{
				1: tree.Mapping{2: tree.Scalar{V: 11}},
				4: tree.Scalar{V: 13},
			}},
		},
		{
			name:  "comment lines are ignored",
			input: "x:\n# {{- range until 2 }}\n  - a\n# {{- end }}\n",
			expected: []tree.Mapping{{
				"x": tree.Sequence{tree.Scalar{V: "a"}},
			}},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
		{
			name:        "unterminated flow sequence",
			input:       "a: [1",
			expectError: true,
		},
		{
			name:        "sequence root",
			input:       "- 1\n- 2\n",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.input)

			if tt.expectError {
				if !errors.Is(err, ErrParse) {
					t.Fatalf("expected ErrParse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.expected, result); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseErrorIdentifiesDocument(t *testing.T) {
	_, err := Parse("a: 1\n---\nb: [\n")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Doc != 1 {
		t.Errorf("expected failing document 1, got %d", parseErr.Doc)
	}
}

func sample() tree.Mapping {
	return tree.Mapping{
		"a": tree.Sequence{tree.Scalar{V: 1}},
		"b": tree.Mapping{1: tree.Scalar{V: "x"}},
	}
}

func TestEncodeJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sample(), FormatJSON); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "{\n  \"a\": [\n    1\n  ],\n  \"b\": {\n    \"1\": \"x\"\n  }\n}\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeYAMLKeepsKeyTypes(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sample(), FormatYAML); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	docs, err := Parse(buf.String())
	if err != nil {
		t.Fatalf("encoded YAML does not parse: %v", err)
	}
	if diff := cmp.Diff([]tree.Mapping{sample()}, docs); diff != "" {
		t.Errorf("YAML output mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeTOML(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sample(), FormatTOML); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if _, err := toml.Decode(buf.String(), &decoded); err != nil {
		t.Fatalf("encoded TOML does not parse: %v\n%s", err, buf.String())
	}
	want := map[string]any{
		"a": []any{int64(1)},
		"b": map[string]any{"1": "x"},
	}
	if diff := cmp.Diff(want, decoded); diff != "" {
		t.Errorf("TOML output mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFormat(t *testing.T) {
	for raw, want := range map[string]Format{"yaml": FormatYAML, "YML": FormatYAML, "json": FormatJSON, " toml ": FormatTOML} {
		got, err := ParseFormat(raw)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
	if err := Encode(&bytes.Buffer{}, tree.Mapping{}, Format("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat from Encode, got %v", err)
	}
}
