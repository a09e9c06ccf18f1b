package mustache

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, template string) []*Token {
	t.Helper()
	tokens, err := parseTemplate(template, DefaultTags)
	if err != nil {
		t.Fatalf("parseTemplate(%q) error = %v", template, err)
	}
	return tokens
}

func TestParseBasic(t *testing.T) {
	got := mustParse(t, "Hello, {{name}}!")
	want := []*Token{
		{Kind: TokenText, Value: "Hello, ", Start: 0, End: 7},
		{Kind: TokenVariable, Value: "name", Start: 7, End: 15},
		{Kind: TokenText, Value: "!", Start: 15, End: 16},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTagVariants(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []*Token
	}{
		{
			name:     "padded name",
			template: "{{ name }}",
			want:     []*Token{{Kind: TokenVariable, Value: "name", Start: 0, End: 10}},
		},
		{
			name:     "triple brace",
			template: "{{{v}}}",
			want:     []*Token{{Kind: TokenUnescaped, Value: "v", Start: 0, End: 7}},
		},
		{
			name:     "ampersand",
			template: "{{& v }}",
			want:     []*Token{{Kind: TokenUnescaped, Value: "v", Start: 0, End: 8}},
		},
		{
			name:     "partial",
			template: "{{>p}}",
			want:     []*Token{{Kind: TokenPartial, Value: "p", Start: 0, End: 6}},
		},
		{
			name:     "comment dropped",
			template: "a{{! ignore me }}b",
			want: []*Token{
				{Kind: TokenText, Value: "a", Start: 0, End: 1},
				{Kind: TokenText, Value: "b", Start: 17, End: 18},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.template)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("token tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseNestedSections(t *testing.T) {
	got := mustParse(t, "{{#a}}{{#b}}x{{/b}}{{/a}}")
	want := []*Token{
		{
			Kind: TokenSection, Value: "a", Start: 0, End: 6, SectionEnd: 19,
			Children: []*Token{
				{
					Kind: TokenSection, Value: "b", Start: 6, End: 12, SectionEnd: 13,
					Children: []*Token{
						{Kind: TokenText, Value: "x", Start: 12, End: 13},
					},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStandaloneSectionLine(t *testing.T) {
	// A line holding only section tags must not leave a blank line behind.
	got := mustParse(t, "a\n{{#a}}{{/a}}\nb")
	want := []*Token{
		{Kind: TokenText, Value: "a\n", Start: 0, End: 2},
		{Kind: TokenSection, Value: "a", Start: 2, End: 8, SectionEnd: 8},
		{Kind: TokenText, Value: "b", Start: 15, End: 16},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStandaloneComment(t *testing.T) {
	got := mustParse(t, "x\n  {{! hi }}\ny")
	want := []*Token{
		{Kind: TokenText, Value: "x\n", Start: 0, End: 2},
		{Kind: TokenText, Value: "y", Start: 14, End: 15},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseVariableKeepsWhitespace(t *testing.T) {
	// Variable tags are not standalone; their line keeps its whitespace.
	got := mustParse(t, "  {{v}}\n")
	want := []*Token{
		{Kind: TokenText, Value: "  ", Start: 0, End: 2},
		{Kind: TokenVariable, Value: "v", Start: 2, End: 7},
		{Kind: TokenText, Value: "\n", Start: 7, End: 8},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token tree mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDelimiterChange(t *testing.T) {
	got := mustParse(t, "{{=<% %>=}}<%x%>")
	want := []*Token{
		{Kind: TokenVariable, Value: "x", Start: 11, End: 16},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("token tree mismatch (-want +got):\n%s", diff)
	}

	// Delimiters may change more than once within one template.
	got = mustParse(t, "{{a}}{{=<% %>=}}<%b%><%={{ }}=%>{{c}}")
	var names []string
	for _, tok := range got {
		if tok.Kind == TokenVariable {
			names = append(names, tok.Value)
		}
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Errorf("variables after delimiter changes (-want +got):\n%s", diff)
	}
}

func TestParsePartialLineInfo(t *testing.T) {
	tests := []struct {
		name            string
		template        string
		indent          string
		tagIndex        int
		lineHasNonSpace bool
	}{
		{"standalone indented", "x\n  {{>p}}\n", "  ", 0, false},
		{"inline after text", "text {{>p}}", "     ", 0, true},
		{"second tag on line", "{{a}}{{>p}}", "", 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := mustParse(t, tt.template)
			var partial *Token
			for _, tok := range tokens {
				if tok.Kind == TokenPartial {
					partial = tok
				}
			}
			if partial == nil {
				t.Fatal("no partial token in parse result")
			}
			if partial.Indent != tt.indent {
				t.Errorf("Indent = %q, want %q", partial.Indent, tt.indent)
			}
			if partial.TagIndex != tt.tagIndex {
				t.Errorf("TagIndex = %d, want %d", partial.TagIndex, tt.tagIndex)
			}
			if partial.LineHasNonSpace != tt.lineHasNonSpace {
				t.Errorf("LineHasNonSpace = %v, want %v", partial.LineHasNonSpace, tt.lineHasNonSpace)
			}
		})
	}
}

func TestParseOffsets(t *testing.T) {
	// Without standalone stripping in play, top-level offsets tile the
	// source exactly, and a section's body is recoverable from its
	// offsets.
	template := "abc {{x}} {{#s}}body {{y}}{{/s}} def"
	tokens := mustParse(t, template)

	pos := 0
	for _, tok := range tokens {
		if tok.Start != pos {
			t.Errorf("token %v starts at %d, want %d", tok.Kind, tok.Start, pos)
		}
		if tok.Kind == TokenText && template[tok.Start:tok.End] != tok.Value {
			t.Errorf("text token %q does not match source slice %q", tok.Value, template[tok.Start:tok.End])
		}
		if tok.Kind == TokenSection || tok.Kind == TokenInverted {
			if got := template[tok.End:tok.SectionEnd]; got != "body {{y}}" {
				t.Errorf("section body slice = %q, want %q", got, "body {{y}}")
			}
			// Skip past the closing tag; its end is not recorded on the
			// tree, so locate it from the source.
			pos = tok.SectionEnd + len("{{/s}}")
			continue
		}
		pos = tok.End
	}
	if pos != len(template) {
		t.Errorf("tokens cover %d bytes, want %d", pos, len(template))
	}
}

func TestParseDeterministic(t *testing.T) {
	template := "{{#a}}{{b}}{{/a}}{{^c}}d{{/c}}{{>e}}"
	first, err := parseTemplate(template, DefaultTags)
	if err != nil {
		t.Fatalf("parseTemplate() error = %v", err)
	}
	second, err := parseTemplate(template, DefaultTags)
	if err != nil {
		t.Fatalf("parseTemplate() error = %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated parses differ (-first +second):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantPos  int
		wantMsg  string
	}{
		{"unclosed tag", "{{name", 6, "unclosed tag"},
		{"unclosed section", "{{#a}}x", 7, `unclosed section "a"`},
		{"unopened section", "{{/a}}", 0, `unopened section "a"`},
		{"mismatched close", "{{#a}}{{/b}}{{/a}}", 6, `unclosed section "a"`},
		{"malformed delimiter tag", "{{=x=}}", 0, `invalid delimiter tag "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := parseTemplate(tt.template, DefaultTags)
			if err == nil {
				t.Fatalf("parseTemplate(%q) succeeded, want error", tt.template)
			}
			if tokens != nil {
				t.Errorf("parseTemplate(%q) returned tokens alongside an error", tt.template)
			}
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("error = %v, want *SyntaxError", err)
			}
			if syntaxErr.Pos != tt.wantPos {
				t.Errorf("Pos = %d, want %d", syntaxErr.Pos, tt.wantPos)
			}
			if !strings.Contains(syntaxErr.Msg, tt.wantMsg) {
				t.Errorf("Msg = %q, want it to contain %q", syntaxErr.Msg, tt.wantMsg)
			}
		})
	}
}

func TestParseInvalidTags(t *testing.T) {
	if _, err := parseTemplate("x", Tags{Open: "", Close: "}}"}); err == nil {
		t.Error("empty opening delimiter accepted")
	}
	if _, err := parseTemplate("x", Tags{Open: "{{", Close: ""}); err == nil {
		t.Error("empty closing delimiter accepted")
	}
}
