package mustache

// TokenKind discriminates the variants of a parsed Token.
type TokenKind int

const (
	// TokenText is a run of literal template text.
	TokenText TokenKind = iota
	// TokenVariable is an escaped interpolation tag, {{name}}.
	TokenVariable
	// TokenUnescaped is a raw interpolation tag, {{{name}}} or {{&name}}.
	TokenUnescaped
	// TokenSection is a block tag pair, {{#name}}...{{/name}}.
	TokenSection
	// TokenInverted is an inverted block tag pair, {{^name}}...{{/name}}.
	TokenInverted
	// TokenPartial is a partial reference, {{>name}}.
	TokenPartial
	// TokenComment is a comment tag, {{!...}}. Comments never appear in a
	// nested token tree; the kind exists for the flat parse stream.
	TokenComment
	// TokenSetDelims is a delimiter-change tag, {{=<% %>=}}. Like comments,
	// these are consumed during parsing and never appear in a nested tree.
	TokenSetDelims

	// tokenSectionClose marks a {{/name}} tag in the flat token stream. It
	// never survives nesting, so it has no exported counterpart.
	tokenSectionClose
)

// String returns a short name for the kind, for error messages and tests.
func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenVariable:
		return "variable"
	case TokenUnescaped:
		return "unescaped"
	case TokenSection:
		return "section"
	case TokenInverted:
		return "inverted"
	case TokenPartial:
		return "partial"
	case TokenComment:
		return "comment"
	case TokenSetDelims:
		return "set-delims"
	case tokenSectionClose:
		return "section-close"
	}
	return "unknown"
}

// Token is a single node of a parsed template. The renderer treats tokens
// as read-only; a cached token tree is shared between renders.
type Token struct {
	Kind TokenKind
	// Value is the raw tag body: a variable path, section or partial name,
	// or the literal text of a TokenText.
	Value string
	// Start and End delimit the token in the template source: Start is the
	// offset of the token's first byte, End the first byte after it.
	Start int
	End   int

	// Children holds the body of a TokenSection or TokenInverted token and
	// is nil for every other kind.
	Children []*Token
	// SectionEnd is the offset at which a section's closing tag begins, so
	// that [End, SectionEnd) is the raw body text. Section kinds only.
	SectionEnd int

	// Indent is the leading whitespace of the line the tag sits on, with
	// spaces substituted for any non-whitespace characters. Partials only.
	Indent string
	// TagIndex counts the tags appearing earlier on the same line.
	// Partials only.
	TagIndex int
	// LineHasNonSpace records whether non-whitespace text precedes the tag
	// on its line. Partials only.
	LineHasNonSpace bool
}
