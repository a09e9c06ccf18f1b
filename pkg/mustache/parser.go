package mustache

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SyntaxError reports a malformed template. Pos is the byte offset in the
// template source at which the problem was detected.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("mustache: %s at offset %d", e.Msg, e.Pos)
}

var (
	tagRe    = regexp.MustCompile(`#|\^|/|>|\{|&|=|!`)
	whiteRe  = regexp.MustCompile(`\s*`)
	equalsRe = regexp.MustCompile(`\s*=`)
	curlyRe  = regexp.MustCompile(`\s*\}`)
)

// delimiters holds the tag-matching patterns compiled for one delimiter
// pair. A delimiter-change tag swaps these mid-parse.
type delimiters struct {
	tags           Tags
	openingTagRe   *regexp.Regexp
	closingTagRe   *regexp.Regexp
	closingCurlyRe *regexp.Regexp
}

func compileTags(tags Tags, pos int) (*delimiters, error) {
	if tags.Open == "" || tags.Close == "" {
		return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("invalid tags %q %q", tags.Open, tags.Close)}
	}
	return &delimiters{
		tags:           tags,
		openingTagRe:   regexp.MustCompile(regexp.QuoteMeta(tags.Open) + `\s*`),
		closingTagRe:   regexp.MustCompile(`\s*` + regexp.QuoteMeta(tags.Close)),
		closingCurlyRe: regexp.MustCompile(`\s*` + regexp.QuoteMeta("}"+tags.Close)),
	}, nil
}

// parseDelimSpec interprets the body of a delimiter-change tag, e.g. the
// "<% %>" of {{=<% %>=}}.
func parseDelimSpec(value string, pos int) (Tags, error) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return Tags{}, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("invalid delimiter tag %q", value)}
	}
	return Tags{Open: parts[0], Close: parts[1]}, nil
}

func kindForSigil(sigil string) TokenKind {
	switch sigil {
	case "#":
		return TokenSection
	case "^":
		return TokenInverted
	case "/":
		return tokenSectionClose
	case ">":
		return TokenPartial
	case "{", "&":
		return TokenUnescaped
	case "=":
		return TokenSetDelims
	case "!":
		return TokenComment
	}
	return TokenVariable
}

// parseTemplate tokenizes template into a nested token tree. It either
// fully succeeds or fails with a *SyntaxError; no partial token list is
// ever returned.
func parseTemplate(template string, tags Tags) ([]*Token, error) {
	dl, err := compileTags(tags, 0)
	if err != nil {
		return nil, err
	}

	var (
		tokens   []*Token // flat stream; stripped slots become nil
		spaces   []int    // indices of whitespace text tokens on the current line
		sections []*Token // open section stack

		hasTag   bool // the current line contains at least one tag
		nonSpace bool // the current line contains non-whitespace text

		indentation     string // line prefix recorded for partial indenting
		tagIndex        int
		lineHasNonSpace bool
	)

	// stripSpace removes the whitespace-only text tokens of a line that
	// holds nothing but block, partial, comment or delimiter tags, so that
	// standalone tags do not leave blank lines in the output.
	stripSpace := func() {
		if hasTag && !nonSpace {
			for _, i := range spaces {
				tokens[i] = nil
			}
		}
		spaces = spaces[:0]
		hasTag = false
		nonSpace = false
	}

	s := newScanner(template)
	for !s.eos() {
		start := s.pos

		// Free text up to the next opening delimiter is recorded one rune
		// per token so the line bookkeeping above can strip standalone tag
		// lines after the fact.
		for _, r := range s.scanUntil(dl.openingTagRe) {
			width := utf8.RuneLen(r)
			if unicode.IsSpace(r) {
				spaces = append(spaces, len(tokens))
				indentation += string(r)
			} else {
				nonSpace = true
				lineHasNonSpace = true
				indentation += " "
			}
			tokens = append(tokens, &Token{Kind: TokenText, Value: string(r), Start: start, End: start + width})
			start += width
			if r == '\n' {
				stripSpace()
				indentation = ""
				tagIndex = 0
				lineHasNonSpace = false
			}
		}

		if s.scan(dl.openingTagRe) == "" {
			break
		}
		hasTag = true

		sigil := s.scan(tagRe)
		s.scan(whiteRe)

		var value string
		switch sigil {
		case "=":
			value = s.scanUntil(equalsRe)
			s.scan(equalsRe)
			s.scanUntil(dl.closingTagRe)
		case "{":
			value = s.scanUntil(dl.closingCurlyRe)
			s.scan(curlyRe)
			s.scanUntil(dl.closingTagRe)
		default:
			value = s.scanUntil(dl.closingTagRe)
		}

		if s.scan(dl.closingTagRe) == "" {
			return nil, &SyntaxError{Pos: s.pos, Msg: "unclosed tag"}
		}

		kind := kindForSigil(sigil)
		token := &Token{Kind: kind, Value: value, Start: start, End: s.pos}
		if kind == TokenPartial {
			token.Indent = indentation
			token.TagIndex = tagIndex
			token.LineHasNonSpace = lineHasNonSpace
		}
		tagIndex++
		tokens = append(tokens, token)

		switch kind {
		case TokenSection, TokenInverted:
			sections = append(sections, token)
		case tokenSectionClose:
			if len(sections) == 0 {
				return nil, &SyntaxError{Pos: start, Msg: fmt.Sprintf("unopened section %q", value)}
			}
			open := sections[len(sections)-1]
			sections = sections[:len(sections)-1]
			if open.Value != value {
				return nil, &SyntaxError{Pos: start, Msg: fmt.Sprintf("unclosed section %q", open.Value)}
			}
		case TokenVariable, TokenUnescaped:
			// Variable tags keep their surrounding whitespace.
			nonSpace = true
		case TokenSetDelims:
			next, err := parseDelimSpec(value, start)
			if err != nil {
				return nil, err
			}
			if dl, err = compileTags(next, start); err != nil {
				return nil, err
			}
		}
	}
	stripSpace()

	if len(sections) > 0 {
		open := sections[len(sections)-1]
		return nil, &SyntaxError{Pos: s.pos, Msg: fmt.Sprintf("unclosed section %q", open.Value)}
	}

	return nestTokens(squashTokens(tokens)), nil
}

// squashTokens drops stripped slots and merges adjacent free-text tokens,
// concatenating their values and extending the end offset.
func squashTokens(tokens []*Token) []*Token {
	squashed := make([]*Token, 0, len(tokens))
	var last *Token
	for _, t := range tokens {
		if t == nil {
			continue
		}
		if t.Kind == TokenText && last != nil && last.Kind == TokenText {
			last.Value += t.Value
			last.End = t.End
			continue
		}
		squashed = append(squashed, t)
		last = t
	}
	return squashed
}

// nestTokens folds the flat token stream into a tree: section bodies move
// into their opening token's Children, and closing tags record SectionEnd.
// Comment and delimiter-change tokens carry no output and are dropped.
// Section balance was already verified during scanning.
func nestTokens(tokens []*Token) []*Token {
	nested := make([]*Token, 0, len(tokens))
	collector := &nested
	var sections []*Token

	for _, t := range tokens {
		switch t.Kind {
		case TokenSection, TokenInverted:
			*collector = append(*collector, t)
			sections = append(sections, t)
			collector = &t.Children
		case tokenSectionClose:
			section := sections[len(sections)-1]
			sections = sections[:len(sections)-1]
			section.SectionEnd = t.Start
			if len(sections) > 0 {
				collector = &sections[len(sections)-1].Children
			} else {
				collector = &nested
			}
		case TokenComment, TokenSetDelims:
			// No output.
		default:
			*collector = append(*collector, t)
		}
	}

	return nested
}
