package mustache

import (
	"errors"
	"reflect"
	"strings"
)

// ErrNoTemplate is returned when a higher-order section is rendered without
// access to the original template text. Callers rendering pre-parsed token
// trees must supply the source string whenever the template contains
// lambdas.
var ErrNoTemplate = errors.New("mustache: cannot render a higher-order section without the original template")

// renderConfig is the effective configuration of a single render call:
// engine defaults overlaid with per-call options.
type renderConfig struct {
	tags     Tags
	escape   EscapeFunc
	partials Partials
}

// render runs the full pipeline for one template string: parse through the
// cache, then walk the tree. Lambdas and partials re-enter here.
func (e *Engine) render(template string, ctx *Context, cfg *renderConfig) (string, error) {
	tokens, err := e.parse(template, cfg.tags)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := e.renderTokens(&sb, tokens, ctx, template, cfg); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// renderTokens walks a token tree in document order, dispatching on kind.
// original is the template text the tokens were parsed from; section tokens
// index into it to recover their raw body for lambdas.
func (e *Engine) renderTokens(sb *strings.Builder, tokens []*Token, ctx *Context, original string, cfg *renderConfig) error {
	for _, t := range tokens {
		var err error
		switch t.Kind {
		case TokenText:
			sb.WriteString(t.Value)
		case TokenVariable:
			e.writeVariable(sb, t, ctx, cfg, true)
		case TokenUnescaped:
			e.writeVariable(sb, t, ctx, cfg, false)
		case TokenSection:
			err = e.renderSection(sb, t, ctx, original, cfg)
		case TokenInverted:
			err = e.renderInverted(sb, t, ctx, original, cfg)
		case TokenPartial:
			err = e.renderPartial(sb, t, ctx, cfg)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// writeVariable emits an interpolation tag. A name that resolves to no
// value contributes nothing. Numbers bypass escaping, but only while the
// default escaper is active.
func (e *Engine) writeVariable(sb *strings.Builder, t *Token, ctx *Context, cfg *renderConfig, escaped bool) {
	value := ctx.Lookup(t.Value)
	if value == nil {
		return
	}
	s := stringify(value)
	if !escaped {
		sb.WriteString(s)
		return
	}
	esc := cfg.escape
	if esc == nil {
		esc = EscapeHTML
	}
	if isNumber(value) && isDefaultEscape(esc) {
		sb.WriteString(s)
		return
	}
	sb.WriteString(esc(s))
}

func (e *Engine) renderSection(sb *strings.Builder, t *Token, ctx *Context, original string, cfg *renderConfig) error {
	value := ctx.Lookup(t.Value)

	if lambda, ok := asLambda(value); ok {
		if original == "" || t.SectionEnd < t.End || t.SectionEnd > len(original) {
			return ErrNoTemplate
		}
		body := original[t.End:t.SectionEnd]
		subRender := func(text string) (string, error) {
			return e.render(text, ctx, cfg)
		}
		out, err := lambda(body, subRender)
		if err != nil {
			return err
		}
		sb.WriteString(out)
		return nil
	}

	if !isTruthy(value) {
		return nil
	}

	rv, _ := indirect(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if err := e.renderTokens(sb, t.Children, ctx.Push(rv.Index(i).Interface()), original, cfg); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map, reflect.Struct, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return e.renderTokens(sb, t.Children, ctx.Push(value), original, cfg)
	}
	// Other truthy values (true, most notably) render the body against the
	// unchanged current context.
	return e.renderTokens(sb, t.Children, ctx, original, cfg)
}

func (e *Engine) renderInverted(sb *strings.Builder, t *Token, ctx *Context, original string, cfg *renderConfig) error {
	if isTruthy(ctx.Lookup(t.Value)) {
		return nil
	}
	return e.renderTokens(sb, t.Children, ctx, original, cfg)
}

func (e *Engine) renderPartial(sb *strings.Builder, t *Token, ctx *Context, cfg *renderConfig) error {
	if cfg.partials == nil {
		return nil
	}
	text, ok := cfg.partials.Resolve(t.Value)
	if !ok {
		// Legacy key format: partial name plus the current closing
		// delimiter. Map collections only.
		if m, isMap := cfg.partials.(PartialMap); isMap {
			text, ok = m[t.Value+cfg.tags.Close]
		}
	}
	if !ok {
		return nil
	}

	indented := text
	if t.TagIndex == 0 && t.Indent != "" {
		indented = indentPartial(text, t.Indent, t.LineHasNonSpace)
	}
	tokens, err := e.parse(indented, cfg.tags)
	if err != nil {
		return err
	}
	// The indented text becomes the original template for any lambdas
	// nested inside the partial.
	return e.renderTokens(sb, tokens, ctx, indented, cfg)
}

// indentPartial prefixes every non-empty line of a partial's body with the
// indentation of the line its tag sat on. The first line is indented only
// when nothing but whitespace preceded the tag on the host line.
func indentPartial(text, indent string, lineHasNonSpace bool) string {
	filtered := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return r
		}
		return -1
	}, indent)
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if len(line) > 0 && (i > 0 || !lineHasNonSpace) {
			lines[i] = filtered + line
		}
	}
	return strings.Join(lines, "\n")
}
