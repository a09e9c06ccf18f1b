package mustache

import "strings"

// Tags is a delimiter pair bounding the tags of a template.
type Tags struct {
	Open  string
	Close string
}

// DefaultTags is the delimiter pair used when none is configured.
var DefaultTags = Tags{Open: "{{", Close: "}}"}

// Engine parses and renders Mustache templates. It owns a parse cache and
// the default delimiters and escape function applied to every call; both
// can be overridden per call with Options. The zero configuration produced
// by New matches the language defaults: {{ }} delimiters, HTML escaping,
// and an unbounded in-memory cache.
//
// An Engine is safe for concurrent use as long as its TemplateCache is;
// the default cache is synchronized.
type Engine struct {
	cache  TemplateCache
	tags   Tags
	escape EscapeFunc
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*Engine)

// WithCache replaces the default in-memory parse cache. A nil cache
// disables caching entirely; every parse then re-tokenizes.
func WithCache(cache TemplateCache) EngineOption {
	return func(e *Engine) { e.cache = cache }
}

// WithDefaultTags sets the delimiter pair used when a call supplies none.
func WithDefaultTags(tags Tags) EngineOption {
	return func(e *Engine) { e.tags = tags }
}

// WithDefaultEscape sets the escape function used when a call supplies
// none. A nil fn restores EscapeHTML.
func WithDefaultEscape(fn EscapeFunc) EngineOption {
	return func(e *Engine) { e.escape = fn }
}

// New returns an Engine with the default configuration, adjusted by opts.
func New(opts ...EngineOption) *Engine {
	e := &Engine{cache: newMemoryCache(), tags: DefaultTags}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Option adjusts a single Parse or Render call.
type Option func(*renderConfig)

// WithTags overrides the delimiter pair for one call.
func WithTags(tags Tags) Option {
	return func(cfg *renderConfig) { cfg.tags = tags }
}

// WithEscape overrides the escape function for one call. Note that the
// numeric escaping bypass is reserved for the default escaper: passing any
// other function here escapes numbers like every other value, even if the
// function's behavior is identical to EscapeHTML's.
func WithEscape(fn EscapeFunc) Option {
	return func(cfg *renderConfig) { cfg.escape = fn }
}

// WithPartials supplies the partial templates for one call.
func WithPartials(p Partials) Option {
	return func(cfg *renderConfig) { cfg.partials = p }
}

func (e *Engine) config(opts []Option) renderConfig {
	cfg := renderConfig{tags: e.tags, escape: e.escape}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// parse tokenizes through the cache. With caching enabled, repeated parses
// of the same (template, tags) pair return the identical cached tree.
func (e *Engine) parse(template string, tags Tags) ([]*Token, error) {
	if e.cache == nil {
		return parseTemplate(template, tags)
	}
	key := cacheKey(template, tags)
	if tokens, ok := e.cache.Get(key); ok {
		return tokens, nil
	}
	tokens, err := parseTemplate(template, tags)
	if err != nil {
		return nil, err
	}
	e.cache.Set(key, tokens)
	return tokens, nil
}

// Parse tokenizes template into a nested token tree, consulting the cache.
// It fails with a *SyntaxError on unclosed tags, unbalanced or mismatched
// sections, and malformed delimiter-change tags. The returned tree may be
// shared with the cache and must be treated as read-only.
func (e *Engine) Parse(template string, opts ...Option) ([]*Token, error) {
	cfg := e.config(opts)
	return e.parse(template, cfg.tags)
}

// Render parses template (through the cache) and renders it against view.
func (e *Engine) Render(template string, view any, opts ...Option) (string, error) {
	cfg := e.config(opts)
	return e.render(template, NewContext(view), &cfg)
}

// RenderTokens renders an already parsed token tree against view. original
// must be the template text tokens were parsed from; it may be empty only
// for trees without higher-order sections, which otherwise fail with
// ErrNoTemplate.
func (e *Engine) RenderTokens(tokens []*Token, view any, original string, opts ...Option) (string, error) {
	cfg := e.config(opts)
	var sb strings.Builder
	if err := e.renderTokens(&sb, tokens, NewContext(view), original, &cfg); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ClearCache empties the engine's parse cache. It is a no-op when caching
// is disabled.
func (e *Engine) ClearCache() {
	if e.cache != nil {
		e.cache.Clear()
	}
}

// defaultEngine backs the package-level facade, giving the process one
// shared parse cache.
var defaultEngine = New()

// Parse tokenizes template using the package default engine.
func Parse(template string, opts ...Option) ([]*Token, error) {
	return defaultEngine.Parse(template, opts...)
}

// Render renders template against view using the package default engine.
func Render(template string, view any, opts ...Option) (string, error) {
	return defaultEngine.Render(template, view, opts...)
}

// ClearCache empties the package default engine's parse cache.
func ClearCache() {
	defaultEngine.ClearCache()
}
