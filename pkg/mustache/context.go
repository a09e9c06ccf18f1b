package mustache

import "strings"

// Context is one frame of the view lookup chain. Each frame wraps a single
// view value, an optional parent frame, and a private memo of names it has
// already resolved, hits and misses alike. Frames are immutable once
// created apart from the memo; Push returns a new child frame.
type Context struct {
	view   any
	parent *Context
	memo   map[string]any
}

// NewContext returns a root frame wrapping view.
func NewContext(view any) *Context {
	return &Context{view: view, memo: make(map[string]any)}
}

// View returns the value this frame wraps.
func (c *Context) View() any {
	return c.view
}

// Push returns a child frame wrapping view, with the receiver as parent.
// The receiver is not modified; the child starts with an empty memo.
func (c *Context) Push(view any) *Context {
	return &Context{view: view, parent: c, memo: make(map[string]any)}
}

// Lookup resolves name against this frame's view, walking up through parent
// frames until one of them is a hit. A hit whose value is nil is still a
// hit and does not fall through. The result, nil included, is memoized on
// the frame the lookup started from, so repeated lookups of the same name
// from the same frame skip the walk.
//
// Dotted names descend segment by segment from each frame's view, and the
// frame is a hit only if the final segment exists as a property of whatever
// the preceding segments resolved to. The name "." resolves to the frame's
// own view. Plain names hit only structured views (maps and structs) that
// own the property; primitives never match them.
//
// If the resolved value is an Accessor, it is invoked with the originating
// frame's view and its return value becomes the result.
func (c *Context) Lookup(name string) any {
	value, cached := c.memo[name]
	if !cached {
		for frame := c; frame != nil; frame = frame.parent {
			var resolved any
			var hit bool
			switch {
			case strings.Index(name, ".") > 0:
				resolved, hit = dottedLookup(frame.view, strings.Split(name, "."))
			case name == ".":
				resolved, hit = frame.view, true
			default:
				resolved, hit = property(frame.view, name)
			}
			if hit {
				value = resolved
				break
			}
		}
		c.memo[name] = value
	}
	if result, ok := callAccessor(value, c.view); ok {
		return result
	}
	return value
}

// dottedLookup descends a dotted path segment by segment. Intermediate
// reads may pass through primitives (a string's "length", for instance),
// but the hit decision rests solely on whether the final segment exists on
// whatever the second-to-last segment resolved to.
func dottedLookup(view any, names []string) (any, bool) {
	var hit bool
	value := view
	for i := 0; value != nil && i < len(names); i++ {
		if i == len(names)-1 {
			_, ok := property(value, names[i])
			if !ok {
				_, ok = primitiveProperty(value, names[i])
			}
			hit = ok
		}
		next, ok := property(value, names[i])
		if !ok {
			next, _ = primitiveProperty(value, names[i])
		}
		value = next
	}
	return value, hit
}
