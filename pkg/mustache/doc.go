/*
Package mustache implements the Mustache template language: a logic-light
templating syntax driven by delimited tags embedded in plain text.

Templates are parsed into a nested token tree and rendered against a layered
view context. The package supports variables with dotted-path resolution and
context-chain fallback, escaped and raw interpolation, conditional and
iterating sections, inverted sections, higher-order sections (lambdas),
partials with indentation handling, comments, and in-template delimiter
changes. Parsed templates are cached per engine; the cache can be replaced
or disabled.

Parsing and rendering are synchronous and perform no I/O; partial templates
are supplied in memory, either as a map or through a lookup function.
*/
package mustache
