// Package partials provides a SQLite-backed store for named Mustache
// partial templates. A Store satisfies mustache.Partials, so a template
// collection kept in a database can be handed straight to a render call.
package partials
