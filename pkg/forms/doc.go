// Package forms implements the add, edit and delete forms for nodes and edges.
//
// A [Controller] validates user input and only then calls into the
// diagram.Store. Every rejected submission returns a coded *errors.Error and
// leaves the store untouched:
//
//	EMPTY_LABEL        node label is blank
//	MISSING_ENDPOINT   edge source or target not chosen
//	SELF_LOOP          edge source equals target
//	INVALID_EDGE_TYPE  edge type outside the known styles
//	NO_SELECTION       edit or delete without a chosen entity
//	NOT_FOUND          chosen entity or endpoint no longer exists
//
// Deletes and clear-all are gated by a [Confirmer]. A declined confirmation
// returns CANCELLED, which callers show as a notice rather than a failure.
package forms
