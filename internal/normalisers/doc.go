// Package normalisers provides the registry that turns raw uploaded or
// fetched bytes into plain text. Each normaliser in a subpackage knows how
// to extract text from specific MIME types; the registry picks the one
// with the highest priority for a document.
//
// Normalisers are registered with the Registry at startup.
package normalisers
