// Package folio converts web-published articles and books into typeset
// documents. It fetches HTML pages, classifies a root page as a single
// article or a multi-chapter book, extracts structured text including
// footnotes and verse, and assembles the result into one document that is
// serialized for an external typesetting engine.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, latex/).
package folio
