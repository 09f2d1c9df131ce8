// Package domain contains the core data model of Arbor: the widget tree,
// widget kinds (state handlers + transition tables), rendered results,
// page updates and event addresses.
//
// Everything in this package is pure data plus tree bookkeeping. Rendering,
// state dispatch and composition live in the runtime engine; persistence and
// transport live behind ports.
package domain
