// Package resource decides when logical resources actually get destroyed.
//
// A resource is registered once with a lifetime class and is then checked out
// through reference-counted Ref tokens. When the last token is released the
// resource is not destroyed immediately: it is scheduled for destruction
// after a delay determined by its lifetime class. A resource re-acquired
// before its deadline is rescued, which absorbs churn from rapid
// release/re-acquire cycles within a frame.
//
// Destruction work is rate limited. Each Upkeep call destroys at most a
// configured number of resources; the excess is buffered and drained on
// subsequent calls so a mass expiry never causes an unbounded pause.
//
// The Manager owns destruction timing exclusively. Ref tokens only adjust
// reference counts and never destroy anything themselves.
package resource
