package cip

import "github.com/renej-github/etherip/eip"

// Layer is the protocol layer contract from spec.md §4.3. It is an
// alias for eip.Layer: eip sits below cip in the import graph (cip
// depends on eip for the encapsulation header and CPF framing), so the
// interface itself lives there, and cip re-exports the name the spec
// uses for it.
type Layer = eip.Layer
