package model

import "github.com/bnomei/nereid/internal/ids"

// XRefStatus is the computed reachability state of a cross-reference.
type XRefStatus int

const (
	// StatusOk means both endpoints resolve.
	StatusOk XRefStatus = iota
	// StatusDanglingFrom means the From endpoint does not resolve.
	StatusDanglingFrom
	// StatusDanglingTo means the To endpoint does not resolve.
	StatusDanglingTo
	// StatusDanglingBoth means neither endpoint resolves.
	StatusDanglingBoth
)

// StatusFromFlags derives an XRefStatus from the existence flags of the two
// endpoints, making status a pure function of those flags as required.
func StatusFromFlags(fromMissing, toMissing bool) XRefStatus {
	switch {
	case fromMissing && toMissing:
		return StatusDanglingBoth
	case fromMissing:
		return StatusDanglingFrom
	case toMissing:
		return StatusDanglingTo
	default:
		return StatusOk
	}
}

func (s XRefStatus) String() string {
	switch s {
	case StatusOk:
		return "ok"
	case StatusDanglingFrom:
		return "dangling_from"
	case StatusDanglingTo:
		return "dangling_to"
	case StatusDanglingBoth:
		return "dangling_both"
	default:
		return "ok"
	}
}

// ParseXRefStatus parses the wire-form status string. Unknown values are
// reported as an error by the caller; this just performs the mapping.
func ParseXRefStatus(s string) (XRefStatus, bool) {
	switch s {
	case "ok":
		return StatusOk, true
	case "dangling_from":
		return StatusDanglingFrom, true
	case "dangling_to":
		return StatusDanglingTo, true
	case "dangling_both":
		return StatusDanglingBoth, true
	default:
		return StatusOk, false
	}
}

// XRef is a typed, labeled link between two objects anywhere in the session.
type XRef struct {
	XRefID ids.XRefId
	From   ids.ObjectRef
	To     ids.ObjectRef
	Kind   string
	Label  *string
	Status XRefStatus
}
