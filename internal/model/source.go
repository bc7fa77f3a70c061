// Package model defines the data structures shared by the amalgamation passes.
package model

import "path/filepath"

// Path represents a file system path.
type Path string

// Base returns the last element of the path.
func (p Path) Base() string {
	return filepath.Base(string(p))
}

// PassKind identifies which of the two generated artifacts a pass produces.
type PassKind int

const (
	// PassInterface merges public headers into the interface artifact.
	PassInterface PassKind = iota
	// PassImplementation merges implementation files into the implementation artifact.
	PassImplementation
)

func (k PassKind) String() string {
	switch k {
	case PassInterface:
		return "interface"
	case PassImplementation:
		return "implementation"
	default:
		return "unknown"
	}
}

// Target is an ordered list of input files and the artifact they are merged into.
// The order of Files is the order of the output.
type Target struct {
	Kind   PassKind
	Output Path
	Files  []Path
	// Include is the name written into the synthetic include directive that
	// replaces the first guard of the implementation pass.
	Include string
}

// Markers are the line prefixes recognized while merging.
type Markers struct {
	BannerPrefix string
	LocalInclude string
	Guard        string
}

// DefaultMarkers returns the C/C++ markers.
func DefaultMarkers() Markers {
	return Markers{
		BannerPrefix: "//",
		LocalInclude: `#include "`,
		Guard:        "#pragma once",
	}
}

// Plan is everything an invocation needs: the canonical banner, the markers
// and both targets.
type Plan struct {
	Banner         string
	Markers        Markers
	Interface      Target
	Implementation Target
}

// Targets returns both targets, interface first.
func (p Plan) Targets() []Target {
	return []Target{p.Interface, p.Implementation}
}
