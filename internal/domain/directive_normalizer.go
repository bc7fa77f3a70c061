package domain

import "strings"

// DirectiveAction is what the normalizer did with a line.
type DirectiveAction int

const (
	// ActionPassthrough forwards the line unchanged.
	ActionPassthrough DirectiveAction = iota
	// ActionDropInclude discards a local include.
	ActionDropInclude
	// ActionKeepGuard forwards the first guard of an interface pass.
	ActionKeepGuard
	// ActionReplaceGuard writes the include of the interface artifact instead of the guard.
	ActionReplaceGuard
	// ActionDropGuard discards a repeated guard.
	ActionDropGuard
)

// DirectiveNormalizer handles local includes and the compile-once guard.
type DirectiveNormalizer struct {
	localInclude string
	guard        string
}

// NewDirectiveNormalizer returns a normalizer for the given markers. An empty
// marker disables the corresponding rule.
func NewDirectiveNormalizer(localInclude, guard string) *DirectiveNormalizer {
	return &DirectiveNormalizer{
		localInclude: localInclude,
		guard:        guard,
	}
}

// Normalize returns the text to write for line (empty when dropped) and the
// action taken.
func (n *DirectiveNormalizer) Normalize(line string, injector *Injector) (string, DirectiveAction) {
	if n.localInclude != "" && strings.HasPrefix(line, n.localInclude) {
		return "", ActionDropInclude
	}

	if n.guard == "" || !strings.HasPrefix(line, n.guard) {
		return line, ActionPassthrough
	}

	return injector.SubstituteGuard(line)
}
