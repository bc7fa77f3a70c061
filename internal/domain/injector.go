package domain

import m "amalgam.dev/pkg/amalgam/internal/model"

// Injector owns the emission state of one pass: whether the canonical banner
// and the guard have been written to the artifact yet. Both flags only move
// from false to true; a new pass gets a new Injector.
type Injector struct {
	kind    m.PassKind
	banner  string
	include string

	bannerEmitted bool
	guardEmitted  bool
}

// NewInjector returns the injector for a pass of the given kind. include is
// the artifact name used by the implementation pass in place of the guard.
func NewInjector(kind m.PassKind, banner, include string) *Injector {
	return &Injector{
		kind:    kind,
		banner:  banner,
		include: include,
	}
}

// ClaimBanner returns the canonical banner the first time it is called and
// false on every later call.
func (i *Injector) ClaimBanner() (string, bool) {
	if i.bannerEmitted {
		return "", false
	}

	i.bannerEmitted = true

	return i.banner, true
}

// SubstituteGuard returns what to write for a guard line and what was done
// with it. Only the first guard of a pass produces output: itself in the
// interface pass, an include of the interface artifact in the implementation
// pass.
func (i *Injector) SubstituteGuard(line string) (string, DirectiveAction) {
	if i.guardEmitted {
		return "", ActionDropGuard
	}

	i.guardEmitted = true

	if i.kind == m.PassImplementation {
		return IncludeDirective(i.include), ActionReplaceGuard
	}

	return line, ActionKeepGuard
}

// BannerEmitted reports whether a non-empty banner was written.
func (i *Injector) BannerEmitted() bool {
	return i.bannerEmitted && i.banner != ""
}

// GuardEmitted reports whether a guard (or its substitute) was written.
func (i *Injector) GuardEmitted() bool {
	return i.guardEmitted
}

// IncludeDirective is the line that includes the named artifact.
func IncludeDirective(name string) string {
	return `#include "` + name + "\"\n"
}
