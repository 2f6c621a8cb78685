// Package export renders a parsed track map back out: as the canonical
// .tsm text form for round-trip checks, as JSON for tooling, and as SVG
// for a quick top-down debug view.
package export
