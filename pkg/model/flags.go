package model

// Flags is a bitset of named traffic/area flags. Unrecognized flag
// tokens encountered by the parser are dropped (not an error — the flag
// vocabulary is open-ended and new tags are expected to appear in maps
// before the kernel knows about them).
type Flags uint32

const (
	FlagClosed Flags = 1 << iota
	FlagRestricted
	FlagRequiresStop
	FlagRequiresYield
	FlagPit
	FlagSafeZone
	FlagHazard
	FlagSlowZone
)

var flagNames = map[string]Flags{
	"closed":       FlagClosed,
	"restricted":   FlagRestricted,
	"stop":         FlagRequiresStop,
	"requiresstop": FlagRequiresStop,
	"yield":        FlagRequiresYield,
	"requiresyield": FlagRequiresYield,
	"pit":          FlagPit,
	"safe":         FlagSafeZone,
	"safezone":     FlagSafeZone,
	"hazard":       FlagHazard,
	"slow":         FlagSlowZone,
	"slowzone":     FlagSlowZone,
}

// LookupFlag resolves a lowercase flag token to its bit, if known.
func LookupFlag(token string) (Flags, bool) {
	f, ok := flagNames[token]
	return f, ok
}

// Has reports whether the flag set contains f.
func (fl Flags) Has(f Flags) bool { return fl&f != 0 }

// With returns a copy of fl with f set.
func (fl Flags) With(f Flags) Flags { return fl | f }

// canonicalFlagTokens lists the one preferred spelling per bit, in a
// fixed order, for serialization.
var canonicalFlagTokens = []struct {
	bit   Flags
	token string
}{
	{FlagClosed, "closed"},
	{FlagRestricted, "restricted"},
	{FlagRequiresStop, "stop"},
	{FlagRequiresYield, "yield"},
	{FlagPit, "pit"},
	{FlagSafeZone, "safe"},
	{FlagHazard, "hazard"},
	{FlagSlowZone, "slow"},
}

// Tokens returns the canonical comma-list spelling of every bit set in
// fl, in a fixed order, for round-tripping through the canonical writer.
func (fl Flags) Tokens() []string {
	var out []string
	for _, c := range canonicalFlagTokens {
		if fl.Has(c.bit) {
			out = append(out, c.token)
		}
	}
	return out
}
