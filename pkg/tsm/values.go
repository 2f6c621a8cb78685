package tsm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trackmap/tsmkernel/pkg/geom"
	"github.com/trackmap/tsmkernel/pkg/model"
)

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func parseInt(s string) (int, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "on":
		return true
	default:
		return false
	}
}

// parseExits reads a string over {N,E,S,W}, case-insensitive; each
// present letter adds the corresponding direction.
func parseExits(s string) model.ExitSet {
	var e model.ExitSet
	for _, r := range strings.ToUpper(s) {
		switch r {
		case 'N':
			e = e.With(geom.North)
		case 'E':
			e = e.With(geom.East)
		case 'S':
			e = e.With(geom.South)
		case 'W':
			e = e.With(geom.West)
		}
	}
	return e
}

// parseHeadingDeg accepts either a cardinal letter (N/E/S/W) or a float
// in degrees; both spellings feed the same float field.
func parseHeadingDeg(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "N":
		return geom.DirectionToDeg(geom.North), nil
	case "E":
		return geom.DirectionToDeg(geom.East), nil
	case "S":
		return geom.DirectionToDeg(geom.South), nil
	case "W":
		return geom.DirectionToDeg(geom.West), nil
	}
	return parseFloat(s)
}

// parseCardinal accepts a cardinal letter only (used for meta start
// heading and line step direction, which must resolve to a
// concrete grid direction rather than an arbitrary float).
func parseCardinal(s string) (geom.Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "N":
		return geom.North, nil
	case "E":
		return geom.East, nil
	case "S":
		return geom.South, nil
	case "W":
		return geom.West, nil
	default:
		return 0, fmt.Errorf("not a cardinal direction: %q", s)
	}
}

// parsePoints parses the concatenation of every "points"/"point"
// occurrence in a block into a point list. Entries are separated by ';'
// or '|'; each entry is "x,z" with comma- or space-separated components.
// A failure on any entry fails the whole shape, per spec.
func parsePoints(occurrences []kvOccurrence) ([]geom.Point, error) {
	var pts []geom.Point
	for _, occ := range occurrences {
		entries := strings.FieldsFunc(occ.value, func(r rune) bool {
			return r == ';' || r == '|'
		})
		for _, entry := range entries {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			parts := strings.FieldsFunc(entry, func(r rune) bool {
				return r == ',' || r == ' ' || r == '\t'
			})
			if len(parts) != 2 {
				return nil, fmt.Errorf("malformed point entry %q", entry)
			}
			x, err := parseFloat(parts[0])
			if err != nil {
				return nil, fmt.Errorf("malformed point entry %q: %w", entry, err)
			}
			z, err := parseFloat(parts[1])
			if err != nil {
				return nil, fmt.Errorf("malformed point entry %q: %w", entry, err)
			}
			pts = append(pts, geom.Point{X: x, Z: z})
		}
	}
	return pts, nil
}

// parseFlags splits a comma-separated flag list and resolves each token
// against the known flag vocabulary. Unknown tokens are ignored.
func parseFlags(s string) model.Flags {
	var f model.Flags
	for _, tok := range strings.Split(s, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if bit, ok := model.LookupFlag(tok); ok {
			f = f.With(bit)
		}
	}
	return f
}

// parseMetadataPairs parses a "key:value, key:value" style metadata blob
// used by beacon/marker/area/sector/approach "metadata" keys.
func parseMetadataPairs(s string) map[string]string {
	out := make(map[string]string)
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if idx := strings.IndexByte(tok, ':'); idx >= 0 {
			k := strings.ToLower(strings.TrimSpace(tok[:idx]))
			v := strings.TrimSpace(tok[idx+1:])
			out[k] = v
		}
	}
	return out
}
