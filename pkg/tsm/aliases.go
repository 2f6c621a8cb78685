package tsm

// canonicalKey is the single alias table referenced by every block
// handler. Spellings on the left normalize to the canonical key on the
// right; a key not listed here is already canonical. What a canonical
// key *means* is still decided per block (e.g. "width" is the mandatory
// rectangle dimension inside a [rect] block, but the per-cell road-width
// override inside [cell]/[line]/[area]/[path]/[approach] blocks — those
// are different fields in the data model, not a spelling ambiguity, so
// resolving it belongs to the block handler, not this table).
var canonicalKey = map[string]string{
	"cellsize":     "cell_size",
	"cell_size_m":  "cell_size",

	"entry_dir":       "entry_heading",
	"entry_direction": "entry_heading",

	"exit_dir":       "exit_heading",
	"exit_direction":  "exit_heading",

	"start_dir":       "start_heading",
	"start_direction": "start_heading",

	"lane_width": "width",
	"width_m":    "width",

	"length_m": "length",

	"height_m": "height",

	"radius_m": "radius",

	"activation_radius_m": "activation_radius",

	"tolerance_deg": "tolerance",

	"shape_id":  "shape",
	"sector_id": "sector",
	"area_id":   "area",

	"from_portal_id": "from_portal",
	"to_portal_id":   "to_portal",
	"entry_portal_id": "entry_portal",
	"exit_portal_id":  "exit_portal",

	"is_safe_zone": "safe",
	"safe_zone":    "safe",

	"point": "points",

	"one_way": "oneway",
}

func canon(key string) string {
	if c, ok := canonicalKey[key]; ok {
		return c
	}
	return key
}
