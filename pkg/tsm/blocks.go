package tsm

import (
	"strings"

	"github.com/trackmap/tsmkernel/pkg/geom"
	"github.com/trackmap/tsmkernel/pkg/model"
)

// idOf resolves a block's entity id: either the header argument
// ("[sector: pit]") or an explicit "id"/"id=" key inside the block.
func idOf(b *block) (string, bool) {
	if b.arg != "" {
		return strings.TrimSpace(b.arg), true
	}
	if v, _, ok := b.last("id"); ok && v != "" {
		return v, true
	}
	return "", false
}

// collectMetadata gathers every kv key in the block that isn't in the
// consumed set into a raw string metadata map — this is how sector/area
// dimension overrides like "intersection_width" reach §4.7 without a
// dedicated schema field per possible override. A "metadata" key holding
// a "k:v, k:v" blob is expanded into the same map, letting a block pack
// several ad hoc overrides onto one line instead of one kv per line.
func collectMetadata(b *block, consumed map[string]bool) map[string]string {
	md := make(map[string]string)
	for key, occ := range b.values {
		if key == "metadata" || consumed[key] || len(occ) == 0 {
			continue
		}
		md[key] = occ[len(occ)-1].value
	}
	if v, _, ok := b.last("metadata"); ok {
		for k, val := range parseMetadataPairs(v) {
			md[k] = val
		}
	}
	return md
}

func (p *parseState) addIssue(iss Issue) {
	p.issues = append(p.issues, iss)
}

// --- meta -------------------------------------------------------------

func (p *parseState) handleMeta(b *block) {
	m := &p.m.Meta
	if v, _, ok := b.last("name"); ok {
		m.Name = v
	}
	if v, _, ok := b.last("cell_size"); ok {
		if f, err := parseFloat(v); err == nil {
			m.CellSizeM = f
		} else {
			p.addIssue(newIssue(KindSyntaxError, b.headerLine, "meta: invalid cell_size %q", v))
		}
	}
	if v, _, ok := b.last("weather"); ok {
		m.Weather = v
	}
	if v, _, ok := b.last("ambience"); ok {
		m.Ambience = v
	}
	if v, _, ok := b.last("default_surface"); ok {
		m.DefaultSurface = v
	}
	if v, _, ok := b.last("default_noise"); ok {
		m.DefaultNoise = v
	}
	if v, _, ok := b.last("default_width"); ok {
		if f, err := parseFloat(v); err == nil {
			m.DefaultWidthM = f
		}
	}
	if v, _, ok := b.last("start_x"); ok {
		if n, err := parseInt(v); err == nil {
			m.StartX = n
		}
	}
	if v, _, ok := b.last("start_z"); ok {
		if n, err := parseInt(v); err == nil {
			m.StartZ = n
		}
	}
	if v, line, ok := b.last("start_heading"); ok {
		if d, err := parseCardinal(v); err == nil {
			m.StartHeading = d
		} else {
			p.addIssue(newIssue(KindSyntaxError, line, "meta: invalid start_heading %q", v))
		}
	}
}

// --- cell merge (shared by cell/line/rect) -----------------------------

// cellPatchFromBlock reads the common merge fields (exits, surface,
// noise, width, safe, zone) shared by cell/line/rect blocks.
func (p *parseState) cellPatchFromBlock(b *block) model.Cell {
	var patch model.Cell
	if v, _, ok := b.last("exits"); ok {
		patch.Exits = parseExits(v)
	}
	if v, _, ok := b.last("surface"); ok {
		patch.Surface = v
	}
	if v, _, ok := b.last("noise"); ok {
		patch.Noise = v
	}
	if v, line, ok := b.last("width"); ok {
		if f, err := parseFloat(v); err == nil {
			patch.WidthM = f
		} else {
			p.addIssue(newIssue(KindSyntaxError, line, "invalid width %q", v))
		}
	}
	if v, _, ok := b.last("safe"); ok {
		patch.IsSafeZone = parseBool(v)
	}
	if v, _, ok := b.last("zone"); ok {
		patch.Zone = v
	}
	return patch
}

func (p *parseState) handleCell(b *block) {
	xv, _, xok := b.last("x")
	zv, _, zok := b.last("z")
	if (!xok || !zok) && b.arg != "" {
		// "[cell: x,z]" header form: the coordinates ride on the header
		// argument, comma- or space-separated.
		parts := strings.FieldsFunc(b.arg, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(parts) == 2 {
			xv, zv, xok, zok = parts[0], parts[1], true, true
		}
	}
	if !xok || !zok {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "cell: missing mandatory x/z"))
		return
	}
	x, errX := parseInt(xv)
	z, errZ := parseInt(zv)
	if errX != nil || errZ != nil {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "cell: invalid x/z"))
		return
	}
	patch := p.cellPatchFromBlock(b)
	c := p.m.MergeCell(x, z, patch)
	if c.WidthM != 0 && c.WidthM < 0.5 {
		p.addIssue(newIssue(KindGeometryError, b.headerLine, "cell (%d,%d): width_m %.3f below minimum 0.5", x, z, c.WidthM))
	}
}

func (p *parseState) handleLine(b *block) {
	xv, _, xok := b.last("x")
	zv, _, zok := b.last("z")
	lv, _, lok := b.last("length")
	dv, _, dok := b.last("dir")
	if !xok || !zok || !lok || !dok {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "line: missing mandatory x/z/length/dir"))
		return
	}
	x, errX := parseInt(xv)
	z, errZ := parseInt(zv)
	length, errL := parseInt(lv)
	dir, errD := parseCardinal(dv)
	if errX != nil || errZ != nil || errD != nil {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "line: invalid x/z/dir"))
		return
	}
	if errL != nil || length <= 0 {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "line: length must be > 0"))
		return
	}

	patch := p.cellPatchFromBlock(b)
	if !b.has("exits") {
		patch.Exits = model.ExitFromDirection(dir).With(dir.Opposite())
	}

	cx, cz := x, z
	for i := 0; i < length; i++ {
		c := p.m.MergeCell(cx, cz, patch)
		if c.WidthM != 0 && c.WidthM < 0.5 {
			p.addIssue(newIssue(KindGeometryError, b.headerLine, "cell (%d,%d): width_m %.3f below minimum 0.5", cx, cz, c.WidthM))
		}
		cx, cz = geom.Step(cx, cz, dir)
	}
}

func (p *parseState) handleRect(b *block) {
	xv, _, xok := b.last("x")
	zv, _, zok := b.last("z")
	wv, _, wok := b.last("width")
	hv, _, hok := b.last("height")
	if !xok || !zok || !wok || !hok {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "rect: missing mandatory x/z/width/height"))
		return
	}
	x, errX := parseInt(xv)
	z, errZ := parseInt(zv)
	width, errW := parseInt(wv)
	height, errH := parseInt(hv)
	if errX != nil || errZ != nil {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "rect: invalid x/z"))
		return
	}
	if errW != nil || width <= 0 || errH != nil || height <= 0 {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "rect: width/height must be > 0"))
		return
	}

	// width/height are the rectangle's own structural dimensions here,
	// not a per-cell road-width override (see aliases.go); the shared
	// merge fields below exclude them.
	var patch model.Cell
	if v, _, ok := b.last("exits"); ok {
		patch.Exits = parseExits(v)
	}
	if v, _, ok := b.last("surface"); ok {
		patch.Surface = v
	}
	if v, _, ok := b.last("noise"); ok {
		patch.Noise = v
	}
	if v, _, ok := b.last("safe"); ok {
		patch.IsSafeZone = parseBool(v)
	}
	if v, _, ok := b.last("zone"); ok {
		patch.Zone = v
	}

	for dz := 0; dz < height; dz++ {
		for dx := 0; dx < width; dx++ {
			p.m.MergeCell(x+dx, z+dz, patch)
		}
	}
}

// --- sector/area/shape/portal/link/path/beacon/marker/approach ---------

func (p *parseState) handleSector(b *block) {
	id, ok := idOf(b)
	tv, _, tok := b.last("type")
	if !ok || !tok {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "sector: missing mandatory id/type"))
		return
	}
	consumed := map[string]bool{"id": true, "type": true, "name": true, "code": true, "area": true, "surface": true, "noise": true, "flags": true}
	s := &model.Sector{ID: id, Type: tv}
	if v, _, ok := b.last("name"); ok {
		s.Name = v
	}
	if v, _, ok := b.last("code"); ok {
		s.Code = v
	}
	if v, _, ok := b.last("area"); ok {
		s.AreaID = v
	}
	if v, _, ok := b.last("surface"); ok {
		s.Surface = v
	}
	if v, _, ok := b.last("noise"); ok {
		s.Noise = v
	}
	if v, _, ok := b.last("flags"); ok {
		s.Flags = parseFlags(v)
	}
	s.Metadata = collectMetadata(b, consumed)

	if err := p.m.AddSector(s); err != nil {
		p.addIssue(newIssue(KindIDError, b.headerLine, "sector: %v", err))
	}
}

func (p *parseState) handleArea(b *block) {
	id, ok := idOf(b)
	tv, _, tok := b.last("type")
	shv, _, shok := b.last("shape")
	if !ok || !tok || !shok {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "area: missing mandatory id/type/shape"))
		return
	}
	consumed := map[string]bool{"id": true, "type": true, "shape": true, "surface": true, "noise": true, "width": true, "flags": true}
	a := &model.Area{ID: id, Type: tv, ShapeID: shv}
	if v, _, ok := b.last("surface"); ok {
		a.Surface = v
	}
	if v, _, ok := b.last("noise"); ok {
		a.Noise = v
	}
	if v, line, ok := b.last("width"); ok {
		f, err := parseFloat(v)
		if err != nil || f <= 0 {
			p.addIssue(newIssue(KindGeometryError, line, "area %s: width must be > 0", id))
		} else {
			a.WidthM = f
			a.HasWidth = true
		}
	}
	if v, _, ok := b.last("flags"); ok {
		a.Flags = parseFlags(v)
	}
	a.Metadata = collectMetadata(b, consumed)

	if err := p.m.AddArea(a); err != nil {
		p.addIssue(newIssue(KindIDError, b.headerLine, "area: %v", err))
	}
}

func (p *parseState) handleShape(b *block) {
	id, ok := idOf(b)
	tv, _, tok := b.last("type")
	if !ok || !tok {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "shape: missing mandatory id/type"))
		return
	}

	var s model.Shape
	s.ID = id

	switch strings.ToLower(strings.TrimSpace(tv)) {
	case "rectangle":
		s.Kind = model.ShapeRectangle
		x, xok := floatField(b, "x")
		z, zok := floatField(b, "z")
		w, wok := floatField(b, "width")
		h, hok := floatField(b, "height")
		if !xok || !zok || !wok || !hok || w <= 0 || h <= 0 {
			p.addIssue(newIssue(KindGeometryError, b.headerLine, "shape %s: rectangle requires x,z,width>0,height>0", id))
			return
		}
		s.Rect = geom.Rect{X: x, Z: z, Width: w, Height: h}
	case "circle":
		s.Kind = model.ShapeCircle
		x, xok := floatField(b, "x")
		z, zok := floatField(b, "z")
		r, rok := floatField(b, "radius")
		if !xok || !zok || !rok || r <= 0 {
			p.addIssue(newIssue(KindGeometryError, b.headerLine, "shape %s: circle requires x,z,radius>0", id))
			return
		}
		s.Circle = geom.Circle{X: x, Z: z, Radius: r}
	case "polygon":
		s.Kind = model.ShapePolygon
		pts, err := parsePoints(b.all("points"))
		if err != nil || len(pts) < 3 {
			p.addIssue(newIssue(KindGeometryError, b.headerLine, "shape %s: polygon requires >=3 valid points", id))
			return
		}
		s.Polygon = geom.Polygon{Points: pts}
	case "polyline":
		s.Kind = model.ShapePolyline
		pts, err := parsePoints(b.all("points"))
		if err != nil || len(pts) < 2 {
			p.addIssue(newIssue(KindGeometryError, b.headerLine, "shape %s: polyline requires >=2 valid points", id))
			return
		}
		s.Polyline = geom.Polyline{Points: pts}
	default:
		p.addIssue(newIssue(KindSectionError, b.headerLine, "shape %s: unknown type %q", id, tv))
		return
	}

	if err := p.m.AddShape(&s); err != nil {
		p.addIssue(newIssue(KindIDError, b.headerLine, "shape: %v", err))
	}
}

func floatField(b *block, key string) (float64, bool) {
	v, _, ok := b.last(key)
	if !ok {
		return 0, false
	}
	f, err := parseFloat(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (p *parseState) handlePortal(b *block) {
	id, ok := idOf(b)
	secv, _, secok := b.last("sector")
	x, xok := floatField(b, "x")
	z, zok := floatField(b, "z")
	if !ok || !secok || !xok || !zok {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "portal: missing mandatory id/sector/x/z"))
		return
	}

	port := &model.Portal{ID: id, SectorID: secv, Position: geom.Point{X: x, Z: z}}
	if v, line, ok := b.last("width"); ok {
		f, err := parseFloat(v)
		if err != nil || f < 0 {
			p.addIssue(newIssue(KindGeometryError, line, "portal %s: width must be >= 0", id))
		} else {
			port.WidthM = f
		}
	}

	var hasEntry, hasExit bool
	if v, line, ok := b.last("entry_heading"); ok {
		if d, err := parseHeadingDeg(v); err == nil {
			port.EntryHeadingDeg = &d
			hasEntry = true
		} else {
			p.addIssue(newIssue(KindSyntaxError, line, "portal %s: invalid entry_heading %q", id, v))
		}
	}
	if v, line, ok := b.last("exit_heading"); ok {
		if d, err := parseHeadingDeg(v); err == nil {
			port.ExitHeadingDeg = &d
			hasExit = true
		} else {
			p.addIssue(newIssue(KindSyntaxError, line, "portal %s: invalid exit_heading %q", id, v))
		}
	}

	// Role inference: explicit role wins over heading inference, even
	// when both are present (preserved open question from the spec).
	if v, _, ok := b.last("role"); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "entry":
			port.Role = model.RoleEntry
		case "exit":
			port.Role = model.RoleExit
		case "entryexit", "entry_exit":
			port.Role = model.RoleEntryExit
		default:
			p.addIssue(newIssue(KindSyntaxError, b.headerLine, "portal %s: unknown role %q", id, v))
		}
	} else {
		switch {
		case hasEntry && hasExit:
			port.Role = model.RoleEntryExit
		case hasEntry:
			port.Role = model.RoleEntry
		case hasExit:
			port.Role = model.RoleExit
		default:
			port.Role = model.RoleEntryExit
		}
	}

	if err := p.m.AddPortal(port); err != nil {
		p.addIssue(newIssue(KindIDError, b.headerLine, "portal: %v", err))
	}
}

func (p *parseState) handleLink(b *block) {
	fromv, _, fromok := b.last("from")
	tov, _, took := b.last("to")
	if !fromok || !took {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "link: missing mandatory from/to"))
		return
	}
	id, ok := idOf(b)
	if !ok {
		id = fromv + "->" + tov
	}

	l := &model.Link{ID: id, FromPortalID: fromv, ToPortalID: tov, Direction: model.TwoWay}
	if v, _, ok := b.last("oneway"); ok && parseBool(v) {
		l.Direction = model.OneWay
	}
	if v, _, ok := b.last("direction"); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "oneway", "one_way":
			l.Direction = model.OneWay
		case "twoway", "two_way":
			l.Direction = model.TwoWay
		}
	}

	if err := p.m.AddLink(l); err != nil {
		p.addIssue(newIssue(KindIDError, b.headerLine, "link: %v", err))
	}
}

func (p *parseState) handlePath(b *block) {
	id, ok := idOf(b)
	tv, _, tok := b.last("type")
	if !ok || !tok {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "path: missing mandatory id/type"))
		return
	}

	pt, ok2 := parsePathType(tv)
	if !ok2 {
		p.addIssue(newIssue(KindSyntaxError, b.headerLine, "path %s: unknown type %q, defaulting to Road", id, tv))
		pt = model.PathRoad
	}

	path := &model.Path{ID: id, Type: pt}
	if v, _, ok := b.last("shape"); ok {
		path.ShapeID = v
	}
	if v, _, ok := b.last("from_portal"); ok {
		path.FromPortalID = v
	}
	if v, _, ok := b.last("to_portal"); ok {
		path.ToPortalID = v
	}
	if v, _, ok := b.last("name"); ok {
		path.Name = v
	}
	if v, line, ok := b.last("width"); ok {
		f, err := parseFloat(v)
		if err != nil || f < 0 {
			p.addIssue(newIssue(KindGeometryError, line, "path %s: width must be >= 0", id))
		} else {
			path.WidthM = f
		}
	}

	if err := p.m.AddPath(path); err != nil {
		p.addIssue(newIssue(KindIDError, b.headerLine, "path: %v", err))
	}
}

func parsePathType(s string) (model.PathType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "road":
		return model.PathRoad, true
	case "curve":
		return model.PathCurve, true
	case "intersection":
		return model.PathIntersection, true
	case "connector":
		return model.PathConnector, true
	case "lane":
		return model.PathLane, true
	case "branch":
		return model.PathBranch, true
	case "merge":
		return model.PathMerge, true
	case "split":
		return model.PathSplit, true
	case "pitlane", "pit_lane":
		return model.PathPitLane, true
	default:
		return 0, false
	}
}

func (p *parseState) handleBeacon(b *block) {
	id, ok := idOf(b)
	x, xok := floatField(b, "x")
	z, zok := floatField(b, "z")
	if !ok || !xok || !zok {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "beacon: missing mandatory id/x/z"))
		return
	}

	bt := model.BeaconUndefined
	if v, _, ok := b.last("type"); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "voice":
			bt = model.BeaconVoice
		case "beep":
			bt = model.BeaconBeep
		case "silent":
			bt = model.BeaconSilent
		case "undefined":
			bt = model.BeaconUndefined
		default:
			p.addIssue(newIssue(KindSyntaxError, b.headerLine, "beacon %s: unknown type %q", id, v))
		}
	}

	beacon := &model.Beacon{ID: id, Type: bt, Position: geom.Point{X: x, Z: z}}
	if v, _, ok := b.last("name"); ok {
		beacon.Name = v
	}
	if v, _, ok := b.last("name2"); ok {
		beacon.Name2 = v
	}
	if v, _, ok := b.last("sector"); ok {
		beacon.SectorID = v
	}
	if v, _, ok := b.last("shape"); ok {
		beacon.ShapeID = v
	}
	if v, _, ok := b.last("role"); ok {
		beacon.Role = v
	}
	if v, line, ok := b.last("heading"); ok {
		if d, err := parseHeadingDeg(v); err == nil {
			beacon.HeadingDeg = &d
		} else {
			p.addIssue(newIssue(KindSyntaxError, line, "beacon %s: invalid heading %q", id, v))
		}
	}
	if v, line, ok := b.last("activation_radius"); ok {
		f, err := parseFloat(v)
		if err != nil || f <= 0 {
			p.addIssue(newIssue(KindGeometryError, line, "beacon %s: activation_radius must be > 0", id))
		} else {
			beacon.ActivationRadiusM = f
		}
	}
	if beacon.ShapeID == "" && beacon.ActivationRadiusM <= 0 {
		p.addIssue(newIssue(KindPolicyWarning, b.headerLine, "beacon %s: no shape and no activation radius", id))
	}

	consumed := map[string]bool{"id": true, "x": true, "z": true, "type": true, "name": true, "name2": true, "sector": true, "shape": true, "role": true, "heading": true, "activation_radius": true}
	beacon.Metadata = collectMetadata(b, consumed)

	if err := p.m.AddBeacon(beacon); err != nil {
		p.addIssue(newIssue(KindIDError, b.headerLine, "beacon: %v", err))
	}
}

func (p *parseState) handleMarker(b *block) {
	id, ok := idOf(b)
	x, xok := floatField(b, "x")
	z, zok := floatField(b, "z")
	if !ok || !xok || !zok {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "marker: missing mandatory id/x/z"))
		return
	}

	mt := model.MarkerUndefined
	if v, _, ok := b.last("type"); ok {
		if parsed, ok2 := parseMarkerType(v); ok2 {
			mt = parsed
		} else {
			p.addIssue(newIssue(KindSyntaxError, b.headerLine, "marker %s: unknown type %q", id, v))
		}
	}

	mk := &model.Marker{ID: id, Type: mt, Position: geom.Point{X: x, Z: z}}
	if v, _, ok := b.last("name"); ok {
		mk.Name = v
	}
	if v, _, ok := b.last("shape"); ok {
		mk.ShapeID = v
	}
	if v, line, ok := b.last("heading"); ok {
		if d, err := parseHeadingDeg(v); err == nil {
			mk.HeadingDeg = &d
		} else {
			p.addIssue(newIssue(KindSyntaxError, line, "marker %s: invalid heading %q", id, v))
		}
	}

	consumed := map[string]bool{"id": true, "x": true, "z": true, "type": true, "name": true, "shape": true, "heading": true}
	mk.Metadata = collectMetadata(b, consumed)

	if err := p.m.AddMarker(mk); err != nil {
		p.addIssue(newIssue(KindIDError, b.headerLine, "marker: %v", err))
	}
}

func parseMarkerType(s string) (model.MarkerType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start":
		return model.MarkerStart, true
	case "finish":
		return model.MarkerFinish, true
	case "checkpoint":
		return model.MarkerCheckpoint, true
	case "entry":
		return model.MarkerEntry, true
	case "exit":
		return model.MarkerExit, true
	case "apex":
		return model.MarkerApex, true
	case "curve":
		return model.MarkerCurve, true
	case "intersection":
		return model.MarkerIntersection, true
	case "merge":
		return model.MarkerMerge, true
	case "split":
		return model.MarkerSplit, true
	case "branch":
		return model.MarkerBranch, true
	case "warning":
		return model.MarkerWarning, true
	case "undefined":
		return model.MarkerUndefined, true
	default:
		return 0, false
	}
}

func (p *parseState) handleApproach(b *block) {
	var sectorID string
	if v, _, ok := b.last("sector"); ok {
		sectorID = v
	} else if v, ok := idOf(b); ok {
		sectorID = v
	} else {
		p.addIssue(newIssue(KindSectionError, b.headerLine, "approach: missing mandatory id/sector"))
		return
	}

	a := &model.Approach{SectorID: sectorID}
	if v, _, ok := b.last("name"); ok {
		a.Name = v
	}
	if v, _, ok := b.last("entry_portal"); ok {
		a.EntryPortalID = v
	}
	if v, _, ok := b.last("exit_portal"); ok {
		a.ExitPortalID = v
	}
	if v, line, ok := b.last("entry_heading"); ok {
		if d, err := parseHeadingDeg(v); err == nil {
			a.EntryHeadingDeg = &d
		} else {
			p.addIssue(newIssue(KindSyntaxError, line, "approach %s: invalid entry_heading %q", sectorID, v))
		}
	}
	if v, line, ok := b.last("exit_heading"); ok {
		if d, err := parseHeadingDeg(v); err == nil {
			a.ExitHeadingDeg = &d
		} else {
			p.addIssue(newIssue(KindSyntaxError, line, "approach %s: invalid exit_heading %q", sectorID, v))
		}
	}
	if v, line, ok := b.last("width"); ok {
		f, err := parseFloat(v)
		if err != nil || f <= 0 {
			p.addIssue(newIssue(KindGeometryError, line, "approach %s: width must be > 0", sectorID))
		} else {
			a.WidthM = f
		}
	}
	if v, line, ok := b.last("length"); ok {
		f, err := parseFloat(v)
		if err != nil || f <= 0 {
			p.addIssue(newIssue(KindGeometryError, line, "approach %s: length must be > 0", sectorID))
		} else {
			a.LengthM = f
		}
	}
	if v, line, ok := b.last("tolerance"); ok {
		f, err := parseFloat(v)
		if err != nil || f < 0 {
			p.addIssue(newIssue(KindGeometryError, line, "approach %s: tolerance must be >= 0", sectorID))
		} else {
			a.ToleranceDeg = f
		}
	}

	consumed := map[string]bool{"id": true, "sector": true, "name": true, "entry_portal": true, "exit_portal": true, "entry_heading": true, "exit_heading": true, "width": true, "length": true, "tolerance": true}
	a.Metadata = collectMetadata(b, consumed)

	if err := p.m.AddApproach(a); err != nil {
		p.addIssue(newIssue(KindIDError, b.headerLine, "approach: %v", err))
	}
}
