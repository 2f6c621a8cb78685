package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/trackmap/tsmkernel/pkg/geom"
	"github.com/trackmap/tsmkernel/pkg/model"
)

// WriteTSM serializes m back into the textual format, one block per
// entity: cells sorted by (x, z), every other kind in the map's
// insertion order. It exists so a parse → write → parse
// round trip can be checked for model equality without depending on
// comment or formatting preservation.
func WriteTSM(w io.Writer, m *model.Map) error {
	ww := &tsmWriter{w: w}

	ww.section("meta", "")
	ww.kv("name", m.Meta.Name)
	ww.kvFloat("cell_size", m.Meta.CellSizeM)
	ww.kv("weather", m.Meta.Weather)
	ww.kv("ambience", m.Meta.Ambience)
	ww.kv("default_surface", m.Meta.DefaultSurface)
	ww.kv("default_noise", m.Meta.DefaultNoise)
	ww.kvFloat("default_width", m.Meta.DefaultWidthM)
	ww.kvInt("start_x", m.Meta.StartX)
	ww.kvInt("start_z", m.Meta.StartZ)
	ww.kv("start_heading", m.Meta.StartHeading.String())

	for _, key := range sortedCellKeys(m) {
		c := m.Cells()[key]
		ww.section("cell", "")
		ww.kvInt("x", c.X)
		ww.kvInt("z", c.Z)
		if c.Exits != 0 {
			ww.kv("exits", c.Exits.String())
		}
		ww.kv("surface", c.Surface)
		ww.kv("noise", c.Noise)
		if c.WidthM != 0 {
			ww.kvFloat("width", c.WidthM)
		}
		if c.IsSafeZone {
			ww.kv("safe", "true")
		}
		ww.kv("zone", c.Zone)
	}

	for _, s := range m.Shapes() {
		ww.section("shape", s.ID)
		switch s.Kind {
		case model.ShapeRectangle:
			ww.kv("type", "rectangle")
			ww.kvFloat("x", s.Rect.X)
			ww.kvFloat("z", s.Rect.Z)
			ww.kvFloat("width", s.Rect.Width)
			ww.kvFloat("height", s.Rect.Height)
		case model.ShapeCircle:
			ww.kv("type", "circle")
			ww.kvFloat("x", s.Circle.X)
			ww.kvFloat("z", s.Circle.Z)
			ww.kvFloat("radius", s.Circle.Radius)
		case model.ShapePolygon:
			ww.kv("type", "polygon")
			ww.kv("points", pointsToString(s.Polygon.Points))
		case model.ShapePolyline:
			ww.kv("type", "polyline")
			ww.kv("points", pointsToString(s.Polyline.Points))
		}
	}

	for _, a := range m.Areas() {
		ww.section("area", a.ID)
		ww.kv("type", a.Type)
		ww.kv("shape", a.ShapeID)
		ww.kv("surface", a.Surface)
		ww.kv("noise", a.Noise)
		if a.HasWidth {
			ww.kvFloat("width", a.WidthM)
		}
		ww.flags(a.Flags)
		ww.metadata(a.Metadata)
	}

	for _, s := range m.Sectors() {
		ww.section("sector", s.ID)
		ww.kv("type", s.Type)
		ww.kv("name", s.Name)
		ww.kv("code", s.Code)
		ww.kv("area", s.AreaID)
		ww.kv("surface", s.Surface)
		ww.kv("noise", s.Noise)
		ww.flags(s.Flags)
		ww.metadata(s.Metadata)
	}

	for _, p := range m.Portals() {
		ww.section("portal", p.ID)
		ww.kv("sector", p.SectorID)
		ww.kvFloat("x", p.Position.X)
		ww.kvFloat("z", p.Position.Z)
		if p.WidthM != 0 {
			ww.kvFloat("width", p.WidthM)
		}
		if p.EntryHeadingDeg != nil {
			ww.kvFloat("entry_heading", *p.EntryHeadingDeg)
		}
		if p.ExitHeadingDeg != nil {
			ww.kvFloat("exit_heading", *p.ExitHeadingDeg)
		}
		ww.kv("role", p.Role.String())
	}

	for _, l := range m.Links() {
		ww.section("link", l.ID)
		ww.kv("from", l.FromPortalID)
		ww.kv("to", l.ToPortalID)
		if l.Direction == model.OneWay {
			ww.kv("direction", "oneway")
		} else {
			ww.kv("direction", "twoway")
		}
	}

	for _, p := range m.Paths() {
		ww.section("path", p.ID)
		ww.kv("type", pathTypeString(p.Type))
		ww.kv("shape", p.ShapeID)
		ww.kv("from_portal", p.FromPortalID)
		ww.kv("to_portal", p.ToPortalID)
		if p.WidthM != 0 {
			ww.kvFloat("width", p.WidthM)
		}
		ww.kv("name", p.Name)
	}

	for _, b := range m.Beacons() {
		ww.section("beacon", b.ID)
		ww.kv("type", beaconTypeString(b.Type))
		ww.kvFloat("x", b.Position.X)
		ww.kvFloat("z", b.Position.Z)
		ww.kv("name", b.Name)
		ww.kv("name2", b.Name2)
		ww.kv("sector", b.SectorID)
		ww.kv("shape", b.ShapeID)
		ww.kv("role", b.Role)
		if b.HeadingDeg != nil {
			ww.kvFloat("heading", *b.HeadingDeg)
		}
		if b.ActivationRadiusM != 0 {
			ww.kvFloat("activation_radius", b.ActivationRadiusM)
		}
		ww.metadata(b.Metadata)
	}

	for _, mk := range m.Markers() {
		ww.section("marker", mk.ID)
		ww.kv("type", markerTypeString(mk.Type))
		ww.kvFloat("x", mk.Position.X)
		ww.kvFloat("z", mk.Position.Z)
		ww.kv("name", mk.Name)
		ww.kv("shape", mk.ShapeID)
		if mk.HeadingDeg != nil {
			ww.kvFloat("heading", *mk.HeadingDeg)
		}
		ww.metadata(mk.Metadata)
	}

	for _, a := range m.Approaches() {
		ww.section("approach", "")
		ww.kv("sector", a.SectorID)
		ww.kv("name", a.Name)
		ww.kv("entry_portal", a.EntryPortalID)
		ww.kv("exit_portal", a.ExitPortalID)
		if a.EntryHeadingDeg != nil {
			ww.kvFloat("entry_heading", *a.EntryHeadingDeg)
		}
		if a.ExitHeadingDeg != nil {
			ww.kvFloat("exit_heading", *a.ExitHeadingDeg)
		}
		if a.WidthM != 0 {
			ww.kvFloat("width", a.WidthM)
		}
		if a.LengthM != 0 {
			ww.kvFloat("length", a.LengthM)
		}
		if a.ToleranceDeg != 0 {
			ww.kvFloat("tolerance", a.ToleranceDeg)
		}
		ww.metadata(a.Metadata)
	}

	return ww.err
}

type tsmWriter struct {
	w   io.Writer
	err error
}

func (ww *tsmWriter) printf(format string, args ...any) {
	if ww.err != nil {
		return
	}
	_, err := fmt.Fprintf(ww.w, format, args...)
	if err != nil {
		ww.err = err
	}
}

func (ww *tsmWriter) section(name, arg string) {
	if arg == "" {
		ww.printf("\n[%s]\n", name)
		return
	}
	ww.printf("\n[%s: %s]\n", name, arg)
}

func (ww *tsmWriter) kv(key, value string) {
	if value == "" {
		return
	}
	ww.printf("%s = %q\n", key, value)
}

func (ww *tsmWriter) kvFloat(key string, value float64) {
	ww.printf("%s = %s\n", key, strconv.FormatFloat(value, 'g', -1, 64))
}

func (ww *tsmWriter) kvInt(key string, value int) {
	ww.printf("%s = %d\n", key, value)
}

func (ww *tsmWriter) flags(f model.Flags) {
	tokens := f.Tokens()
	if len(tokens) == 0 {
		return
	}
	line := tokens[0]
	for _, t := range tokens[1:] {
		line += ", " + t
	}
	ww.kv("flags", line)
}

func (ww *tsmWriter) metadata(md map[string]string) {
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ww.kv(k, md[k])
	}
}

func pointsToString(pts []geom.Point) string {
	s := ""
	for i, p := range pts {
		if i > 0 {
			s += "; "
		}
		s += strconv.FormatFloat(p.X, 'g', -1, 64) + "," + strconv.FormatFloat(p.Z, 'g', -1, 64)
	}
	return s
}

func sortedCellKeys(m *model.Map) []model.CellKey {
	keys := make([]model.CellKey, 0, len(m.Cells()))
	for k := range m.Cells() {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].X != keys[j].X {
			return keys[i].X < keys[j].X
		}
		return keys[i].Z < keys[j].Z
	})
	return keys
}

func pathTypeString(t model.PathType) string {
	switch t {
	case model.PathRoad:
		return "road"
	case model.PathCurve:
		return "curve"
	case model.PathIntersection:
		return "intersection"
	case model.PathConnector:
		return "connector"
	case model.PathLane:
		return "lane"
	case model.PathBranch:
		return "branch"
	case model.PathMerge:
		return "merge"
	case model.PathSplit:
		return "split"
	case model.PathPitLane:
		return "pitlane"
	default:
		return "road"
	}
}

func beaconTypeString(t model.BeaconType) string {
	switch t {
	case model.BeaconVoice:
		return "voice"
	case model.BeaconBeep:
		return "beep"
	case model.BeaconSilent:
		return "silent"
	default:
		return "undefined"
	}
}

func markerTypeString(t model.MarkerType) string {
	switch t {
	case model.MarkerStart:
		return "start"
	case model.MarkerFinish:
		return "finish"
	case model.MarkerCheckpoint:
		return "checkpoint"
	case model.MarkerEntry:
		return "entry"
	case model.MarkerExit:
		return "exit"
	case model.MarkerApex:
		return "apex"
	case model.MarkerCurve:
		return "curve"
	case model.MarkerIntersection:
		return "intersection"
	case model.MarkerMerge:
		return "merge"
	case model.MarkerSplit:
		return "split"
	case model.MarkerBranch:
		return "branch"
	case model.MarkerWarning:
		return "warning"
	default:
		return "undefined"
	}
}
