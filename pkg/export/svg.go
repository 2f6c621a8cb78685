package export

import (
	"bytes"
	"fmt"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/trackmap/tsmkernel/pkg/geom"
	"github.com/trackmap/tsmkernel/pkg/model"
)

// SVGOptions configures a debug-visualization export of a parsed map.
type SVGOptions struct {
	PixelsPerMeter float64 // scale factor from world meters to pixels
	Margin         int     // canvas margin in pixels
	ShowLabels     bool    // show cell/sector/portal id labels
	ShowGrid       bool    // show the underlying cell grid
	ShowLegend     bool    // show a color legend
	Title          string  // optional title drawn in the header
}

// DefaultSVGOptions returns sensible defaults for a quick debug dump.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		PixelsPerMeter: 20,
		Margin:         60,
		ShowLabels:     true,
		ShowGrid:       true,
		ShowLegend:     true,
		Title:          "Track Map",
	}
}

// ExportSVG renders m as an SVG debug view. Unlike a force-directed graph
// layout, every entity is placed at its actual world coordinate: the
// output is a literal top-down projection of the map, not an abstract
// topology diagram.
func ExportSVG(m *model.Map, opts SVGOptions) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("export: map cannot be nil")
	}
	if opts.PixelsPerMeter <= 0 {
		opts.PixelsPerMeter = 20
	}
	if opts.Margin <= 0 {
		opts.Margin = 60
	}

	minX, minZ, maxX, maxZ := mapBounds(m)
	width := int((maxX-minX)*opts.PixelsPerMeter) + 2*opts.Margin + 100
	height := int((maxZ-minZ)*opts.PixelsPerMeter) + 2*opts.Margin + 150

	px := func(x float64) int { return opts.Margin + int((x-minX)*opts.PixelsPerMeter) }
	py := func(z float64) int { return opts.Margin + 100 + int((z-minZ)*opts.PixelsPerMeter) }

	buf := new(bytes.Buffer)
	canvas := svg.New(buf)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:#16161e")

	if opts.ShowGrid {
		drawCells(canvas, m, px, py)
	}
	drawAreas(canvas, m, px, py, opts)
	drawPaths(canvas, m, px, py)
	drawPortals(canvas, m, px, py, opts)
	drawBeacons(canvas, m, px, py, opts)
	drawMarkers(canvas, m, px, py, opts)

	if opts.ShowLegend {
		drawLegend(canvas)
	}
	if opts.Title != "" {
		drawHeader(canvas, m, opts, width)
	}

	canvas.End()
	return buf.Bytes(), nil
}

// SaveSVGToFile renders m and writes it to path with 0644 permissions.
func SaveSVGToFile(m *model.Map, path string, opts SVGOptions) error {
	data, err := ExportSVG(m, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func mapBounds(m *model.Map) (minX, minZ, maxX, maxZ float64) {
	first := true
	cs := m.Meta.CellSizeM
	if cs <= 0 {
		cs = 1
	}
	for key := range m.Cells() {
		x0, z0 := float64(key.X)*cs, float64(key.Z)*cs
		x1, z1 := x0+cs, z0+cs
		if first {
			minX, minZ, maxX, maxZ = x0, z0, x1, z1
			first = false
			continue
		}
		if x0 < minX {
			minX = x0
		}
		if z0 < minZ {
			minZ = z0
		}
		if x1 > maxX {
			maxX = x1
		}
		if z1 > maxZ {
			maxZ = z1
		}
	}
	if first {
		return 0, 0, 10, 10
	}
	return minX, minZ, maxX, maxZ
}

func drawCells(canvas *svg.SVG, m *model.Map, px, py func(float64) int) {
	cs := m.Meta.CellSizeM
	for _, key := range sortedCellKeys(m) {
		c := m.Cells()[key]
		x0, z0 := float64(key.X)*cs, float64(key.Z)*cs
		color := "#2a2a3a"
		if c.IsSafeZone {
			color = "#1f3d2b"
		}
		canvas.Rect(px(x0), py(z0), px(x0+cs)-px(x0), py(z0+cs)-py(z0),
			fmt.Sprintf("fill:%s;stroke:#44445a;stroke-width:1", color))

		cx, cz := x0+cs/2, z0+cs/2
		for _, d := range c.Exits.Directions() {
			dx, dz := exitDelta(d)
			canvas.Line(px(cx), py(cz), px(cx+dx*cs), py(cz+dz*cs), "stroke:#5a7a9a;stroke-width:2;opacity:0.6")
		}
	}
}

func exitDelta(d geom.Direction) (float64, float64) {
	switch d {
	case geom.North:
		return 0, 0.5
	case geom.South:
		return 0, -0.5
	case geom.East:
		return 0.5, 0
	case geom.West:
		return -0.5, 0
	default:
		return 0, 0
	}
}

func drawAreas(canvas *svg.SVG, m *model.Map, px, py func(float64) int, opts SVGOptions) {
	for _, a := range m.Areas() {
		shape, ok := m.Shape(a.ShapeID)
		if !ok {
			continue
		}
		drawShapeOutline(canvas, shape, px, py, "stroke:#9f7aea;stroke-width:2;fill:none;opacity:0.7")
		if opts.ShowLabels {
			bb := shape.Geom().BBox()
			canvas.Text(px(bb.X), py(bb.Z)-4, a.ID, "fill:#c9b8f0;font-size:11px")
		}
	}
}

func drawPaths(canvas *svg.SVG, m *model.Map, px, py func(float64) int) {
	for _, p := range m.Paths() {
		if p.ShapeID == "" {
			continue
		}
		shape, ok := m.Shape(p.ShapeID)
		if !ok {
			continue
		}
		drawShapeOutline(canvas, shape, px, py, "stroke:#4299e1;stroke-width:2;fill:none")
	}
}

func drawShapeOutline(canvas *svg.SVG, s *model.Shape, px, py func(float64) int, style string) {
	switch s.Kind {
	case model.ShapeRectangle:
		r := s.Rect
		canvas.Rect(px(r.X), py(r.Z), px(r.X+r.Width)-px(r.X), py(r.Z+r.Height)-py(r.Z), style)
	case model.ShapeCircle:
		c := s.Circle
		canvas.Circle(px(c.X), py(c.Z), px(c.X+c.Radius)-px(c.X), style)
	case model.ShapePolygon, model.ShapePolyline:
		pts := s.Polygon.Points
		if s.Kind == model.ShapePolyline {
			pts = s.Polyline.Points
		}
		xs := make([]int, len(pts))
		ys := make([]int, len(pts))
		for i, p := range pts {
			xs[i] = px(p.X)
			ys[i] = py(p.Z)
		}
		if s.Kind == model.ShapePolygon {
			canvas.Polygon(xs, ys, style)
		} else {
			canvas.Polyline(xs, ys, style)
		}
	}
}

func drawPortals(canvas *svg.SVG, m *model.Map, px, py func(float64) int, opts SVGOptions) {
	for _, p := range m.Portals() {
		x, y := px(p.Position.X), py(p.Position.Z)
		canvas.Circle(x, y, 5, "fill:#f6e05e;stroke:#000;stroke-width:1")
		if opts.ShowLabels {
			canvas.Text(x+7, y-7, p.ID, "fill:#f6e05e;font-size:10px")
		}
	}
}

func drawBeacons(canvas *svg.SVG, m *model.Map, px, py func(float64) int, opts SVGOptions) {
	for _, b := range m.Beacons() {
		x, y := px(b.Position.X), py(b.Position.Z)
		canvas.Circle(x, y, 4, "fill:#ed8936;stroke:#000;stroke-width:1")
		if opts.ShowLabels && b.Name != "" {
			canvas.Text(x+6, y+4, b.Name, "fill:#ed8936;font-size:9px")
		}
	}
}

func drawMarkers(canvas *svg.SVG, m *model.Map, px, py func(float64) int, opts SVGOptions) {
	for _, mk := range m.Markers() {
		x, y := px(mk.Position.X), py(mk.Position.Z)
		xs := []int{x, x - 5, x + 5}
		ys := []int{y - 6, y + 5, y + 5}
		canvas.Polygon(xs, ys, "fill:#48bb78;stroke:#000;stroke-width:1")
		if opts.ShowLabels && mk.Name != "" {
			canvas.Text(x+7, y+5, mk.Name, "fill:#48bb78;font-size:9px")
		}
	}
}

func drawLegend(canvas *svg.SVG) {
	entries := []struct {
		color, label string
	}{
		{"#9f7aea", "area"},
		{"#4299e1", "path"},
		{"#f6e05e", "portal"},
		{"#ed8936", "beacon"},
		{"#48bb78", "marker"},
		{"#1f3d2b", "safe zone"},
	}
	x, y := 10, 10
	for _, e := range entries {
		canvas.Rect(x, y, 12, 12, fmt.Sprintf("fill:%s", e.color))
		canvas.Text(x+18, y+10, e.label, "fill:#ccc;font-size:11px")
		y += 18
	}
}

func drawHeader(canvas *svg.SVG, m *model.Map, opts SVGOptions, width int) {
	canvas.Text(width/2, 30, opts.Title, "text-anchor:middle;font-size:20px;fill:#eee;font-weight:bold")
	stats := fmt.Sprintf("%d cells, %d sectors, %d portals", len(m.Cells()), len(m.Sectors()), len(m.Portals()))
	canvas.Text(width/2, 52, stats, "text-anchor:middle;font-size:12px;fill:#999")
}
