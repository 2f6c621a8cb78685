package tsm_test

import (
	"context"
	"strings"
	"testing"

	"github.com/trackmap/tsmkernel/pkg/tsm"
)

func countSeverity(issues []tsm.Issue, sev tsm.Severity) int {
	n := 0
	for _, iss := range issues {
		if iss.Severity == sev {
			n++
		}
	}
	return n
}

func TestParseReader_Meta(t *testing.T) {
	src := `
[meta]
name = "Loop A"
cell_size = 5.0
start_x = 0
start_z = 0
start_heading = N
`
	m, issues, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if countSeverity(issues, tsm.Error) != 0 {
		t.Fatalf("unexpected errors: %v", issues)
	}
	if m.Meta.Name != "Loop A" {
		t.Errorf("Name = %q, want %q", m.Meta.Name, "Loop A")
	}
	if m.Meta.CellSizeM != 5.0 {
		t.Errorf("CellSizeM = %v, want 5.0", m.Meta.CellSizeM)
	}
}

func TestParseReader_LineDefaultsExitsToDirAndOpposite(t *testing.T) {
	src := `
[meta]
cell_size = 1

[line]
x = 0
z = 0
length = 3
dir = N
`
	m, _, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	for z := 0; z < 3; z++ {
		c, ok := m.Cell(0, z)
		if !ok {
			t.Fatalf("missing cell (0,%d)", z)
		}
		if c.Exits.Count() != 2 {
			t.Errorf("cell (0,%d) exits = %v, want N|S", z, c.Exits)
		}
	}
}

func TestParseReader_RectWidthIsStructuralNotRoadWidth(t *testing.T) {
	src := `
[meta]
cell_size = 1

[rect]
x = 0
z = 0
width = 2
height = 2
`
	m, _, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if len(m.Cells()) != 4 {
		t.Fatalf("expected 4 cells from a 2x2 rect, got %d", len(m.Cells()))
	}
	c, ok := m.Cell(0, 0)
	if !ok {
		t.Fatalf("missing cell (0,0)")
	}
	if c.WidthM != 0 {
		t.Errorf("rect width leaked into cell road width: got %v, want 0", c.WidthM)
	}
}

func TestParseReader_DuplicateSectorIdEmitsIdError(t *testing.T) {
	src := `
[sector: pit]
type = PitLane

[sector: pit]
type = PitLane
`
	m, issues, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if countSeverity(issues, tsm.Error) != 1 {
		t.Fatalf("expected exactly 1 IdError, got issues=%v", issues)
	}
	if len(m.Sectors()) != 1 {
		t.Fatalf("expected only the first sector to survive, got %d", len(m.Sectors()))
	}
}

func TestParseReader_KVBeforeHeaderIsWarning(t *testing.T) {
	src := `
name = "orphan"

[meta]
cell_size = 1
`
	_, issues, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	found := false
	for _, iss := range issues {
		if iss.Kind == tsm.KindSyntaxError && iss.Severity == tsm.Warning {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a Warning SyntaxError for the orphaned kv line, got %v", issues)
	}
}

func TestParseReader_PortalExplicitRoleWinsOverHeadingInference(t *testing.T) {
	src := `
[sector: s]
type = Straight

[portal: p]
sector = s
x = 0
z = 0
entry_heading = N
role = exit
`
	m, _, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	p, ok := m.Portal("p")
	if !ok {
		t.Fatalf("missing portal p")
	}
	if p.Role.String() != "exit" {
		t.Errorf("Role = %v, want exit (explicit role must win over entry-heading inference)", p.Role)
	}
}

func TestParseReader_PolygonShapeRequiresThreePoints(t *testing.T) {
	src := `
[shape: bad]
type = polygon
points = 0,0
points = 10,0
`
	_, issues, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if countSeverity(issues, tsm.Error) != 1 {
		t.Fatalf("expected a GeometryError for a 2-point polygon, got %v", issues)
	}
}

func TestParseReader_InlineMetadataBlobExpandsIntoPairs(t *testing.T) {
	src := `
[sector: s]
type = Intersection
metadata = intersection_width: 20, min_speed_kph:10
`
	m, _, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	s, ok := m.Sector("s")
	if !ok {
		t.Fatalf("missing sector s")
	}
	if s.Metadata["intersection_width"] != "20" {
		t.Errorf("intersection_width = %q, want 20", s.Metadata["intersection_width"])
	}
	if s.Metadata["min_speed_kph"] != "10" {
		t.Errorf("min_speed_kph = %q, want 10", s.Metadata["min_speed_kph"])
	}
}
