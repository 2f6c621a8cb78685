package movement_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/trackmap/tsmkernel/pkg/geom"
	"github.com/trackmap/tsmkernel/pkg/movement"
	"github.com/trackmap/tsmkernel/pkg/spatial"
	"github.com/trackmap/tsmkernel/pkg/tsm"
)

func buildIndex(t *testing.T, src string) *spatial.Index {
	t.Helper()
	m, _, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	idx, err := spatial.Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

// straightLoopSrc builds a 10-cell straight chain at x=0, z=0..9, each
// cell open on both its north and south edges, with start heading north.
func straightLoopSrc() string {
	var sb strings.Builder
	sb.WriteString("[meta]\ncell_size = 1\nstart_x = 0\nstart_z = 0\nstart_heading = N\n\n")
	for z := 0; z < 10; z++ {
		fmt.Fprintf(&sb, "[cell: 0,%d]\nexits = N,S\n\n", z)
	}
	return sb.String()
}

func TestTryMove_AccumulatesPendingDistanceAcrossCalls(t *testing.T) {
	idx := buildIndex(t, straightLoopSrc())
	state := movement.MakeStartState(idx.Map())

	out := movement.TryMove(idx, &state, 9.5, geom.North)
	if out.BoundaryHit {
		t.Fatalf("unexpected boundary hit: %+v", out)
	}
	if state.CellZ != 9 {
		t.Errorf("CellZ = %d, want 9", state.CellZ)
	}
	if state.PendingM != 0.5 {
		t.Errorf("PendingM = %v, want 0.5", state.PendingM)
	}
	if state.DistanceM != 9.5 {
		t.Errorf("DistanceM = %v, want 9.5", state.DistanceM)
	}

	out = movement.TryMove(idx, &state, 1.0, geom.North)
	if !out.BoundaryHit {
		t.Errorf("expected boundary hit stepping past the last cell")
	}
}

func TestTryMove_ZeroDistanceIsNoOp(t *testing.T) {
	idx := buildIndex(t, straightLoopSrc())
	state := movement.MakeStartState(idx.Map())
	before := state

	out := movement.TryMove(idx, &state, 0, geom.North)
	if out.Moved || out.BoundaryHit {
		t.Errorf("zero distance should be a pure no-op, got %+v", out)
	}
	if state != before {
		t.Errorf("state mutated by a zero-distance call: before=%+v after=%+v", before, state)
	}
}

func TestTryMove_SubMinimumDistanceIsNoOp(t *testing.T) {
	idx := buildIndex(t, straightLoopSrc())
	state := movement.MakeStartState(idx.Map())
	before := state

	out := movement.TryMove(idx, &state, movement.MinDistanceM/2, geom.North)
	if out.Moved || out.BoundaryHit {
		t.Errorf("sub-minimum distance should be a no-op, got %+v", out)
	}
	if state != before {
		t.Errorf("state mutated by a sub-minimum-distance call")
	}
}

func TestTryMove_ClosedSectorDeniesTransitionAndRollsBackState(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[meta]\ncell_size = 1\nstart_x = 0\nstart_z = 0\nstart_heading = N\n\n")
	for z := 0; z < 3; z++ {
		fmt.Fprintf(&sb, "[cell: 0,%d]\nexits = N,S\n\n", z)
	}
	sb.WriteString(`
[shape: blocked]
type = rectangle
x = -5
z = 1
width = 10
height = 1

[area: blocked_area]
type = Closed
shape = blocked

[sector: blocked_sector]
type = Closed
area = blocked_area
flags = closed
`)
	idx := buildIndex(t, sb.String())
	state := movement.MakeStartState(idx.Map())
	before := state

	out := movement.TryMove(idx, &state, 1.5, geom.North)
	if !out.BoundaryHit {
		t.Fatalf("expected the closed sector to deny entry")
	}
	if out.Moved {
		t.Errorf("Moved = true, want false on a denied transition")
	}
	if state != before {
		t.Errorf("state was not fully rolled back: before=%+v after=%+v", before, state)
	}
}

func TestTryMove_NegativeDistanceTravelsOpposite(t *testing.T) {
	idx := buildIndex(t, straightLoopSrc())
	state := movement.MakeStartState(idx.Map())
	state.CellZ = 5
	state.WorldPosition = idx.Map().CellToWorld(0, 5)

	out := movement.TryMove(idx, &state, -2, geom.North)
	if out.BoundaryHit {
		t.Fatalf("unexpected boundary hit: %+v", out)
	}
	if state.CellZ != 3 {
		t.Errorf("CellZ = %d, want 3 after moving -2 along north (i.e. 2 south)", state.CellZ)
	}
	if state.DistanceM != -2 {
		t.Errorf("DistanceM = %v, want -2", state.DistanceM)
	}
}
