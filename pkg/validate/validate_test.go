package validate_test

import (
	"context"
	"strings"
	"testing"

	"github.com/trackmap/tsmkernel/pkg/model"
	"github.com/trackmap/tsmkernel/pkg/tsm"
	"github.com/trackmap/tsmkernel/pkg/validate"
)

func parse(t *testing.T, src string) *model.Map {
	t.Helper()
	m, _, err := tsm.ParseReader(context.Background(), strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	return m
}

func TestValidate_DeadEndExitIsTopologyError(t *testing.T) {
	src := `
[meta]
cell_size = 1
start_x = 0
start_z = 0

[cell: 0,0]
exits = N
`
	m := parse(t, src)
	result := validate.Validate(m, validate.Options{})

	if result.IsValid() {
		t.Fatalf("expected the dangling exit to invalidate the map")
	}

	found := 0
	for _, iss := range result.Issues {
		if iss.Kind == tsm.KindTopologyError {
			found++
		}
	}
	if found != 1 {
		t.Errorf("expected exactly 1 TopologyError, got %d (issues=%v)", found, result.Issues)
	}
}

func TestValidate_ExitMirroringAccepted(t *testing.T) {
	src := `
[meta]
cell_size = 1
start_x = 0
start_z = 0

[cell: 0,0]
exits = N

[cell: 0,1]
exits = S
`
	m := parse(t, src)
	result := validate.Validate(m, validate.Options{})
	for _, iss := range result.Issues {
		if iss.Kind == tsm.KindTopologyError {
			t.Errorf("unexpected TopologyError for properly mirrored exits: %v", iss)
		}
	}
}

func TestValidate_ConnectivityDefaultsToWarning(t *testing.T) {
	src := `
[meta]
cell_size = 1
start_x = 0
start_z = 0

[cell: 0,0]

[cell: 5,5]
`
	m := parse(t, src)
	result := validate.Validate(m, validate.Options{})

	foundWarning := false
	for _, iss := range result.Issues {
		if iss.Kind == tsm.KindConnectivityIssue {
			if iss.Severity != tsm.Warning {
				t.Errorf("expected default ConnectivityIssue severity to be Warning, got %v", iss.Severity)
			}
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Fatalf("expected an unreachable cell to be flagged")
	}
	if !result.IsValid() {
		t.Errorf("default-severity connectivity issues must not fail IsValid()")
	}
}

func TestValidate_ConnectivityUpgradableToError(t *testing.T) {
	src := `
[meta]
cell_size = 1
start_x = 0
start_z = 0

[cell: 0,0]

[cell: 5,5]
`
	m := parse(t, src)
	result := validate.Validate(m, validate.Options{ConnectivitySeverityError: true})
	if result.IsValid() {
		t.Errorf("expected ConnectivitySeverityError option to make the map invalid")
	}
}

func TestValidate_IsDeterministicAcrossRuns(t *testing.T) {
	src := `
[meta]
cell_size = 1
start_x = 0
start_z = 0

[cell: 0,0]
exits = N

[cell: 0,1]
exits = S

[sector: pit]
type = PitLane

[portal: p1]
sector = pit
x = 0
z = 0
`
	m := parse(t, src)
	first := validate.Validate(m, validate.Options{})
	second := validate.Validate(m, validate.Options{})

	if len(first.Issues) != len(second.Issues) {
		t.Fatalf("issue count changed across runs: %d vs %d", len(first.Issues), len(second.Issues))
	}
	for i := range first.Issues {
		if first.Issues[i] != second.Issues[i] {
			t.Errorf("issue %d differs across runs: %v vs %v", i, first.Issues[i], second.Issues[i])
		}
	}
}

func TestValidate_UnresolvedAreaShapeIsIdError(t *testing.T) {
	src := `
[meta]
cell_size = 1
start_x = 0
start_z = 0

[cell: 0,0]

[area: a1]
type = SafeZone
shape = missing_shape
`
	m := parse(t, src)
	result := validate.Validate(m, validate.Options{})
	found := false
	for _, iss := range result.Issues {
		if iss.Kind == tsm.KindIDError {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an IdError for the unresolved shape reference, got %v", result.Issues)
	}
}
