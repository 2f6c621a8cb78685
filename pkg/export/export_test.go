package export_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/trackmap/tsmkernel/pkg/export"
	"github.com/trackmap/tsmkernel/pkg/model"
	"github.com/trackmap/tsmkernel/pkg/tsm"
)

const sampleTSM = `
[meta]
name = "Sample"
cell_size = 10
start_x = 0
start_z = 0
start_heading = "N"

[cell: 0,0]
exits = "N,E"
surface = "asphalt"

[cell: 0,1]
exits = "S"
surface = "asphalt"
safe = "true"
`

func mustParse(t *testing.T) *model.Map {
	t.Helper()
	m, issues, err := tsm.ParseReader(context.Background(), strings.NewReader(sampleTSM))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	for _, iss := range issues {
		if iss.Severity == tsm.Error {
			t.Fatalf("unexpected error issue: %v", iss)
		}
	}
	return m
}

func TestExportJSON_RoundTripsStructure(t *testing.T) {
	m := mustParse(t)

	data, err := export.ExportJSON(m)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding exported JSON: %v", err)
	}
	if _, ok := decoded["cells"]; !ok {
		t.Fatalf("expected \"cells\" key in exported JSON, got %v", decoded)
	}
}

func TestExportJSONCompact_IsSmallerThanIndented(t *testing.T) {
	m := mustParse(t)

	indented, err := export.ExportJSON(m)
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	compact, err := export.ExportJSONCompact(m)
	if err != nil {
		t.Fatalf("ExportJSONCompact: %v", err)
	}
	if len(compact) >= len(indented) {
		t.Errorf("expected compact output to be smaller: compact=%d indented=%d", len(compact), len(indented))
	}
}

func TestWriteTSM_ProducesParsableOutput(t *testing.T) {
	m := mustParse(t)

	var sb strings.Builder
	if err := export.WriteTSM(&sb, m); err != nil {
		t.Fatalf("WriteTSM: %v", err)
	}

	reparsed, issues, err := tsm.ParseReader(context.Background(), strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("reparsing written output: %v", err)
	}
	for _, iss := range issues {
		if iss.Severity == tsm.Error {
			t.Fatalf("unexpected error issue reparsing written output: %v", iss)
		}
	}
	if len(reparsed.Cells()) != len(m.Cells()) {
		t.Errorf("cell count changed across round trip: got %d, want %d", len(reparsed.Cells()), len(m.Cells()))
	}
}

func TestExportSVG_ContainsExpectedMarkup(t *testing.T) {
	m := mustParse(t)

	data, err := export.ExportSVG(m, export.DefaultSVGOptions())
	if err != nil {
		t.Fatalf("ExportSVG: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "<svg") {
		t.Errorf("expected SVG output to contain an <svg> tag")
	}
	if !strings.Contains(out, "Track Map") {
		t.Errorf("expected SVG output to contain the default title")
	}
}

func TestExportSVG_RejectsNilMap(t *testing.T) {
	if _, err := export.ExportSVG(nil, export.DefaultSVGOptions()); err == nil {
		t.Errorf("expected an error exporting a nil map")
	}
}
