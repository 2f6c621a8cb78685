package export

import (
	"encoding/json"
	"os"

	"github.com/trackmap/tsmkernel/pkg/model"
)

// snapshot is the JSON-serializable projection of a Map. Map itself keeps
// its storage unexported, so export builds a flat DTO from its accessors
// rather than marshaling the struct directly.
type snapshot struct {
	Meta       model.Metadata    `json:"meta"`
	Cells      []model.Cell      `json:"cells"`
	Shapes     []*model.Shape    `json:"shapes,omitempty"`
	Areas      []*model.Area     `json:"areas,omitempty"`
	Sectors    []*model.Sector   `json:"sectors,omitempty"`
	Portals    []*model.Portal   `json:"portals,omitempty"`
	Links      []*model.Link     `json:"links,omitempty"`
	Paths      []*model.Path     `json:"paths,omitempty"`
	Beacons    []*model.Beacon   `json:"beacons,omitempty"`
	Markers    []*model.Marker   `json:"markers,omitempty"`
	Approaches []*model.Approach `json:"approaches,omitempty"`
}

func snapshotOf(m *model.Map) snapshot {
	cells := make([]model.Cell, 0, len(m.Cells()))
	for _, key := range sortedCellKeys(m) {
		cells = append(cells, *m.Cells()[key])
	}
	return snapshot{
		Meta:       m.Meta,
		Cells:      cells,
		Shapes:     m.Shapes(),
		Areas:      m.Areas(),
		Sectors:    m.Sectors(),
		Portals:    m.Portals(),
		Links:      m.Links(),
		Paths:      m.Paths(),
		Beacons:    m.Beacons(),
		Markers:    m.Markers(),
		Approaches: m.Approaches(),
	}
}

// ExportJSON serializes m to indented JSON for human inspection.
func ExportJSON(m *model.Map) ([]byte, error) {
	return json.MarshalIndent(snapshotOf(m), "", "  ")
}

// ExportJSONCompact serializes m to compact JSON for storage or transmission.
func ExportJSONCompact(m *model.Map) ([]byte, error) {
	return json.Marshal(snapshotOf(m))
}

// SaveJSONToFile exports m to path as indented JSON, 0644 permissions.
func SaveJSONToFile(m *model.Map, path string) error {
	data, err := ExportJSON(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SaveJSONCompactToFile exports m to path as compact JSON, 0644 permissions.
func SaveJSONCompactToFile(m *model.Map, path string) error {
	data, err := ExportJSONCompact(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
