// Package tsm loads the textual track-map format into a pkg/model.Map,
// collecting a flat list of Issues for anything that could not be
// resolved cleanly rather than failing the whole load on the first
// defect.
package tsm

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/trackmap/tsmkernel/pkg/model"
)

// parseState carries the in-progress model and issue list across block
// handlers; handlers are methods on it so they can both mutate the map
// and append diagnostics without threading both through every call.
type parseState struct {
	m      *model.Map
	issues []Issue
}

// Parse reads a .tsm file from path and builds a Map. It never returns a
// nil Map on success, and it returns issues alongside a non-nil error
// only when the file itself could not be opened or read, or ctx was
// cancelled; malformed content is reported as Issues, not a hard error.
func Parse(ctx context.Context, path string) (*model.Map, []Issue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("tsm: open %s: %w", path, err)
	}
	defer f.Close()
	return ParseReader(ctx, f)
}

// ParseReader is the reader-based entry point Parse delegates to; useful
// for embedded fixtures and tests that don't want a file on disk.
func ParseReader(ctx context.Context, r io.Reader) (*model.Map, []Issue, error) {
	blocks, issues, err := collectBlocks(ctx, r)
	if err != nil {
		return nil, issues, err
	}

	p := &parseState{m: model.New(), issues: issues}
	for _, b := range blocks {
		select {
		case <-ctx.Done():
			return p.m, p.issues, ctx.Err()
		default:
		}
		p.dispatch(b)
	}

	return p.m, p.issues, nil
}

// collectBlocks lexes every line and groups kv statements under the
// most recent header. A kv line seen before any header is reported and
// dropped.
func collectBlocks(ctx context.Context, r io.Reader) ([]*block, []Issue, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []*block
	var issues []Issue
	var cur *block
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		select {
		case <-ctx.Done():
			return blocks, issues, ctx.Err()
		default:
		}

		stmt := lexLine(scanner.Text(), lineNo)
		switch stmt.kind {
		case stmtBlank:
			// nothing to do
		case stmtHeader:
			cur = newBlock(stmt.headerName, stmt.headerArg, stmt.line)
			blocks = append(blocks, cur)
		case stmtKV:
			if cur == nil {
				issues = append(issues, newIssue(KindSyntaxError, stmt.line, "key/value line before any section header"))
				continue
			}
			cur.put(stmt.key, stmt.value, stmt.line)
		case stmtGarbage:
			issues = append(issues, newIssue(KindSyntaxError, stmt.line, "unparseable line"))
		}
	}
	if err := scanner.Err(); err != nil {
		return blocks, issues, fmt.Errorf("tsm: scan: %w", err)
	}

	return blocks, issues, nil
}

// dispatch routes one block to its kind-specific handler. An unknown
// block kind is reported but does not abort the parse.
func (p *parseState) dispatch(b *block) {
	switch b.kind {
	case "meta":
		p.handleMeta(b)
	case "cell":
		p.handleCell(b)
	case "line":
		p.handleLine(b)
	case "rect":
		p.handleRect(b)
	case "sector":
		p.handleSector(b)
	case "area":
		p.handleArea(b)
	case "shape":
		p.handleShape(b)
	case "portal":
		p.handlePortal(b)
	case "link":
		p.handleLink(b)
	case "path":
		p.handlePath(b)
	case "beacon":
		p.handleBeacon(b)
	case "marker":
		p.handleMarker(b)
	case "approach":
		p.handleApproach(b)
	default:
		p.addIssue(newIssue(KindSectionError, b.headerLine, "unknown section [%s]", b.kind))
	}
}
