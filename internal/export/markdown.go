// Package export writes a record document to other formats.
package export

import (
	"fmt"
	"os"
	"strings"

	"treedrag/internal/model"
	"treedrag/internal/tree"
)

// ToMarkdown exports a document to a markdown file as nested bullets,
// indented two spaces per level. Collapse state is ignored: the file gets
// the whole hierarchy in sibling order.
func ToMarkdown(doc *model.Document, filePath string) error {
	fns := model.Funcs(nil)
	fns.Collapsed = func(*model.Record) bool { return false }

	build, err := tree.BuildTree(doc.Records, fns)
	if err != nil {
		return fmt.Errorf("failed to order records: %w", err)
	}

	var sb strings.Builder
	for _, id := range build.RootIDs {
		writeNode(&sb, build, id, 0)
	}
	for _, r := range build.Orphans {
		writeRecord(&sb, r, 0)
	}

	if err := os.WriteFile(filePath, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write markdown file: %w", err)
	}
	return nil
}

func writeNode(sb *strings.Builder, build *tree.Build[*model.Record], id string, depth int) {
	n := build.Node(id)
	writeRecord(sb, n.Data, depth)
	for _, c := range n.ChildIDs {
		writeNode(sb, build, c, depth+1)
	}
}

func writeRecord(sb *strings.Builder, r *model.Record, depth int) {
	if strings.TrimSpace(r.Text) == "" {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString("- ")
	sb.WriteString(r.Text)
	sb.WriteString("\n")
}
