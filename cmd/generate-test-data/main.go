package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"treedrag/internal/model"
)

func main() {
	numNodes := flag.Int("nodes", 1000, "Number of records to generate")
	output := flag.String("output", "large_test.json", "Output file path")
	depth := flag.Int("depth", 3, "Maximum nesting depth")
	unordered := flag.Int("unordered", 10, "Generate every Nth record without an order key (0 disables)")
	collapsed := flag.Int("collapsed", 7, "Collapse every Nth branch record (0 disables)")
	flag.Parse()

	if *numNodes < 1 {
		fmt.Fprintf(os.Stderr, "nodes must be at least 1\n")
		os.Exit(1)
	}

	doc := generateDocument(*numNodes, *depth, *unordered, *collapsed)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal JSON: %v\n", err)
		os.Exit(1)
	}

	dir := filepath.Dir(*output)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create directory: %v\n", err)
			os.Exit(1)
		}
	}

	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated document with %d records\n", len(doc.Records))
	fmt.Printf("Saved to: %s\n", *output)
	fmt.Printf("File size: %.2f MB\n", float64(len(data))/(1024*1024))
}

type generator struct {
	doc       *model.Document
	maxDepth  int
	unordered int
	collapsed int
	next      int
	total     int
}

func generateDocument(totalNodes, maxDepth, unordered, collapsed int) *model.Document {
	g := &generator{
		doc:       model.NewDocument("Generated test data"),
		maxDepth:  maxDepth,
		unordered: unordered,
		collapsed: collapsed,
		total:     totalNodes,
	}

	// Flat records with explicit parent references: a balanced tree is
	// laid out top-down so every parent id already exists when its
	// children reference it.
	for g.next < g.total {
		g.emit(nil, 0)
	}
	return g.doc
}

func (g *generator) emit(parentID *string, depth int) {
	if g.next >= g.total {
		return
	}
	index := g.next
	g.next++

	r := model.NewRecord(generateUniqueText(index))
	r.ParentID = parentID

	// Siblings at the same level share an order spacing; records without
	// an order key exercise the infill path.
	if g.unordered == 0 || index%g.unordered != 0 {
		o := float64(index%97+1) / 100.0
		r.Order = &o
	}

	g.doc.Records = append(g.doc.Records, r)

	if depth >= g.maxDepth || g.next >= g.total {
		return
	}

	children := childCount(g.total-g.next, g.maxDepth-depth)
	if children > 0 && g.collapsed != 0 && index%g.collapsed == 0 {
		r.Collapsed = true
	}
	for i := 0; i < children && g.next < g.total; i++ {
		g.emit(&r.ID, depth+1)
	}
}

func childCount(remaining, depthLeft int) int {
	if depthLeft == 1 {
		if remaining > 10 {
			return 5
		}
		return remaining / 2
	}
	if remaining > 50 {
		return 3
	}
	return 2
}

func generateUniqueText(index int) string {
	categories := []string{
		"Task", "Note", "Idea", "Bug", "Feature", "Enhancement",
		"Documentation", "Refactor", "Test", "Optimization",
		"Research", "Design", "Implementation", "Review",
	}

	category := categories[index%len(categories)]
	return fmt.Sprintf("%s #%d - %s", category, index,
		generateDescription(index))
}

func generateDescription(index int) string {
	descriptions := []string{
		"Core functionality",
		"User interface",
		"Performance improvement",
		"Bug fix",
		"New capability",
		"API integration",
		"Data validation",
		"Error handling",
		"Caching layer",
		"Database schema",
		"Authentication",
		"Configuration",
		"Logging system",
		"Monitoring",
		"Security audit",
	}

	return descriptions[index%len(descriptions)]
}
