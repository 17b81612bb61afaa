package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"treedrag/internal/model"
	"treedrag/internal/storage"
	"treedrag/internal/tree"
)

// orderfill assigns persistent order keys to records that have none, so a
// hand-written or imported file becomes stable across runs without opening
// the interactive UI.
func main() {
	dryRun := flag.Bool("dry-run", false, "Report what would change without writing")
	verbose := flag.Bool("v", false, "List every assigned order key")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: orderfill [-dry-run] [-v] <file>\n")
		os.Exit(1)
	}
	path := flag.Arg(0)

	store, err := openStore(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	doc, err := store.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	build, err := tree.BuildTree(doc.Records, model.Funcs(nil))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(build.Orphans) > 0 {
		fmt.Printf("%d orphaned records (parent id not in file):\n", len(build.Orphans))
		for _, r := range build.Orphans {
			fmt.Printf("  %s (parent %s)\n", r.ID, *r.ParentID)
		}
	}

	if len(build.MissingOrders) == 0 {
		fmt.Println("All records already have order keys")
		return
	}

	fmt.Printf("%d records need order keys\n", len(build.MissingOrders))
	for id, o := range build.MissingOrders {
		if *verbose {
			fmt.Printf("  %s -> %g\n", id, o)
		}
		if r := doc.Find(id); r != nil {
			v := o
			r.Order = &v
		}
	}

	if *dryRun {
		fmt.Println("Dry run: nothing written")
		return
	}

	if err := store.Save(doc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", path)
}

func openStore(path string) (storage.Store, error) {
	if strings.HasSuffix(path, ".db") {
		return storage.OpenSQLiteStore(path)
	}
	return storage.NewJSONStore(path), nil
}
