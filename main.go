package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"treedrag/internal/app"
	"treedrag/internal/config"
	"treedrag/internal/importer"
	"treedrag/internal/storage"
)

func main() {
	logFile, err := os.Create("treedrag.log")
	if err != nil {
		log.Fatal(err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	debug := flag.Bool("debug", false, "Enable debug mode (dumps each tree build to the log)")
	importFile := flag.String("import", "", "Import an indented text or markdown file into the document and exit")
	flag.Parse()

	args := flag.Args()
	filePath := "outline.json"
	if len(args) > 0 {
		filePath = args[0]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	store, err := openStore(filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *importFile != "" {
		if err := runImport(store, *importFile); err != nil {
			fmt.Fprintf(os.Stderr, "Import error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Imported %s into %s\n", *importFile, filePath)
		return
	}

	application, err := app.NewApp(store, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *debug {
		application.SetDebugMode(true)
	}

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}
}

// runImport appends the parsed records of an external file to the stored
// document.
func runImport(store storage.Store, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	records, err := importer.ImportFile(string(content), importer.DetectFormat(path))
	if err != nil {
		return err
	}

	doc, err := store.Load()
	if err != nil {
		return err
	}
	doc.Records = append(doc.Records, records...)
	return store.Save(doc)
}

// openStore selects the backing store from the file extension: .db files
// get SQLite, everything else (including no file at all) gets JSON.
func openStore(filePath string) (storage.Store, error) {
	if strings.HasSuffix(filePath, ".db") {
		return storage.OpenSQLiteStore(filePath)
	}
	return storage.NewJSONStore(filePath), nil
}
