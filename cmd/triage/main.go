package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"triage/internal/app"
	"triage/internal/config"
	"triage/internal/domain"
	"triage/internal/fields"
	"triage/internal/logger"
	"triage/internal/parser"
	"triage/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, schemaPath string
	var verbose bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/triage/config.yaml if not provided)")
	flag.StringVar(&schemaPath, "schema", "", "Path to a JSON field schema (optional; uses the default tracker schema)")
	flag.BoolVar(&verbose, "verbose", false, "Log degraded backends and retries")
	flag.Parse()
	logger.SetVerbose(verbose)

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var schema fields.Schema
	if schemaPath != "" {
		data, err := os.ReadFile(schemaPath)
		if err != nil {
			log.Fatalf("failed to read schema: %v", err)
		}
		schema, err = fields.ParseJSON(data)
		if err != nil {
			log.Fatalf("failed to parse schema: %v", err)
		}
	}

	a := app.Assemble(cfg)
	defer a.Close()

	// Any file arguments are reference documents to ingest before the
	// console starts.
	if paths := flag.Args(); len(paths) > 0 {
		docs := make([]domain.Document, 0, len(paths))
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				log.Fatalf("failed to read %s: %v", path, err)
			}
			docs = append(docs, domain.Document{
				ID:      parser.DocumentID("", path),
				Source:  path,
				Content: parser.Parse(data, path),
			})
		}
		indexed, ok := a.RAG.IngestDocuments(context.Background(), docs)
		if !ok {
			log.Fatalf("ingest failed after indexing %d chunks", indexed)
		}
		fmt.Printf("Indexed %d chunks from %d documents (%s)\n", indexed, len(docs), a.Describe())
	}

	m := tui.New(a.Triage, schema)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
