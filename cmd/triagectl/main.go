package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"triage/internal/app"
	"triage/internal/config"
	"triage/internal/domain"
	"triage/internal/fields"
	"triage/internal/logger"
	"triage/internal/parser"
)

var (
	cfgPath    string
	schemaPath string
	verbose    bool
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "triagectl",
		Short:         "Turn unstructured requests into issue-tracker tickets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logger.SetVerbose(verbose)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config (default: ~/.config/triage/config.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log degraded backends and retries")

	root.AddCommand(ingestCmd(), ticketsCmd(), retrieveCmd(), classifyCmd(),
		createCmd(), triageCmd(), deleteDocCmd(), deleteTicketCmd(), listCmd())
	return root
}

func loadApp() (*app.App, error) {
	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return app.Assemble(cfg), nil
}

func loadSchema() (fields.Schema, error) {
	if schemaPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}
	return fields.ParseJSON(data)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Parse and index reference documents (pdf, docx, pptx, txt, md)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			docs := make([]domain.Document, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				docs = append(docs, domain.Document{
					ID:      parser.DocumentID("", path),
					Source:  path,
					Content: parser.Parse(data, path),
				})
			}
			indexed, ok := a.RAG.IngestDocuments(cmd.Context(), docs)
			if !ok {
				return fmt.Errorf("ingest incomplete: %d chunks indexed", indexed)
			}
			fmt.Printf("Indexed %d chunks from %d documents\n", indexed, len(docs))
			return nil
		},
	}
}

func ticketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tickets <file.json>",
		Short: "Bulk-index past tickets from a JSON array",
		Long: `Bulk-index past tickets from a JSON array of records:
[{"id": "PROJ-1", "summary": "...", "description": "...", "status": "Done", "issuetype": "Bug"}]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			var records []struct {
				ID          string `json:"id"`
				Summary     string `json:"summary"`
				Description string `json:"description"`
				Status      string `json:"status"`
				IssueType   string `json:"issuetype"`
			}
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			tickets := make([]domain.TicketRecord, 0, len(records))
			for _, r := range records {
				if r.ID == "" {
					return fmt.Errorf("ticket record without id in %s", args[0])
				}
				tickets = append(tickets, domain.TicketRecord{
					ID: r.ID, Summary: r.Summary, Description: r.Description,
					Status: r.Status, IssueType: r.IssueType,
				})
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			indexed, ok := a.RAG.IngestTickets(cmd.Context(), tickets)
			if !ok {
				return fmt.Errorf("ticket ingest failed")
			}
			fmt.Printf("Indexed %d tickets\n", indexed)
			return nil
		},
	}
}

func retrieveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retrieve <query>",
		Short: "Show the grounding retrieved for a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			g := a.Triage.Retrieve(cmd.Context(), strings.Join(args, " "))
			return printJSON(g)
		},
	}
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Classify a request into the intake taxonomy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			cls := a.Triage.Classify(cmd.Context(), strings.Join(args, " "))
			return printJSON(cls)
		},
	}
}

func createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <text>",
		Short: "Draft schema-constrained ticket fields for a request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loadSchema()
			if err != nil {
				return err
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			out := a.Triage.CreateFields(cmd.Context(), strings.Join(args, " "), schema)
			return printJSON(out)
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to a JSON field schema")
	return cmd
}

func triageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "triage <text>",
		Short: "Run the full pipeline: classify, retrieve, draft fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loadSchema()
			if err != nil {
				return err
			}
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			res := a.Triage.Triage(cmd.Context(), strings.Join(args, " "), schema)
			return printJSON(struct {
				Classification domain.Classification `json:"classification"`
				Fields         map[string]any        `json:"fields"`
				Grounding      domain.Grounding      `json:"grounding"`
			}{res.Classification, res.Fields, res.Grounding})
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to a JSON field schema")
	return cmd
}

func deleteDocCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-doc <id>",
		Short: "Remove a document and all of its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if !a.RAG.DeleteDocument(cmd.Context(), args[0]) {
				return fmt.Errorf("deleting %s failed", args[0])
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func deleteTicketCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-ticket <id>",
		Short: "Remove a ticket from the history index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if !a.RAG.DeleteTicket(cmd.Context(), args[0]) {
				return fmt.Errorf("deleting %s failed", args[0])
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List everything registered in the knowledge catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()
			items, err := a.RAG.ListKnowledge()
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Println("Catalog is empty.")
				return nil
			}
			for _, item := range items {
				line := fmt.Sprintf("%-12s %-24s chunks=%d", item.Kind, item.ID, item.ChunkCount)
				if item.IssueType != "" {
					line += " type=" + item.IssueType
				}
				if item.Status != "" {
					line += " status=" + item.Status
				}
				fmt.Println(line)
				if item.Preview != "" {
					fmt.Println("             " + item.Preview)
				}
			}
			return nil
		},
	}
}
