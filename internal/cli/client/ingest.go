package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parchment-ai/parchment/internal/extract"
)

// IngestAPIRequest represents the document ingestion API request.
type IngestAPIRequest struct {
	SourceID string `json:"source_id"`
	Name     string `json:"name,omitempty"`
	Text     string `json:"text"`
	Async    bool   `json:"async,omitempty"`
}

// IngestAPIResponse represents the synchronous ingestion API response.
type IngestAPIResponse struct {
	SourceID       string `json:"source_id"`
	ChunksTotal    int    `json:"chunks_total"`
	ChunksIngested int    `json:"chunks_ingested"`
}

// JobAPIResponse represents the async ingestion job API response.
type JobAPIResponse struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	Status   string `json:"status"`
}

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	var (
		sourceID string
		name     string
		async    bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a document",
		Long:  "Extracts text from a file (txt, md, pdf, docx) and ingests it into the server.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIngest(cmd, args[0], sourceID, name, async, outputJSON)
		},
	}

	cmd.Flags().StringVar(&sourceID, "source-id", "", "Document source ID (default: file name without extension)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (default: file name)")
	cmd.Flags().BoolVar(&async, "async", false, "Queue ingestion as a background job")

	return cmd
}

func runIngest(cmd *cobra.Command, path, sourceID, name string, async, outputJSON bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Extraction happens client side; the server ingests plain text.
	registry := extract.NewRegistry()
	text, err := registry.Extract(file, filepath.Base(path))
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text could be extracted from %s", path)
	}

	base := filepath.Base(path)
	if sourceID == "" {
		sourceID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if name == "" {
		name = base
	}

	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/documents", IngestAPIRequest{
		SourceID: sourceID,
		Name:     name,
		Text:     text,
		Async:    async,
	})
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if async {
		var job JobAPIResponse
		if err := json.Unmarshal(resp.Data, &job); err != nil {
			return fmt.Errorf("failed to parse job response: %w", err)
		}
		if outputJSON {
			output, _ := json.MarshalIndent(job, "", "  ")
			fmt.Println(string(output))
		} else {
			fmt.Printf("Queued ingestion job %s for %s\n", job.ID, job.SourceID)
		}
		return nil
	}

	var result IngestAPIResponse
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse ingest response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Ingested %s: %d/%d chunks\n", result.SourceID, result.ChunksIngested, result.ChunksTotal)
	}
	return nil
}
