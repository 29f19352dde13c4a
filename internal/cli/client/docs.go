package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// DocumentItem represents one document in the listing API response.
type DocumentItem struct {
	SourceID   string `json:"source_id"`
	Name       string `json:"name,omitempty"`
	ChunkCount int    `json:"chunk_count"`
	IngestedAt string `json:"ingested_at"`
}

// DocsAPIResponse represents the document listing API response.
type DocsAPIResponse struct {
	Items   []DocumentItem `json:"items"`
	Cursor  string         `json:"cursor,omitempty"`
	HasMore bool           `json:"has_more"`
}

// DocsCmd creates the docs command.
func DocsCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "List ingested documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runDocs(cmd, limit, cursor, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of documents")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}

func runDocs(cmd *cobra.Command, limit int, cursor string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	query := url.Values{}
	if limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", limit))
	}
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	path := "/documents"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	resp, err := api.Get(path)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	var docsResp DocsAPIResponse
	if err := json.Unmarshal(resp.Data, &docsResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(docsResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(docsResp.Items) == 0 {
		fmt.Println("No documents ingested.")
		return nil
	}

	for _, doc := range docsResp.Items {
		name := doc.Name
		if name == "" {
			name = doc.SourceID
		}
		fmt.Printf("%s  (%d chunks, ingested %s)\n", name, doc.ChunkCount, doc.IngestedAt)
		if doc.Name != "" {
			fmt.Printf("  ID: %s\n", doc.SourceID)
		}
	}
	if docsResp.HasMore && docsResp.Cursor != "" {
		fmt.Printf("\n%s\nMore documents available. Use --cursor %s\n", strings.Repeat("-", 40), docsResp.Cursor)
	}
	return nil
}
