package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskAPIRequest represents the ask API request.
type AskAPIRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// AskChunk represents one retrieved chunk in the ask API response.
type AskChunk struct {
	SourceID string  `json:"source_id"`
	Index    int     `json:"chunk_index"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
}

// AskAPIResponse represents the ask API response.
type AskAPIResponse struct {
	Answer string     `json:"answer"`
	Chunks []AskChunk `json:"chunks"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question",
		Long:  "Asks a question and prints an answer grounded in the ingested documents.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, args[0], topK, outputJSON)
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of chunks to retrieve (default: server setting)")

	return cmd
}

func runAsk(cmd *cobra.Command, question string, topK int, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/ask", AskAPIRequest{
		Question: question,
		TopK:     topK,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var askResp AskAPIResponse
	if err := json.Unmarshal(resp.Data, &askResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(askResp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(askResp.Answer)
	if len(askResp.Chunks) > 0 {
		fmt.Printf("\n%s\nSources:\n", strings.Repeat("-", 40))
		for _, chunk := range askResp.Chunks {
			fmt.Printf("  %s (chunk %d, score %.3f)\n", chunk.SourceID, chunk.Index, chunk.Score)
		}
	}
	return nil
}
