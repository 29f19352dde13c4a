package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// JobStatusResponse represents the job status API response.
type JobStatusResponse struct {
	ID             string `json:"id"`
	SourceID       string `json:"source_id"`
	Status         string `json:"status"`
	Error          string `json:"error,omitempty"`
	ChunksTotal    int    `json:"chunks_total"`
	ChunksIngested int    `json:"chunks_ingested"`
	CreatedAt      string `json:"created_at"`
	ProcessedAt    string `json:"processed_at,omitempty"`
}

// JobCmd creates the job command.
func JobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job <id>",
		Short: "Show the status of an ingestion job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runJob(cmd, args[0], outputJSON)
		},
	}

	return cmd
}

func runJob(cmd *cobra.Command, id string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Get("/jobs/" + id)
	if err != nil {
		return fmt.Errorf("failed to fetch job: %w", err)
	}

	var job JobStatusResponse
	if err := json.Unmarshal(resp.Data, &job); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(job, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Job %s: %s\n", job.ID, job.Status)
	fmt.Printf("  Document: %s\n", job.SourceID)
	fmt.Printf("  Chunks: %d/%d\n", job.ChunksIngested, job.ChunksTotal)
	if job.Error != "" {
		fmt.Printf("  Error: %s\n", job.Error)
	}
	return nil
}
