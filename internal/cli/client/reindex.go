package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func ReindexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Trigger a snapshot refresh and index rebuild",
		Long:  "Asks the server to re-export incidents from ServiceNow and rebuild the index. Requires the admin token.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runReindex(cmd, outputJSON)
		},
	}

	return cmd
}

func runReindex(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.PostAdmin("/admin/reindex")
	if err != nil {
		return err
	}

	var result struct {
		Documents int `json:"documents"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse reindex response: %w", err)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(map[string]interface{}{
			"success":   true,
			"documents": result.Documents,
		}, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Reindexed %d incidents\n", result.Documents)
	}

	return nil
}
