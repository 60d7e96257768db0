package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func HealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health and index readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runHealth(cmd, outputJSON)
		},
	}

	return cmd
}

func runHealth(cmd *cobra.Command, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	if _, err := api.Get("/health"); err != nil {
		return fmt.Errorf("server is not healthy: %w", err)
	}

	resp, err := api.Get("/ready")
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == 503 {
			if outputJSON {
				data, _ := json.MarshalIndent(map[string]interface{}{
					"healthy": true,
					"ready":   false,
				}, "", "  ")
				fmt.Println(string(data))
			} else {
				fmt.Println("Server is up, index not ready yet")
			}
			return nil
		}
		return err
	}

	var ready struct {
		Status    string `json:"status"`
		Documents int    `json:"documents"`
	}
	if err := json.Unmarshal(resp.Data, &ready); err != nil {
		return fmt.Errorf("failed to parse ready response: %w", err)
	}

	if outputJSON {
		data, _ := json.MarshalIndent(map[string]interface{}{
			"healthy":   true,
			"ready":     true,
			"documents": ready.Documents,
		}, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Server is ready (%d indexed incidents)\n", ready.Documents)
	}

	return nil
}
