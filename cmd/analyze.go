package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [request]",
	Short: "Run one analysis request and print the response",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := buildPipeline()
		if err != nil {
			return err
		}

		sessionID, err := p.orchestrator.StartSession("")
		if err != nil {
			return err
		}

		env := p.orchestrator.Process(cmd.Context(), strings.Join(args, " "), sessionID)
		if env.Status != "success" {
			return fmt.Errorf("analysis failed: %s", env.Error)
		}
		fmt.Println(env.Response.Text)
		return nil
	},
}
