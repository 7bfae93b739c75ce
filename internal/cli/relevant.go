package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "relevant [query]",
		Short: "Retrieve what compaction would inject for a query",
		Long:  "Run the dual-pool compaction retrieval: relevance-ranked records plus recent high-priority ones, packed into a cost budget.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRelevant,
	}

	cmd.Flags().IntP("budget", "b", 4000, "Max cost of the retrieved set")

	RootCmd.AddCommand(cmd)
}

func runRelevant(cmd *cobra.Command, args []string) {
	budget, _ := cmd.Flags().GetInt("budget")
	query := strings.Join(args, " ")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	outcome, err := newAugmentor(s).AugmentForCompaction(cmd.Context(), cfg.ProjectID, query, budget)
	if err != nil {
		exitErr("relevant", err)
	}

	b, _ := json.MarshalIndent(map[string]any{
		"items":      outcome.Items,
		"total_cost": outcome.TotalCost,
		"budget":     budget,
	}, "", "  ")
	fmt.Println(string(b))
}
