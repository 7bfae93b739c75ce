package cli

import (
	"encoding/json"
	"fmt"

	"github.com/rcliao/agent-ledger/internal/retrieval"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the newest archived records",
		Run:   runRecent,
	}

	cmd.Flags().StringSlice("priority", nil, "Only these priorities (comma-separated)")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output record ids")

	RootCmd.AddCommand(cmd)
}

func runRecent(cmd *cobra.Command, args []string) {
	names, _ := cmd.Flags().GetStringSlice("priority")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	tiers, err := parsePriorities(names)
	if err != nil {
		exitErr("recent", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	items, err := newAugmentor(s).Recent(cmd.Context(), retrieval.RecentParams{
		ProjectID:  cfg.ProjectID,
		Limit:      limit,
		Priorities: tiers,
	})
	if err != nil {
		exitErr("recent", err)
	}

	if idsOnly {
		for _, it := range items {
			fmt.Println(it.ID)
		}
		return
	}

	b, _ := json.MarshalIndent(items, "", "  ")
	fmt.Println(string(b))
}
