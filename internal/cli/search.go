package cli

import (
	"encoding/json"
	"fmt"

	"github.com/rcliao/agent-ledger/internal/retrieval"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [keyword...]",
		Short: "Search the archive by keyword",
		Long:  "Find records containing any keyword and rank them by the share of keywords they contain and their priority.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringSlice("priority", nil, "Only these priorities (comma-separated)")
	cmd.Flags().IntP("limit", "l", retrieval.DefaultMaxResults, "Max results")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	names, _ := cmd.Flags().GetStringSlice("priority")
	limit, _ := cmd.Flags().GetInt("limit")

	tiers, err := parsePriorities(names)
	if err != nil {
		exitErr("search", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	items, err := newAugmentor(s).Search(cmd.Context(), retrieval.SearchParams{
		ProjectID:  cfg.ProjectID,
		Keywords:   args,
		MaxResults: limit,
		Priorities: tiers,
	})
	if err != nil {
		exitErr("search", err)
	}

	if len(items) == 0 {
		fmt.Println("[]")
		return
	}

	b, _ := json.MarshalIndent(items, "", "  ")
	fmt.Println(string(b))
}
