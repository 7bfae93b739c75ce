package cli

import (
	"encoding/json"
	"fmt"

	"github.com/rcliao/agent-ledger/internal/session"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show archive or session statistics",
		Long:  "Show archive statistics, or with --snapshot the statistics of a saved session.",
		Run:   runStats,
	}

	cmd.Flags().StringP("snapshot", "s", "", "Session snapshot file")

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	snapPath, _ := cmd.Flags().GetString("snapshot")
	if snapPath != "" {
		snap, err := readSnapshotFile(snapPath)
		if err != nil {
			exitErr("read snapshot", err)
		}
		sess, err := session.Load(snap, nil, logger)
		if err != nil {
			exitErr("load snapshot", err)
		}
		b, _ := json.MarshalIndent(sess.Statistics(), "", "  ")
		fmt.Println(string(b))
		return
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(b))
}
