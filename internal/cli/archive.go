package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rcliao/agent-ledger/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "archive [content]",
		Short: "Archive background material",
		Long:  "Archive content for the project. Content can be a positional arg or piped via stdin. Long content is chunked into several records.",
		Run:   runArchive,
	}

	cmd.Flags().String("priority", "medium", "Priority: low, medium (normal), high, critical")

	RootCmd.AddCommand(cmd)
}

func runArchive(cmd *cobra.Command, args []string) {
	priority, _ := cmd.Flags().GetString("priority")

	content, err := readInput(args)
	if err != nil {
		exitErr("read stdin", err)
	}
	if strings.TrimSpace(content) == "" {
		exitErr("archive", fmt.Errorf("content is required (positional arg or stdin)"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	records, err := s.Archive(cmd.Context(), store.ArchiveParams{
		ProjectID: cfg.ProjectID,
		Content:   strings.TrimSpace(content),
		Priority:  priority,
	})
	if err != nil {
		exitErr("archive", err)
	}

	b, _ := json.Marshal(records)
	fmt.Println(string(b))
}
