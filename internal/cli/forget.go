package cli

import (
	"fmt"

	"github.com/rcliao/agent-ledger/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "forget [id]",
		Short: "Remove an archived record",
		Args:  cobra.ExactArgs(1),
		Run:   runForget,
	}

	cmd.Flags().Bool("hard", false, "Permanent delete (irreversible)")

	RootCmd.AddCommand(cmd)
}

func runForget(cmd *cobra.Command, args []string) {
	hard, _ := cmd.Flags().GetBool("hard")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	err = s.Forget(cmd.Context(), store.ForgetParams{
		ProjectID: cfg.ProjectID,
		ID:        args[0],
		Hard:      hard,
	})
	if err != nil {
		exitErr("forget", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"project":%q,"id":%q}`+"\n", cfg.ProjectID, args[0])
}
