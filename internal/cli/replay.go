package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rcliao/agent-ledger/internal/compaction"
	"github.com/rcliao/agent-ledger/internal/model"
	"github.com/rcliao/agent-ledger/internal/session"
	"github.com/spf13/cobra"
)

const maxLineBytes = 16 << 20

func init() {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Feed a conversation through a session",
		Long: "Read JSONL messages ({\"role\":...,\"content\":...,\"important\":...}) and append them to a session, " +
			"compacting against the archive as the budget fills. Writes the resulting snapshot as JSON.",
		Run: runReplay,
	}

	cmd.Flags().StringP("in", "i", "", "JSONL input file (default: stdin)")
	cmd.Flags().StringP("out", "o", "", "Snapshot output file (default: stdout)")
	cmd.Flags().StringP("snapshot", "s", "", "Resume from this snapshot")
	cmd.Flags().Bool("no-retrieval", false, "Compact without querying the archive")

	RootCmd.AddCommand(cmd)
}

func runReplay(cmd *cobra.Command, args []string) {
	in, _ := cmd.Flags().GetString("in")
	out, _ := cmd.Flags().GetString("out")
	snapPath, _ := cmd.Flags().GetString("snapshot")
	noRetrieval, _ := cmd.Flags().GetBool("no-retrieval")

	var retriever compaction.Retriever
	if !noRetrieval {
		s, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()
		retriever = newAugmentor(s)
	}

	var sess *session.Session
	var err error
	if snapPath != "" {
		snap, rerr := readSnapshotFile(snapPath)
		if rerr != nil {
			exitErr("read snapshot", rerr)
		}
		sess, err = session.Load(snap, retriever, logger)
	} else {
		sess, err = session.New(cfg.Session(), retriever, logger)
	}
	if err != nil {
		exitErr("session", err)
	}

	r := io.Reader(os.Stdin)
	if in != "" {
		f, err := os.Open(in)
		if err != nil {
			exitErr("open input", err)
		}
		defer f.Close()
		r = f
	}

	n, err := replay(cmd.Context(), sess, r)
	if err != nil {
		exitErr("replay", err)
	}
	logger.Info("replay: done", "appended", n, "compactions", len(sess.History()))

	w := io.Writer(os.Stdout)
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			exitErr("create output", err)
		}
		defer f.Close()
		w = f
	}
	if err := session.WriteSnapshot(w, sess.Export()); err != nil {
		exitErr("write snapshot", err)
	}
}

type replayLine struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Important bool   `json:"important"`
}

// replay appends each JSONL message in r to sess and returns how many were
// appended. Blank lines are skipped; the first bad line stops the replay.
func replay(ctx context.Context, sess *session.Session, r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	n, lineNo := 0, 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rl replayLine
		if err := json.Unmarshal([]byte(line), &rl); err != nil {
			return n, fmt.Errorf("line %d: %w", lineNo, err)
		}
		role, err := model.ParseRole(rl.Role)
		if err != nil {
			return n, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if _, err := sess.Append(ctx, role, rl.Content, model.Attributes{Important: rl.Important}); err != nil {
			return n, fmt.Errorf("line %d: %w", lineNo, err)
		}
		n++
	}
	return n, sc.Err()
}

func readSnapshotFile(path string) (session.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return session.Snapshot{}, err
	}
	defer f.Close()
	return session.ReadSnapshot(f)
}
