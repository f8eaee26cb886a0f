package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/tig/pkg/repo"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show worktree and index status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			entries, err := r.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			branch, err := r.CurrentBranch()
			if err != nil {
				return err
			}
			_, born, err := r.HeadHash()
			if err != nil {
				return err
			}
			switch {
			case branch == "":
				fmt.Fprintln(out, "HEAD detached")
			case !born:
				fmt.Fprintf(out, "on %s (no commits yet)\n", branch)
			default:
				fmt.Fprintf(out, "on %s\n", branch)
			}

			var staged, unstaged, untracked []string
			for _, e := range entries {
				switch e.IndexStatus {
				case repo.StatusNew, repo.StatusModified, repo.StatusDeleted:
					staged = append(staged, fmt.Sprintf("  %-9s %s", e.IndexStatus.String()+":", e.Path))
				}
				switch e.WorkStatus {
				case repo.StatusDirty:
					unstaged = append(unstaged, fmt.Sprintf("  %-9s %s", "modified:", e.Path))
				case repo.StatusDeleted:
					unstaged = append(unstaged, fmt.Sprintf("  %-9s %s", "deleted:", e.Path))
				case repo.StatusUntracked:
					untracked = append(untracked, "  "+e.Path)
				}
			}

			section := func(title string, lines []string) {
				if len(lines) == 0 {
					return
				}
				fmt.Fprintf(out, "\n%s:\n%s\n", title, strings.Join(lines, "\n"))
			}
			section("changes to be committed", staged)
			section("changes not staged", unstaged)
			section("untracked files", untracked)
			if len(entries) == 0 {
				fmt.Fprintln(out, "nothing to commit, working tree clean")
			}
			return nil
		},
	}
}

func newLogCmd() *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log [name]",
		Short: "Show first-parent commit history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			name := "HEAD"
			if len(args) == 1 {
				name = args[0]
			}
			entries, err := r.Log(name, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				subject, _, _ := strings.Cut(strings.TrimSpace(e.Commit.Message()), "\n")
				if oneline {
					fmt.Fprintf(out, "%s %s\n", hashC.Sprint(shortHash(e.Hash)), subject)
					continue
				}
				fmt.Fprintf(out, "commit %s\n", hashC.Sprint(e.Hash))
				if author := e.Commit.Header("author"); len(author) > 0 {
					who, when := splitSignature(author[0])
					fmt.Fprintf(out, "Author: %s\n", who)
					if !when.IsZero() {
						fmt.Fprintf(out, "Date:   %s\n", when.Format("2006-01-02 15:04:05 -0700"))
					}
				}
				fmt.Fprintln(out)
				for _, line := range strings.Split(strings.TrimRight(e.Commit.Message(), "\n"), "\n") {
					fmt.Fprintf(out, "    %s\n", line)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "one line per commit")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum commits to show (0 for all)")
	return cmd
}

// splitSignature splits "Name <email> <unix> <tz>" into the identity and the
// time. The time is zero when the trailing fields do not parse.
func splitSignature(sig string) (string, time.Time) {
	fields := strings.Fields(sig)
	if len(fields) < 3 {
		return sig, time.Time{}
	}
	tz := fields[len(fields)-1]
	unix := fields[len(fields)-2]
	sec, err := strconv.ParseInt(unix, 10, 64)
	if err != nil {
		return sig, time.Time{}
	}
	when := time.Unix(sec, 0).UTC()
	if loc, err := time.Parse("-0700", tz); err == nil {
		when = when.In(loc.Location())
	}
	idx := strings.LastIndex(sig, unix)
	return strings.TrimSpace(sig[:idx]), when
}
