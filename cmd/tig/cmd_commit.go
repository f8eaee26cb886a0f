package main

import (
	"fmt"
	"strings"

	"emperror.dev/errors"
	"github.com/spf13/cobra"

	"github.com/odvcencio/tig/pkg/object"
	"github.com/odvcencio/tig/pkg/storage"
)

func newCommitCmd() *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record the index as a new commit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return errors.New("commit message is required (-m)")
			}

			r, err := openRepo()
			if err != nil {
				return err
			}
			if !strings.HasSuffix(message, "\n") {
				message += "\n"
			}
			h, err := r.Commit(message)
			if err != nil {
				return err
			}

			branch, _ := r.CurrentBranch()
			if branch == "" {
				branch = "detached HEAD"
			}
			subject, _, _ := strings.Cut(message, "\n")
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", branch, shortHash(h), subject)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	return cmd
}

func newCheckoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout <commit> <dir>",
		Short: "Write the tree of a commit into an empty directory",
		Long: "Write the tree of <commit> into <dir>, which is created if missing and must " +
			"otherwise be empty. HEAD and the index are not changed.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			commit, err := r.PeelToCommit(args[0])
			if err != nil {
				return err
			}

			dest := storage.Abs(r.RootDir + "/" + args[1])
			if !r.Backend.IsFolder(dest) && !r.Backend.IsFile(dest) {
				if err := storage.MkdirAll(r.Backend, dest); err != nil {
					return err
				}
			}
			if err := r.Checkout(commit, dest); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checked out %s into %s\n", shortHash(commit), args[1])
			return nil
		},
	}
	return cmd
}

func shortHash(h object.Hash) string {
	s := string(h)
	if len(s) > 8 {
		s = s[:8]
	}
	return s
}
