package main

import (
	"fmt"

	"emperror.dev/errors"
	"github.com/spf13/cobra"

	"github.com/odvcencio/tig/pkg/object"
	"github.com/odvcencio/tig/pkg/repo"
)

func newShowRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-ref",
		Short: "List references and the digests they resolve to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			refs, err := r.GetAllReferences("refs")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range repo.RefNames(refs) {
				fmt.Fprintf(out, "%s %s\n", hashC.Sprint(refs[name]), name)
			}
			return nil
		},
	}
}

func newRevParseCmd() *cobra.Command {
	var peelTree, peelCommit, peelOnce bool

	cmd := &cobra.Command{
		Use:   "rev-parse <name>",
		Short: "Resolve a name to a single digest",
		Long: `Resolve <name> to a digest. <name> may be an abbreviated digest of at
least four hex characters, a tag, a branch, HEAD, or <name>:<path>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			var h object.Hash
			switch {
			case peelTree:
				h, err = r.PeelToTree(args[0])
			case peelCommit:
				h, err = r.PeelToCommit(args[0])
			case peelOnce:
				h, err = r.FindObject(args[0])
			default:
				h, err = r.ResolveName(args[0])
			}
			if err != nil {
				var ae *repo.AmbiguousNameError
				if errors.As(err, &ae) {
					for _, c := range ae.Candidates {
						fmt.Fprintf(cmd.ErrOrStderr(), "candidate: %s\n", c)
					}
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().BoolVar(&peelTree, "peel-tree", false, "peel tags and commits down to a tree")
	cmd.Flags().BoolVar(&peelCommit, "peel-commit", false, "peel tags down to a commit")
	cmd.Flags().BoolVar(&peelOnce, "object", false, "peel one level: a tag to its object, a commit to its tree")
	cmd.MarkFlagsMutuallyExclusive("peel-tree", "peel-commit", "object")
	return cmd
}
