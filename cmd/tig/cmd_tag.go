package main

import (
	"fmt"
	"strings"

	"emperror.dev/errors"
	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	var annotate bool
	var heavy bool
	var message string
	var showHash bool

	cmd := &cobra.Command{
		Use:   "tag [name] [target]",
		Short: "List or create tags",
		Long: `List tags, or create tag <name> for <target> (default HEAD).

Without flags the new ref points at the object <target> peels to one level:
a tag's object or a commit's tree. --heavy writes a placeholder tag object
for that object first. -a writes an annotated tag for <target> itself with a
tagger line and the message given by -m.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				refs, err := r.GetAllReferences("refs/tags")
				if err != nil {
					return err
				}
				names, err := r.ListTags()
				if err != nil {
					return err
				}
				for _, name := range names {
					if showHash {
						fmt.Fprintf(out, "%s %s\n", hashC.Sprint(refs["refs/tags/"+name]), name)
					} else {
						fmt.Fprintln(out, name)
					}
				}
				return nil
			}

			name := args[0]
			target := "HEAD"
			if len(args) == 2 {
				target = strings.TrimSpace(args[1])
			}

			if annotate {
				h, err := r.CreateAnnotatedTag(name, target, message)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "tagged %s as %s\n", shortHash(h), name)
				return nil
			}
			if message != "" {
				return errors.New("tag: -m requires -a")
			}

			h, err := r.CreateTag("refs/tags", name, target, heavy)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "tagged %s as %s\n", shortHash(h), name)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&annotate, "annotate", "a", false, "create an annotated tag object")
	cmd.Flags().BoolVar(&heavy, "heavy", false, "write a placeholder tag object")
	cmd.Flags().StringVarP(&message, "message", "m", "", "annotated tag message")
	cmd.Flags().BoolVar(&showHash, "show-hash", false, "show tag target hashes when listing")
	cmd.MarkFlagsMutuallyExclusive("annotate", "heavy")
	return cmd
}

func newBranchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch [name] [start]",
		Short: "List or create branches",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) > 0 {
				start := ""
				if len(args) == 2 {
					start = args[1]
				}
				h, err := r.CreateBranch(args[0], start)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "created branch '%s' at %s\n", args[0], shortHash(h))
				return nil
			}

			branches, err := r.ListBranches()
			if err != nil {
				return err
			}
			current, _ := r.CurrentBranch()
			for _, b := range branches {
				if b == current {
					fmt.Fprintf(out, "* %s\n", currentC.Sprint(b))
				} else {
					fmt.Fprintf(out, "  %s\n", b)
				}
			}
			return nil
		},
	}
	return cmd
}
