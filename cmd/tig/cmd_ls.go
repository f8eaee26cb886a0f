package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newLsFilesCmd() *cobra.Command {
	var long bool

	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "List staged files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			idx, err := r.ReadIndex()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range idx.Entries {
				if !long {
					fmt.Fprintln(out, e.Name)
					continue
				}
				fmt.Fprintf(out, "%06o %s %d %8s\t%s\n",
					e.Mode(), hashC.Sprint(e.Hash), e.Stage, humanize.Bytes(uint64(e.Size)), e.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&long, "long", "l", false, "show mode, hash, stage and size")
	return cmd
}

func newLsTreeCmd() *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "ls-tree <name>",
		Short: "List the contents of a tree",
		Long:  "List the tree that <name> peels to. <name> may be a digest prefix, tag, branch or HEAD.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			entries, err := r.LsTree(args[0], recursive)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				kind := string(e.Kind)
				fmt.Fprintf(out, "%s %s %s\t%s\n",
					strings.ReplaceAll(e.Mode, " ", "0"), kindColor(kind).Sprint(kind), hashC.Sprint(e.Hash), e.Path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees")
	return cmd
}
