package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/tig/pkg/object"
)

func newCatFileCmd() *cobra.Command {
	var showType, pretty bool

	cmd := &cobra.Command{
		Use:   "cat-file (-t | -p) <name>",
		Short: "Show the type or content of an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			h, err := r.ResolveName(args[0])
			if err != nil {
				return err
			}
			obj, err := r.Store.Read(h)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if showType {
				fmt.Fprintln(out, obj.Type())
				return nil
			}
			if tree, ok := obj.(*object.Tree); ok {
				for _, e := range tree.Entries() {
					kind := string(e.Kind())
					fmt.Fprintf(out, "%s %s %s\t%s\n",
						strings.ReplaceAll(e.Mode, " ", "0"), kind, e.Hash, e.Path)
				}
				return nil
			}
			data := obj.Serialize()
			if _, err := out.Write(data); err != nil {
				return err
			}
			// Commit and tag messages are stored without a trailing newline.
			if obj.Type() != object.TypeBlob && len(data) > 0 && data[len(data)-1] != '\n' {
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showType, "type", "t", false, "show the object type")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "show the object content")
	cmd.MarkFlagsOneRequired("type", "pretty")
	cmd.MarkFlagsMutuallyExclusive("type", "pretty")
	return cmd
}

func newHashObjectCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "hash-object <path>",
		Short: "Compute the blob digest of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			h, err := r.HashFile(args[0], write)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "store the blob in the object store")
	return cmd
}

func newWriteTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree",
		Short: "Write the index as a tree object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			h, err := r.WriteTree()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
