package main

import (
	"fmt"
	"os"

	"emperror.dev/errors"
	"github.com/spf13/cobra"

	"github.com/odvcencio/tig/internal/config"
	"github.com/odvcencio/tig/pkg/repo"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty tig repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := workDir()
			if err != nil {
				return err
			}
			if toolConfig.Backend == config.BackendFS {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return errors.WrapIf(err, "create directory")
				}
			}

			b, err := openBackend()
			if err != nil {
				return err
			}
			r, err := repo.Init(b, "/")
			if err != nil {
				return err
			}

			for key, value := range map[string]string{
				"user.name":  toolConfig.User.Name,
				"user.email": toolConfig.User.Email,
			} {
				if value == "" {
					continue
				}
				if err := r.SetConfig(key, value); err != nil {
					return err
				}
			}

			where := dir
			if toolConfig.Backend == config.BackendJSON {
				where = toolConfig.JSONPath
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s empty tig repository in %s (%s backend)\n", successC.Sprint("initialized"), where, toolConfig.Backend)
			return nil
		},
	}
}
