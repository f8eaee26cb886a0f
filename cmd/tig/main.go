package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"emperror.dev/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/odvcencio/tig/internal/config"
	"github.com/odvcencio/tig/pkg/repo"
	"github.com/odvcencio/tig/pkg/storage"
)

var rootFlags struct {
	Debug      bool
	Directory  string
	Backend    string
	JSONPath   string
	ConfigPath string
}

// toolConfig is loaded in the root PersistentPreRunE.
var toolConfig = config.Default()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tig",
		Short: "A small content-addressed version control store",

		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, loaded, err := config.Load(rootFlags.ConfigPath)
			if err != nil {
				return errors.WrapIf(err, "failed to load configuration")
			}
			if rootFlags.Backend != "" {
				cfg.Backend = rootFlags.Backend
			}
			if rootFlags.JSONPath != "" {
				cfg.JSONPath = rootFlags.JSONPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			toolConfig = cfg

			lvl, _ := cfg.Level()
			logrus.SetLevel(lvl)
			if rootFlags.Debug {
				logrus.SetLevel(logrus.DebugLevel)
			}
			logrus.WithFields(logrus.Fields{
				"backend": cfg.Backend,
				"loaded":  loaded,
			}).Debug("loaded configuration")
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVar(&rootFlags.Debug, "debug", false, "enable verbose debug logging")
	flags.StringVarP(&rootFlags.Directory, "dir", "C", "", "run as if started in this directory")
	flags.StringVar(&rootFlags.Backend, "backend", "", `storage backend: "fs" or "json"`)
	flags.StringVar(&rootFlags.JSONPath, "json-path", "", "document used by the json backend")
	flags.StringVar(&rootFlags.ConfigPath, "config", "", "tool config file (default $XDG_CONFIG_HOME/tig/config.toml)")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newAddCmd(),
		newRmCmd(),
		newResetCmd(),
		newLsFilesCmd(),
		newLsTreeCmd(),
		newCatFileCmd(),
		newHashObjectCmd(),
		newWriteTreeCmd(),
		newCommitCmd(),
		newCheckoutCmd(),
		newTagCmd(),
		newBranchCmd(),
		newShowRefCmd(),
		newRevParseCmd(),
		newConfigCmd(),
		newDumpCmd(),
		newReflogCmd(),
		newStatusCmd(),
		newLogCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if rootFlags.Debug {
			fmt.Fprintf(os.Stderr, "error: %s\n%s\n", err, indent(fmt.Sprintf("%+v", err), "\t"))
		} else {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
		}
		os.Exit(1)
	}
}

func indent(s string, prefix string) string {
	return prefix + strings.ReplaceAll(s, "\n", "\n"+prefix)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "tig 0.1.0-dev")
		},
	}
}

// workDir returns the directory the fs backend is rooted at.
func workDir() (string, error) {
	dir := rootFlags.Directory
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.WrapIf(err, "resolve path")
	}
	return abs, nil
}

// openBackend returns the configured storage backend. The json document path
// is taken relative to the -C directory.
func openBackend() (storage.Backend, error) {
	dir, err := workDir()
	if err != nil {
		return nil, err
	}
	switch toolConfig.Backend {
	case config.BackendJSON:
		p := toolConfig.JSONPath
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		return storage.OpenJSON(p)
	default:
		return storage.NewFS(dir), nil
	}
}

func openRepo() (*repo.Repo, error) {
	b, err := openBackend()
	if err != nil {
		return nil, err
	}
	return repo.Open(b, "/")
}
