package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-news-aggregator/pkg/fsutil"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "fsutil",
		Short:        "List files and report file sizes",
		SilenceUsage: true,
	}
	root.AddCommand(newLsCmd(), newSizeCmd())
	return root
}

func newLsCmd() *cobra.Command {
	var (
		pattern   string
		recursive bool
	)
	cmd := &cobra.Command{
		Use:   "ls <dir>",
		Short: "List entries of a directory matching a glob pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := fsutil.ListDir(args[0], pattern, recursive)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&pattern, "pattern", "p", fsutil.DefaultPattern, "glob matched against entry names")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "descend into subdirectories")
	return cmd
}

func newSizeCmd() *cobra.Command {
	var unit string
	cmd := &cobra.Command{
		Use:   "size <file>...",
		Short: "Print file sizes in KB or MB",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				line, err := fsutil.FileSize(path, unit)
				if err != nil {
					return fmt.Errorf("size %s: %w", path, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&unit, "unit", "u", string(fsutil.KB), "kb or mb")
	return cmd
}
