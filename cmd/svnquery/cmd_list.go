package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/svnquery/svnquery/internal/svn"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [path]",
		Short: "List every path under a directory at a revision",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runList,
	}
	cmd.Flags().IntP("revision", "r", 0, "Revision to list at (defaults to head)")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	path := "/"
	if len(args) == 1 {
		path = args[0]
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	repo, err := openRepository(cfg)
	if err != nil {
		return err
	}

	revision, _ := cmd.Flags().GetInt("revision")
	if revision == 0 {
		revision, err = repo.GetYoungestRevision(cmd.Context())
		if err != nil {
			return fmt.Errorf("head revision: %w", err)
		}
	}

	var paths []string
	err = repo.ForEachChild(cmd.Context(), path, revision, func(pc svn.PathChange) error {
		paths = append(paths, pc.Path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("list %s: %w", path, err)
	}

	writeOutput(cmd, map[string]any{"path": path, "revision": revision, "entries": paths}, func() {
		fmt.Printf("%s%s%s at r%d%s\n\n", bold, cyan, path, revision, reset)
		for _, p := range paths {
			fmt.Printf("  %s\n", p)
		}
		fmt.Printf("\n  %sTotal:%s %d entr%s\n", bold, reset, len(paths), plural(len(paths), "y", "ies"))
	})
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
