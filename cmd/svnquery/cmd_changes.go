package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/svnquery/svnquery/internal/svn"
)

func changesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "changes <first> <last>",
		Short: "Show the paths changed in a revision range",
		Args:  cobra.ExactArgs(2),
		RunE:  runChanges,
	}
}

func runChanges(cmd *cobra.Command, args []string) error {
	first, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("first revision must be a number: %q", args[0])
	}
	last, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("last revision must be a number: %q", args[1])
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	repo, err := openRepository(cfg)
	if err != nil {
		return err
	}

	type changeRow struct {
		Revision int    `json:"revision"`
		Change   string `json:"change"`
		Path     string `json:"path"`
		IsCopy   bool   `json:"is_copy,omitempty"`
	}
	var rows []changeRow

	err = repo.ForEachChange(cmd.Context(), first, last, func(pc svn.PathChange) error {
		rows = append(rows, changeRow{
			Revision: pc.Revision,
			Change:   pc.Change.String(),
			Path:     pc.Path,
			IsCopy:   pc.IsCopy,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan changes: %w", err)
	}

	writeOutput(cmd, rows, func() {
		fmt.Printf("%s%sChanges r%d..r%d%s\n\n", bold, cyan, first, last, reset)
		if len(rows) == 0 {
			fmt.Println("  No changes in range.")
			return
		}
		for _, row := range rows {
			copyMark := ""
			if row.IsCopy {
				copyMark = "  (copy)"
			}
			fmt.Printf("  %sr%-7d%s %-8s %s%s\n", cyan, row.Revision, reset, row.Change, row.Path, copyMark)
		}
		fmt.Printf("\n  %sTotal:%s %d change(s)\n", bold, reset, len(rows))
	})
	return nil
}
