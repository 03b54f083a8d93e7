package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

func infoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <path>",
		Short: "Show metadata, properties and content stats for one path",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}
	cmd.Flags().IntP("revision", "r", 0, "Revision to inspect (defaults to head)")
	cmd.Flags().Bool("content", false, "Print the fetched text content")
	return cmd
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]

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

	data, err := repo.GetPathData(cmd.Context(), path, revision)
	if err != nil {
		return fmt.Errorf("fetch %s@%d: %w", path, revision, err)
	}
	if data == nil {
		fmt.Printf("%s%s%s does not exist at r%d\n", yellow, path, reset, revision)
		return nil
	}

	showContent, _ := cmd.Flags().GetBool("content")

	writeOutput(cmd, data, func() {
		fmt.Printf("%s%s%s@r%d%s\n\n", bold, cyan, data.Path, revision, reset)

		kind := "file"
		if data.IsDirectory {
			kind = "directory"
		}
		fmt.Printf("  %sKind:%s          %s\n", cyan, reset, kind)
		fmt.Printf("  %sSize:%s          %s\n", cyan, reset, formatBytes(data.Size))
		fmt.Printf("  %sAuthor:%s        %s\n", cyan, reset, data.Author)
		fmt.Printf("  %sModified:%s      %s\n", cyan, reset, data.Timestamp.Format(time.RFC3339))
		fmt.Printf("  %sFirst revision:%s r%d\n", cyan, reset, data.RevisionFirst)

		if len(data.Properties) > 0 {
			fmt.Printf("\n  %sProperties:%s\n", bold, reset)
			keys := make([]string, 0, len(data.Properties))
			for k := range data.Properties {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("    %s = %s\n", k, truncateText(data.Properties[k], 80))
			}
		}

		if data.HasText {
			fmt.Printf("\n  %sText:%s %d bytes fetched\n", cyan, reset, len(data.Text))
			if showContent {
				fmt.Println()
				fmt.Println(data.Text)
			}
		} else {
			fmt.Printf("\n  %sText:%s not fetched (directory, too large, or non-text mime type)\n", cyan, reset)
		}
	})
	return nil
}
