package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/svnquery/svnquery/internal/index"
)

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <terms>",
		Short: "Search the local index",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}
	cmd.Flags().IntP("count", "k", 10, "Number of results")
	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	query := args[0]
	count, _ := cmd.Flags().GetInt("count")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	store, err := index.Open(cfg.Index.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	results, total, err := store.Search(query, count)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	type hit struct {
		Path      string   `json:"path"`
		Author    string   `json:"author,omitempty"`
		Revision  int      `json:"revision"`
		Score     float64  `json:"score"`
		Fragments []string `json:"fragments,omitempty"`
	}
	hits := make([]hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, hit{r.Path, r.Author, r.Revision, r.Score, r.Fragments})
	}

	writeOutput(cmd, map[string]any{"query": query, "total": total, "hits": hits}, func() {
		fmt.Printf("%s%sSearch results for: %q%s (%d of %d)\n\n", bold, cyan, query, reset, len(hits), total)

		if len(hits) == 0 {
			fmt.Println("  No results found.")
			return
		}

		for i, h := range hits {
			fmt.Printf("%s%d.%s %s%s%s  %sr%d%s  %.4f\n", bold, i+1, reset, bold, h.Path, reset, cyan, h.Revision, reset, h.Score)
			if h.Author != "" {
				fmt.Printf("   %sauthor:%s %s\n", cyan, reset, h.Author)
			}
			for _, frag := range h.Fragments {
				fmt.Printf("   %s\n", truncateText(frag, 200))
			}
			fmt.Println()
		}
	})
	return nil
}
