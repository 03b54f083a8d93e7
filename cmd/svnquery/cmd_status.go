package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/svnquery/svnquery/internal/index"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show local index status",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	state, err := index.LoadState(cfg.Index.Path, cfg.Repository.URL)
	if err != nil {
		return err
	}

	type statusData struct {
		Repository string `json:"repository"`
		Revision   int    `json:"revision"`
		Documents  int    `json:"documents"`
		IndexedAt  string `json:"indexed_at,omitempty"`
	}
	data := statusData{
		Repository: state.RepositoryURL,
		Revision:   state.Revision,
		Documents:  state.Documents,
	}
	if !state.IndexedAt.IsZero() {
		data.IndexedAt = state.IndexedAt.Format(time.RFC3339)
	}

	writeOutput(cmd, data, func() {
		fmt.Printf("%s%sIndex status%s\n\n", bold, cyan, reset)

		if state.IsEmpty() {
			fmt.Printf("  %sNo index found.%s Run %ssvnquery index%s to create one.\n", yellow, reset, bold, reset)
			return
		}

		fmt.Printf("  %sRepository:%s   %s\n", cyan, reset, state.RepositoryURL)
		fmt.Printf("  %sRevision:%s     r%d\n", cyan, reset, state.Revision)
		fmt.Printf("  %sDocuments:%s    %d\n", cyan, reset, state.Documents)
		fmt.Printf("  %sLast indexed:%s %s\n", cyan, reset, state.IndexedAt.Format(time.RFC3339))
	})
	return nil
}
