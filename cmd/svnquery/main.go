// Command svnquery indexes a Subversion repository into a local full-text
// index and answers queries against it, from the command line or over HTTP.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "0.9.0"

func main() {
	root := &cobra.Command{
		Use:     "svnquery",
		Short:   "svnquery -- full-text search over a Subversion repository",
		Version: version,
	}

	root.PersistentFlags().StringP("config", "c", "svnquery.yaml", "Path to the YAML config file")
	root.PersistentFlags().Bool("json", false, "Output machine-readable JSON")
	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress progress output, only print the result")

	root.AddCommand(indexCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(changesCmd())
	root.AddCommand(listCmd())
	root.AddCommand(infoCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(authCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
