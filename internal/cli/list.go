package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ariel-frischer/quacker/internal/catalog"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List built-in contracts (ls)",
	Long:    "List the built-in contracts with their descriptions and verifier counts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listContracts(cmd.OutOrStdout())
	},
}

func init() {
	listCmd.GroupID = GroupVerification
	rootCmd.AddCommand(listCmd)
}

func listContracts(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERIFIERS\tDESCRIPTION")
	for _, e := range catalog.All() {
		interf := e.Build()
		fmt.Fprintf(w, "%s\t%d\t%s\n", e.Name, interf.VerifierCount(), e.Description)
		if doc := interf.Documentation(); doc != nil {
			text, err := doc.Compile(nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "\t\t%s\n", text)
		}
	}
	return w.Flush()
}
