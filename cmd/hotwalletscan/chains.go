package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/hotwalletscan/internal/model"
)

// NewChainsCmd creates the chains command.
func NewChainsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chains",
		Short: "List supported chains",
		Long: `Chains prints every chain name accepted by 'scan --chains', in the
order a scan crawls them by default.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, c := range model.SupportedChains() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
		},
	}
}
