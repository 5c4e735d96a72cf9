package main

import (
	"github.com/calehh/grantgov/tx"
	"github.com/spf13/cobra"
)

type executeArguments struct {
	txArguments
	Proposal uint64
}

var executeArgs executeArguments

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Execute a queued proposal",
	Long:  ``,
	Run:   executeRun,
}

func init() {
	txFlags(executeCmd, &executeArgs.txArguments)
	executeCmd.Flags().Uint64VarP(&executeArgs.Proposal, "proposal", "p", 0, "proposal index")
}

func executeRun(cmd *cobra.Command, args []string) {
	stx := &tx.ExecuteTx{
		Proposal: executeArgs.Proposal,
	}
	sendGovTx(executeArgs.txArguments, tx.GovTxTypeExecute, stx)
}
