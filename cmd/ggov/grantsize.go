package main

import (
	"github.com/calehh/grantgov/tx"
	"github.com/spf13/cobra"
)

type grantSizeArguments struct {
	txArguments
	NewAmount uint64
}

var grantSizeArgs grantSizeArguments

var grantSizeCmd = &cobra.Command{
	Use:   "grantsize",
	Short: "Submit a proposal to change the flat grant size",
	Long:  ``,
	Run:   grantSizeRun,
}

func init() {
	txFlags(grantSizeCmd, &grantSizeArgs.txArguments)
	grantSizeCmd.Flags().Uint64VarP(&grantSizeArgs.NewAmount, "amount", "a", 0, "new grant amount")
}

func grantSizeRun(cmd *cobra.Command, args []string) {
	stx := &tx.GrantSizeTx{
		NewAmount: grantSizeArgs.NewAmount,
	}
	sendGovTx(grantSizeArgs.txArguments, tx.GovTxTypeGrantSize, stx)
}
