package main

import (
	"github.com/calehh/grantgov/tx"
	"github.com/spf13/cobra"
)

type depositArguments struct {
	txArguments
	Amount uint64
}

var depositArgs depositArguments

var depositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposit funds into a member balance",
	Long:  ``,
	Run:   depositRun,
}

func init() {
	txFlags(depositCmd, &depositArgs.txArguments)
	depositCmd.Flags().Uint64VarP(&depositArgs.Amount, "amount", "a", 0, "deposit amount")
}

func depositRun(cmd *cobra.Command, args []string) {
	stx := &tx.DepositTx{
		Amount: depositArgs.Amount,
	}
	sendGovTx(depositArgs.txArguments, tx.GovTxTypeDeposit, stx)
}
