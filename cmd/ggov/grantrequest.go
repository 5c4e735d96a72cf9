package main

import (
	"github.com/calehh/grantgov/tx"
	"github.com/spf13/cobra"
)

type grantRequestArguments struct {
	txArguments
	Recipient string
}

var grantRequestArgs grantRequestArguments

var grantRequestCmd = &cobra.Command{
	Use:   "grantrequest",
	Short: "Submit a proposal to issue the current grant to a recipient",
	Long:  ``,
	Run:   grantRequestRun,
}

func init() {
	txFlags(grantRequestCmd, &grantRequestArgs.txArguments)
	grantRequestCmd.Flags().StringVarP(&grantRequestArgs.Recipient, "recipient", "r", "", "recipient address")
}

func grantRequestRun(cmd *cobra.Command, args []string) {
	stx := &tx.GrantRequestTx{
		Recipient: grantRequestArgs.Recipient,
	}
	sendGovTx(grantRequestArgs.txArguments, tx.GovTxTypeGrantRequest, stx)
}
