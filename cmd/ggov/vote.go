package main

import (
	"github.com/calehh/grantgov/tx"
	"github.com/spf13/cobra"
)

type voteArguments struct {
	txArguments
	Proposal uint64
	Against  bool
}

var voteArgs voteArguments

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Vote on an active proposal",
	Long:  ``,
	Run:   voteRun,
}

func init() {
	txFlags(voteCmd, &voteArgs.txArguments)
	voteCmd.Flags().Uint64VarP(&voteArgs.Proposal, "proposal", "p", 0, "proposal index")
	voteCmd.Flags().BoolVarP(&voteArgs.Against, "against", "", false, "vote against the proposal")
}

func voteRun(cmd *cobra.Command, args []string) {
	stx := &tx.VoteTx{
		Proposal: voteArgs.Proposal,
		Support:  !voteArgs.Against,
	}
	sendGovTx(voteArgs.txArguments, tx.GovTxTypeVote, stx)
}
