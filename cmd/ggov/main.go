package main

import (
	"fmt"
	"os"
)

func main() {
	clCmd.AddCommand(initCmd)
	clCmd.AddCommand(versionCmd)
	clCmd.AddCommand(accountCmd)
	clCmd.AddCommand(pubkeyCmd)
	clCmd.AddCommand(grantRequestCmd)
	clCmd.AddCommand(grantSizeCmd)
	clCmd.AddCommand(voteCmd)
	clCmd.AddCommand(executeCmd)
	clCmd.AddCommand(depositCmd)
	clCmd.AddCommand(proposalsCmd)
	clCmd.AddCommand(govCmd)
	if err := clCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
