package main

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/cometbft/cometbft/rpc/client/http"
	"github.com/spf13/cobra"
)

type proposalsArguments struct {
	Url      string
	Proposal uint64
}

var proposalsArgs proposalsArguments

var proposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "Show a proposal, or the proposal count when no index is given",
	Long:  ``,
	Run:   proposalsRun,
}

func init() {
	urlFlag(proposalsCmd, &proposalsArgs.Url)
	proposalsCmd.Flags().Uint64VarP(&proposalsArgs.Proposal, "proposal", "p", 0, "proposal index")
}

func proposalsRun(cmd *cobra.Command, args []string) {
	cli, err := http.New(proposalsArgs.Url, "/websocket")
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return
	}
	ctx := context.Background()
	var dat []byte
	if proposalsArgs.Proposal != 0 {
		s := fmt.Sprintf("0%x", proposalsArgs.Proposal)
		if len(s)&1 == 1 {
			s = s[1:]
		}
		dat, _ = hex.DecodeString(s)
	}
	res, err := cli.ABCIQuery(ctx, "/proposals/", dat)
	if err != nil {
		fmt.Printf("request err:%v\n", err)
		return
	}
	if res.Response.Code != 0 {
		fmt.Printf("%#v\n", res)
		return
	}
	fmt.Printf("height:%v %s\n", res.Response.Height, string(res.Response.Value))
}

type govArguments struct {
	Url string
}

var govArgs govArguments

var govCmd = &cobra.Command{
	Use:   "gov",
	Short: "Show the governance configuration and treasury",
	Long:  ``,
	Run:   govRun,
}

func init() {
	urlFlag(govCmd, &govArgs.Url)
}

func govRun(cmd *cobra.Command, args []string) {
	cli, err := http.New(govArgs.Url, "/websocket")
	if err != nil {
		fmt.Printf("new client err:%v\n", err)
		return
	}
	res, err := cli.ABCIQuery(context.Background(), "/gov/", nil)
	if err != nil {
		fmt.Printf("request err:%v\n", err)
		return
	}
	if res.Response.Code != 0 {
		fmt.Printf("%#v\n", res)
		return
	}
	fmt.Printf("height:%v %s\n", res.Response.Height, string(res.Response.Value))
}
