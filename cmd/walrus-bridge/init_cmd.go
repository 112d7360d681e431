package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/jhuhnke/solana-walrus/build"
	cliutil "github.com/jhuhnke/solana-walrus/cli/util"
	"github.com/jhuhnke/solana-walrus/cli/node"
)

var initCmd = &cli.Command{
	Name:  "init",
	Usage: "Initialise the walrus-bridge repo and generate a payer key",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "network",
			Usage: "network to run against (testnet or mainnet)",
			Value: build.DefaultNetwork(),
		},
	},
	Action: func(cctx *cli.Context) error {
		repo := cctx.String(cliutil.FlagRepo.Name)
		payer, err := node.Init(repo, cctx.String("network"))
		if err != nil {
			return err
		}

		n, err := node.Setup(repo)
		if err != nil {
			return err
		}
		defer n.Close() //nolint:errcheck

		receiver, err := n.Wallet.DeriveReceiver(payer)
		if err != nil {
			return err
		}

		log.Infow("repo initialised", "repo", n.Dir, "network", n.Config.Network)
		fmt.Fprintf(cctx.App.Writer, "Payer:    %s\n", payer)
		fmt.Fprintf(cctx.App.Writer, "Receiver: %s\n", receiver)
		return nil
	},
}
