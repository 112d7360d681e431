package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	cliutil "github.com/jhuhnke/solana-walrus/cli/util"
	"github.com/jhuhnke/solana-walrus/gateway"
	"github.com/jhuhnke/solana-walrus/wallet"
)

var walletCmd = &cli.Command{
	Name:  "wallet",
	Usage: "Manage payer keys",
	Subcommands: []*cli.Command{
		walletNew,
		walletList,
		walletImport,
		walletImportReceiver,
	},
}

var walletNew = &cli.Command{
	Name:  "new",
	Usage: "Generate a new payer key",
	Action: func(cctx *cli.Context) error {
		n, err := setupNode(cctx)
		if err != nil {
			return err
		}
		defer n.Close() //nolint:errcheck

		addr, err := n.Wallet.Generate()
		if err != nil {
			return err
		}
		fmt.Fprintln(cctx.App.Writer, addr)
		return nil
	},
}

var walletList = &cli.Command{
	Name:  "list",
	Usage: "List payer keys with their receiver address",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "balance",
			Usage: "query the source ledger balance of every payer",
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := cliutil.ReqContext(cctx)

		n, err := setupNode(cctx)
		if err != nil {
			return err
		}
		defer n.Close() //nolint:errcheck

		addrs, err := n.Wallet.List()
		if err != nil {
			return err
		}

		header := []string{"Payer", "Receiver"}
		var ledger *gateway.SourceLedger
		if cctx.Bool("balance") {
			gapi, closer, err := cliutil.GetGatewayAPI(cctx, n.Config)
			if err != nil {
				return fmt.Errorf("cant setup gateway connection: %w", err)
			}
			defer closer()
			ledger = gateway.New(gapi, gateway.Config{}).SourceLedger()
			header = append(header, "Balance")
		}

		tw := tablewriter.NewWriter(cctx.App.Writer)
		tw.SetHeader(header)
		tw.SetBorder(false)
		for _, a := range addrs {
			recv, err := n.Wallet.DeriveReceiver(a)
			if err != nil {
				return err
			}
			row := []string{a, recv}
			if ledger != nil {
				bal, err := ledger.Balance(ctx, a)
				if err != nil {
					row = append(row, "error: "+err.Error())
				} else {
					row = append(row, bal.String())
				}
			}
			tw.Append(row)
		}
		tw.Render()
		return nil
	},
}

var walletImport = &cli.Command{
	Name:      "import",
	Usage:     "Import a payer key, from a key file or from stdin",
	ArgsUsage: "[<key file> (optional, will read from stdin if omitted)]",
	Action: func(cctx *cli.Context) error {
		n, err := setupNode(cctx)
		if err != nil {
			return err
		}
		defer n.Close() //nolint:errcheck

		if cctx.Args().Present() && cctx.Args().First() != "-" {
			addr, err := n.Wallet.Import(cctx.Args().First())
			if err != nil {
				return err
			}
			fmt.Fprintln(cctx.App.Writer, addr)
			return nil
		}

		var inpdata []byte
		if term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprint(cctx.App.Writer, "Enter secret key (not displayed in the terminal): ")
			inpdata, err = term.ReadPassword(int(os.Stdin.Fd()))
			if err != nil {
				return err
			}
			fmt.Fprintln(cctx.App.Writer)
		} else {
			inpdata, err = bufio.NewReader(os.Stdin).ReadBytes('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
		}

		k, err := wallet.ParseKey(inpdata)
		if err != nil {
			return err
		}
		addr, err := n.Wallet.Put(k)
		if err != nil {
			return err
		}
		fmt.Fprintln(cctx.App.Writer, addr)
		return nil
	},
}

var walletImportReceiver = &cli.Command{
	Name:      "import-receiver",
	Usage:     "Import the key of a destination address, so that it can be used as --receiver",
	ArgsUsage: "<key file>",
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() != 1 {
			return fmt.Errorf("usage: wallet import-receiver <key file>")
		}
		n, err := setupNode(cctx)
		if err != nil {
			return err
		}
		defer n.Close() //nolint:errcheck

		addr, err := n.Wallet.ImportReceiver(cctx.Args().First())
		if err != nil {
			return err
		}
		fmt.Fprintln(cctx.App.Writer, addr)
		return nil
	},
}
