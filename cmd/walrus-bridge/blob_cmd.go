package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/urfave/cli/v2"

	cliutil "github.com/jhuhnke/solana-walrus/cli/util"
)

var deleteCmd = &cli.Command{
	Name:      "delete",
	Usage:     "Delete a deletable blob owned by a payer of this wallet",
	ArgsUsage: "<blob object id>",
	Flags: []cli.Flag{
		flagPayer,
		&cli.BoolFlag{
			Name:  "yes",
			Usage: "do not ask for confirmation",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() != 1 {
			return fmt.Errorf("usage: delete <blob object id>")
		}
		ctx := cliutil.ReqContext(cctx)

		if !cctx.Bool("yes") {
			prompt := promptui.Prompt{
				Label:     fmt.Sprintf("Delete blob object %s", cctx.Args().First()),
				IsConfirm: true,
			}
			if _, err := prompt.Run(); err != nil {
				return fmt.Errorf("delete aborted")
			}
		}

		s, err := setupSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		owner, err := s.node.GetProvidedOrDefaultPayer(cctx.String(flagPayer.Name))
		if err != nil {
			return err
		}

		res, err := s.saga.Delete(ctx, cctx.Args().First(), owner)
		if err != nil {
			return err
		}
		fmt.Fprintf(cctx.App.Writer, "%s in tx %s\n", color.GreenString("Blob deleted"), res.TxID)
		return nil
	},
}

var downloadCmd = &cli.Command{
	Name:      "download",
	Usage:     "Read a blob from the storage network",
	ArgsUsage: "<blob id>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "file to write the content to; defaults to stdout",
		},
	},
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() != 1 {
			return fmt.Errorf("usage: download <blob id>")
		}
		ctx := cliutil.ReqContext(cctx)

		s, err := setupSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		content, err := s.saga.Download(ctx, cctx.Args().First())
		if err != nil {
			return err
		}

		out := cctx.String("output")
		if out == "" {
			_, err = cctx.App.Writer.Write(content)
			return err
		}
		if err := os.WriteFile(out, content, 0644); err != nil {
			return err
		}
		log.Infow("downloaded blob", "blob", cctx.Args().First(), "file", out, "size", humanize.IBytes(uint64(len(content))))
		return nil
	},
}

var attributesCmd = &cli.Command{
	Name:      "attributes",
	Usage:     "Show the attributes of a blob object",
	ArgsUsage: "<blob object id>",
	Flags:     []cli.Flag{cliutil.FlagJson},
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() != 1 {
			return fmt.Errorf("usage: attributes <blob object id>")
		}
		ctx := cliutil.ReqContext(cctx)

		s, err := setupSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		attrs, err := s.saga.Attributes(ctx, cctx.Args().First())
		if err != nil {
			return err
		}
		if cctx.Bool(cliutil.FlagJson.Name) {
			return printJson(cctx.App.Writer, attrs)
		}

		keys := make([]string, 0, len(attrs))
		for k := range attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(cctx.App.Writer, "%s: %s\n", k, attrs[k])
		}
		return nil
	},
}
