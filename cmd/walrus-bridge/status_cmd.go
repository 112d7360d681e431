package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	cliutil "github.com/jhuhnke/solana-walrus/cli/util"
	"github.com/jhuhnke/solana-walrus/db"
)

var statusCmd = &cli.Command{
	Name:      "status",
	Usage:     "Show the state of an upload",
	ArgsUsage: "<upload id>",
	Flags:     []cli.Flag{cliutil.FlagJson},
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() != 1 {
			return fmt.Errorf("usage: status <upload id>")
		}
		id, err := parseUploadID(cctx.Args().First())
		if err != nil {
			return err
		}
		ctx := cliutil.ReqContext(cctx)

		s, err := setupSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		st, err := s.saga.Status(ctx, id)
		if err != nil {
			return fmt.Errorf("getting upload %s: %w", id, err)
		}

		if cctx.Bool(cliutil.FlagJson.Name) {
			return printJson(cctx.App.Writer, st)
		}
		printState(cctx.App.Writer, st)
		return nil
	},
}

var listCmd = &cli.Command{
	Name:  "list",
	Usage: "List uploads, most recent first",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "payer",
			Usage: "only list the uploads of this payer",
		},
		&cli.BoolFlag{
			Name:  "failed",
			Usage: "only list failed uploads",
		},
		&cli.IntFlag{
			Name:  "offset",
			Value: 0,
		},
		&cli.IntFlag{
			Name:  "limit",
			Value: 50,
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := cliutil.ReqContext(cctx)

		s, err := setupSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		var filter *db.FilterOptions
		if cctx.IsSet("payer") || cctx.IsSet("failed") {
			filter = &db.FilterOptions{}
			if cctx.IsSet("payer") {
				p := cctx.String("payer")
				filter.Payer = &p
			}
			if cctx.IsSet("failed") {
				f := cctx.Bool("failed")
				filter.HasError = &f
			}
		}

		total, err := s.saga.Count(ctx, filter)
		if err != nil {
			return err
		}
		uploads, err := s.saga.List(ctx, filter, cctx.Int("offset"), cctx.Int("limit"))
		if err != nil {
			return err
		}

		tw := tablewriter.NewWriter(cctx.App.Writer)
		tw.SetHeader([]string{"Upload", "Created", "File", "Size", "State", "Blob ID"})
		tw.SetBorder(false)
		tw.SetAutoWrapText(false)
		for _, st := range uploads {
			tw.Append([]string{
				st.ID.String(),
				humanize.Time(st.CreatedAt),
				st.FilePath,
				humanize.IBytes(st.FileSizeBytes),
				stateColor(st).Sprint(stateLabel(st)),
				st.Blob.BlobID,
			})
		}
		tw.Render()
		fmt.Fprintf(cctx.App.Writer, "%d of %d uploads\n", len(uploads), total)
		return nil
	},
}

var logsCmd = &cli.Command{
	Name:      "logs",
	Usage:     "Show the logs of an upload",
	ArgsUsage: "<upload id>",
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() != 1 {
			return fmt.Errorf("usage: logs <upload id>")
		}
		id, err := parseUploadID(cctx.Args().First())
		if err != nil {
			return err
		}
		ctx := cliutil.ReqContext(cctx)

		s, err := setupSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		logs, err := s.saga.Logs(ctx, id)
		if err != nil {
			return err
		}
		for _, l := range logs {
			line := fmt.Sprintf("%s %-5s %s", l.CreatedAt.Format("2006-01-02 15:04:05"), strings.ToUpper(l.LogLevel), l.LogMsg)
			if l.LogParams != "" {
				line += " " + l.LogParams
			}
			fmt.Fprintln(cctx.App.Writer, line)
		}
		return nil
	},
}

var feesCmd = &cli.Command{
	Name:  "fees",
	Usage: "Show the total of the protocol fees paid from this repo",
	Action: func(cctx *cli.Context) error {
		ctx := cliutil.ReqContext(cctx)

		s, err := setupSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		total, err := s.saga.FeesCollected(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cctx.App.Writer, "Fees paid: %s\n", total)
		return nil
	},
}
