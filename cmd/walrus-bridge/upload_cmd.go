package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/docker/go-units"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	cliutil "github.com/jhuhnke/solana-walrus/cli/util"
	"github.com/jhuhnke/solana-walrus/saga/types"
)

var flagPayer = &cli.StringFlag{
	Name:  "payer",
	Usage: "base58 address of the payer key to use; defaults to the only key of the wallet",
}

var flagEpochs = &cli.UintFlag{
	Name:  "epochs",
	Usage: "number of storage epochs; defaults to the configured value",
}

var quoteCmd = &cli.Command{
	Name:      "quote",
	Usage:     "Estimate the cost of storing a file",
	ArgsUsage: "[file]",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "size",
			Usage: "size of the content, eg 10MiB, instead of a file",
		},
		flagEpochs,
		cliutil.FlagJson,
	},
	Action: func(cctx *cli.Context) error {
		ctx := cliutil.ReqContext(cctx)

		var size uint64
		switch {
		case cctx.IsSet("size"):
			sz, err := units.RAMInBytes(cctx.String("size"))
			if err != nil {
				return fmt.Errorf("parsing size: %w", err)
			}
			if sz <= 0 {
				return fmt.Errorf("size must be positive")
			}
			size = uint64(sz)
		case cctx.Args().Len() == 1:
			fi, err := os.Stat(cctx.Args().First())
			if err != nil {
				return err
			}
			size = uint64(fi.Size())
		default:
			return fmt.Errorf("pass a file or --size")
		}

		s, err := setupSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		epochs := uint32(cctx.Uint(flagEpochs.Name))
		if epochs == 0 {
			epochs = s.node.Config.Storage.DefaultEpochs
		}

		q, err := s.saga.Quote(ctx, size, epochs)
		if err != nil {
			return err
		}

		if cctx.Bool(cliutil.FlagJson.Name) {
			return printJson(cctx.App.Writer, q)
		}
		w := cctx.App.Writer
		fmt.Fprintf(w, "Size:         %s (encoded %s)\n", humanize.IBytes(size), humanize.IBytes(q.EncodedSizeBytes))
		fmt.Fprintf(w, "Epochs:       %d\n", q.Epochs)
		fmt.Fprintf(w, "Storage cost: %s\n", q.StorageCost)
		fmt.Fprintf(w, "Write cost:   %s\n", q.WriteCost)
		fmt.Fprintf(w, "Total:        %s\n", color.New(color.Bold).Sprint(q.TotalCost))
		return nil
	},
}

var uploadCmd = &cli.Command{
	Name:      "upload",
	Usage:     "Pay for and store a file",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		flagPayer,
		flagEpochs,
		&cli.BoolFlag{
			Name:  "deletable",
			Usage: "whether the blob can be deleted by its owner; defaults to the configured value",
		},
		&cli.StringFlag{
			Name:  "receiver",
			Usage: "destination address that receives the blob object; defaults to the address derived from the payer",
		},
		cliutil.FlagJson,
	},
	Action: func(cctx *cli.Context) error {
		if cctx.Args().Len() != 1 {
			return fmt.Errorf("usage: upload <file>")
		}
		ctx := cliutil.ReqContext(cctx)

		s, err := setupSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		payer, err := s.node.GetProvidedOrDefaultPayer(cctx.String(flagPayer.Name))
		if err != nil {
			return err
		}

		cfg := s.node.Config.Storage
		epochs := uint32(cctx.Uint(flagEpochs.Name))
		if epochs == 0 {
			epochs = cfg.DefaultEpochs
		}
		deletable := cfg.DefaultDeletable
		if cctx.IsSet("deletable") {
			deletable = cctx.Bool("deletable")
		}

		req, err := types.NewUploadRequestFromFile(cctx.Args().First(), epochs, deletable, payer, cctx.String("receiver"))
		if err != nil {
			return err
		}
		log.Infow("uploading", "id", req.Digest(), "file", req.FilePath(), "size", humanize.IBytes(req.FileSizeBytes()), "payer", payer)

		wctx, stopWatch := context.WithCancel(ctx)
		defer stopWatch()
		if !cctx.Bool(cliutil.FlagJson.Name) {
			go watchProgress(wctx, s.saga, req.Digest(), cctx.App.ErrWriter)
		}

		blob, err := s.saga.Upload(ctx, req)
		stopWatch()
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return fmt.Errorf("upload %s interrupted, run `walrus-bridge resume %s` to continue", req.Digest(), req.Digest())
			}
			return fmt.Errorf("upload %s failed: %w", req.Digest(), err)
		}

		if cctx.Bool(cliutil.FlagJson.Name) {
			return printJson(cctx.App.Writer, blob)
		}
		w := cctx.App.Writer
		fmt.Fprintf(w, "%s\n", color.GreenString("Upload complete"))
		fmt.Fprintf(w, "Upload:       %s\n", req.Digest())
		fmt.Fprintf(w, "Blob ID:      %s\n", blob.BlobID)
		fmt.Fprintf(w, "Blob object:  %s\n", blob.BlobObjectID)
		fmt.Fprintf(w, "Certified in: %s\n", blob.CertificationTxID)
		return nil
	},
}

var resumeCmd = &cli.Command{
	Name:      "resume",
	Usage:     "Resume an interrupted upload, or every upload that can be resumed",
	ArgsUsage: "[upload id]",
	Action: func(cctx *cli.Context) error {
		ctx := cliutil.ReqContext(cctx)

		s, err := setupSession(cctx)
		if err != nil {
			return err
		}
		defer s.Close()

		if cctx.Args().Len() == 0 {
			if err := s.saga.ResumeActive(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cctx.App.Writer, color.GreenString("All uploads resumed to completion"))
			return nil
		}

		id, err := parseUploadID(cctx.Args().First())
		if err != nil {
			return err
		}

		wctx, stopWatch := context.WithCancel(ctx)
		defer stopWatch()
		go watchProgress(wctx, s.saga, id, cctx.App.ErrWriter)

		blob, err := s.saga.Resume(ctx, id)
		stopWatch()
		if err != nil {
			return fmt.Errorf("upload %s failed: %w", id, err)
		}
		fmt.Fprintf(cctx.App.Writer, "%s: blob %s (object %s)\n", color.GreenString("Upload complete"), blob.BlobID, blob.BlobObjectID)
		return nil
	},
}
