package main

import (
	"io"
	llog "log"
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/jhuhnke/solana-walrus/build"
	cliutil "github.com/jhuhnke/solana-walrus/cli/util"
)

var log = logging.Logger("walrus-bridge")

func init() {
	llog.SetOutput(io.Discard)
}

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	app := &cli.App{
		Name:                 "walrus-bridge",
		Usage:                "Store files on Walrus, paid from a Solana wallet",
		EnableBashCompletion: true,
		Version:              build.UserVersion(),
		Flags: []cli.Flag{
			cliutil.FlagRepo,
			cliutil.FlagGatewayURL,
			cliutil.FlagVeryVerbose,
		},
		Before: before,
		Commands: []*cli.Command{
			initCmd,
			quoteCmd,
			uploadCmd,
			resumeCmd,
			statusCmd,
			listCmd,
			logsCmd,
			feesCmd,
			deleteCmd,
			downloadCmd,
			attributesCmd,
			walletCmd,
		},
	}
	app.Setup()
	return app
}

func before(cctx *cli.Context) error {
	_ = logging.SetLogLevel("walrus-bridge", "INFO")
	_ = logging.SetLogLevel("saga", "INFO")

	if cliutil.IsVeryVerbose {
		_ = logging.SetLogLevel("walrus-bridge", "DEBUG")
		_ = logging.SetLogLevel("saga", "DEBUG")
		_ = logging.SetLogLevel("gateway", "DEBUG")
		_ = logging.SetLogLevel("fees", "DEBUG")
	}

	return nil
}
