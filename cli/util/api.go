package cliutil

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/filecoin-project/go-jsonrpc"
	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	"github.com/jhuhnke/solana-walrus/api"
	"github.com/jhuhnke/solana-walrus/api/client"
	"github.com/jhuhnke/solana-walrus/metrics/proxy"
	"github.com/jhuhnke/solana-walrus/node/config"
)

var log = logging.Logger("cli")

// metadataTestGateway is the App.Metadata key under which tests install a
// gateway implementation.
const metadataTestGateway = "testnode-gateway"

var IsVeryVerbose bool

var FlagVeryVerbose = &cli.BoolFlag{
	Name:        "vv",
	Usage:       "enables very verbose mode, useful for debugging the CLI",
	Destination: &IsVeryVerbose,
}

var FlagRepo = &cli.StringFlag{
	Name:    "repo",
	Usage:   "repo directory for the walrus-bridge client",
	Value:   "~/.walrus-bridge",
	EnvVars: []string{"WALRUS_BRIDGE_REPO"},
}

var FlagGatewayURL = &cli.StringFlag{
	Name:  "gateway-url",
	Usage: "overrides the gateway url of the configured network",
}

var FlagJson = &cli.BoolFlag{
	Name:  "json",
	Usage: "output results in json format",
}

// SetTestGateway makes GetGatewayAPI return a, without dialing.
func SetTestGateway(app *cli.App, a api.Gateway) {
	if app.Metadata == nil {
		app.Metadata = map[string]interface{}{}
	}
	app.Metadata[metadataTestGateway] = a
}

// GetGatewayAPI connects to the gateway of the active network of cfg.
func GetGatewayAPI(cctx *cli.Context, cfg *config.Config) (api.Gateway, jsonrpc.ClientCloser, error) {
	if tn, ok := cctx.App.Metadata[metadataTestGateway]; ok {
		return tn.(api.Gateway), func() {}, nil
	}

	n, err := cfg.ActiveNetwork()
	if err != nil {
		return nil, nil, err
	}
	addr := n.GatewayURL
	if cctx.IsSet(FlagGatewayURL.Name) {
		addr = cctx.String(FlagGatewayURL.Name)
	}

	headers := http.Header{}
	if n.GatewayToken != "" {
		headers.Add("Authorization", "Bearer "+n.GatewayToken)
	}

	if IsVeryVerbose {
		_, _ = fmt.Fprintln(cctx.App.Writer, "using gateway endpoint:", addr)
	}

	gapi, closer, err := client.NewGatewayRPCV0(cctx.Context, addr, headers)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to gateway %s: %w", addr, err)
	}
	log.Debugw("connected to gateway", "network", cfg.Network, "addr", addr)
	return proxy.MetricedGatewayAPI(gapi), closer, nil
}

// ReqContext returns context for cli execution. Calling it for the first time
// installs SIGTERM handler that will close returned context.
// Not safe for concurrent execution.
func ReqContext(cctx *cli.Context) context.Context {
	ctx, done := context.WithCancel(cctx.Context)
	sigChan := make(chan os.Signal, 2)
	go func() {
		<-sigChan
		done()
	}()
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	return ctx
}
