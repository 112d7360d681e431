package client

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"

	"github.com/jhuhnke/solana-walrus/api"
)

// Namespace is the JSON-RPC namespace of the gateway methods
const Namespace = "Walrus"

// NewGatewayRPCV0 creates a new http jsonrpc client for the gateway
func NewGatewayRPCV0(ctx context.Context, addr string, requestHeader http.Header, opts ...jsonrpc.Option) (api.Gateway, jsonrpc.ClientCloser, error) {
	var res api.GatewayStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr, Namespace,
		api.GetInternalStructs(&res), requestHeader,
		append([]jsonrpc.Option{
			jsonrpc.WithErrors(api.RPCErrors),
		}, opts...)...)

	return &res, closer, err
}
