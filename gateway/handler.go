package gateway

import (
	"context"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"
	"github.com/filecoin-project/go-jsonrpc/auth"
	"github.com/gorilla/mux"

	"github.com/jhuhnke/solana-walrus/api"
	"github.com/jhuhnke/solana-walrus/api/client"
	"github.com/jhuhnke/solana-walrus/metrics"
	"github.com/jhuhnke/solana-walrus/metrics/proxy"
)

// VerifyFunc returns the permissions of a bearer token.
type VerifyFunc func(ctx context.Context, token string) ([]auth.Permission, error)

// Handler returns an http.Handler serving a gateway implementation at
// /rpc/v0. If verify is nil every method is open.
func Handler(a api.Gateway, verify VerifyFunc) http.Handler {
	m := mux.NewRouter()

	mapi := proxy.MetricedGatewayAPI(a)
	if verify != nil {
		mapi = api.PermissionedGatewayAPI(mapi)
	}

	rpcServer := jsonrpc.NewServer(jsonrpc.WithServerErrors(api.RPCErrors))
	rpcServer.Register(client.Namespace, mapi)

	m.Handle("/rpc/v0", rpcServer)
	m.Handle("/debug/metrics", metrics.Exporter("walrus_gateway"))

	if verify == nil {
		return m
	}
	return &auth.Handler{
		Verify: verify,
		Next:   m.ServeHTTP,
	}
}
