package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gorilla/mux"
	"github.com/ipfs/go-cid"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"golang.org/x/term"

	"github.com/jhuhnke/solana-walrus/build"
	cliutil "github.com/jhuhnke/solana-walrus/cli/util"
	"github.com/jhuhnke/solana-walrus/cli/node"
	"github.com/jhuhnke/solana-walrus/metrics"
	"github.com/jhuhnke/solana-walrus/saga"
	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

// session is an open repo with a saga connected to the gateway.
type session struct {
	node   *node.Node
	saga   *saga.Saga
	closer func()
}

func (s *session) Close() {
	s.closer()
}

func setupNode(cctx *cli.Context) (*node.Node, error) {
	return node.Setup(cctx.String(cliutil.FlagRepo.Name))
}

func setupSession(cctx *cli.Context) (*session, error) {
	n, err := setupNode(cctx)
	if err != nil {
		return nil, err
	}

	gapi, gcloser, err := cliutil.GetGatewayAPI(cctx, n.Config)
	if err != nil {
		_ = n.Close()
		return nil, fmt.Errorf("cant setup gateway connection: %w", err)
	}

	s, err := n.Saga(gapi)
	if err != nil {
		gcloser()
		_ = n.Close()
		return nil, err
	}

	stopMetrics := serveMetrics(cctx.Context, n)

	return &session{
		node: n,
		saga: s,
		closer: func() {
			s.Close()
			stopMetrics()
			gcloser()
			_ = n.Close()
		},
	}, nil
}

// serveMetrics exposes the prometheus endpoint if the config sets a listen
// address. The returned func stops the server.
func serveMetrics(ctx context.Context, n *node.Node) func() {
	addr := n.Config.Metrics.ListenAddress
	if addr == "" {
		return func() {}
	}

	m := mux.NewRouter()
	m.Handle("/debug/metrics", metrics.Exporter("walrus_bridge"))

	ctx, _ = tag.New(ctx,
		tag.Insert(metrics.Version, build.BuildVersion),
		tag.Insert(metrics.Commit, build.CurrentCommit),
		tag.Insert(metrics.Network, n.Config.Network),
	)
	stats.Record(ctx, metrics.BridgeInfo.M(1))

	lst, err := net.Listen("tcp", addr)
	if err != nil {
		log.Warnw("could not listen for metrics", "addr", addr, "err", err)
		return func() {}
	}
	srv := &http.Server{Handler: m, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(lst); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warnf("metrics server failed: %s", err)
		}
	}()
	log.Infow("serving metrics", "addr", lst.Addr().String())

	return func() {
		sctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(sctx)
	}
}

func parseUploadID(s string) (cid.Cid, error) {
	id, err := cid.Parse(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("invalid upload id '%s': %w", s, err)
	}
	return id, nil
}

func printJson(w io.Writer, obj interface{}) error {
	resJson, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(resJson))
	return err
}

func stateColor(st *types.UploadState) *color.Color {
	switch {
	case st.Checkpoint == uploadcheckpoints.Complete:
		return color.New(color.FgGreen)
	case st.Err != "" && st.Retry == types.UploadRetryFatal:
		return color.New(color.FgRed)
	case st.Err != "":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}

func stateLabel(st *types.UploadState) string {
	switch {
	case st.Checkpoint == uploadcheckpoints.Complete:
		return string(uploadcheckpoints.Done)
	case st.Err != "":
		return fmt.Sprintf("%s (%s)", uploadcheckpoints.Failed, st.Retry)
	case st.State != "":
		return string(st.State)
	default:
		return string(st.Checkpoint.Next())
	}
}

func printState(w io.Writer, st *types.UploadState) {
	c := stateColor(st)
	fmt.Fprintf(w, "Upload:       %s\n", st.ID)
	fmt.Fprintf(w, "State:        %s\n", c.Sprint(stateLabel(st)))
	fmt.Fprintf(w, "Checkpoint:   %s (%s)\n", st.Checkpoint, humanize.Time(st.CheckpointAt))
	fmt.Fprintf(w, "File:         %s (%s)\n", st.FilePath, humanize.IBytes(st.FileSizeBytes))
	fmt.Fprintf(w, "Epochs:       %d\n", st.Epochs)
	fmt.Fprintf(w, "Deletable:    %t\n", st.Deletable)
	fmt.Fprintf(w, "Payer:        %s\n", st.Payer)
	fmt.Fprintf(w, "Receiver:     %s\n", st.Receiver)
	if st.Checkpoint >= uploadcheckpoints.Quoted {
		fmt.Fprintf(w, "Quote:        %s (storage %s, write %s)\n", st.Quote.TotalCost, st.Quote.StorageCost, st.Quote.WriteCost)
	}
	if st.Checkpoint >= uploadcheckpoints.FeeCollected {
		fmt.Fprintf(w, "Fee:          %s (%s tier, tx %s)\n", st.Fee.AmountDebited(), st.FeeTier, st.Fee.SourceTxID)
		fmt.Fprintf(w, "Bridged:      %s\n", st.Fee.RemainingForBridge())
	}
	if st.Bridge.Phase > types.BridgeUninitiated {
		fmt.Fprintf(w, "Bridge:       %s (source tx %s)\n", st.Bridge.Phase, st.Bridge.SourceTxID)
	}
	if st.Bridge.Phase == types.BridgeClaimed {
		fmt.Fprintf(w, "Claimed:      %s (tx %s)\n", st.Bridge.ClaimedAmount, st.Bridge.DestinationTxID)
	}
	if st.Checkpoint >= uploadcheckpoints.Swapped {
		if st.Swap.Skipped {
			fmt.Fprintf(w, "Swap:         skipped\n")
		} else {
			fmt.Fprintf(w, "Swap:         %s -> %s (sponsored %t, tx %s)\n", st.Swap.InputAmount, st.Swap.OutputAmount, st.Swap.Sponsored, st.Swap.TxID)
		}
	}
	if st.Blob.BlobID != "" {
		fmt.Fprintf(w, "Blob ID:      %s\n", st.Blob.BlobID)
		fmt.Fprintf(w, "Blob object:  %s\n", st.Blob.BlobObjectID)
	}
	if st.Blob.CertificationTxID != "" {
		fmt.Fprintf(w, "Certified in: %s\n", st.Blob.CertificationTxID)
	}
	if st.Err != "" {
		fmt.Fprintf(w, "Error:        %s\n", c.Sprint(st.Err))
	}
}

// watchProgress prints the state changes of the upload id until ctx is done.
// The upload may not be executing yet when it is called.
func watchProgress(ctx context.Context, s *saga.Saga, id cid.Cid, w io.Writer) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		sub, err := s.SubscribeUpdates(id)
		if err == nil {
			defer sub.Close() //nolint:errcheck
			report := progressReporter(w)
			for {
				select {
				case <-ctx.Done():
					return
				case evt, ok := <-sub.Out():
					if !ok {
						return
					}
					report(evt.(types.UploadState))
				}
			}
		}
		if !errors.Is(err, saga.ErrUploadNotExecuting) {
			log.Debugw("not watching upload progress", "id", id, "err", err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// progressReporter renders upload states as a progress bar over the
// checkpoints when w is a terminal, and as one line per state otherwise.
func progressReporter(w io.Writer) func(types.UploadState) {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bar := progressbar.NewOptions(int(uploadcheckpoints.Complete),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		return func(st types.UploadState) {
			bar.Describe(stateColor(&st).Sprint(stateLabel(&st)))
			_ = bar.Set(int(st.Checkpoint))
		}
	}

	var last uploadcheckpoints.State
	return func(st types.UploadState) {
		if st.State == last {
			return
		}
		last = st.State
		fmt.Fprintf(w, "%s %s\n", color.New(color.Faint).Sprint(time.Now().Format("15:04:05")), stateColor(&st).Sprint(st.State))
	}
}
