package saga

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/jellydator/ttlcache/v2"
	"github.com/shopspring/decimal"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"

	"github.com/jhuhnke/solana-walrus/db"
	"github.com/jhuhnke/solana-walrus/feecollector"
	"github.com/jhuhnke/solana-walrus/metrics"
	"github.com/jhuhnke/solana-walrus/saga/logs"
	"github.com/jhuhnke/solana-walrus/saga/types"
	"github.com/jhuhnke/solana-walrus/saga/types/uploadcheckpoints"
)

var log = logging.Logger("saga")

type Config struct {
	Network  string
	Treasury string
	// BridgedToken is the destination ledger type of the bridged asset
	BridgedToken string
	// StorageToken is the destination ledger type of the token that pays for
	// storage. The swap is skipped if it is the same as BridgedToken.
	StorageToken string
	// TxCostAllowance is added to every quote to cover the destination
	// ledger transactions
	TxCostAllowance types.Amount

	SponsoredFeePercent   decimal.Decimal
	UnsponsoredFeePercent decimal.Decimal

	PreferSponsored bool
	SlippageBps     uint32
	QuoteCacheTTL   time.Duration

	QuoteMaxAttempts    int
	FeeMaxAttempts      int
	InitiateMaxAttempts int
	ClaimMaxAttempts    int
	ClaimRetryDelay     time.Duration
	AttestationTimeout  time.Duration
	FinalizeMaxAttempts int

	BackoffMin    time.Duration
	BackoffMax    time.Duration
	BackoffFactor float64
}

// Clients are the collaborators the saga drives.
type Clients struct {
	Quoter      types.Quoter
	Sponsorship types.SponsorshipChecker
	Ledger      types.SourceLedger
	Bridge      types.Bridge
	Swap        types.SwapRouter
	Finalizer   types.StorageFinalizer
	Reader      types.BlobReader
	Signers     types.SignerResolver
}

type Option func(*Saga)

// WithClock replaces the clock used for retry delays and the attestation
// timeout.
func WithClock(clk clock.Clock) Option {
	return func(s *Saga) {
		s.clock = clk
	}
}

// Saga moves files into blob storage, paying on the source ledger for storage
// on the destination ledger. Every step is checkpointed so that an upload
// resumes after its last completed step.
type Saga struct {
	cfg     Config
	clients Clients
	clock   clock.Clock

	ctx       context.Context
	cancel    context.CancelFunc
	closeSync sync.Once
	// closeLk orders the registration of workers with Close
	closeLk sync.Mutex
	wg      sync.WaitGroup

	uploadsDB *db.UploadsDB
	logsDB    *db.LogsDB
	bridgeDB  *db.BridgeLedgerDB
	feeDB     *db.FeeLedgerDB

	fees   *feecollector.Collector
	quotes *ttlcache.Cache

	execs        *uploadExecs
	payers       *payerLocks
	uploadLogger *logs.UploadLogger
}

func New(cfg Config, sqldb *sql.DB, clients Clients, opts ...Option) (*Saga, error) {
	if cfg.Treasury == "" {
		return nil, errors.New("treasury address must be set")
	}
	if _, err := types.SplitFee(0, cfg.SponsoredFeePercent); err != nil {
		return nil, fmt.Errorf("sponsored fee: %w", err)
	}
	if _, err := types.SplitFee(0, cfg.UnsponsoredFeePercent); err != nil {
		return nil, fmt.Errorf("unsponsored fee: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Saga{
		cfg:     cfg,
		clients: clients,
		clock:   clock.New(),

		ctx:    ctx,
		cancel: cancel,

		uploadsDB: db.NewUploadsDB(sqldb),
		logsDB:    db.NewLogsDB(sqldb),
		bridgeDB:  db.NewBridgeLedgerDB(sqldb),
		feeDB:     db.NewFeeLedgerDB(sqldb),

		execs:  newUploadExecs(),
		payers: newPayerLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.uploadLogger = logs.NewUploadLogger(ctx, s.logsDB)

	if cfg.QuoteCacheTTL > 0 {
		s.quotes = ttlcache.NewCache()
		if err := s.quotes.SetTTL(cfg.QuoteCacheTTL); err != nil {
			cancel()
			return nil, fmt.Errorf("setting quote cache ttl: %w", err)
		}
		s.quotes.SkipTTLExtensionOnHit(true)
	}

	s.fees = feecollector.New(feecollector.Config{
		Treasury:      cfg.Treasury,
		MaxAttempts:   cfg.FeeMaxAttempts,
		BackoffMin:    cfg.BackoffMin,
		BackoffMax:    cfg.BackoffMax,
		BackoffFactor: cfg.BackoffFactor,
	}, clients.Ledger, s.feeDB, s.clock)

	return s, nil
}

// Start resumes, in the background, the uploads that were executing when the
// process last stopped.
func (s *Saga) Start() error {
	uploads, err := s.uploadsDB.ListActive(s.ctx)
	if err != nil {
		return fmt.Errorf("getting active uploads: %w", err)
	}

	log.Infow("saga: starting", "active uploads", len(uploads))
	for _, st := range uploads {
		st := st
		if err := s.addWorker(); err != nil {
			return err
		}
		go func() {
			defer s.wg.Done()

			_, err := s.run(s.ctx, st)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, ErrSagaClosed) {
				log.Warnw("resumed upload did not complete", "id", st.ID, "err", err)
			}
		}()
	}
	return nil
}

func (s *Saga) Close() {
	s.closeSync.Do(func() {
		s.closeLk.Lock()
		s.cancel()
		s.closeLk.Unlock()
		s.wg.Wait()
		if s.quotes != nil {
			_ = s.quotes.Close()
		}
	})
}

// addWorker registers a goroutine that Close waits for. It fails once the
// saga is closing.
func (s *Saga) addWorker() error {
	s.closeLk.Lock()
	defer s.closeLk.Unlock()
	if s.ctx.Err() != nil {
		return ErrSagaClosed
	}
	s.wg.Add(1)
	return nil
}

// Upload runs the request to completion, or resumes it if it was already
// submitted. A request that already completed returns its stored blob
// without any side effect.
func (s *Saga) Upload(ctx context.Context, req types.UploadRequest) (*types.FinalizedBlob, error) {
	if req.FilePath() == "" {
		return nil, fmt.Errorf("%w: empty request", types.ErrValidation)
	}

	id := req.Digest()
	st, err := s.uploadsDB.ByID(ctx, id)
	switch {
	case errors.Is(err, db.ErrNotFound):
		// check the content before anything is persisted
		if err := checkContent(req.FilePath(), req.FileHash()); err != nil {
			return nil, err
		}
		st = types.NewUploadState(req, s.cfg.Network)
		st.CreatedAt = s.clock.Now()
		if err := s.uploadsDB.Insert(ctx, st); err != nil {
			return nil, fmt.Errorf("failed to persist upload %s: %w", id, err)
		}
		s.uploadLogger.Infow(id, "upload accepted", "file", st.FilePath, "size", st.FileSizeBytes, "epochs", st.Epochs, "payer", st.Payer)
	case err != nil:
		return nil, fmt.Errorf("getting upload %s: %w", id, err)
	default:
		log.Infow("upload already submitted", "id", id, "checkpoint", st.Checkpoint, "state", st.State)
	}

	return s.resume(ctx, st)
}

// Resume continues a persisted upload after its last completed checkpoint.
func (s *Saga) Resume(ctx context.Context, id cid.Cid) (*types.FinalizedBlob, error) {
	st, err := s.uploadsDB.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resume(ctx, st)
}

func (s *Saga) resume(ctx context.Context, st *types.UploadState) (*types.FinalizedBlob, error) {
	if st.Checkpoint == uploadcheckpoints.Complete {
		blob := st.Blob
		return &blob, nil
	}
	if st.Err != "" && st.Retry == types.UploadRetryFatal {
		return nil, &UploadError{
			ID:             st.ID,
			State:          st.State,
			LastCheckpoint: st.Checkpoint,
			Artifact:       st.LastArtifact(),
			Err:            fmt.Errorf("%w: %s", ErrUploadFailedFatal, st.Err),
		}
	}
	return s.run(ctx, st)
}

// run executes the upload in the calling goroutine. The upload stops early
// if ctx is cancelled, Cancel is called or the saga is closed.
func (s *Saga) run(ctx context.Context, st *types.UploadState) (*types.FinalizedBlob, error) {
	if err := s.addWorker(); err != nil {
		return nil, err
	}
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	uh, err := newUploadHandler(s.ctx, ctx, st.ID)
	if err != nil {
		return nil, err
	}
	if err := s.execs.track(uh); err != nil {
		uh.close()
		return nil, err
	}
	defer func() {
		s.execs.del(st.ID)
		uh.close()
		stats.Record(s.ctx, metrics.UploadsActive.M(int64(s.execs.count())))
	}()

	stats.Record(s.ctx, metrics.UploadsStarted.M(1), metrics.UploadsActive.M(int64(s.execs.count())))

	if err := s.doUpload(uh, st); err != nil {
		return nil, err
	}
	stats.Record(s.ctx, metrics.UploadsCompleted.M(1))
	blob := st.Blob
	return &blob, nil
}

func (s *Saga) recordAttempt(ctx context.Context, state uploadcheckpoints.State, start time.Time, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(metrics.Step, string(state)), tag.Upsert(metrics.Outcome, outcome)},
		metrics.StepAttempts.M(1),
		metrics.StepDuration.M(float64(s.clock.Since(start).Milliseconds())))
}
