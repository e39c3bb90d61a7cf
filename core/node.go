package core

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"yonledger/core/events"
	corestate "yonledger/core/state"
	"yonledger/journal"
	"yonledger/native/common"
	"yonledger/native/release"
	"yonledger/native/staking"
	"yonledger/native/token"
	"yonledger/native/vesting"
	"yonledger/observability"
	"yonledger/observability/metrics"
	telemetry "yonledger/observability/otel"
	"yonledger/storage"
)

const (
	moduleToken   = "token"
	moduleVesting = "vesting"
	moduleSingle  = "single"
	moduleStaking = "staking"
)

// Node serializes every ledger operation behind one mutex. Each mutation runs
// against the state overlay and is committed to storage only when it succeeds;
// events are published after the commit.
type Node struct {
	db      storage.Database
	state   *corestate.Manager
	symbol  string
	cap     *big.Int
	journal *journal.Store
	emitter events.Emitter
	logger  *slog.Logger
	nowFn   func() int64
	bounds  release.Bounds
	labels  map[[32]byte]string
	// shutdown flushes telemetry providers installed by Open.
	shutdown telemetry.ShutdownFunc
	stateMu  sync.Mutex
}

// NewNode wires a node over db. A nil cap leaves the token supply uncapped.
func NewNode(db storage.Database, symbol string, cap *big.Int) (*Node, error) {
	if db == nil {
		return nil, errors.New("node: nil database")
	}
	var capCopy *big.Int
	if cap != nil {
		capCopy = new(big.Int).Set(cap)
	}
	return &Node{
		db:      db,
		state:   corestate.NewManager(db),
		symbol:  symbol,
		cap:     capCopy,
		emitter: observability.Events(),
		logger:  slog.Default().With(slog.String("component", "node")),
		bounds:  release.DefaultBounds(),
		labels:  make(map[[32]byte]string),
	}, nil
}

// SetJournal attaches the audit journal. Nil disables journaling.
func (n *Node) SetJournal(store *journal.Store) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	n.journal = store
}

// SetEmitter replaces the downstream event subscriber. Nil restores the
// metrics emitter.
func (n *Node) SetEmitter(emitter events.Emitter) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	if emitter == nil {
		emitter = observability.Events()
	}
	n.emitter = emitter
}

// SetLogger overrides the logger. Nil restores slog.Default.
func (n *Node) SetLogger(logger *slog.Logger) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	if logger == nil {
		logger = slog.Default()
	}
	n.logger = logger.With(slog.String("component", "node"))
}

// SetNowFunc overrides the clock used by every engine. Nil restores
// wall-clock time.
func (n *Node) SetNowFunc(now func() int64) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	n.nowFn = now
}

// SetBounds overrides the delay and duration bounds of single vestings.
func (n *Node) SetBounds(bounds release.Bounds) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	n.bounds = bounds
}

// Label names an instance id in logs and metrics.
func (n *Node) Label(id [32]byte, name string) {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	n.labels[id] = name
}

// Close releases the journal and the state database.
func (n *Node) Close() error {
	n.stateMu.Lock()
	defer n.stateMu.Unlock()
	var errs []error
	if n.journal != nil {
		errs = append(errs, n.journal.Close())
	}
	errs = append(errs, n.db.Close())
	if n.shutdown != nil {
		errs = append(errs, n.shutdown(context.Background()))
	}
	return errors.Join(errs...)
}

func (n *Node) now() int64 {
	if n.nowFn != nil {
		return n.nowFn()
	}
	return time.Now().Unix()
}

func (n *Node) label(id [32]byte) string {
	if name, ok := n.labels[id]; ok {
		return name
	}
	return "0x" + hex.EncodeToString(id[:4])
}

// bufferedEmitter holds events until the overlay is committed.
type bufferedEmitter struct {
	records []*events.Record
}

func (b *bufferedEmitter) Emit(evt events.Event) {
	if rec := events.RecordOf(evt); rec != nil {
		b.records = append(b.records, rec)
	}
}

// txn bundles the engines bound to the state overlay for one operation.
type txn struct {
	token   *token.Ledger
	ledger  *vesting.Ledger
	single  *vesting.Single
	pool    *staking.Pool
	ledgers map[[32]byte]struct{}
	pools   map[[32]byte]struct{}
}

func (t *txn) touchLedger(id [32]byte) { t.ledgers[id] = struct{}{} }
func (t *txn) touchPool(id [32]byte)   { t.pools[id] = struct{}{} }

func (n *Node) begin(emitter events.Emitter) *txn {
	tok := token.NewLedger(n.state, n.symbol, n.cap)
	tok.SetEmitter(emitter)

	ledger := vesting.NewLedger()
	ledger.SetState(n.state)
	ledger.SetToken(tok)
	ledger.SetEmitter(emitter)
	ledger.SetNowFunc(n.now)

	single := vesting.NewSingle()
	single.SetState(n.state)
	single.SetToken(tok)
	single.SetEmitter(emitter)
	single.SetNowFunc(n.now)
	single.SetBounds(n.bounds)

	pool := staking.NewPool()
	pool.SetState(n.state)
	pool.SetToken(tok)
	pool.SetEmitter(emitter)
	pool.SetNowFunc(n.now)

	return &txn{
		token:   tok,
		ledger:  ledger,
		single:  single,
		pool:    pool,
		ledgers: make(map[[32]byte]struct{}),
		pools:   make(map[[32]byte]struct{}),
	}
}

// mutate runs fn against the overlay. Success commits and publishes the
// buffered events; failure discards every write fn made.
func (n *Node) mutate(ctx context.Context, module, op string, fn func(*txn) error) error {
	ctx, span := telemetry.Tracer().Start(ctx, module+"."+op,
		trace.WithAttributes(attribute.String("ledger.module", module)))
	defer span.End()
	started := time.Now()

	n.stateMu.Lock()
	defer n.stateMu.Unlock()

	buffer := &bufferedEmitter{}
	tx := n.begin(buffer)
	err := fn(tx)
	if err == nil {
		if commitErr := n.state.Commit(); commitErr != nil {
			err = fmt.Errorf("node: commit: %w", commitErr)
		}
	}
	if err != nil {
		n.state.Discard()
		n.finish(ctx, span, module, op, started, err)
		return err
	}
	n.publish(ctx, buffer.records)
	n.refreshGauges(tx)
	n.finish(ctx, span, module, op, started, nil)
	return nil
}

// read runs fn against the overlay without committing.
func (n *Node) read(ctx context.Context, module, op string, fn func(*txn) error) error {
	_, span := telemetry.Tracer().Start(ctx, module+"."+op,
		trace.WithAttributes(attribute.String("ledger.module", module)))
	defer span.End()

	n.stateMu.Lock()
	defer n.stateMu.Unlock()

	err := fn(n.begin(events.NoopEmitter{}))
	n.state.Discard()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, common.Reason(err))
	}
	return err
}

func (n *Node) finish(ctx context.Context, span trace.Span, module, op string, started time.Time, err error) {
	elapsed := time.Since(started)
	if err != nil {
		reason := common.Reason(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, reason)
		observability.ModuleMetrics().Observe(module, op, reason, true, elapsed)
		n.logger.WarnContext(ctx, "ledger operation rejected",
			slog.String("module", module),
			slog.String("operation", op),
			slog.String("reason", reason),
			slog.Any("error", err))
		return
	}
	observability.ModuleMetrics().Observe(module, op, "", false, elapsed)
	n.logger.InfoContext(ctx, "ledger operation applied",
		slog.String("module", module),
		slog.String("operation", op),
		slog.Duration("elapsed", elapsed))
}

func (n *Node) publish(ctx context.Context, records []*events.Record) {
	if len(records) == 0 {
		return
	}
	if n.journal != nil {
		if err := n.journal.Append(ctx, records...); err != nil {
			n.logger.ErrorContext(ctx, "journal append failed", slog.Any("error", err))
		}
	}
	for _, rec := range records {
		switch rec.Type {
		case vesting.EventTypeReleased:
			metrics.Ledger().RecordPayout(rec.Attributes["kind"])
		case staking.EventTypeReleased:
			metrics.Ledger().RecordPayout(moduleStaking)
		}
		if n.emitter != nil {
			n.emitter.Emit(events.Wrap(rec))
		}
	}
}

func (n *Node) refreshGauges(tx *txn) {
	for id := range tx.ledgers {
		ledger, ok, err := n.state.VestingLedgerGet(id)
		if err != nil || !ok {
			continue
		}
		metrics.Ledger().RecordVesting(n.label(id), ledger.TotalCommitted, ledger.TotalReleased)
	}
	for id := range tx.pools {
		pool, ok, err := n.state.StakingPoolGet(id)
		if err != nil || !ok {
			continue
		}
		metrics.Ledger().RecordPool(n.label(id), pool.RewardPool, pool.Reserved)
	}
}
