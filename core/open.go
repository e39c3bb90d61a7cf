package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"yonledger/config"
	"yonledger/crypto"
	"yonledger/journal"
	"yonledger/native/release"
	"yonledger/native/staking"
	"yonledger/native/vesting"
	"yonledger/observability/logging"
	telemetry "yonledger/observability/otel"
	"yonledger/storage"
)

var instanceDomain = []byte("yonledger/instance/")

// InstanceID derives the deterministic id of a named vesting or pool.
func InstanceID(name string) [32]byte {
	var id [32]byte
	copy(id[:], ethcrypto.Keccak256(instanceDomain, []byte(strings.TrimSpace(name))))
	return id
}

// Open builds a node from cfg and creates every configured instance that does
// not exist yet. Reopening the same data directory is idempotent.
func Open(ctx context.Context, cfg *config.Config) (*Node, error) {
	if cfg == nil {
		return nil, fmt.Errorf("node: nil config")
	}
	capAmount, err := cfg.CapAmount()
	if err != nil {
		return nil, err
	}
	tiers, err := cfg.StakingTiers()
	if err != nil {
		return nil, err
	}

	logger := logging.Setup(logging.Options{
		Service:    cfg.Telemetry.ServiceName,
		Env:        cfg.Logging.Env,
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Environment: cfg.Logging.Env,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Traces:      cfg.Telemetry.Traces,
		Metrics:     cfg.Telemetry.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("node: telemetry: %w", err)
	}

	var db storage.Database
	if dir := strings.TrimSpace(cfg.Node.DataDir); dir != "" {
		db, err = storage.Open(cfg.Node.Backend, dir)
	} else {
		db, err = storage.Open(storage.BackendMemory, "")
	}
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("node: open state: %w", err)
	}
	node, err := NewNode(db, cfg.Token.Symbol, capAmount)
	if err != nil {
		_ = db.Close()
		_ = shutdown(ctx)
		return nil, err
	}
	node.SetLogger(logger)
	node.shutdown = shutdown

	if dsn := strings.TrimSpace(cfg.Node.JournalDSN); dsn != "" {
		store, err := journal.Open(dsn)
		if err != nil {
			_ = node.Close()
			return nil, err
		}
		node.SetJournal(store)
		node.logger.Info("journal attached", logging.DSNField("dsn", dsn))
	}

	if err := node.bootstrap(ctx, cfg, tiers); err != nil {
		_ = node.Close()
		return nil, err
	}
	return node, nil
}

func (n *Node) bootstrap(ctx context.Context, cfg *config.Config, tiers []staking.Tier) error {
	supply, err := n.TotalSupply(ctx)
	if err != nil {
		return err
	}
	if supply.Sign() == 0 {
		for _, alloc := range cfg.Token.Allocation {
			to, err := crypto.ParseAddress(alloc.Address)
			if err != nil {
				return err
			}
			amount, err := config.ParseTokens(alloc.Amount, cfg.Token.Decimals)
			if err != nil {
				return err
			}
			if err := n.Mint(ctx, to, amount); err != nil {
				return fmt.Errorf("node: genesis mint: %w", err)
			}
		}
	}

	poolID := InstanceID(cfg.Staking.Name)
	n.Label(poolID, cfg.Staking.Name)
	if _, err := n.Pool(ctx, poolID); errors.Is(err, staking.ErrPoolNotFound) {
		if _, err := n.CreatePool(ctx, poolID, cfg.Staking.LockDuration.Seconds(), tiers); err != nil {
			return fmt.Errorf("node: staking %s: %w", cfg.Staking.Name, err)
		}
	} else if err != nil {
		return err
	}

	for _, v := range cfg.Vesting {
		id := InstanceID(v.Name)
		n.Label(id, v.Name)
		schedule, err := release.NewSchedule(v.Start, v.Duration.Seconds())
		if err != nil {
			return fmt.Errorf("node: vesting %s: %w", v.Name, err)
		}
		var roles vesting.Roles
		if roles.Admins, err = config.ParseAddresses(v.Admins); err != nil {
			return err
		}
		if roles.Initiators, err = config.ParseAddresses(v.Initiators); err != nil {
			return err
		}
		if roles.Activators, err = config.ParseAddresses(v.Activators); err != nil {
			return err
		}
		if _, err := n.VestingLedger(ctx, id); !errors.Is(err, vesting.ErrLedgerNotFound) {
			if err != nil {
				return err
			}
			continue
		}
		if _, err := n.CreateVesting(ctx, id, schedule, roles); err != nil {
			return fmt.Errorf("node: vesting %s: %w", v.Name, err)
		}
	}

	for _, s := range cfg.SingleVesting {
		id := InstanceID(s.Name)
		n.Label(id, s.Name)
		params := vesting.SingleParams{
			ID:       id,
			Created:  s.Created,
			Delay:    s.Delay.Seconds(),
			Duration: s.Duration.Seconds(),
		}
		if params.Beneficiary, err = crypto.ParseAddress(s.Beneficiary); err != nil {
			return err
		}
		if strings.TrimSpace(s.Revoker) != "" {
			if params.Revoker, err = crypto.ParseAddress(s.Revoker); err != nil {
				return err
			}
		}
		if _, err := n.singleState(ctx, id); !errors.Is(err, vesting.ErrLedgerNotFound) {
			if err != nil {
				return err
			}
			continue
		}
		if _, err := n.CreateSingleVesting(ctx, params); err != nil {
			return fmt.Errorf("node: single vesting %s: %w", s.Name, err)
		}
	}
	n.logger.InfoContext(ctx, "node bootstrapped",
		slog.Int("vestings", len(cfg.Vesting)),
		slog.Int("single_vestings", len(cfg.SingleVesting)),
		slog.String("symbol", cfg.Token.Symbol))
	return nil
}

func (n *Node) singleState(ctx context.Context, id [32]byte) (*vesting.SingleState, error) {
	var out *vesting.SingleState
	err := n.read(ctx, moduleSingle, "get_state", func(tx *txn) error {
		var err error
		out, err = tx.single.Get(id)
		return err
	})
	return out, err
}
