package chess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	nchess "github.com/corentings/chess/v2"
	"go.uber.org/zap"

	"github.com/park285/cheese-montecarlo/internal/chess/uci"
	"github.com/park285/cheese-montecarlo/internal/montecarlo"
)

type EngineConfig struct {
	BinaryPath string
	Args       []string
	Env        []string
	Preset     string
	// MoveTimeMillis overrides the preset's movetime when > 0.
	MoveTimeMillis int
	// MoveTimeout is the hard per-move deadline. Zero derives it from the limits.
	MoveTimeout time.Duration
	Capacity    int
}

// EngineProvider hands out engine-backed oracles from a pool of UCI processes.
type EngineProvider struct {
	pool   *uci.Pool
	preset EnginePreset
	limits uci.Limits
	logger *zap.Logger
}

func NewEngineProvider(cfg EngineConfig, logger *zap.Logger) (*EngineProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	preset, err := GetPreset(cfg.Preset)
	if err != nil {
		return nil, err
	}
	preset = preset.WithMoveTime(cfg.MoveTimeMillis)
	if _, err := BuildGoCommand(preset); err != nil {
		return nil, err
	}

	pool, err := uci.NewPool(uci.PoolConfig{
		Command:  uci.Command{Path: cfg.BinaryPath, Args: cfg.Args, Env: cfg.Env},
		Options:  optionsFromPreset(preset),
		Capacity: cfg.Capacity,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", montecarlo.ErrEngineUnavailable, err)
	}

	goCmd, _ := FormatGoCommand(preset)
	logger.Info("engine_provider_ready",
		zap.String("binary", cfg.BinaryPath),
		zap.String("preset", preset.Name),
		zap.String("go", goCmd),
		zap.Int("capacity", pool.Capacity()))

	return &EngineProvider{
		pool:   pool,
		preset: preset,
		limits: limitsFromPreset(preset, cfg.MoveTimeout),
		logger: logger,
	}, nil
}

func (p *EngineProvider) Name() string { return "engine:" + p.preset.Name }

func (p *EngineProvider) Preset() EnginePreset { return p.preset }

func (p *EngineProvider) Acquire(ctx context.Context) (montecarlo.MoveOracle, error) {
	session, err := p.pool.Acquire(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", montecarlo.ErrEngineUnavailable, err)
	}
	return &EngineOracle{session: session, limits: p.limits}, nil
}

func (p *EngineProvider) Release(oracle montecarlo.MoveOracle, err error) {
	eo, ok := oracle.(*EngineOracle)
	if !ok || eo == nil {
		return
	}
	if err != nil {
		p.logger.Debug("engine_session_discarded", zap.Error(err))
	}
	p.pool.Release(eo.session, err)
}

func (p *EngineProvider) Close() error {
	if p.pool == nil {
		return nil
	}
	return p.pool.Close()
}

// EngineOracle asks one UCI process for the move in the current position.
type EngineOracle struct {
	session *uci.Session
	limits  uci.Limits
}

func (o *EngineOracle) Reset(ctx context.Context) error {
	return o.session.NewGame(ctx)
}

func (o *EngineOracle) SelectMove(ctx context.Context, game *nchess.Game) (*nchess.Move, error) {
	resp, err := o.session.Search(ctx, uci.SearchRequest{
		FEN:    game.FEN(),
		Limits: o.limits,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, uci.ErrNoMove) {
			return nil, fmt.Errorf("%w: %w", montecarlo.ErrNoLegalMove, err)
		}
		return nil, fmt.Errorf("%w: %w", montecarlo.ErrEngineUnavailable, err)
	}

	best := strings.ToLower(strings.TrimSpace(resp.BestMove))
	mv, err := nchess.UCINotation{}.Decode(game.Position(), best)
	if err != nil {
		return nil, fmt.Errorf("decode engine move %q: %w", best, err)
	}
	legal, ok := montecarlo.LegalMove(game, mv)
	if !ok {
		return nil, fmt.Errorf("engine move %q is not legal", best)
	}
	return legal, nil
}
