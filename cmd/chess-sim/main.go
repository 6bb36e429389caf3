package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appcfg "github.com/park285/cheese-montecarlo/internal/config"
	"github.com/park285/cheese-montecarlo/internal/domain"
	"github.com/park285/cheese-montecarlo/internal/obslog"
	"github.com/park285/cheese-montecarlo/internal/simbuilder"
	"github.com/park285/cheese-montecarlo/pkg/simdto"
)

const (
	exitOK          = 0
	exitFailed      = 1
	exitConfig      = 2
	exitInterrupted = 130
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr))
}

func run(stdout, stderr io.Writer) int {
	if err := obslog.InitFromEnv(); err != nil {
		fmt.Fprintf(stderr, "logger init error: %v\n", err)
		return exitConfig
	}
	logger := obslog.L()
	defer logger.Sync()

	cfg, err := appcfg.Load()
	if err != nil {
		report(stderr, simdto.DomainError{Code: simdto.CodeConfig, Message: fmt.Sprintf("config error: %v", err)})
		return exitConfig
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := simbuilder.New(ctx, cfg, stdout, logger)
	if err != nil {
		report(stderr, simdto.DomainError{Code: simdto.CodeConfig, Message: fmt.Sprintf("init error: %v", err)})
		return exitConfig
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("shutdown_error", zap.Error(err))
		}
	}()

	table, runErr := deps.Runner.RunSuite(ctx, deps.Suite)
	stop()
	interrupted := errors.Is(runErr, context.Canceled)
	if runErr != nil && !interrupted {
		logger.Error("suite_error", zap.Error(runErr))
	}

	code := exitOK
	if err := deps.Presenter.Present(table); err != nil {
		report(stderr, simdto.DomainError{Code: simdto.CodeOutput, Message: err.Error()})
		code = exitFailed
	}

	if len(deps.Sinks) > 0 {
		saveCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		if err := deps.Sinks.Save(saveCtx, table); err != nil {
			logger.Error("result_sink_failed", zap.Error(err))
			code = exitFailed
		}
		cancel()
	}

	for _, row := range table.Rows {
		if row.Status == domain.StatusFailed {
			report(stderr, simdto.DomainError{Code: simdto.CodeOracle, Message: fmt.Sprintf("scenario %q failed: %s", row.Name, row.Error), Retryable: true})
			code = exitFailed
		}
	}
	if interrupted {
		report(stderr, simdto.DomainError{Code: simdto.CodeInterrupted, Message: fmt.Sprintf("interrupted after %d of %d scenarios", len(table.Rows), len(deps.Suite.Scenarios))})
		return exitInterrupted
	}
	return code
}

func report(w io.Writer, err simdto.DomainError) {
	fmt.Fprintf(w, "[%s] %s\n", err.Code, err.Error())
}
