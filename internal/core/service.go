package core

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkarlsen/convertd/internal/config"
)

// Service provides the core conversion operations.
//
// The pool may be nil, in which case conversions run normally but no
// history is kept.
type Service struct {
	pool    *pgxpool.Pool
	cfg     *config.Config
	limiter *ConversionLimiter
}

// NewService creates a Service with a conversion limiter sized from config.
func NewService(pool *pgxpool.Pool, cfg *config.Config) *Service {
	return &Service{
		pool:    pool,
		cfg:     cfg,
		limiter: NewConversionLimiter(cfg.Convert.MaxConcurrent, cfg.Convert.MaxWaitTime),
	}
}

// HistoryEnabled reports whether conversions are being recorded.
func (s *Service) HistoryEnabled() bool {
	return s.pool != nil
}

// Limiter exposes the conversion limiter for shutdown draining.
func (s *Service) Limiter() *ConversionLimiter {
	return s.limiter
}
