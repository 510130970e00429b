package service

import (
	"context"
	"time"

	"github.com/ssrocks/rishop-backend/internal/logging"
	"go.uber.org/zap"
)

// Deps carries the ambient collaborators shared by every service.
type Deps struct {
	Logger *zap.Logger
	Clock  func() time.Time
}

func (d Deps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now().UTC()
}

func (d Deps) log(ctx context.Context) *zap.Logger {
	return logging.FromContext(ctx, d.Logger)
}
