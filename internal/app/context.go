package app

import (
	"context"

	"github.com/datallboy/gofetch/internal/domain"
	"github.com/datallboy/gofetch/internal/infra/config"
	"github.com/datallboy/gofetch/internal/infra/logger"
	"github.com/datallboy/gofetch/internal/queue"
)

// Transferer moves the bytes of one URL to a destination path.
// Errors wrap domain.ErrLaunch or domain.ErrTransfer and never contain the URL.
type Transferer interface {
	Name() string
	Transfer(ctx context.Context, req domain.TransferRequest) error
}

// Confirmer asks the operator a yes/no question. Unattended answers are "no".
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// HistoryStore persists outcomes so they can be listed later.
type HistoryStore interface {
	RecordTransfer(ctx context.Context, rec *domain.TransferRecord) error
	RecentTransfers(ctx context.Context, limit int) ([]*domain.TransferRecord, error)
	CountByOutcome(ctx context.Context) (map[domain.Outcome]int, error)
}

// Context holds the configuration and collaborators for one gofetch invocation.
// Optional collaborators (Confirmer, Store) are nil when unavailable.
type Context struct {
	Config *config.Config
	Logger *logger.Logger

	Queue      *queue.Store
	Transferer Transferer
	Confirmer  Confirmer
	Store      HistoryStore
}

// NewContext initializes the base environment.
func NewContext(cfg *config.Config, log *logger.Logger) *Context {
	return &Context{
		Config: cfg,
		Logger: log,
		Queue:  queue.NewStore(cfg.Queue.File),
	}
}
