package fundingpoolservice

import (
	"log/slog"

	httpadapter "reelfund/contexts/video-economy/funding-pool-service/adapters/http"
	"reelfund/contexts/video-economy/funding-pool-service/adapters/memory"
	"reelfund/contexts/video-economy/funding-pool-service/application"
	"reelfund/contexts/video-economy/funding-pool-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Funding application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repo     ports.Repository
	Notifier ports.Notifier
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	funding := application.Service{
		Repo:     deps.Repo,
		Notifier: deps.Notifier,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Funding: funding,
			Logger:  deps.Logger,
		},
		Funding: funding,
	}
}

// NewInMemoryModule wires the module on the memory store for tests and local
// development. Callers seed accounts through Module.Store.
func NewInMemoryModule(deps Dependencies) Module {
	store := memory.NewStore()
	deps.Repo = store
	module := NewModule(deps)
	module.Store = store
	return module
}
