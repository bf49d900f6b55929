package walletservice

import (
	"log/slog"

	httpadapter "reelfund/contexts/finance-core/wallet-service/adapters/http"
	"reelfund/contexts/finance-core/wallet-service/adapters/memory"
	"reelfund/contexts/finance-core/wallet-service/application"
	"reelfund/contexts/finance-core/wallet-service/ports"

	"github.com/shopspring/decimal"
)

type Module struct {
	Handler httpadapter.Handler
	Wallet  application.Service
	Store   *memory.Store
}

type Dependencies struct {
	Repo         ports.Repository
	Gateway      ports.PaymentGateway
	Notifier     ports.Notifier
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	ExchangeRate decimal.Decimal
	Currency     string
	ReturnURL    string
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	wallet := application.Service{
		Repo:         deps.Repo,
		Gateway:      deps.Gateway,
		Notifier:     deps.Notifier,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		ExchangeRate: deps.ExchangeRate,
		Currency:     deps.Currency,
		ReturnURL:    deps.ReturnURL,
		Logger:       deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Wallet: wallet,
			Logger: deps.Logger,
		},
		Wallet: wallet,
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
