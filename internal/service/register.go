package service

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// PublicProcedures can be called without a bearer token.
var PublicProcedures = []string{
	apiconnect.AuthServiceRegisterProcedure,
	apiconnect.AuthServiceLoginProcedure,
}

// Deps are the collaborators shared by every service.
type Deps struct {
	Ledger        *ledger.Ledger
	Authenticator auth.Authenticator
	JWT           *auth.JWTManager
	Metrics       *metrics.Metrics
	Logger        *slog.Logger
}

// Register mounts every Connect service on mux behind the auth and
// logging interceptors.
func Register(mux *http.ServeMux, d Deps) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := []connect.HandlerOption{
		connect.WithInterceptors(
			middleware.RequireAuth(d.JWT, PublicProcedures...),
			middleware.LoggingInterceptor(d.Metrics),
		),
	}

	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(d.Authenticator, d.JWT, d.Ledger.Store(), logger), opts...))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(d.Ledger), opts...))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(d.Ledger), opts...))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(d.Ledger), opts...))
	mux.Handle(apiconnect.NewRecurringServiceHandler(NewRecurringService(d.Ledger), opts...))
	mux.Handle(apiconnect.NewBudgetServiceHandler(NewBudgetService(d.Ledger), opts...))
}
