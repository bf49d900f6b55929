package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	walletservice "reelfund/contexts/finance-core/wallet-service"
	walleterrors "reelfund/contexts/finance-core/wallet-service/domain/errors"
	wallethttp "reelfund/contexts/finance-core/wallet-service/transport/http"
	fundingpoolservice "reelfund/contexts/video-economy/funding-pool-service"
	fundingerrors "reelfund/contexts/video-economy/funding-pool-service/domain/errors"
	fundinghttp "reelfund/contexts/video-economy/funding-pool-service/transport/http"
	"reelfund/internal/platform/notify"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "reelfund/internal/platform/httpserver/docs"
)

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	wallet  walletservice.Module
	funding fundingpoolservice.Module
	hub     *notify.Hub
}

func New(
	wallet walletservice.Module,
	funding fundingpoolservice.Module,
	hub *notify.Hub,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		wallet:  wallet,
		funding: funding,
		hub:     hub,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routing table for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /api/wallet/balance", s.handleGetBalance)
	s.mux.HandleFunc("POST /api/wallet/deposit", s.handleDeposit)
	s.mux.HandleFunc("POST /api/wallet/withdraw", s.handleWithdraw)
	s.mux.HandleFunc("GET /api/wallet/transactions", s.handleListTransactions)
	s.mux.HandleFunc("POST /api/wallet/deposit-orders", s.handleCreateDepositOrder)
	s.mux.HandleFunc("POST /api/wallet/transactions/{transaction_id}/external-id", s.handleAttachExternalID)
	s.mux.HandleFunc("POST /api/wallet/transactions/{transaction_id}/finalize", s.handleFinalizeDeposit)
	s.mux.HandleFunc("POST /api/wallet/transactions/{transaction_id}/sync", s.handleSyncStatus)

	s.mux.HandleFunc("POST /api/series", s.handleCreateSeries)
	s.mux.HandleFunc("GET /api/series", s.handleListSeries)
	s.mux.HandleFunc("GET /api/series/{series_id}", s.handleGetSeries)
	s.mux.HandleFunc("POST /api/videos", s.handleCreateVideo)
	s.mux.HandleFunc("GET /api/videos/{video_id}", s.handleGetVideo)
	s.mux.HandleFunc("POST /api/videos/{video_id}/pledge", s.handlePledge)
	s.mux.HandleFunc("POST /api/reviews", s.handleCreateReview)
	s.mux.HandleFunc("POST /api/reviews/{review_id}/vote", s.handleVoteReview)

	s.mux.HandleFunc("GET /events", s.handleEventStream)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.wallet.Handler.GetBalanceHandler(r.Context(), userID)
	if err != nil {
		writeWalletDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req wallethttp.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeWalletError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.wallet.Handler.DepositHandler(r.Context(), userID, req)
	if err != nil {
		writeWalletDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req wallethttp.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeWalletError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.wallet.Handler.WithdrawHandler(r.Context(), userID, req)
	if err != nil {
		writeWalletDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	page, limit := 0, 0
	if raw := query.Get("page"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			writeWalletError(w, http.StatusBadRequest, "invalid_page", "page must be an integer")
			return
		}
		page = value
	}
	if raw := query.Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			writeWalletError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = value
	}
	resp, err := s.wallet.Handler.ListTransactionsHandler(r.Context(), userID, page, limit)
	if err != nil {
		writeWalletDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateDepositOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req wallethttp.DepositOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeWalletError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.wallet.Handler.CreateDepositOrderHandler(r.Context(), userID, req)
	if err != nil {
		writeWalletDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAttachExternalID(w http.ResponseWriter, r *http.Request) {
	var req wallethttp.AttachExternalIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeWalletError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if err := s.wallet.Handler.AttachExternalIDHandler(r.Context(), r.PathValue("transaction_id"), req); err != nil {
		writeWalletDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinalizeDeposit(w http.ResponseWriter, r *http.Request) {
	resp, err := s.wallet.Handler.FinalizeDepositHandler(r.Context(), r.PathValue("transaction_id"))
	if err != nil {
		writeWalletDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.wallet.Handler.SyncStatusHandler(r.Context(), r.PathValue("transaction_id"))
	if err != nil {
		writeWalletDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateSeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req fundinghttp.CreateSeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFundingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.funding.Handler.CreateSeriesHandler(r.Context(), userID, req)
	if err != nil {
		writeFundingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListSeries(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.funding.Handler.ListSeriesHandler(r.Context(), userID)
	if err != nil {
		writeFundingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	resp, err := s.funding.Handler.GetSeriesHandler(r.Context(), r.PathValue("series_id"))
	if err != nil {
		writeFundingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateVideo(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req fundinghttp.CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFundingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.funding.Handler.CreateVideoHandler(r.Context(), userID, req)
	if err != nil {
		writeFundingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	resp, err := s.funding.Handler.GetVideoHandler(r.Context(), r.PathValue("video_id"))
	if err != nil {
		writeFundingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePledge(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req fundinghttp.PledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFundingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.funding.Handler.PledgeHandler(r.Context(), userID, r.PathValue("video_id"), req)
	if err != nil {
		writeFundingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req fundinghttp.CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFundingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.funding.Handler.CreateReviewHandler(r.Context(), userID, req)
	if err != nil {
		writeFundingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleVoteReview(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	resp, err := s.funding.Handler.VoteReviewHandler(r.Context(), r.PathValue("review_id"))
	if err != nil {
		writeFundingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if userID == "" {
		writeWalletError(w, http.StatusUnauthorized, "missing_user", "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func writeWalletDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, walleterrors.ErrAccountNotFound):
		writeWalletError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, walleterrors.ErrTransactionNotFound):
		writeWalletError(w, http.StatusNotFound, "transaction_not_found", err.Error())
	case errors.Is(err, walleterrors.ErrInsufficientFunds):
		writeWalletError(w, http.StatusConflict, "insufficient_funds", err.Error())
	case errors.Is(err, walleterrors.ErrInvalidAmount):
		writeWalletError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, walleterrors.ErrInvalidInput):
		writeWalletError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, walleterrors.ErrGatewayUnavailable):
		writeWalletError(w, http.StatusBadGateway, "gateway_unavailable", err.Error())
	default:
		writeWalletError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeFundingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, fundingerrors.ErrAccountNotFound):
		writeFundingError(w, http.StatusNotFound, "account_not_found", err.Error())
	case errors.Is(err, fundingerrors.ErrVideoNotFound):
		writeFundingError(w, http.StatusNotFound, "video_not_found", err.Error())
	case errors.Is(err, fundingerrors.ErrSeriesNotFound):
		writeFundingError(w, http.StatusNotFound, "series_not_found", err.Error())
	case errors.Is(err, fundingerrors.ErrReviewNotFound):
		writeFundingError(w, http.StatusNotFound, "review_not_found", err.Error())
	case errors.Is(err, fundingerrors.ErrInsufficientFunds):
		writeFundingError(w, http.StatusConflict, "insufficient_funds", err.Error())
	case errors.Is(err, fundingerrors.ErrTargetNotFundable):
		writeFundingError(w, http.StatusConflict, "video_not_fundable", err.Error())
	case errors.Is(err, fundingerrors.ErrSeriesHasActiveEpisode):
		writeFundingError(w, http.StatusConflict, "series_has_active_episode", err.Error())
	case errors.Is(err, fundingerrors.ErrInvalidAmount):
		writeFundingError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, fundingerrors.ErrInvalidInput):
		writeFundingError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeFundingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeWalletError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, wallethttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeFundingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, fundinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
