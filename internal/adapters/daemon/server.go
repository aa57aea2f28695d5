package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/andrescamacho/factory-economy/internal/application/auth"
	"github.com/andrescamacho/factory-economy/internal/application/common"
	"github.com/andrescamacho/factory-economy/internal/domain/shared"
)

// ActionsPath prefixes every action endpoint
const ActionsPath = "/v1/actions/"

// HealthPath answers 200 while the daemon accepts actions
const HealthPath = "/v1/health"

const maxRequestBytes = 1 << 16

// DaemonServer exposes player actions over HTTP. Each call is dispatched through
// the daemon mediator, so it runs on the scheduler loop between ticks.
type DaemonServer struct {
	client Client
	logger *slog.Logger
}

// NewDaemonServer creates a server answering with client, normally a DaemonClientLocal
func NewDaemonServer(client Client, logger *slog.Logger) *DaemonServer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DaemonServer{client: client, logger: logger}
}

// Register mounts the action and health endpoints on mux
func (s *DaemonServer) Register(mux *http.ServeMux) {
	mux.Handle(ActionsPath, s)
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (s *DaemonServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Message: "actions must be POSTed"})
		return
	}

	action := strings.TrimPrefix(r.URL.Path, ActionsPath)

	var req ActionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	player, err := shared.ParsePlayerID(req.PlayerID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "player_id must be a player id"})
		return
	}

	ctx := common.WithLogger(r.Context(), s.logger)
	resp, err := s.dispatch(ctx, action, player, req)
	if err != nil {
		s.writeError(ctx, w, action, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

var errUnknownAction = errors.New("unknown action")

func (s *DaemonServer) dispatch(ctx context.Context, action string, player shared.PlayerID, req ActionRequest) (any, error) {
	switch action {
	case ActionBuyFactory:
		return s.client.BuyFactory(ctx, player, req.FactoryID)
	case ActionSellFactory:
		return s.client.SellFactory(ctx, player, req.FactoryID)
	case ActionStartProduction:
		return s.client.StartProduction(ctx, player, req.FactoryID, req.RecipeID)
	case ActionStartUpgrade:
		return s.client.StartUpgrade(ctx, player, req.FactoryID)
	case ActionPayTax:
		return s.client.PayTax(ctx, player, req.FactoryID)
	case ActionPayAllTaxes:
		return s.client.PayAllTaxes(ctx, player)
	case ActionPayInvoice:
		id, err := uuid.Parse(req.InvoiceID)
		if err != nil {
			return nil, shared.NewValidationError("INVALID_INVOICE_ID", "invoice_id must be a uuid")
		}
		return s.client.PayInvoice(ctx, player, id)
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownAction, action)
	}
}

func (s *DaemonServer) writeError(ctx context.Context, w http.ResponseWriter, action string, err error) {
	if errors.Is(err, errUnknownAction) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: err.Error()})
		return
	}

	var de *shared.DomainError
	if !errors.As(err, &de) {
		s.logger.ErrorContext(ctx, "action failed", "action", action, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: err.Error()})
		return
	}

	status := http.StatusBadRequest
	switch {
	case de.Code == auth.CodeRateLimited:
		status = http.StatusTooManyRequests
	case de.Kind == shared.KindResource:
		status = http.StatusConflict
	case de.Kind != shared.KindValidation:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, ErrorResponse{Kind: de.Kind, Code: de.Code, Message: de.Message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
