package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gripp-game/gripp-api/internal/api/response"
	"github.com/gripp-game/gripp-api/internal/model"
	"github.com/gripp-game/gripp-api/internal/services/statements"
)

// StatementHandler handles statement query endpoints
type StatementHandler struct {
	statements *statements.Service
	logger     *slog.Logger
}

// NewStatementHandler creates a new statement handler
func NewStatementHandler(statementService *statements.Service, logger *slog.Logger) *StatementHandler {
	return &StatementHandler{
		statements: statementService,
		logger:     logger,
	}
}

// List handles GET /statements
func (h *StatementHandler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.statements.ListAll(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StatementListFromModel(all))
}

// Texts handles GET /statements-only
func (h *StatementHandler) Texts(w http.ResponseWriter, r *http.Request) {
	texts, err := h.statements.ListTexts(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TextList{Texts: texts})
}

// IDs handles GET /statements/id
func (h *StatementHandler) IDs(w http.ResponseWriter, r *http.Request) {
	ids, err := h.statements.ListIDs(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.IDListFromModel(ids))
}

// Random handles GET /random
func (h *StatementHandler) Random(w http.ResponseWriter, r *http.Request) {
	picked, err := h.statements.PickRandom(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.RandomStatement{
		Text:      picked.Text,
		Statement: response.StatementFromModel(*picked),
	})
}

// SortedByLevel handles GET /statements/levels
func (h *StatementHandler) SortedByLevel(w http.ResponseWriter, r *http.Request) {
	sorted, err := h.statements.ListSortedByLevel(r.Context())
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StatementListFromModel(sorted))
}

// ByLevel handles GET /statements/levels/{level}
func (h *StatementHandler) ByLevel(w http.ResponseWriter, r *http.Request) {
	matches, err := h.statements.ListByLevel(r.Context(), mux.Vars(r)["level"])
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.StatementListFromModel(matches))
}

// Get handles GET /statements/statementId/{statementId}
func (h *StatementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := model.StatementID(mux.Vars(r)["statementId"])
	st, err := h.statements.Get(r.Context(), id)
	if err != nil {
		writeError(h.logger, w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SingleStatement{Statement: response.StatementFromModel(*st)})
}
