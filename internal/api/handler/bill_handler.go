package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"billed/internal/api/middleware"
	"billed/internal/app/service"
	"billed/internal/common"
	"billed/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BillHandler serves the bills REST API used by remote store clients.
type BillHandler struct {
	billService    *service.BillService
	maxUploadBytes int64
	log            *zap.Logger
}

func NewBillHandler(billService *service.BillService, maxUploadBytes int64, log *zap.Logger) *BillHandler {
	return &BillHandler{billService: billService, maxUploadBytes: maxUploadBytes, log: log}
}

func (h *BillHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.listBills)
	r.Post("/", h.createBill)
	r.Get("/{billID}", h.getBill)
	r.Patch("/{billID}", h.updateBill)
	r.Delete("/{billID}", h.discardBill)
	r.With(middleware.AdminOnly).Post("/{billID}/decision", h.decideBill)
}

type decisionRequest struct {
	Status       model.BillStatus `json:"status"`
	CommentAdmin string           `json:"commentAdmin"`
}

func (h *BillHandler) listBills(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetSessionFromContext(r.Context())
	bills, err := h.billService.List(r.Context(), user)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	if bills == nil {
		bills = []model.Bill{}
	}
	common.RespondWithJSON(w, http.StatusOK, bills)
}

// createBill uploads the receipt of a new bill. The bill stays a draft until
// it is completed with a PATCH.
func (h *BillHandler) createBill(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetSessionFromContext(r.Context())
	if err := parseMultipart(w, r, h.maxUploadBytes); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	file, err := formFile(r, "file")
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	if email == "" {
		email = user.Email
	}
	if email != user.Email && !user.IsAdmin() {
		common.RespondWithError(w, http.StatusForbidden, "Cannot upload a bill for another user")
		return
	}

	res, err := h.billService.Upload(r.Context(), email, file)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, res)
}

func (h *BillHandler) getBill(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetSessionFromContext(r.Context())
	bill, err := h.billService.Get(r.Context(), user, chi.URLParam(r, "billID"))
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, bill)
}

func (h *BillHandler) updateBill(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetSessionFromContext(r.Context())
	var patch model.Bill
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	bill, err := h.billService.Update(r.Context(), user, chi.URLParam(r, "billID"), patch)
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, bill)
}

// discardBill drops a draft whose form was abandoned.
func (h *BillHandler) discardBill(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetSessionFromContext(r.Context())
	if err := h.billService.DiscardDraft(r.Context(), user, chi.URLParam(r, "billID")); err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decideBill accepts or refuses a submitted bill.
func (h *BillHandler) decideBill(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetSessionFromContext(r.Context())
	adminID, _ := middleware.GetUserIDFromContext(r.Context())
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if req.Status != model.BillStatusAccepted && req.Status != model.BillStatusRefused {
		common.RespondWithError(w, http.StatusBadRequest, "status must be accepted or refused")
		return
	}

	billID := chi.URLParam(r, "billID")
	bill, err := h.billService.Update(r.Context(), user, billID, model.Bill{Status: req.Status, CommentAdmin: req.CommentAdmin})
	if err != nil {
		respondWithServiceError(w, h.log, err)
		return
	}
	h.log.Info("bill decided through api", zap.String("bill_id", billID), zap.String("admin_id", adminID))
	common.RespondWithJSON(w, http.StatusOK, bill)
}
