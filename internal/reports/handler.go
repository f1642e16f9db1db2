package reports

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/formcheck/internal/batch"
	"github.com/2beens/formcheck/internal/telemetry/tracing"
	"github.com/2beens/formcheck/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=reports_test

type reportsService interface {
	Get(ctx context.Context, id string) (*batch.Report, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, size int) (*Page, error)
}

type DeleteReportResponse struct {
	DeletedID string `json:"deletedId"`
}

type Handler struct {
	service reportsService
}

func NewHandler(service reportsService) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/reports/list/page/{page}/size/{size}", h.HandleList).Methods("GET", "OPTIONS").Name("list-reports")
	router.HandleFunc("/reports/{id}", h.HandleGet).Methods("GET", "OPTIONS").Name("get-report")
	router.HandleFunc("/reports/{id}", h.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-report")
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.reports.get")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	report, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			http.Error(w, "error, report not found", http.StatusNotFound)
			return
		}
		log.Errorf("get report [%s]: %s", id, err)
		http.Error(w, "error, failed to get report", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, report, http.StatusOK)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.reports.delete")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrReportNotFound) {
			http.Error(w, "error, report not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete report [%s]: %s", id, err)
		http.Error(w, "error, failed to delete report", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, DeleteReportResponse{DeletedID: id}, http.StatusOK)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.reports.list")
	defer span.End()

	vars := mux.Vars(r)
	page, err := strconv.Atoi(vars["page"])
	if err != nil {
		log.Errorf("handle get reports page, parse page: %s", err)
		http.Error(w, "error, page NaN", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil {
		log.Errorf("handle get reports page, parse size: %s", err)
		http.Error(w, "error, size NaN", http.StatusBadRequest)
		return
	}

	if page < 1 || size < 1 {
		http.Error(w, "invalid page size or number", http.StatusBadRequest)
		return
	}

	reportsPage, err := h.service.List(ctx, page, size)
	if err != nil {
		log.Errorf("get reports page %d, size %d: %s", page, size, err)
		http.Error(w, "error, failed to get reports", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, reportsPage, http.StatusOK)
}
