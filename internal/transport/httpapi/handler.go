package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/domain"
	"github.com/vladislavdragonenkov/checkout/internal/service/order"
)

// Handler отдаёт JSON API размещения заказов поверх CreationService.
type Handler struct {
	creation *order.CreationService
	finder   domain.OrderFinder
	logger   *log.Entry
}

// NewHandler создаёт HTTP handler сервиса заказов.
func NewHandler(creation *order.CreationService, finder domain.OrderFinder, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	return &Handler{
		creation: creation,
		finder:   finder,
		logger:   logger,
	}
}

// Register вешает маршруты API на mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /orders", h.createOrder)
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
}

type createOrderRequest struct {
	CustomerID string        `json:"customer_id"`
	Items      []requestItem `json:"items"`
}

type requestItem struct {
	ProductID string `json:"product_id"`
	Qty       int32  `json:"qty"`
}

type orderResponse struct {
	ID         string             `json:"id"`
	CustomerID string             `json:"customer_id"`
	Items      []lineItemResponse `json:"items"`
	CreatedAt  time.Time          `json:"created_at"`
}

type lineItemResponse struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Qty        int32  `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
	Currency   string `json:"currency"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	items := make([]domain.RequestedItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.RequestedItem{ProductID: item.ProductID, Qty: item.Qty})
	}

	placed, err := h.creation.Execute(r.Context(), req.CustomerID, items)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(placed))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	found, err := h.finder.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(found))
}

// writeError переводит доменную ошибку в HTTP статус:
// отклонения запроса — 4xx, всё остальное — 500 без деталей.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var notFound *domain.ProductNotFoundError
	var insufficient *domain.InsufficientStockError

	switch {
	case errors.Is(err, domain.ErrCustomerRequired),
		errors.Is(err, domain.ErrItemsRequired),
		errors.Is(err, domain.ErrProductIDRequired),
		errors.Is(err, domain.ErrItemQtyInvalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrNoProductsFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case domain.IsStockConflict(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		h.logger.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func toOrderResponse(o domain.Order) orderResponse {
	items := make([]lineItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, lineItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Qty:        item.Qty,
			PriceMinor: item.PriceMinor,
			Currency:   item.Currency,
		})
	}
	return orderResponse{
		ID:         o.ID,
		CustomerID: o.CustomerID,
		Items:      items,
		CreatedAt:  o.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
