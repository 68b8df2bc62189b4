package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/service/analytics"
	"github.com/vladislavdragonenkov/shopcore/internal/service/checkout"
)

// Параметры пагинации списка заказов по умолчанию.
const defaultPage = 1

// Handler связывает HTTP-маршруты с сервисами оформления и аналитики.
type Handler struct {
	coordinator *checkout.Coordinator
	aggregator  *analytics.Aggregator
	customers   domain.CustomerRepository
	products    domain.ProductRepository
	orders      domain.OrderRepository
	logger      *log.Entry
}

// NewHandler создаёт обработчик API.
func NewHandler(
	coordinator *checkout.Coordinator,
	aggregator *analytics.Aggregator,
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	logger *log.Entry,
) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}
	return &Handler{
		coordinator: coordinator,
		aggregator:  aggregator,
		customers:   customers,
		products:    products,
		orders:      orders,
		logger:      logger,
	}
}

// Register навешивает маршруты API на роутер.
func (h *Handler) Register(r chi.Router) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders/{id}", h.getOrder)

	r.Get("/customers", h.listCustomers)
	r.Get("/customers/{id}", h.getCustomer)
	r.Get("/customers/{id}/orders", h.listCustomerOrders)
	r.Get("/customers/{id}/spending", h.customerSpending)

	r.Get("/products", h.listProducts)
	r.Get("/products/top", h.topProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Get("/analytics/sales", h.salesReport)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	order, err := h.coordinator.PlaceOrder(r.Context(), req.CustomerID, req.Lines())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]CustomerResponse, len(customers))
	for i, customer := range customers {
		out[i] = toCustomerResponse(customer)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

// listCustomerOrders не проверяет существование клиента: для неизвестного
// идентификатора возвращается пустой список, как и для клиента без заказов.
func (h *Handler) listCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")

	page := queryInt(r, "page", defaultPage)
	if page < 1 {
		page = defaultPage
	}
	limit := analytics.NormalizeLimit(queryInt(r, "limit", 0))

	orders, err := h.orders.ListByCustomer(r.Context(), customerID, page, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponses(orders))
}

// customerSpending отдаёт нулевую сводку для клиента без заказов — в том
// числе для неизвестного идентификатора, существование клиента не проверяется.
func (h *Handler) customerSpending(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "id")

	spending, err := h.aggregator.CustomerSpending(r.Context(), customerID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SpendingResponse{
		CustomerID:        spending.CustomerID,
		TotalSpent:        spending.TotalSpent,
		AverageOrderValue: spending.AverageOrderValue,
		LastOrderDate:     spending.LastOrderDate,
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]ProductResponse, len(products))
	for i, product := range products {
		out[i] = toProductResponse(product)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	top, err := h.aggregator.TopSellingProducts(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]TopProductResponse, len(top))
	for i, entry := range top {
		out[i] = TopProductResponse{ProductID: entry.ProductID, Name: entry.Name, TotalSold: entry.TotalSold}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.aggregator.SalesReport(r.Context(), r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSalesReportResponse(report))
}

// writeError переводит ошибки домена в HTTP-статусы: ошибки валидации — 400,
// отсутствующие сущности — 404, отклонённый заказ — 409 с полным отчётом,
// инфраструктурный сбой транзакции — 503.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var invalidLine *domain.InvalidLineItemError
	switch {
	case errors.Is(err, domain.ErrCustomerRequired),
		errors.Is(err, domain.ErrLinesRequired),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.As(err, &invalidLine):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrTransactionAborted):
		h.logger.WithError(err).Error("request failed with transaction abort")
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: domain.ErrTransactionAborted.Error()})
	default:
		if rejected, ok := domain.IsRejected(err); ok {
			writeJSON(w, http.StatusConflict, ErrorResponse{
				Error:  rejected.Error(),
				Issues: toIssueResponses(rejected.Issues),
			})
			return
		}
		h.logger.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
