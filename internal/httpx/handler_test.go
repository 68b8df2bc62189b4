package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/service/analytics"
	"github.com/vladislavdragonenkov/shopcore/internal/service/checkout"
	"github.com/vladislavdragonenkov/shopcore/internal/storage/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()

	store := memory.NewStore()
	logger := log.New()
	logger.SetLevel(log.FatalLevel)
	entry := logger.WithField("component", "http-test")

	coordinator := checkout.NewCoordinatorWithoutMetrics(store.Checkout(), entry)
	aggregator := analytics.NewAggregatorWithoutMetrics(store.Analytics(), entry)
	handler := NewHandler(coordinator, aggregator, store.Customers(), store.Products(), store.Orders(), entry)

	server := httptest.NewServer(NewRouter(handler, nil, nil))
	t.Cleanup(server.Close)
	return server, store
}

func seedFixture(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Customers().Create(ctx, domain.Customer{
		ID: "customer-1", Name: "Alice", Email: "alice@example.com", Age: 34, Location: "Berlin", Gender: "female",
	}))
	require.NoError(t, store.Products().Create(ctx, domain.Product{
		ID: "product-1", Name: "Keyboard", Category: "Peripherals", Price: 49.99, Stock: 5,
	}))
	require.NoError(t, store.Products().Create(ctx, domain.Product{
		ID: "product-2", Name: "Mouse", Category: "Peripherals", Price: 19.50, Stock: 10,
	}))
}

// seedCompletedOrder записывает завершённый заказ напрямую через транзакцию,
// минуя координатор: аналитика учитывает только завершённые заказы.
func seedCompletedOrder(t *testing.T, store *memory.Store, order domain.Order) {
	t.Helper()
	ctx := context.Background()
	tx, err := store.Checkout().Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertOrder(ctx, order))
	require.NoError(t, tx.Commit(ctx))
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if raw, ok := body.(string); ok {
		reader = bytes.NewReader([]byte(raw))
	} else {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func getJSON(t *testing.T, url string, target any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if target != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
	}
	return resp
}

func TestPlaceOrderEndpoint(t *testing.T) {
	server, store := newTestServer(t)
	seedFixture(t, store)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/orders", PlaceOrderRequest{
		CustomerID: "customer-1",
		Products: []OrderLineRequest{
			{ProductID: "product-1", Quantity: 1},
			{ProductID: "product-2", Quantity: 2},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created OrderResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "customer-1", created.CustomerID)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, 88.99, created.TotalAmount)
	require.Len(t, created.Products, 2)
	assert.Equal(t, 49.99, created.Products[0].PriceAtPurchase)

	var fetched OrderResponse
	resp = getJSON(t, server.URL+"/orders/"+created.ID, &fetched)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestPlaceOrderEndpointErrors(t *testing.T) {
	server, store := newTestServer(t)
	seedFixture(t, store)

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/orders", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/orders", PlaceOrderRequest{CustomerID: "customer-1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/orders", PlaceOrderRequest{
		CustomerID: "ghost",
		Products:   []OrderLineRequest{{ProductID: "product-1", Quantity: 1}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPlaceOrderEndpointRejected(t *testing.T) {
	server, store := newTestServer(t)
	seedFixture(t, store)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/orders", PlaceOrderRequest{
		CustomerID: "customer-1",
		Products: []OrderLineRequest{
			{ProductID: "product-1", Quantity: 100},
			{ProductID: "product-9", Quantity: 1},
		},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var rejected ErrorResponse
	require.NoError(t, json.Unmarshal(body, &rejected))
	require.Len(t, rejected.Issues, 2)
	assert.Equal(t, 0, rejected.Issues[0].Line)
	assert.Equal(t, "insufficient_stock", rejected.Issues[0].Kind)
	assert.Equal(t, int32(5), rejected.Issues[0].Available)
	assert.Equal(t, "product_not_found", rejected.Issues[1].Kind)
	assert.True(t, strings.Contains(rejected.Error, "order rejected due to inventory issues"))
}

func TestCustomerEndpoints(t *testing.T) {
	server, store := newTestServer(t)
	seedFixture(t, store)

	var customers []CustomerResponse
	resp := getJSON(t, server.URL+"/customers", &customers)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, customers, 1)
	assert.Equal(t, "Alice", customers[0].Name)

	var customer CustomerResponse
	resp = getJSON(t, server.URL+"/customers/customer-1", &customer)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice@example.com", customer.Email)

	resp = getJSON(t, server.URL+"/customers/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Производные ресурсы не проверяют существование клиента: неизвестный
	// идентификатор даёт пустой список и нулевую сводку, не 404.
	var orders []OrderResponse
	resp = getJSON(t, server.URL+"/customers/ghost/orders", &orders)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, orders)

	var spending SpendingResponse
	resp = getJSON(t, server.URL+"/customers/ghost/spending", &spending)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ghost", spending.CustomerID)
	assert.Equal(t, 0.0, spending.TotalSpent)
	assert.Equal(t, 0.0, spending.AverageOrderValue)
	assert.Nil(t, spending.LastOrderDate)
}

func TestCustomerOrdersPagination(t *testing.T) {
	server, store := newTestServer(t)
	seedFixture(t, store)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedCompletedOrder(t, store, domain.Order{
			ID:          "order-" + string(rune('a'+i)),
			CustomerID:  "customer-1",
			Lines:       []domain.OrderLine{{ProductID: "product-1", Quantity: 1, PriceAtPurchase: 49.99}},
			TotalAmount: 49.99,
			OrderDate:   base.AddDate(0, 0, i),
			Status:      domain.OrderStatusCompleted,
		})
	}

	var page []OrderResponse
	resp := getJSON(t, server.URL+"/customers/customer-1/orders?page=1&limit=2", &page)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, page, 2)
	// Свежие заказы первыми.
	assert.Equal(t, "order-c", page[0].ID)
	assert.Equal(t, "order-b", page[1].ID)

	resp = getJSON(t, server.URL+"/customers/customer-1/orders?page=2&limit=2", &page)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, page, 1)
	assert.Equal(t, "order-a", page[0].ID)
}

func TestSpendingEndpoint(t *testing.T) {
	server, store := newTestServer(t)
	seedFixture(t, store)

	// Клиент без завершённых заказов получает нулевую сводку.
	var spending SpendingResponse
	resp := getJSON(t, server.URL+"/customers/customer-1/spending", &spending)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.0, spending.TotalSpent)
	assert.Nil(t, spending.LastOrderDate)

	seedCompletedOrder(t, store, domain.Order{
		ID:          "order-1",
		CustomerID:  "customer-1",
		Lines:       []domain.OrderLine{{ProductID: "product-1", Quantity: 2, PriceAtPurchase: 49.99}},
		TotalAmount: 99.98,
		OrderDate:   time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
		Status:      domain.OrderStatusCompleted,
	})

	resp = getJSON(t, server.URL+"/customers/customer-1/spending", &spending)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 99.98, spending.TotalSpent)
	require.NotNil(t, spending.LastOrderDate)
}

func TestProductEndpoints(t *testing.T) {
	server, store := newTestServer(t)
	seedFixture(t, store)

	var products []ProductResponse
	resp := getJSON(t, server.URL+"/products", &products)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, products, 2)

	var product ProductResponse
	resp = getJSON(t, server.URL+"/products/product-2", &product)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Mouse", product.Name)

	resp = getJSON(t, server.URL+"/products/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTopProductsEndpoint(t *testing.T) {
	server, store := newTestServer(t)
	seedFixture(t, store)

	seedCompletedOrder(t, store, domain.Order{
		ID:         "order-1",
		CustomerID: "customer-1",
		Lines: []domain.OrderLine{
			{ProductID: "product-1", Quantity: 2, PriceAtPurchase: 49.99},
			{ProductID: "product-2", Quantity: 7, PriceAtPurchase: 19.50},
		},
		TotalAmount: 236.48,
		OrderDate:   time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC),
		Status:      domain.OrderStatusCompleted,
	})

	var top []TopProductResponse
	resp := getJSON(t, server.URL+"/products/top?limit=1", &top)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, top, 1)
	assert.Equal(t, "product-2", top[0].ProductID)
	assert.Equal(t, "Mouse", top[0].Name)
	assert.Equal(t, int64(7), top[0].TotalSold)
}

func TestSalesReportEndpoint(t *testing.T) {
	server, store := newTestServer(t)
	seedFixture(t, store)

	resp := getJSON(t, server.URL+"/analytics/sales?start=bogus&end=2024-03-31", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var report SalesReportResponse
	resp = getJSON(t, server.URL+"/analytics/sales?start=2024-03-01&end=2024-03-31", &report)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.0, report.TotalRevenue)
	assert.Equal(t, int64(0), report.CompletedOrders)

	seedCompletedOrder(t, store, domain.Order{
		ID:          "order-1",
		CustomerID:  "customer-1",
		Lines:       []domain.OrderLine{{ProductID: "product-1", Quantity: 1, PriceAtPurchase: 49.99}},
		TotalAmount: 49.99,
		// Последний день окна включается целиком.
		OrderDate: time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC),
		Status:    domain.OrderStatusCompleted,
	})

	resp = getJSON(t, server.URL+"/analytics/sales?start=2024-03-01&end=2024-03-31", &report)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 49.99, report.TotalRevenue)
	assert.Equal(t, int64(1), report.CompletedOrders)
	require.Len(t, report.CategoryBreakdown, 1)
	assert.Equal(t, "Peripherals", report.CategoryBreakdown[0].Category)
}
