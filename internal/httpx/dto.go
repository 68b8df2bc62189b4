package httpx

import (
	"time"

	"github.com/vladislavdragonenkov/shopcore/internal/domain"
	"github.com/vladislavdragonenkov/shopcore/internal/service/checkout"
)

// PlaceOrderRequest — тело запроса POST /orders.
type PlaceOrderRequest struct {
	CustomerID string             `json:"customerId"`
	Products   []OrderLineRequest `json:"products"`
}

// OrderLineRequest — одна позиция запроса оформления. Цена не принимается.
type OrderLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

// Lines преобразует позиции запроса во входной формат координатора.
func (r PlaceOrderRequest) Lines() []checkout.Line {
	lines := make([]checkout.Line, len(r.Products))
	for i, p := range r.Products {
		lines[i] = checkout.Line{ProductID: p.ProductID, Quantity: p.Quantity}
	}
	return lines
}

// OrderResponse — представление заказа в ответах API.
type OrderResponse struct {
	ID          string              `json:"id"`
	CustomerID  string              `json:"customerId"`
	Products    []OrderLineResponse `json:"products"`
	TotalAmount float64             `json:"totalAmount"`
	OrderDate   time.Time           `json:"orderDate"`
	Status      string              `json:"status"`
}

type OrderLineResponse struct {
	ProductID       string  `json:"productId"`
	Quantity        int32   `json:"quantity"`
	PriceAtPurchase float64 `json:"priceAtPurchase"`
}

func toOrderResponse(order domain.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(order.Lines))
	for i, line := range order.Lines {
		lines[i] = OrderLineResponse{
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			PriceAtPurchase: line.PriceAtPurchase,
		}
	}
	return OrderResponse{
		ID:          order.ID,
		CustomerID:  order.CustomerID,
		Products:    lines,
		TotalAmount: order.TotalAmount,
		OrderDate:   order.OrderDate,
		Status:      string(order.Status),
	}
}

func toOrderResponses(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, order := range orders {
		out[i] = toOrderResponse(order)
	}
	return out
}

// CustomerResponse — представление клиента в ответах API.
type CustomerResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Age      int32  `json:"age"`
	Location string `json:"location"`
	Gender   string `json:"gender"`
}

func toCustomerResponse(customer domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:       customer.ID,
		Name:     customer.Name,
		Email:    customer.Email,
		Age:      customer.Age,
		Location: customer.Location,
		Gender:   customer.Gender,
	}
}

// ProductResponse — представление товара в ответах API.
type ProductResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Stock     int32     `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toProductResponse(product domain.Product) ProductResponse {
	return ProductResponse{
		ID:        product.ID,
		Name:      product.Name,
		Category:  product.Category,
		Price:     product.Price,
		Stock:     product.Stock,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}

// SpendingResponse — сводка расходов клиента.
type SpendingResponse struct {
	CustomerID        string     `json:"customerId"`
	TotalSpent        float64    `json:"totalSpent"`
	AverageOrderValue float64    `json:"averageOrderValue"`
	LastOrderDate     *time.Time `json:"lastOrderDate"`
}

// TopProductResponse — элемент рейтинга продаж.
type TopProductResponse struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	TotalSold int64  `json:"totalSold"`
}

// SalesReportResponse — сводка продаж за окно дат.
type SalesReportResponse struct {
	TotalRevenue      float64                   `json:"totalRevenue"`
	CompletedOrders   int64                     `json:"completedOrders"`
	CategoryBreakdown []CategoryRevenueResponse `json:"categoryBreakdown"`
}

type CategoryRevenueResponse struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
}

func toSalesReportResponse(report domain.SalesReport) SalesReportResponse {
	breakdown := make([]CategoryRevenueResponse, len(report.CategoryBreakdown))
	for i, entry := range report.CategoryBreakdown {
		breakdown[i] = CategoryRevenueResponse{Category: entry.Category, Revenue: entry.Revenue}
	}
	return SalesReportResponse{
		TotalRevenue:      report.TotalRevenue,
		CompletedOrders:   report.CompletedOrders,
		CategoryBreakdown: breakdown,
	}
}

// ErrorResponse — единый формат ошибок API. Issues заполняется только
// для отклонённых заказов.
type ErrorResponse struct {
	Error  string          `json:"error"`
	Issues []IssueResponse `json:"issues,omitempty"`
}

// IssueResponse — один отказ по позиции отклонённого заказа.
type IssueResponse struct {
	Line      int    `json:"line"`
	ProductID string `json:"productId"`
	Kind      string `json:"kind"`
	Available int32  `json:"available,omitempty"`
	Message   string `json:"message"`
}

func toIssueResponses(issues []domain.StockIssue) []IssueResponse {
	out := make([]IssueResponse, len(issues))
	for i, issue := range issues {
		out[i] = IssueResponse{
			Line:      issue.Line,
			ProductID: issue.ProductID,
			Kind:      string(issue.Kind),
			Available: issue.Available,
			Message:   issue.String(),
		}
	}
	return out
}
