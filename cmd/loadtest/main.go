package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type config struct {
	baseURL     string
	customerID  string
	products    []string
	quantity    int
	total       int
	concurrency int
	timeout     time.Duration
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type report struct {
	StartedAt       time.Time        `json:"started_at"`
	DurationSeconds float64          `json:"duration_seconds"`
	TotalRequests   int64            `json:"total_requests"`
	Placed          int64            `json:"placed"`
	Rejected        int64            `json:"rejected"`
	Failed          int64            `json:"failed"`
	ErrorRate       float64          `json:"error_rate"`
	RPS             float64          `json:"rps"`
	StatusCodes     map[string]int64 `json:"status_codes"`
	LatencyMs       latencySummary   `json:"latency_ms"`
}

type collector struct {
	mu        sync.Mutex
	codes     map[string]int64
	latencies []float64
}

func newCollector() *collector {
	return &collector{codes: make(map[string]int64)}
}

func (c *collector) record(code int, latency time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := "error"
	if code > 0 {
		key = fmt.Sprintf("%d", code)
	}
	c.codes[key]++
	c.latencies = append(c.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) summary() (map[string]int64, latencySummary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	codes := make(map[string]int64, len(c.codes))
	for k, v := range c.codes {
		codes[k] = v
	}
	return codes, summarize(c.latencies)
}

func summarize(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	percentile := func(p float64) float64 {
		idx := int(math.Ceil(p*float64(len(sorted)))) - 1
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		return sorted[idx]
	}
	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(0.50),
		P95: percentile(0.95),
		P99: percentile(0.99),
	}
}

type placeOrderRequest struct {
	CustomerID string             `json:"customerId"`
	Products   []placeOrderLine   `json:"products"`
}

type placeOrderLine struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

func main() {
	cfg := parseFlags()

	client := &http.Client{Timeout: cfg.timeout}
	jobs := make(chan int)
	col := newCollector()

	var placed, rejected, failed int64
	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < cfg.concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := range jobs {
				product := cfg.products[i%len(cfg.products)]
				code, latency := placeOrder(client, cfg, product)
				col.record(code, latency)
				switch {
				case code == http.StatusCreated:
					atomic.AddInt64(&placed, 1)
				case code == http.StatusConflict:
					atomic.AddInt64(&rejected, 1)
				default:
					atomic.AddInt64(&failed, 1)
				}
			}
		}(w)
	}

	for i := 0; i < cfg.total; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(start)
	codes, latency := col.summary()

	out := report{
		StartedAt:       start.UTC(),
		DurationSeconds: elapsed.Seconds(),
		TotalRequests:   int64(cfg.total),
		Placed:          placed,
		Rejected:        rejected,
		Failed:          failed,
		ErrorRate:       safeRate(failed, int64(cfg.total)),
		RPS:             float64(cfg.total) / elapsed.Seconds(),
		StatusCodes:     codes,
		LatencyMs:       latency,
	}

	if err := writeReport(cfg.outputPath, out); err != nil {
		fmt.Fprintf(os.Stderr, "write report: %v\n", err)
		os.Exit(1)
	}
}

func placeOrder(client *http.Client, cfg config, productID string) (int, time.Duration) {
	payload, _ := json.Marshal(placeOrderRequest{
		CustomerID: cfg.customerID,
		Products:   []placeOrderLine{{ProductID: productID, Quantity: int32(cfg.quantity)}},
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return 0, 0
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return 0, latency
	}
	_ = resp.Body.Close()
	return resp.StatusCode, latency
}

func parseFlags() config {
	var (
		cfg      config
		products string
	)
	flag.StringVar(&cfg.baseURL, "addr", "http://127.0.0.1:8080", "base URL of the shopcore API")
	flag.StringVar(&cfg.customerID, "customer", "customer-alice", "customer id used for orders")
	flag.StringVar(&products, "products", "product-mouse,product-cable", "comma-separated product ids")
	flag.IntVar(&cfg.quantity, "quantity", 1, "quantity per order line")
	flag.IntVar(&cfg.total, "total", 1000, "total number of orders to place")
	flag.IntVar(&cfg.concurrency, "concurrency", 16, "number of concurrent workers")
	flag.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.StringVar(&cfg.outputPath, "out", "", "report path (default: stdout)")
	flag.Parse()

	cfg.baseURL = strings.TrimRight(cfg.baseURL, "/")
	for _, p := range strings.Split(products, ",") {
		if t := strings.TrimSpace(p); t != "" {
			cfg.products = append(cfg.products, t)
		}
	}
	if len(cfg.products) == 0 || cfg.total <= 0 || cfg.concurrency <= 0 || cfg.quantity <= 0 {
		fmt.Fprintln(os.Stderr, "invalid flags: products, total, concurrency and quantity must be positive")
		os.Exit(2)
	}
	return cfg
}

func safeRate(failed, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(failed) / float64(total)
}

func writeReport(path string, out report) error {
	payload, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	payload = append(payload, '\n')

	if path == "" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, payload, 0o644)
}
