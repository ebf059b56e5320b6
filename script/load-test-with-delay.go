package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AddToCart represents the add-to-cart payload
type AddToCart struct {
	HolderID  string `json:"holderId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// TestResult contains metrics for a single request
type TestResult struct {
	Outcome      string
	ResponseTime time.Duration
	StatusCode   int
	Error        error
}

// TestStats contains aggregated test statistics
type TestStats struct {
	TotalRequests     int
	TotalTime         time.Duration
	MinResponseTime   time.Duration
	MaxResponseTime   time.Duration
	TotalResponseTime time.Duration
	ResponseTimes     []time.Duration
	Outcomes          map[string]int // added, locked, out_of_stock, error
	ErrorCounts       map[string]int
	ProductStats      map[string]int // Track requests per product
	Lock              sync.Mutex
}

func main() {
	concurrency := flag.Int("c", 10, "Number of concurrent shoppers")
	totalRequests := flag.Int("n", 200, "Total number of add-to-cart requests")
	productsStr := flag.String("p", "melon-premium,carrots-1kg", "Comma-separated product IDs to contend on")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	delayMs := flag.Int("delay", 50, "Delay between requests in milliseconds")
	release := flag.Bool("release", true, "Release the lock after a successful add")
	flag.Parse()

	var products []string
	for _, id := range strings.Split(*productsStr, ",") {
		if id = strings.TrimSpace(id); id != "" {
			products = append(products, id)
		}
	}
	if len(products) == 0 {
		products = []string{"melon-premium"}
	}

	fmt.Printf("Contending on %d products: %v\n", len(products), products)
	fmt.Printf("Concurrency: %d shoppers\n", *concurrency)
	fmt.Printf("Total requests: %d\n", *totalRequests)
	fmt.Printf("Delay between requests: %d ms\n", *delayMs)

	stats := &TestStats{
		TotalRequests:   *totalRequests,
		MinResponseTime: time.Hour,
		Outcomes:        make(map[string]int),
		ErrorCounts:     make(map[string]int),
		ResponseTimes:   make([]time.Duration, 0, *totalRequests),
		ProductStats:    make(map[string]int),
	}

	results := make(chan TestResult, *totalRequests)
	jobs := make(chan int, *totalRequests)

	var wg sync.WaitGroup
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shopper(*baseURL, *delayMs, *release, products, jobs, results, stats)
		}()
	}

	go func() {
		for i := 0; i < *totalRequests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for result := range results {
			stats.Lock.Lock()
			stats.Outcomes[result.Outcome]++
			if result.Error != nil {
				stats.ErrorCounts[result.Error.Error()]++
			}

			stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
			stats.TotalResponseTime += result.ResponseTime
			if result.ResponseTime < stats.MinResponseTime {
				stats.MinResponseTime = result.ResponseTime
			}
			if result.ResponseTime > stats.MaxResponseTime {
				stats.MaxResponseTime = result.ResponseTime
			}
			stats.Lock.Unlock()
		}
	}()

	startTime := time.Now()
	fmt.Println("Test running...")

	ticker := time.NewTicker(1 * time.Second)
	go func() {
		for range ticker.C {
			stats.Lock.Lock()
			completed := len(stats.ResponseTimes)
			if completed > 0 {
				fmt.Printf("Progress: %d/%d requests completed (%.1f%%)\n",
					completed, stats.TotalRequests, float64(completed)/float64(stats.TotalRequests)*100)
			}
			stats.Lock.Unlock()
		}
	}()

	wg.Wait()
	close(results)
	<-collected
	ticker.Stop()

	stats.TotalTime = time.Since(startTime)
	printResults(stats)
}

// shopper plays one browser: each job is a fresh holder trying to put a product in the cart
func shopper(baseURL string, delayMs int, release bool, products []string,
	jobs <-chan int, results chan<- TestResult, stats *TestStats) {

	client := &http.Client{
		Timeout: 10 * time.Second,
	}

	for range jobs {
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}

		productID := products[rand.Intn(len(products))]
		holderID := "load-" + uuid.NewString()

		stats.Lock.Lock()
		stats.ProductStats[productID]++
		stats.Lock.Unlock()

		jsonData, err := json.Marshal(AddToCart{HolderID: holderID, ProductID: productID, Quantity: 1})
		if err != nil {
			results <- TestResult{Outcome: "error", Error: err}
			continue
		}

		req, err := http.NewRequest(http.MethodPost, baseURL+"/api/cart/items", bytes.NewBuffer(jsonData))
		if err != nil {
			results <- TestResult{Outcome: "error", Error: err}
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Request-ID", holderID)

		startTime := time.Now()
		resp, err := client.Do(req)
		result := TestResult{ResponseTime: time.Since(startTime)}

		if err != nil {
			result.Outcome = "error"
			result.Error = err
			results <- result
			continue
		}
		resp.Body.Close()

		result.StatusCode = resp.StatusCode
		switch resp.StatusCode {
		case http.StatusOK:
			result.Outcome = "added"
		case http.StatusLocked:
			result.Outcome = "locked"
		case http.StatusConflict:
			result.Outcome = "out_of_stock"
		default:
			result.Outcome = "error"
			result.Error = fmt.Errorf("HTTP status code %d", resp.StatusCode)
		}
		results <- result

		if release && result.Outcome == "added" {
			releaseLock(client, baseURL, productID, holderID)
		}
	}
}

func releaseLock(client *http.Client, baseURL, productID, holderID string) {
	target := fmt.Sprintf("%s/api/cart/items/%s?holderId=%s",
		baseURL, url.PathEscape(productID), url.QueryEscape(holderID))
	req, err := http.NewRequest(http.MethodDelete, target, nil)
	if err != nil {
		return
	}
	if resp, err := client.Do(req); err == nil {
		resp.Body.Close()
	}
}

func printResults(stats *TestStats) {
	tps := float64(len(stats.ResponseTimes)) / stats.TotalTime.Seconds()

	var avgResponseTime time.Duration
	if len(stats.ResponseTimes) > 0 {
		avgResponseTime = stats.TotalResponseTime / time.Duration(len(stats.ResponseTimes))
	}

	var p50, p90, p95, p99 time.Duration
	if len(stats.ResponseTimes) > 0 {
		sortedTimes := make([]time.Duration, len(stats.ResponseTimes))
		copy(sortedTimes, stats.ResponseTimes)
		sort.Slice(sortedTimes, func(i, j int) bool { return sortedTimes[i] < sortedTimes[j] })

		p50 = sortedTimes[len(sortedTimes)*50/100]
		p90 = sortedTimes[len(sortedTimes)*90/100]
		p95 = sortedTimes[len(sortedTimes)*95/100]
		p99 = sortedTimes[len(sortedTimes)*99/100]
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Requests:      %d\n", stats.TotalRequests)
	for _, outcome := range []string{"added", "locked", "out_of_stock", "error"} {
		count := stats.Outcomes[outcome]
		fmt.Printf("%-20s %d (%.1f%%)\n", outcome+":", count,
			float64(count)/float64(stats.TotalRequests)*100)
	}
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())
	fmt.Printf("Throughput:          %.2f requests/second\n", tps)

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", avgResponseTime)
	fmt.Printf("Minimum Response:    %v\n", stats.MinResponseTime)
	fmt.Printf("Maximum Response:    %v\n", stats.MaxResponseTime)
	fmt.Printf("P50 Response:        %v\n", p50)
	fmt.Printf("P90 Response:        %v\n", p90)
	fmt.Printf("P95 Response:        %v\n", p95)
	fmt.Printf("P99 Response:        %v\n", p99)

	fmt.Println("\n----------------- PRODUCT DISTRIBUTION -----------------")
	for productID, count := range stats.ProductStats {
		fmt.Printf("%-20s: %d requests (%.1f%%)\n", productID, count,
			float64(count)/float64(stats.TotalRequests)*100)
	}

	if len(stats.ErrorCounts) > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d (%.1f%%)\n", errMsg, count,
				float64(count)/float64(stats.TotalRequests)*100)
		}
	}

	fmt.Println("\n================= CONCLUSION =================")
	if stats.Outcomes["error"] == 0 {
		fmt.Println("✅ Every request ended as added, locked or out of stock")
	} else {
		fmt.Printf("❌ %d requests failed outside the purchase rules\n", stats.Outcomes["error"])
	}
	fmt.Println("================================================")
}
