package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// latencyStats collects request outcomes from concurrent workers.
type latencyStats struct {
	total   atomic.Int64
	success atomic.Int64
	failed  atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration
}

func (s *latencyStats) observe(d time.Duration, ok bool) {
	s.total.Add(1)
	if !ok {
		s.failed.Add(1)
		return
	}
	s.success.Add(1)

	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.mu.Unlock()
}

func (s *latencyStats) percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "service base URL")
	channels := flag.String("channels", "Soil_Temperature,Air_Temperature,Humidity,Light_Intensity,Fan_State", "comma separated channel ids")
	workers := flag.Int("workers", 32, "concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	chart := flag.Bool("chart", false, "request PNG charts instead of JSON views")
	flag.Parse()

	ids := strings.Split(*channels, ",")
	if len(ids) == 0 || *workers <= 0 {
		fmt.Println("Usage: go run tools/loadtest.go -url http://localhost:8080 -workers 32 -duration 30s")
		os.Exit(1)
	}

	fmt.Printf("Load Test Configuration:\n")
	fmt.Printf("  URL:      %s\n", *baseURL)
	fmt.Printf("  Channels: %s\n", strings.Join(ids, ", "))
	fmt.Printf("  Workers:  %d\n", *workers)
	fmt.Printf("  Duration: %v\n\n", *duration)

	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        *workers,
			MaxIdleConnsPerHost: *workers,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	stats := &latencyStats{latencies: make([]time.Duration, 0, 10000)}
	start := time.Now()
	deadline := start.Add(*duration)

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			for i := offset; time.Now().Before(deadline); i++ {
				id := ids[i%len(ids)]
				url := *baseURL + "/view/" + id
				if *chart {
					url = *baseURL + "/chart/" + id + ".png"
				}
				d, ok := fetch(client, url)
				stats.observe(d, ok)
			}
		}(w)
	}
	wg.Wait()

	printResults(stats, time.Since(start))
}

func fetch(client *http.Client, url string) (time.Duration, bool) {
	start := time.Now()
	resp, err := client.Get(url)
	latency := time.Since(start)
	if err != nil {
		return latency, false
	}
	resp.Body.Close()

	ok := resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent
	return latency, ok
}

func printResults(stats *latencyStats, elapsed time.Duration) {
	stats.mu.Lock()
	sorted := make([]time.Duration, len(stats.latencies))
	copy(sorted, stats.latencies)
	stats.mu.Unlock()
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	total := stats.total.Load()
	success := stats.success.Load()

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}

	fmt.Println("==========================================")
	fmt.Println("Load Test Results")
	fmt.Println("==========================================")
	fmt.Printf("Duration:       %v\n", elapsed)
	fmt.Printf("Total Requests: %d\n", total)
	fmt.Printf("Successful:     %d\n", success)
	fmt.Printf("Failed:         %d\n", stats.failed.Load())
	if total > 0 {
		fmt.Printf("Success Rate:   %.2f%%\n", float64(success)/float64(total)*100)
	}
	fmt.Printf("Requests/sec:   %.2f\n", float64(total)/elapsed.Seconds())

	if len(sorted) == 0 {
		return
	}
	fmt.Println("\nLatency Statistics:")
	fmt.Printf("  Min:          %v\n", sorted[0])
	fmt.Printf("  Max:          %v\n", sorted[len(sorted)-1])
	fmt.Printf("  Average:      %v\n", sum/time.Duration(len(sorted)))
	fmt.Printf("  p50:          %v\n", stats.percentile(sorted, 50))
	fmt.Printf("  p95:          %v\n", stats.percentile(sorted, 95))
	fmt.Printf("  p99:          %v\n", stats.percentile(sorted, 99))
	fmt.Println("==========================================")
}
