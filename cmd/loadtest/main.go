package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/awmpietro/quantum-dilemma/internal/timeline"
	"github.com/awmpietro/quantum-dilemma/internal/transport/sessiondto"
)

type result struct {
	latency time.Duration
	status  int
	err     error
}

// walker holds one client-side session and picks its next request at random:
// a choice on an open timeline, or a reset once every timeline has ended.
type walker struct {
	base   string
	client *http.Client
	rng    *rand.Rand
	resp   sessiondto.SessionResponse
}

func (w *walker) next() (string, any) {
	var open []timeline.View
	for _, v := range w.resp.Snapshot.Timelines {
		if !v.Endpoint {
			open = append(open, v)
		}
	}
	if len(open) == 0 {
		return w.base + "/session/reset", sessiondto.StartRequest{}
	}
	v := open[w.rng.IntN(len(open))]
	c := v.Dilemma.Choices[w.rng.IntN(2)]
	return w.base + "/session/choice", sessiondto.ChoiceRequest{
		Timelines:  w.resp.Timelines,
		TimelineID: v.ID,
		ChoiceID:   c.ID,
	}
}

func (w *walker) do(url string, payload any) result {
	body, err := json.Marshal(payload)
	if err != nil {
		return result{err: err}
	}

	start := time.Now()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return result{latency: time.Since(start), err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{latency: lat, err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var out sessiondto.SessionResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return result{latency: lat, status: resp.StatusCode, err: err}
		}
		w.resp = out
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return result{latency: lat, status: resp.StatusCode}
}

func main() {
	base := flag.String("url", "http://localhost:8080", "server base URL")
	rps := flag.Int("rps", 50, "target requests per second")
	duration := flag.Duration("duration", 60*time.Second, "test duration")
	workers := flag.Int("workers", 50, "number of concurrent workers")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	if *rps <= 0 || *duration <= 0 || *workers <= 0 {
		fmt.Fprintln(os.Stderr, "rps, duration and workers must be > 0")
		os.Exit(2)
	}

	client := &http.Client{Timeout: *timeout}
	jobs := make(chan struct{}, *workers)

	var wg sync.WaitGroup
	var mu sync.Mutex
	results := make([]result, 0, *rps*int(duration.Seconds())+1)

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			w := &walker{base: strings.TrimRight(*base, "/"), client: client, rng: rand.New(rand.NewPCG(seed, seed))}
			if r := w.do(w.base+"/session/start", sessiondto.StartRequest{}); r.err != nil || r.status != http.StatusOK {
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}
			for range jobs {
				url, payload := w.next()
				r := w.do(url, payload)
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}
		}(uint64(i) + 1)
	}

	interval := time.Second / time.Duration(*rps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.Now().Add(*duration)
	launched := 0

	for now := range ticker.C {
		if now.After(deadline) {
			break
		}
		jobs <- struct{}{}
		launched++
	}
	close(jobs)
	wg.Wait()

	latencies := make([]time.Duration, 0, len(results))
	success2xx := 0
	non2xx := 0
	errs := 0

	for _, r := range results {
		latencies = append(latencies, r.latency)
		if r.err != nil {
			errs++
			continue
		}
		if r.status >= 200 && r.status < 300 {
			success2xx++
		} else {
			non2xx++
		}
	}

	if len(latencies) == 0 {
		fmt.Fprintln(os.Stderr, "no requests executed")
		os.Exit(1)
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	p50 := percentile(latencies, 50)
	p90 := percentile(latencies, 90)
	p99 := percentile(latencies, 99)
	avg := average(latencies)
	achievedRPS := float64(len(latencies)) / duration.Seconds()

	fmt.Printf("Load test finished\n")
	fmt.Printf("- target_rps: %d\n", *rps)
	fmt.Printf("- achieved_rps: %.2f\n", achievedRPS)
	fmt.Printf("- duration: %s\n", duration.String())
	fmt.Printf("- launched: %d\n", launched)
	fmt.Printf("- requests: %d\n", len(latencies))
	fmt.Printf("- 2xx: %d\n", success2xx)
	fmt.Printf("- non_2xx: %d\n", non2xx)
	fmt.Printf("- errors: %d\n", errs)
	fmt.Printf("- avg_ms: %.3f\n", ms(avg))
	fmt.Printf("- p50_ms: %.3f\n", ms(p50))
	fmt.Printf("- p90_ms: %.3f\n", ms(p90))
	fmt.Printf("- p99_ms: %.3f\n", ms(p99))

	minRPS := float64(*rps) * 0.98
	if achievedRPS >= minRPS && p90 < 30*time.Millisecond && errs == 0 && non2xx == 0 {
		fmt.Printf("PASS: meets %d RPS and P90 < 30ms\n", *rps)
		return
	}

	fmt.Println("FAIL: does not meet target (or has request errors)")
	os.Exit(1)
}

func percentile(items []time.Duration, p int) time.Duration {
	if len(items) == 0 {
		return 0
	}
	idx := (len(items) - 1) * p / 100
	return items[idx]
}

func average(items []time.Duration) time.Duration {
	if len(items) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range items {
		total += d
	}
	return total / time.Duration(len(items))
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
