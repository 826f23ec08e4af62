// Command html2pdf-bench drives the conversion endpoint with concurrent
// requests and summarizes latencies. It is a pure HTTP consumer: it knows
// nothing about the pipeline beyond the wire contract.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func main() {
	flags := pflag.NewFlagSet("html2pdf-bench", pflag.ContinueOnError)
	url := flags.String("url", "http://localhost:5000/convert", "convert endpoint URL")
	requests := flags.Int("requests", 50, "total number of requests")
	concurrency := flags.Int("concurrency", 5, "number of in-flight requests")
	bodyKiB := flags.Int("body-kib", 1, "approximate payload size in KiB")
	asJSON := flags.Bool("json", false, "submit as JSON {\"html\": ...} instead of raw body")
	timeout := flags.Duration("timeout", 60*time.Second, "per-request timeout")
	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *requests <= 0 || *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "requests and concurrency must be positive")
		os.Exit(2)
	}

	s, err := runBench(*url, *requests, *concurrency, *bodyKiB, *asJSON, *timeout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	s.print(os.Stdout)
	if s.Failed > 0 {
		os.Exit(1)
	}
}

func runBench(url string, requests, concurrency, bodyKiB int, asJSON bool, timeout time.Duration) (*summary, error) {
	client := &http.Client{Timeout: timeout}

	s := &summary{ByStatus: make(map[int]int)}
	var mu sync.Mutex

	start := time.Now()
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(concurrency)

	for i := 0; i < requests; i++ {
		g.Go(func() error {
			body, contentType := buildPayload(i, bodyKiB, asJSON)

			reqStart := time.Now()
			status, err := post(ctx, client, url, contentType, body)
			elapsed := time.Since(reqStart)

			mu.Lock()
			defer mu.Unlock()
			s.Total++
			s.Latencies = append(s.Latencies, elapsed)
			if err != nil {
				s.Failed++
				fmt.Fprintf(os.Stderr, "request %d: %v\n", i, err)
				return nil // keep going; failures are part of the summary
			}
			s.ByStatus[status]++
			if status == http.StatusOK {
				s.Succeeded++
			} else {
				s.Failed++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.Elapsed = time.Since(start)
	return s, nil
}

// buildPayload generates a distinct valid document per request so responses
// can be told apart server-side, padded to roughly the requested size.
func buildPayload(i, bodyKiB int, asJSON bool) ([]byte, string) {
	padding := strings.Repeat("<p>Lorem ipsum dolor sit amet.</p>\n", bodyKiB*1024/35+1)
	doc := fmt.Sprintf(
		"<!DOCTYPE html><html><head><title>bench %d</title></head><body><h1>Request %d</h1>%s</body></html>",
		i, i, padding,
	)

	if asJSON {
		body, _ := json.Marshal(map[string]string{"html": doc})
		return body, "application/json"
	}
	return []byte(doc), "text/html"
}

func post(ctx context.Context, client *http.Client, url, contentType string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
