package main

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// summary aggregates one benchmark run.
type summary struct {
	Total     int
	Succeeded int
	Failed    int
	ByStatus  map[int]int
	Elapsed   time.Duration
	Latencies []time.Duration
}

// percentile returns the p-th percentile of sorted latencies (nearest-rank).
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(p/100*float64(len(sorted))+0.5) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

func (s *summary) print(w io.Writer) {
	fmt.Fprintf(w, "requests:    %d (%d ok, %d failed)\n", s.Total, s.Succeeded, s.Failed)
	for status, n := range s.ByStatus {
		fmt.Fprintf(w, "  status %d: %d\n", status, n)
	}
	fmt.Fprintf(w, "elapsed:     %s\n", s.Elapsed.Round(time.Millisecond))
	if s.Elapsed > 0 {
		fmt.Fprintf(w, "throughput:  %.1f req/s\n", float64(s.Total)/s.Elapsed.Seconds())
	}

	if len(s.Latencies) == 0 {
		return
	}
	sorted := make([]time.Duration, len(s.Latencies))
	copy(sorted, s.Latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	mean := sum / time.Duration(len(sorted))

	fmt.Fprintf(w, "latency:     min=%s mean=%s p50=%s p95=%s p99=%s max=%s\n",
		sorted[0].Round(time.Millisecond),
		mean.Round(time.Millisecond),
		percentile(sorted, 50).Round(time.Millisecond),
		percentile(sorted, 95).Round(time.Millisecond),
		percentile(sorted, 99).Round(time.Millisecond),
		sorted[len(sorted)-1].Round(time.Millisecond),
	)
}
