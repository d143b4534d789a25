package statlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RateLog accumulates per-VC utilization samples (fraction of cycles a VC
// carried a flit over some monitoring window, in [0,1]) and reduces them to
// a running mean/variance on Close, one row per VC. Grounded on
// Application::rateLog_ in original_source/src/workload/Application.cc,
// generalized from a single accumulator to per-VC so it can sit alongside
// ChannelLog's per-VC granularity.
type RateLog struct {
	file    *os.File
	writer  *csv.Writer
	samples map[int][]float64
}

// NewRateLog creates (or truncates) path and writes the CSV header.
func NewRateLog(path string) (*RateLog, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("statlog: open rate log %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write([]string{"vc", "samples", "mean", "variance"}); err != nil {
		f.Close()
		return nil, fmt.Errorf("statlog: write rate log header: %w", err)
	}
	return &RateLog{file: f, writer: w, samples: make(map[int][]float64)}, nil
}

// AddSample records one utilization sample for vc.
func (l *RateLog) AddSample(vc int, utilization float64) {
	l.samples[vc] = append(l.samples[vc], utilization)
}

// Flush writes one mean/variance row per VC with at least one sample and
// clears the accumulated samples. stat.MeanVariance requires unweighted
// samples here; nil weights gives each sample equal weight.
func (l *RateLog) Flush() error {
	vcs := make([]int, 0, len(l.samples))
	for vc := range l.samples {
		vcs = append(vcs, vc)
	}
	sort.Ints(vcs)
	for _, vc := range vcs {
		xs := l.samples[vc]
		mean, variance := stat.MeanVariance(xs, nil)
		row := []string{
			fmt.Sprintf("%d", vc),
			fmt.Sprintf("%d", len(xs)),
			fmt.Sprintf("%g", mean),
			fmt.Sprintf("%g", variance),
		}
		if err := l.writer.Write(row); err != nil {
			return fmt.Errorf("statlog: write rate log row: %w", err)
		}
	}
	l.samples = make(map[int][]float64)
	return nil
}

// Close flushes any remaining samples and closes the underlying file.
func (l *RateLog) Close() error {
	if err := l.Flush(); err != nil {
		l.file.Close()
		return err
	}
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		l.file.Close()
		return fmt.Errorf("statlog: flush rate log: %w", err)
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("statlog: close rate log: %w", err)
	}
	return nil
}
