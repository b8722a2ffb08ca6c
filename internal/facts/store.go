package facts

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Value is one ground-truth financial value. Currency metrics are stored in
// raw units, percent metrics as percent (18.5 means 18.5%), ratios as the
// dimensionless multiple.
type Value struct {
	Amount float64 `yaml:"value" json:"value"`
	Source string  `yaml:"source" json:"source"` // Filing or dataset the value came from
}

// Store is the read-only accessor over the ground-truth facts. An empty
// period means "most recent available". A false return is not an error; it
// marks the fact unverifiable.
type Store interface {
	Lookup(ticker, metric, period string) (Value, bool)
}

// Row is one fact in the on-disk store format
type Row struct {
	Ticker string  `yaml:"ticker"`
	Metric string  `yaml:"metric"`
	Period string  `yaml:"period"` // e.g. "2023-FY", "2024-Q2"
	Value  float64 `yaml:"value"`
	Source string  `yaml:"source"`
}

// StaticStore serves facts from an in-memory table, loaded once from YAML.
// It is immutable after construction and safe for concurrent lookups.
type StaticStore struct {
	byKey map[string]map[string][]periodValue // ticker -> metric -> values, latest first
}

type periodValue struct {
	period string
	value  Value
}

// NewStaticStore builds a store from fact rows
func NewStaticStore(rows []Row) (*StaticStore, error) {
	s := &StaticStore{byKey: make(map[string]map[string][]periodValue)}

	for i, r := range rows {
		if r.Ticker == "" || r.Metric == "" || r.Period == "" {
			return nil, fmt.Errorf("fact %d: ticker, metric and period are required", i)
		}
		if _, _, err := parsePeriodKey(r.Period); err != nil {
			return nil, fmt.Errorf("fact %d (%s %s): %w", i, r.Ticker, r.Metric, err)
		}

		ticker := strings.ToUpper(r.Ticker)
		metrics := s.byKey[ticker]
		if metrics == nil {
			metrics = make(map[string][]periodValue)
			s.byKey[ticker] = metrics
		}
		metrics[r.Metric] = append(metrics[r.Metric], periodValue{
			period: r.Period,
			value:  Value{Amount: r.Value, Source: r.Source},
		})
	}

	// Latest period first so the default lookup is a head read
	for _, metrics := range s.byKey {
		for _, values := range metrics {
			sort.SliceStable(values, func(a, b int) bool {
				return periodAfter(values[a].period, values[b].period)
			})
		}
	}

	return s, nil
}

// LoadStore reads a facts YAML file. Parse failures are fatal: the verifier
// must never silently run against an empty store.
func LoadStore(path string) (*StaticStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facts file: %w", err)
	}

	var f struct {
		Facts []Row `yaml:"facts"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse facts file %s: %w", path, err)
	}

	s, err := NewStaticStore(f.Facts)
	if err != nil {
		return nil, fmt.Errorf("invalid facts file %s: %w", path, err)
	}
	return s, nil
}

// Lookup returns the value for (ticker, metric, period). An empty period
// resolves to the most recent period on record for that ticker and metric.
func (s *StaticStore) Lookup(ticker, metric, period string) (Value, bool) {
	metrics := s.byKey[strings.ToUpper(ticker)]
	if metrics == nil {
		return Value{}, false
	}
	values := metrics[metric]
	if len(values) == 0 {
		return Value{}, false
	}

	if period == "" {
		return values[0].value, true
	}
	for _, pv := range values {
		if pv.period == period {
			return pv.value, true
		}
	}
	return Value{}, false
}

// Size returns the number of distinct (ticker, metric) series
func (s *StaticStore) Size() int {
	n := 0
	for _, metrics := range s.byKey {
		n += len(metrics)
	}
	return n
}

// parsePeriodKey splits "2023-FY" into year and a within-year rank. FY ranks
// after Q4: the full-year figure is the latest word on that year.
func parsePeriodKey(key string) (year, rank int, err error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed period key %q", key)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed period key %q", key)
	}

	switch parts[1] {
	case "FY":
		rank = 5
	case "Q1", "Q2", "Q3", "Q4":
		rank = int(parts[1][1] - '0')
	default:
		return 0, 0, fmt.Errorf("malformed period key %q", key)
	}
	return year, rank, nil
}

func periodAfter(a, b string) bool {
	ya, ra, _ := parsePeriodKey(a)
	yb, rb, _ := parsePeriodKey(b)
	if ya != yb {
		return ya > yb
	}
	return ra > rb
}
