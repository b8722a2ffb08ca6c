package metric

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind groups catalog metrics by how they are produced
type Kind string

const (
	KindBase         Kind = "base"         // Reported statement line items
	KindDerived      Kind = "derived"      // Computed from base metrics
	KindAggregate    Kind = "aggregate"    // Rollups across periods/companies
	KindSupplemental Kind = "supplemental" // Market data, share counts
)

// ValueKind is the canonical unit a metric's ground-truth values carry
type ValueKind string

const (
	ValueCurrency ValueKind = "currency" // Raw currency units
	ValuePercent  ValueKind = "percent"  // Stored as percent (18.5 == 18.5%)
	ValueRatio    ValueKind = "ratio"    // Dimensionless multiple
	ValueShares   ValueKind = "shares"
)

// Pattern is one surface form that maps to a metric. Higher priority patterns
// are tried first so compound phrases are never shadowed by their generic
// components.
type Pattern struct {
	Phrase   string `yaml:"phrase"`
	Priority int    `yaml:"priority"`
}

// Def is one catalog entry: a canonical metric identifier plus the patterns
// that recognize it in free text.
type Def struct {
	ID       string    `yaml:"id"`
	Kind     Kind      `yaml:"kind"`
	Unit     ValueKind `yaml:"unit"`
	Patterns []Pattern `yaml:"patterns"`
}

// Catalog is the closed set of recognizable metrics. Loaded (or defaulted)
// once per process and treated as read-only.
type Catalog struct {
	defs []Def
	byID map[string]*Def
}

// NewCatalog builds a catalog from definitions
func NewCatalog(defs []Def) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("empty metric catalog")
	}

	byID := make(map[string]*Def, len(defs))
	for i := range defs {
		d := &defs[i]
		if d.ID == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		}
		if _, dup := byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate metric id %q", d.ID)
		}
		if len(d.Patterns) == 0 {
			return nil, fmt.Errorf("metric %q: no patterns", d.ID)
		}
		byID[d.ID] = d
	}

	return &Catalog{defs: defs, byID: byID}, nil
}

// LoadCatalog reads a catalog YAML file. Parse failures are fatal to the
// caller: the engine must not silently run with an empty catalog.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metric catalog: %w", err)
	}

	var f struct {
		Metrics []Def `yaml:"metrics"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse metric catalog %s: %w", path, err)
	}

	c, err := NewCatalog(f.Metrics)
	if err != nil {
		return nil, fmt.Errorf("invalid metric catalog %s: %w", path, err)
	}
	return c, nil
}

// Get returns a metric definition by canonical ID
func (c *Catalog) Get(id string) (*Def, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Defs returns all definitions in catalog order
func (c *Catalog) Defs() []Def {
	return c.defs
}

// DefaultCatalog returns the built-in metric catalog. Compound phrases carry
// higher priority than the generic words they contain.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultDefs())
	if err != nil {
		// The built-in table is static; failing to build it is a bug
		panic(err)
	}
	return c
}

func defaultDefs() []Def {
	return []Def{
		{ID: "revenue", Kind: KindBase, Unit: ValueCurrency, Patterns: []Pattern{
			{Phrase: "total revenue", Priority: 20},
			{Phrase: "net sales", Priority: 20},
			{Phrase: "revenue", Priority: 10},
			{Phrase: "revenues", Priority: 10},
			{Phrase: "sales", Priority: 5},
			{Phrase: "turnover", Priority: 5},
		}},
		{ID: "net_income", Kind: KindBase, Unit: ValueCurrency, Patterns: []Pattern{
			{Phrase: "net income", Priority: 20},
			{Phrase: "net profit", Priority: 20},
			{Phrase: "net earnings", Priority: 20},
			{Phrase: "bottom line", Priority: 15},
			{Phrase: "earnings", Priority: 8},
			{Phrase: "profit", Priority: 5},
		}},
		{ID: "gross_profit", Kind: KindBase, Unit: ValueCurrency, Patterns: []Pattern{
			{Phrase: "gross profit", Priority: 25},
		}},
		{ID: "operating_income", Kind: KindBase, Unit: ValueCurrency, Patterns: []Pattern{
			{Phrase: "operating income", Priority: 25},
			{Phrase: "operating profit", Priority: 25},
			{Phrase: "income from operations", Priority: 25},
		}},
		{ID: "ebitda", Kind: KindDerived, Unit: ValueCurrency, Patterns: []Pattern{
			{Phrase: "ebitda", Priority: 25},
		}},
		{ID: "eps", Kind: KindBase, Unit: ValueCurrency, Patterns: []Pattern{
			{Phrase: "earnings per share", Priority: 30},
			{Phrase: "diluted eps", Priority: 30},
			{Phrase: "eps", Priority: 25},
		}},
		{ID: "free_cash_flow", Kind: KindDerived, Unit: ValueCurrency, Patterns: []Pattern{
			{Phrase: "free cash flow", Priority: 30},
			{Phrase: "fcf", Priority: 25},
		}},
		{ID: "operating_cash_flow", Kind: KindBase, Unit: ValueCurrency, Patterns: []Pattern{
			{Phrase: "operating cash flow", Priority: 30},
			{Phrase: "cash from operations", Priority: 30},
		}},
		{ID: "total_assets", Kind: KindBase, Unit: ValueCurrency, Patterns: []Pattern{
			{Phrase: "total assets", Priority: 25},
		}},
		{ID: "total_debt", Kind: KindBase, Unit: ValueCurrency, Patterns: []Pattern{
			{Phrase: "total debt", Priority: 25},
			{Phrase: "long-term debt", Priority: 25},
			{Phrase: "long term debt", Priority: 25},
		}},
		{ID: "shareholders_equity", Kind: KindBase, Unit: ValueCurrency, Patterns: []Pattern{
			{Phrase: "shareholders equity", Priority: 30},
			{Phrase: "stockholders equity", Priority: 30},
			{Phrase: "book value", Priority: 20},
		}},
		{ID: "cash", Kind: KindBase, Unit: ValueCurrency, Patterns: []Pattern{
			{Phrase: "cash and equivalents", Priority: 30},
			{Phrase: "cash on hand", Priority: 25},
			{Phrase: "cash position", Priority: 25},
		}},
		{ID: "gross_margin", Kind: KindDerived, Unit: ValuePercent, Patterns: []Pattern{
			{Phrase: "gross margin", Priority: 35},
			{Phrase: "gross profit margin", Priority: 35},
		}},
		{ID: "operating_margin", Kind: KindDerived, Unit: ValuePercent, Patterns: []Pattern{
			{Phrase: "operating margin", Priority: 35},
		}},
		{ID: "net_margin", Kind: KindDerived, Unit: ValuePercent, Patterns: []Pattern{
			{Phrase: "net margin", Priority: 35},
			{Phrase: "net profit margin", Priority: 40},
			{Phrase: "profit margin", Priority: 30},
		}},
		{ID: "roe", Kind: KindDerived, Unit: ValuePercent, Patterns: []Pattern{
			{Phrase: "return on equity", Priority: 40},
			{Phrase: "roe", Priority: 30},
		}},
		{ID: "roa", Kind: KindDerived, Unit: ValuePercent, Patterns: []Pattern{
			{Phrase: "return on assets", Priority: 40},
			{Phrase: "roa", Priority: 30},
		}},
		{ID: "pe_ratio", Kind: KindSupplemental, Unit: ValueRatio, Patterns: []Pattern{
			{Phrase: "price to earnings", Priority: 40},
			{Phrase: "price-to-earnings", Priority: 40},
			{Phrase: "p/e ratio", Priority: 40},
			{Phrase: "pe ratio", Priority: 40},
			{Phrase: "earnings multiple", Priority: 30},
		}},
		{ID: "debt_to_equity", Kind: KindDerived, Unit: ValueRatio, Patterns: []Pattern{
			{Phrase: "debt to equity", Priority: 40},
			{Phrase: "debt-to-equity", Priority: 40},
			{Phrase: "leverage ratio", Priority: 25},
		}},
		{ID: "current_ratio", Kind: KindDerived, Unit: ValueRatio, Patterns: []Pattern{
			{Phrase: "current ratio", Priority: 40},
		}},
		{ID: "dividend_yield", Kind: KindSupplemental, Unit: ValuePercent, Patterns: []Pattern{
			{Phrase: "dividend yield", Priority: 40},
			{Phrase: "dividend", Priority: 15},
		}},
		{ID: "market_cap", Kind: KindSupplemental, Unit: ValueCurrency, Patterns: []Pattern{
			{Phrase: "market capitalization", Priority: 40},
			{Phrase: "market cap", Priority: 35},
			{Phrase: "market value", Priority: 20},
		}},
		{ID: "shares_outstanding", Kind: KindSupplemental, Unit: ValueShares, Patterns: []Pattern{
			{Phrase: "shares outstanding", Priority: 35},
			{Phrase: "share count", Priority: 30},
		}},
	}
}
