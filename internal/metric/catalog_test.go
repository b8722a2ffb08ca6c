package metric

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()

	def, ok := c.Get("revenue")
	if !ok {
		t.Fatal("revenue missing from default catalog")
	}
	if def.Unit != ValueCurrency {
		t.Errorf("revenue unit = %s, want currency", def.Unit)
	}

	def, ok = c.Get("gross_margin")
	if !ok {
		t.Fatal("gross_margin missing from default catalog")
	}
	if def.Unit != ValuePercent {
		t.Errorf("gross_margin unit = %s, want percent", def.Unit)
	}

	if _, ok := c.Get("nonsense"); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestNewCatalogValidation(t *testing.T) {
	if _, err := NewCatalog(nil); err == nil {
		t.Error("expected error for empty catalog")
	}

	dup := []Def{
		{ID: "revenue", Patterns: []Pattern{{Phrase: "revenue", Priority: 10}}},
		{ID: "revenue", Patterns: []Pattern{{Phrase: "sales", Priority: 5}}},
	}
	if _, err := NewCatalog(dup); err == nil {
		t.Error("expected error for duplicate id")
	}

	noPatterns := []Def{{ID: "revenue"}}
	if _, err := NewCatalog(noPatterns); err == nil {
		t.Error("expected error for metric without patterns")
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metrics.yaml")

	content := `metrics:
  - id: revenue
    kind: base
    unit: currency
    patterns:
      - phrase: revenue
        priority: 10
      - phrase: total revenue
        priority: 20
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	def, ok := c.Get("revenue")
	if !ok {
		t.Fatal("revenue not loaded")
	}
	if len(def.Patterns) != 2 {
		t.Errorf("expected 2 patterns, got %d", len(def.Patterns))
	}
}

func TestLoadCatalogBadFile(t *testing.T) {
	if _, err := LoadCatalog("/nonexistent/metrics.yaml"); err == nil {
		t.Error("expected error for missing file")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("metrics: [not a def"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}
