package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/alterfero/dig4el-sub001/pkg/order"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("NORMALIZE_UNRESOLVED", "")
	t.Setenv("REPAIR_JSON", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	t.Setenv("NORMALIZE_UNRESOLVED", "")
	t.Setenv("REPAIR_JSON", "")
	path := filepath.Join(t.TempDir(), "dig4el.yaml")
	data := `
delimiters:
  klingon: [" ", "'"]
default_delimiters: [" ", ","]
domain_elements:
  sov:
    SOV: "81A-1"
features:
  - name: INTENT
    values: [ASSERT]
normalize_unresolved: true
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got, ok := cfg.Table().Lookup("Klingon"); !ok || !reflect.DeepEqual(got, []string{" ", "'"}) {
		t.Errorf("klingon delimiters = %v, %v", got, ok)
	}
	if _, ok := cfg.Table().Lookup("english"); !ok {
		t.Error("default languages should survive the overlay")
	}
	if got, ok := cfg.Table().Lookup("unknown"); ok || !reflect.DeepEqual(got, []string{" ", ","}) {
		t.Errorf("unknown language should use the fallback, got %v, %v", got, ok)
	}

	elements := cfg.Elements()
	if elements[order.NameSubjectObject]["SOV"] != "81A-1" || elements[order.NameSubjectObject]["SVO"] != "8102" {
		t.Errorf("domain elements = %v", elements[order.NameSubjectObject])
	}
	if f, ok := cfg.Catalog().Lookup("intent"); !ok || len(f.Values) != 1 || f.Category != "list" {
		t.Errorf("INTENT feature = %+v", f)
	}
	if !cfg.NormalizeUnresolved {
		t.Error("normalize_unresolved not read")
	}
	if _, err := cfg.Builder(); err != nil {
		t.Errorf("Builder: %v", err)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("delimiters: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
