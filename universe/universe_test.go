package universe

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "universe.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFreeFormCells(t *testing.T) {
	path := writeFile(t, "AAPL,msft\nnvda\n ,TSLA \n")
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"AAPL", "MSFT", "NVDA", "TSLA"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %v, want %v", got, want)
	}
}

func TestLoadDeduplicatesPreservingOrder(t *testing.T) {
	path := writeFile(t, "NVDA,AAPL\nnvda,AAPL,AMD\n")
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []string{"NVDA", "AAPL", "AMD"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %v, want %v", got, want)
	}
}

func TestLoadMissingFileFallsBack(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.csv"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, Fallback) {
		t.Errorf("Load = %v, want fallback %v", got, Fallback)
	}
}

func TestLoadEmptyFileFallsBack(t *testing.T) {
	got, err := Load(writeFile(t, "\n , \n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, Fallback) {
		t.Errorf("Load = %v, want fallback %v", got, Fallback)
	}
}
