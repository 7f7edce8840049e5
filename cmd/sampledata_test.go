package cmd

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestWriteSampleData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "sample_data.csv")
	if err := writeSampleData(path, 50); err != nil {
		t.Fatalf("writeSampleData: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 51 {
		t.Fatalf("rows = %d, want header plus 50", len(rows))
	}
	header := rows[0]
	want := []string{"date", "sales", "customers", "group", "region"}
	for i, col := range want {
		if header[i] != col {
			t.Fatalf("header = %v", header)
		}
	}
	for _, row := range rows[1:] {
		if _, err := strconv.ParseFloat(row[1], 64); err != nil {
			t.Fatalf("sales %q not numeric", row[1])
		}
		if _, err := strconv.Atoi(row[2]); err != nil {
			t.Fatalf("customers %q not an integer", row[2])
		}
		if row[3] != "A" && row[3] != "B" {
			t.Fatalf("group = %q", row[3])
		}
	}
}
