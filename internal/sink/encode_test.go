package sink

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/livinlefevreloca/fakeout/internal/schema"
	"github.com/livinlefevreloca/fakeout/internal/synth"
)

func testBatch(t *testing.T, count int) []synth.Record {
	t.Helper()

	s := schema.Schema{
		{Name: "color", DataType: schema.TypeCategory, AllowableValues: []interface{}{"red", "green"}},
		{Name: "qty", DataType: schema.TypeInteger, AllowableValues: []interface{}{int64(1), int64(9)}},
		{Name: "active", DataType: schema.TypeBool},
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("test schema failed validation: %v", err)
	}

	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	return synth.New(1).Generate(s, count, now)
}

// TestEncodeJSON verifies that JSON output is an array of objects with the
// timestamp key first in every object.
func TestEncodeJSON(t *testing.T) {
	batch := testBatch(t, 3)

	out, err := Encode(FiletypeJSON, batch)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(decoded))
	}

	for i, obj := range decoded {
		if _, ok := obj[synth.TimestampKey]; !ok {
			t.Errorf("object %d: missing %s", i, synth.TimestampKey)
		}
	}

	// Field order survives marshaling
	if !strings.Contains(string(out), `"`+synth.TimestampKey+`"`) {
		t.Error("expected timestamp key in raw output")
	}
	first := strings.Index(string(out), synth.TimestampKey)
	color := strings.Index(string(out), "color")
	if first < 0 || color < 0 || first > color {
		t.Error("expected timestamp key before schema fields")
	}
}

// TestEncodeCSV verifies the CSV shape: one header row from the record field
// order, one row per record, nulls as empty cells.
func TestEncodeCSV(t *testing.T) {
	s := schema.Schema{
		{Name: "color", DataType: schema.TypeCategory, AllowableValues: []interface{}{"red"}, ProportionNulls: 1},
		{Name: "qty", DataType: schema.TypeInteger, AllowableValues: []interface{}{int64(4), int64(4)}},
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("test schema failed validation: %v", err)
	}

	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	batch := synth.New(1).Generate(s, 2, now)

	out, err := Encode(FiletypeCSV, batch)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines: %q", len(lines), lines)
	}

	header := strings.Split(lines[0], ",")
	if header[0] != synth.TimestampKey || header[1] != "color" || header[2] != "qty" {
		t.Errorf("unexpected header: %v", header)
	}

	for _, line := range lines[1:] {
		cells := strings.Split(line, ",")
		if len(cells) != 3 {
			t.Fatalf("expected 3 cells, got %v", cells)
		}
		if cells[1] != "" {
			t.Errorf("expected empty cell for null category, got %q", cells[1])
		}
		if cells[2] != "4" {
			t.Errorf("expected qty cell 4, got %q", cells[2])
		}
	}
}

// TestEncodeCSV_Empty verifies that an empty batch encodes to empty output
// rather than failing.
func TestEncodeCSV_Empty(t *testing.T) {
	out, err := Encode(FiletypeCSV, nil)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty output, got %q", out)
	}
}

// TestEncode_UnsupportedFiletype verifies the error path for unknown filetypes.
func TestEncode_UnsupportedFiletype(t *testing.T) {
	if _, err := Encode("parquet", nil); err == nil {
		t.Error("expected error for unsupported filetype")
	}
}

// TestValidFiletype enumerates the supported filetypes.
func TestValidFiletype(t *testing.T) {
	if !ValidFiletype(FiletypeJSON) || !ValidFiletype(FiletypeCSV) {
		t.Error("expected json and csv to be valid")
	}
	if ValidFiletype("parquet") || ValidFiletype("") {
		t.Error("expected parquet and empty string to be invalid")
	}
}

// TestArtifactName verifies the artifact naming convention: pipeline name,
// lexically sortable UTC timestamp, filetype extension.
func TestArtifactName(t *testing.T) {
	at := time.Date(2024, 6, 15, 10, 30, 45, 123456000, time.UTC)

	name := artifactName("orders", at, FiletypeCSV)
	if name != "orders_20240615T103045.123456Z.csv" {
		t.Errorf("unexpected artifact name: %s", name)
	}

	later := artifactName("orders", at.Add(time.Second), FiletypeCSV)
	if !(name < later) {
		t.Error("expected artifact names to sort chronologically")
	}
}
