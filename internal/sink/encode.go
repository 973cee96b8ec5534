package sink

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/livinlefevreloca/fakeout/internal/synth"
)

// Supported batch export filetypes
const (
	FiletypeJSON = "json"
	FiletypeCSV  = "csv"
)

// ValidFiletype reports whether a configured filetype is supported
func ValidFiletype(filetype string) bool {
	return filetype == FiletypeJSON || filetype == FiletypeCSV
}

// Encode renders a batch in the requested filetype. JSON output is an array
// of objects preserving record field order; CSV output has one header row
// taken from the first record's field order, with nulls as empty cells.
func Encode(filetype string, batch []synth.Record) ([]byte, error) {
	switch filetype {
	case FiletypeJSON:
		return encodeJSON(batch)
	case FiletypeCSV:
		return encodeCSV(batch)
	default:
		return nil, fmt.Errorf("unsupported filetype: %s", filetype)
	}
}

func encodeJSON(batch []synth.Record) ([]byte, error) {
	return json.MarshalIndent(batch, "", "  ")
}

func encodeCSV(batch []synth.Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if len(batch) == 0 {
		w.Flush()
		return buf.Bytes(), w.Error()
	}

	header := batch[0].Keys()
	if err := w.Write(header); err != nil {
		return nil, err
	}

	row := make([]string, len(header))
	for _, record := range batch {
		for i, key := range header {
			value, _ := record.Get(key)
			row[i] = formatCSVValue(value)
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func formatCSVValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

func contentType(filetype string) string {
	switch filetype {
	case FiletypeCSV:
		return "text/csv"
	default:
		return "application/json"
	}
}
