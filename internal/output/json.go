package output

import (
	"bytes"
	"encoding/json"
	"io"
)

// JSONFormatter emits machine-readable JSON records whose keys follow the column order.
type JSONFormatter struct{}

func (JSONFormatter) Format(w io.Writer, data Dataset) error {
	headers := normalizeHeaders(data.Headers, data.Rows)
	rows := normalizeRows(data.Rows, len(headers))

	records := make([]orderedRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, orderedRecord{headers: headers, values: row})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

type orderedRecord struct {
	headers []string
	values  []string
}

func (r orderedRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, header := range r.headers {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(header)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
