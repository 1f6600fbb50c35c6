package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TextFormatter emits shell-friendly line-oriented output.
// Single-column datasets print the bare value; wider ones print key=value
// pairs with values quoted when they contain whitespace or quotes.
type TextFormatter struct{}

func (TextFormatter) Format(w io.Writer, data Dataset) error {
	headers := normalizeHeaders(data.Headers, data.Rows)
	if len(headers) == 0 {
		return nil
	}

	for _, row := range normalizeRows(data.Rows, len(headers)) {
		line := row[0]
		if len(headers) > 1 {
			parts := make([]string, len(headers))
			for i, header := range headers {
				parts[i] = header + "=" + quoteTextValue(row[i])
			}
			line = strings.Join(parts, " ")
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}

func quoteTextValue(value string) string {
	if strings.ContainsAny(value, " \t\r\n\"") {
		return strconv.Quote(value)
	}
	return value
}
