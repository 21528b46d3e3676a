// Package extract turns an uploaded document into a bounded text
// representation suitable for inclusion in an LLM prompt. Dispatch is purely
// on the declared file extension, never on sniffed content.
package extract

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"code.sajari.com/docconv"
)

// ErrUnsupportedFormat is returned for extensions outside the supported set.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// DefaultContextLimit is the rune budget applied to extracted text before it
// is wrapped into a prompt.
const DefaultContextLimit = 6000

const truncationMarker = "\n\n[CONTENT TRUNCATED - the file is too long to be processed in full]"

const csvPreviewRows = 10

// Extract produces the text representation of a file. Extraction failures are
// explicit errors, so callers can always tell "this is the file's content"
// from "the file could not be read".
func Extract(data []byte, ext string) (string, error) {
	switch normalizeExt(ext) {
	case ".txt", ".md":
		return string(data), nil
	case ".pdf":
		return convertWith(data, "application/pdf")
	case ".docx":
		return convertWith(data, "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	case ".csv":
		return extractCSV(data)
	case ".json":
		return extractJSON(data)
	case ".xml":
		return extractXML(data)
	case ".xlsx":
		// Spreadsheet extraction is not implemented; tell the model so
		// instead of failing the whole request.
		return "Excel file detected.\n\nNote: spreadsheet content extraction is not supported yet. Convert the file to CSV to have its data analyzed.", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// Truncate hard-cuts s at max runes and appends a truncation marker. It is
// idempotent for a fixed max: the marker sits past the cut point, so applying
// Truncate again reproduces the same output.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + truncationMarker
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// convertWith hands PDF and DOCX payloads to docconv, which concatenates
// per-page/per-paragraph text.
func convertWith(data []byte, mimeType string) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", mimeType, err)
	}
	return res.Body, nil
}

func extractCSV(data []byte) (string, error) {
	delimiter := sniffDelimiter(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}

	var b strings.Builder
	b.WriteString("CSV file contents:\n\n")

	if len(rows) == 0 {
		b.WriteString("The CSV file is empty.")
		return b.String(), nil
	}

	headers := rows[0]
	fmt.Fprintf(&b, "Columns (%d): %s\n\n", len(headers), strings.Join(headers, ", "))
	fmt.Fprintf(&b, "Data preview (first %d rows):\n", csvPreviewRows)

	b.WriteString(strings.Join(headers, "\t") + "\n")
	b.WriteString(strings.Repeat("-", 50) + "\n")

	dataRows := rows[1:]
	for i, row := range dataRows {
		if i >= csvPreviewRows {
			break
		}
		b.WriteString(strings.Join(row, "\t") + "\n")
	}
	if len(dataRows) > csvPreviewRows {
		fmt.Fprintf(&b, "\n... and %d more rows", len(dataRows)-csvPreviewRows)
	}
	fmt.Fprintf(&b, "\n\nTotal: %d data rows", len(dataRows))

	return b.String(), nil
}

// sniffDelimiter picks the candidate separator occurring most often in the
// first line.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', 0
	for _, cand := range []rune{',', ';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(cand))); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best
}

// extractJSON validates the payload and re-indents it. Invalid JSON fails the
// whole extraction. json.Indent keeps the original key order.
func extractJSON(data []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(data), "", "  "); err != nil {
		return "", fmt.Errorf("parse json: %w", err)
	}
	return buf.String(), nil
}

// extractXML renders a depth-first indented tag/text dump: one line per
// element, holding its tag name and any direct text.
func extractXML(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var b strings.Builder
	depth := 0
	sawElement := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if sawElement {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "%s<%s>", strings.Repeat("  ", depth), t.Name.Local)
			depth++
			sawElement = true
		case xml.CharData:
			if text := strings.TrimSpace(string(t)); text != "" && depth > 0 {
				fmt.Fprintf(&b, " %s", text)
			}
		case xml.EndElement:
			depth--
		}
	}

	if !sawElement {
		return "", fmt.Errorf("parse xml: no root element")
	}
	b.WriteString("\n")
	return b.String(), nil
}
