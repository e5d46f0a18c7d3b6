// Package formatter serializes the user aggregate and renders terminal previews.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"userfetch/internal/models"
)

// ErrUnsupportedFormat is returned for any format other than JSON or CSV.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format selects the output encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// CSVHeader is the first row of every CSV document.
var CSVHeader = []string{"First Name", "Last Name", "Email", "Source Id"}

// ParseFormat resolves a case-insensitive format selector.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	}

	return "", fmt.Errorf("%w: %q (want JSON or CSV)", ErrUnsupportedFormat, s)
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Serialize encodes users in the given format.
// Output is deterministic for a given input.
func Serialize(users []models.User, format Format) ([]byte, error) {
	f, err := ParseFormat(string(format))
	if err != nil {
		return nil, err
	}

	if f == FormatCSV {
		return serializeCSV(users)
	}

	return serializeJSON(users)
}

func serializeJSON(users []models.User) ([]byte, error) {
	if users == nil {
		users = []models.User{}
	}

	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return data, nil
}

// serializeCSV quotes fields per RFC 4180 only when they contain a comma, quote or newline.
func serializeCSV(users []models.User) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i, u := range users {
		row := []string{u.FirstName, u.LastName, u.Email, strconv.Itoa(u.SourceID)}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}
