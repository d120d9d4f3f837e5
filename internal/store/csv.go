package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/calvinalkan/crm/internal/schema"
)

// ContentType is the media type of exported bytes.
const ContentType = "text/csv"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode parses CSV text into a table. The first record is the header; every
// following record must have the same number of fields.
//
// Decode does not check the header against the schema; [Store.Load] does.
// Input without a header row returns [ErrNoHeader].
func Decode(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = 0

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", ErrNoHeader)
	}

	if err != nil {
		return nil, fmt.Errorf("decode: header: %w", err)
	}

	table := NewTable(header)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}

		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// Encode writes t as CSV, header first. A table without columns is written
// with the schema header so the output is always a loadable file.
func Encode(w io.Writer, t *Table) error {
	header := schema.Header()
	if t != nil && len(t.Columns) > 0 {
		header = t.Columns
	}

	cw := csv.NewWriter(w)

	err := cw.Write(header)
	if err != nil {
		return fmt.Errorf("encode: header: %w", err)
	}

	for i, row := range t.rows() {
		if len(row) != len(header) {
			return fmt.Errorf("encode: row %d: %w: got %d values, want %d",
				i+1, schema.ErrColumnCount, len(row), len(header))
		}

		err := cw.Write(row)
		if err != nil {
			return fmt.Errorf("encode: row %d: %w", i+1, err)
		}
	}

	cw.Flush()

	err = cw.Error()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	return nil
}

// Export serializes t (full or filtered) to CSV bytes for download.
// The result round-trips through [Decode].
func Export(t *Table) ([]byte, error) {
	var buf bytes.Buffer

	err := Encode(&buf, t)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (t *Table) rows() [][]string {
	if t == nil {
		return nil
	}

	return t.Rows
}
