package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset is a tabular snapshot ready for export.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// CSVExporter renders a Dataset as UTF-8 CSV.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export writes the dataset to an in-memory CSV document.
func (e *CSVExporter) Export(ds *Dataset) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if len(ds.Headers) > 0 {
		if err := w.Write(ds.Headers); err != nil {
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}

	for i, row := range ds.Rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// ContentType returns the MIME type of the exported document.
func (e *CSVExporter) ContentType() string {
	return "text/csv"
}

// FileExtension returns the file extension of the exported document.
func (e *CSVExporter) FileExtension() string {
	return "csv"
}
