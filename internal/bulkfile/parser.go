package bulkfile

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/approval"
	"github.com/singhkevin/ProductCodeScanner2-docker2/internal/engine"

	"github.com/xuri/excelize/v2"
)

// expected column order of the upload template
var expectedHeader = []string{"name", "sku", "batch_number", "quantity"}

// Parse reads the first sheet of an uploaded xlsx file into bulk submission
// rows. The first row must be the header; every following row needs a name,
// an sku and a positive quantity. Parsing happens entirely outside the
// engine, which only ever sees structured rows.
func Parse(r io.Reader) ([]approval.SubmitRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read xlsx file", engine.ErrValidation)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets found in xlsx file", engine.ErrValidation)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: could not read sheet %q", engine.ErrValidation, sheets[0])
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: file has a header but no data rows", engine.ErrValidation)
	}

	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	var parsed []approval.SubmitRow
	for i, row := range rows[1:] {
		// excelize drops trailing empty cells, pad back to full width
		for len(row) < len(expectedHeader) {
			row = append(row, "")
		}

		name := strings.TrimSpace(row[0])
		sku := strings.TrimSpace(row[1])
		batch := strings.TrimSpace(row[2])
		quantityStr := strings.TrimSpace(row[3])

		if name == "" && sku == "" && quantityStr == "" {
			// Skip fully blank lines
			continue
		}

		quantity, err := strconv.Atoi(quantityStr)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: quantity %q is not a number", engine.ErrValidation, i+2, quantityStr)
		}

		parsed = append(parsed, approval.SubmitRow{
			Name:        name,
			SKU:         sku,
			BatchNumber: batch,
			Quantity:    quantity,
		})
	}

	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w: file has a header but no data rows", engine.ErrValidation)
	}
	return parsed, nil
}

func checkHeader(header []string) error {
	if len(header) < len(expectedHeader) {
		return fmt.Errorf("%w: header must be %s", engine.ErrValidation, strings.Join(expectedHeader, ","))
	}
	for i, want := range expectedHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("%w: header column %d must be %q", engine.ErrValidation, i+1, want)
		}
	}
	return nil
}
