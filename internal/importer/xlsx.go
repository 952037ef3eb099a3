package importer

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// NewXLSXReader opens a workbook upload and adapts its first sheet to
// the same header contract and record semantics as the CSV path.
func NewXLSXReader(data []byte, required []string) (*Reader, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyInput
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook rows: %w", err)
	}

	return NewRowsReader(rows, required)
}
