package workbook

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ooxmlWorkbook reads the OOXML container, which supports direct lookup by
// conventional 1-based address strings. No coordinate conversion is needed.
type ooxmlWorkbook struct {
	f *excelize.File
}

func openOOXML(path string) (Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	return &ooxmlWorkbook{f: f}, nil
}

func openOOXMLReader(payload []byte) (Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	return &ooxmlWorkbook{f: f}, nil
}

func (w *ooxmlWorkbook) SheetNames() []string {
	return w.f.GetSheetList()
}

func (w *ooxmlWorkbook) HasSheet(name string) bool {
	for _, n := range w.f.GetSheetList() {
		if n == name {
			return true
		}
	}
	return false
}

func (w *ooxmlWorkbook) CellValue(sheet string, ref CellRef) (any, error) {
	value, err := w.f.GetCellValue(sheet, ref.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to read cell %s!%s: %w", sheet, ref.Address, err)
	}
	return normalizeText(value), nil
}

func (w *ooxmlWorkbook) Close() error {
	return w.f.Close()
}
