package workbook

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/extrame/xls"
)

// biffWorkbook reads the legacy binary container. Its native enumeration is
// 0-based and sparse: blank cells are simply absent and there is no
// random-access lookup by coordinate. Each sheet is scanned once on first
// access into a (rowx, colx) -> value index that later lookups reuse. The
// index lives inside this handle, which is owned by a single worker, so it is
// never shared across workbooks.
type biffWorkbook struct {
	book   *xls.WorkBook
	closer io.Closer
	names  []string
	cells  map[string]map[[2]int]any
	extent map[string]int
}

// openBIFF opens the file itself and hands the reader to the parser, keeping
// the handle so Close can release it.
func openBIFF(path string) (Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}
	book, err := xls.OpenReader(f, "utf-8")
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}
	return newBIFFWorkbook(book, f), nil
}

func openBIFFReader(payload []byte) (Workbook, error) {
	book, err := xls.OpenReader(bytes.NewReader(payload), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}
	return newBIFFWorkbook(book, nil), nil
}

func newBIFFWorkbook(book *xls.WorkBook, closer io.Closer) *biffWorkbook {
	names := make([]string, 0, book.NumSheets())
	for i := 0; i < book.NumSheets(); i++ {
		if sheet := book.GetSheet(i); sheet != nil {
			names = append(names, sheet.Name)
		}
	}
	return &biffWorkbook{
		book:   book,
		closer: closer,
		names:  names,
		cells:  make(map[string]map[[2]int]any),
		extent: make(map[string]int),
	}
}

func (w *biffWorkbook) SheetNames() []string {
	out := make([]string, len(w.names))
	copy(out, w.names)
	return out
}

func (w *biffWorkbook) HasSheet(name string) bool {
	for _, n := range w.names {
		if n == name {
			return true
		}
	}
	return false
}

// CellValue translates the 1-based ref down to the container's 0-based
// coordinates before consulting the sheet index. "D6" is looked up at native
// (rowx=5, colx=3).
func (w *biffWorkbook) CellValue(sheet string, ref CellRef) (any, error) {
	index, rows := w.sheetIndex(sheet)

	rowx := ref.Row - 1
	colx := ref.Col - 1
	if value, ok := index[[2]int{rowx, colx}]; ok {
		return value, nil
	}
	return nil, &NotFoundError{RowsScanned: rows, Column: ref.Col}
}

func (w *biffWorkbook) Close() error {
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// sheetIndex scans the named sheet once, recording every enumerated cell under
// its native 0-based coordinates, and returns the index along with the number
// of rows encountered.
func (w *biffWorkbook) sheetIndex(name string) (map[[2]int]any, int) {
	if index, ok := w.cells[name]; ok {
		return index, w.extent[name]
	}

	index := make(map[[2]int]any)
	rows := 0
	if sheet := w.findSheet(name); sheet != nil {
		for rowx := 0; rowx <= int(sheet.MaxRow); rowx++ {
			row := sheet.Row(rowx)
			if row == nil {
				continue
			}
			rows++
			for colx := row.FirstCol(); colx < row.LastCol(); colx++ {
				if text := row.Col(colx); text != "" {
					index[[2]int{rowx, colx}] = normalizeText(text)
				}
			}
		}
	}

	w.cells[name] = index
	w.extent[name] = rows
	return index, rows
}

func (w *biffWorkbook) findSheet(name string) *xls.WorkSheet {
	if w.book == nil {
		return nil
	}
	for i := 0; i < w.book.NumSheets(); i++ {
		if sheet := w.book.GetSheet(i); sheet != nil && sheet.Name == name {
			return sheet
		}
	}
	return nil
}

// normalizeText restores the numeric type the readers flatten to text.
// Formula error codes and anything else non-numeric pass through unchanged.
func normalizeText(text string) any {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return text
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return text
}
