package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/uwdash/uwextract/internal/workbook"
)

var cellAddressPattern = regexp.MustCompile(`^([A-Z]+)([0-9]+)$`)

// ParseCellAddress cleans an address like "$G$6" and resolves it to 1-based
// grid coordinates. Column letters convert with base-26 positional arithmetic,
// so multi-letter columns extend naturally (A=1, Z=26, AA=27, AAA=703).
func ParseCellAddress(address string) (workbook.CellRef, error) {
	clean := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(address), "$", ""))

	match := cellAddressPattern.FindStringSubmatch(clean)
	if match == nil {
		return workbook.CellRef{}, fmt.Errorf("invalid cell address %q: expected column letters followed by a row number, like A1 or B10", address)
	}

	col := 0
	for _, ch := range match[1] {
		col = col*26 + int(ch-'A') + 1
	}

	row, err := strconv.Atoi(match[2])
	if err != nil {
		return workbook.CellRef{}, fmt.Errorf("invalid row in cell address %q: %w", address, err)
	}

	return workbook.CellRef{Address: clean, Row: row, Col: col}, nil
}
