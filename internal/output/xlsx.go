package output

import (
	"fmt"
	"math"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/martignettifabiola1-sketch/Systematic-trading/internal/contracts"
)

// writeXLSX writes the frame as a single-sheet workbook.
// 날짜는 CSV와 같은 문자열, 값은 숫자 셀, 결측은 빈 셀.
func writeXLSX(tmpPath, sheet string, f *contracts.Frame) error {
	book := excelize.NewFile()
	defer book.Close()

	if sheet != "" {
		if err := book.SetSheetName(book.GetSheetName(0), sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	} else {
		sheet = book.GetSheetName(0)
	}

	hdr := header(f)
	headerRow := make([]any, len(hdr))
	for j, h := range hdr {
		headerRow[j] = h
	}
	if err := book.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	formatDate := dateFormatter(f.Dates)
	for i, row := range f.Values {
		cells := make([]any, len(row)+1)
		cells[0] = formatDate(f.Dates[i])
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue // nil → 빈 셀
			}
			cells[j+1] = v
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := book.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	// SaveAs는 확장자를 검사하므로 임시 파일에는 Write 사용
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if err := book.Write(file); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return file.Sync()
}
