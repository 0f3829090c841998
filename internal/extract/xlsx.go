package extract

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

type xlsxExtractor struct{}

func (e *xlsxExtractor) Supports(ext string) bool {
	return ext == ".xlsx" || ext == ".xlsm"
}

func (e *xlsxExtractor) Extract(path string, maxChars int) (string, error) {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open spreadsheet: %w", err)
	}
	defer workbook.Close()

	var builder strings.Builder
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		builder.WriteString(sheet)
		builder.WriteString(": ")
		for _, row := range rows {
			builder.WriteString(strings.Join(row, " "))
			builder.WriteString(" ")
			if maxChars > 0 && builder.Len() > maxChars*2 {
				break
			}
		}
		if maxChars > 0 && builder.Len() > maxChars*2 {
			break
		}
	}

	text := collapse(builder.String())
	return truncate(text, maxChars), nil
}
