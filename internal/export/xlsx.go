// Package export выгружает пакет сравнений в XLSX.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/TedXpro/Comparisons-Website/models"
	"github.com/xuri/excelize/v2"
)

// ContentType - MIME-тип XLSX.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SheetName - имя листа с данными.
const SheetName = "Comparisons"

// Header возвращает строку заголовков: id, колонки записи, created_at.
func Header() []any {
	header := make([]any, 0, len(models.ComparisonColumns)+2)
	header = append(header, "id")
	for _, col := range models.ComparisonColumns {
		header = append(header, col)
	}
	return append(header, "created_at")
}

// WriteXLSX пишет записи в w как книгу с одним листом.
func WriteXLSX(w io.Writer, records []models.ComparisonRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("ошибка переименования листа: %w", err)
	}

	if err := setRow(f, 1, Header()); err != nil {
		return err
	}
	for i, rec := range records {
		row := make([]any, 0, len(models.ComparisonColumns)+2)
		row = append(row, rec.ID)
		row = append(row, rec.Cells()...)
		row = append(row, rec.CreatedAt.UTC().Format(time.RFC3339))
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("ошибка записи XLSX: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, rowNo int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNo)
	if err != nil {
		return fmt.Errorf("ошибка вычисления адреса ячейки: %w", err)
	}
	if err = f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("ошибка записи строки %d: %w", rowNo, err)
	}
	return nil
}
