package storage

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"annotator/internal/models"
)

const sheetName = "annotations"

// ExportXLSX writes the store as a single-sheet workbook with the CSV column layout.
func ExportXLSX(path string, s *Store) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(models.Columns))
	for i, col := range models.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	for i, image := range s.order {
		a := s.records[image]
		values := make([]interface{}, 0, len(models.Columns))
		values = append(values, image)
		for _, flag := range a.Flags() {
			if flag {
				values = append(values, 1)
			} else {
				values = append(values, 0)
			}
		}
		values = append(values, a.Comments)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
