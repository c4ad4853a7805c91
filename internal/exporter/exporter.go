// Package exporter writes draw results as flat spreadsheet records.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"prizedraw/internal/models"
)

// Header is the column row written before the records.
var Header = []string{"Prize", "Winner", "Email", "Phone", "Status"}

// SheetName is the worksheet that holds results in XLSX exports.
const SheetName = "Results"

// Record is one exported row.
type Record struct {
	Prize  string
	Winner string
	Email  string
	Phone  string
	Status string
}

func (r Record) row() []string {
	return []string{r.Prize, r.Winner, r.Email, r.Phone, r.Status}
}

// Records flattens winners into export rows, keeping their order.
func Records(winners []models.Winner) []Record {
	records := make([]Record, len(winners))
	for i, w := range winners {
		records[i] = Record{
			Prize:  w.Prize.Name,
			Winner: w.Participant.Name,
			Email:  w.Participant.Email,
			Phone:  w.Participant.Phone,
			Status: w.Status(),
		}
	}
	return records
}

// WriteCSV writes winners as CSV. A UTF-8 BOM is written first so spreadsheet
// applications pick the right encoding.
func WriteCSV(w io.Writer, winners []models.Winner) error {
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range Records(winners) {
		if err := cw.Write(r.row()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteXLSX writes winners as a single-sheet workbook.
func WriteXLSX(w io.Writer, winners []models.Winner) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	rows := [][]string{Header}
	for _, r := range Records(winners) {
		rows = append(rows, r.row())
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &rows[i]); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
