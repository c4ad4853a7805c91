// Package importer turns participant spreadsheets into pool records.
//
// The first row is a header. Names come from the first non-blank of the Ad, Name
// and İsim columns, falling back to the row's first non-blank cell. Email comes from
// Email or Eposta, phone from Telefon or Phone. Rows without a name are dropped.
// A file that cannot be read yields an error and no records.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/logger"
	"github.com/xuri/excelize/v2"

	"prizedraw/internal/models"
)

// Format is a supported spreadsheet format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for file types the importer cannot read.
var ErrUnsupportedFormat = errors.New("unsupported participant file format")

var (
	nameColumns  = []string{"Ad", "Name", "İsim"}
	emailColumns = []string{"Email", "Eposta"}
	phoneColumns = []string{"Telefon", "Phone"}
)

// FormatFromFilename picks the format from a file's extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Parse reads participants from r in the given format.
func Parse(r io.Reader, format Format) ([]models.Participant, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(r)
	case FormatXLSX:
		return ParseXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ParseCSV reads participants from a CSV file with a header row.
func ParseCSV(r io.Reader) ([]models.Participant, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return fromRows(rows), nil
}

// ParseXLSX reads participants from the first sheet of a workbook.
func ParseXLSX(r io.Reader) ([]models.Participant, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows), nil
}

func fromRows(rows [][]string) []models.Participant {
	participants := make([]models.Participant, 0)
	if len(rows) == 0 {
		return participants
	}

	header := rows[0]
	names := columnIndexes(header, nameColumns)
	emails := columnIndexes(header, emailColumns)
	phones := columnIndexes(header, phoneColumns)

	for i, row := range rows[1:] {
		name := firstValue(row, names)
		if name == "" {
			name = firstValue(row, allColumns(len(row)))
		}
		if name == "" {
			logger.Infof("Skipping participant row %d without a name", i+2)
			continue
		}
		participants = append(participants, models.Participant{
			Name:  name,
			Email: firstValue(row, emails),
			Phone: firstValue(row, phones),
		})
	}
	return participants
}

// columnIndexes returns the header positions of wanted, in the order wanted lists them.
func columnIndexes(header, wanted []string) []int {
	var idx []int
	for _, w := range wanted {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), w) {
				idx = append(idx, i)
			}
		}
	}
	return idx
}

func allColumns(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

func firstValue(row []string, columns []int) string {
	for _, c := range columns {
		if c < len(row) {
			if v := strings.TrimSpace(row[c]); v != "" {
				return v
			}
		}
	}
	return ""
}
