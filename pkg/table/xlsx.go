package table

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/expofuse/expofuse/pkg/errors"
)

// ReadXLSX loads the first sheet of a workbook. The first row is the
// header; duplicate header names keep their first occurrence and later
// ones get dropped. Rows with no non-blank cell are skipped.
func ReadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewParseError("xlsx", path, "workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.WrapParse("xlsx", path, err)
	}
	if len(rows) == 0 {
		return New(), nil
	}

	header := make([]string, 0, len(rows[0]))
	seen := make(map[string]struct{}, len(rows[0]))
	for _, name := range rows[0] {
		name = strings.TrimSpace(name)
		if name == "" {
			header = append(header, "")
			continue
		}
		if _, dup := seen[name]; dup {
			header = append(header, "")
			continue
		}
		seen[name] = struct{}{}
		header = append(header, name)
	}

	t := New()
	for _, name := range header {
		t.AddColumn(name)
	}
	for _, cells := range rows[1:] {
		row := make(Row, len(header))
		for i, name := range header {
			if name == "" || i >= len(cells) {
				continue
			}
			if v := strings.TrimSpace(cells[i]); v != "" {
				row[name] = v
			}
		}
		if row.NonEmpty() {
			t.Append(row)
		}
	}
	return t, nil
}

// WriteXLSX saves the table as a single-sheet workbook, header first.
func WriteXLSX(t *Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	header := make([]interface{}, 0, len(t.Columns()))
	for _, c := range t.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.WrapIO("write", path, err)
	}

	for i, cells := range t.Values() {
		rendered := make([]interface{}, len(cells))
		for j, v := range cells {
			rendered[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.WrapIO("write", path, err)
		}
		if err := f.SetSheetRow(sheet, cell, &rendered); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
