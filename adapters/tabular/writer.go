package tabular

import (
	"log"

	"enefviz/domain/catalog"
	"enefviz/domain/survey"
	"enefviz/internal/errors"

	"github.com/xuri/excelize/v2"
)

const (
	percentSheet = "Pourcentage"
	countSheet   = "Comptage"
	// builtin number format 10 is "0.00%"
	percentNumFmt = 10
)

// WriteFrequencyWorkbook saves a frequency table as an .xlsx workbook with a
// percentage sheet and a count sheet. Response categories run down the rows
// and grouping values across the columns.
func WriteFrequencyWorkbook(path string, ft *survey.FrequencyTable, group, response catalog.Variable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", percentSheet); err != nil {
		return errors.Wrap(err, "failed to name percentage sheet")
	}
	if _, err := f.NewSheet(countSheet); err != nil {
		return errors.Wrap(err, "failed to create count sheet")
	}

	pctStyle, err := f.NewStyle(&excelize.Style{NumFmt: percentNumFmt})
	if err != nil {
		return errors.Wrap(err, "failed to create percentage style")
	}

	for _, sheet := range []string{percentSheet, countSheet} {
		if err := writeHeader(f, sheet, ft, group, response); err != nil {
			return err
		}
	}

	for i, cat := range ft.Categories {
		row := i + 2
		for _, sheet := range []string{percentSheet, countSheet} {
			if err := setCell(f, sheet, 1, row, response.ModalityLabel(cat.Key)); err != nil {
				return err
			}
		}
		for j, d := range ft.Groups {
			col := j + 2
			if err := setCell(f, percentSheet, col, row, d.Share(cat.Key)); err != nil {
				return err
			}
			if err := setCell(f, countSheet, col, row, d.Count(cat.Key)); err != nil {
				return err
			}
		}
	}

	if len(ft.Categories) > 0 && len(ft.Groups) > 0 {
		first, _ := excelize.CoordinatesToCellName(2, 2)
		last, _ := excelize.CoordinatesToCellName(len(ft.Groups)+1, len(ft.Categories)+1)
		if err := f.SetCellStyle(percentSheet, first, last, pctStyle); err != nil {
			return errors.Wrap(err, "failed to style percentages")
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save workbook %s", path)
	}
	log.Printf("[Workbook] Frequency table written to %s (%d categories x %d groups)", path, len(ft.Categories), len(ft.Groups))
	return nil
}

func writeHeader(f *excelize.File, sheet string, ft *survey.FrequencyTable, group, response catalog.Variable) error {
	if err := setCell(f, sheet, 1, 1, response.Label+" / "+group.Label); err != nil {
		return err
	}
	for j, d := range ft.Groups {
		if err := setCell(f, sheet, j+2, 1, group.ModalityLabel(d.Group.Key)); err != nil {
			return err
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return errors.Wrap(err, "invalid cell coordinates")
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return errors.Wrapf(err, "failed to write %s!%s", sheet, cell)
	}
	return nil
}
