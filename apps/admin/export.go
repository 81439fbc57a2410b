package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/grade"
)

const (
	gradesSheet  = "Grades"
	modulesSheet = "Modules"
)

var (
	gradesHeader  = []interface{}{"Module", "Subject", "Description", "Exam", "Mark", "Coefficient", "Date"}
	modulesHeader = []interface{}{"Module", "Name", "Average", "Out of", "Validation only", "Has non-validated"}
)

func markCell(m grade.Mark) interface{} {
	if s, ok := m.(grade.Score); ok {
		return float64(s)
	}
	return m.String()
}

func (cli *commandLine) export(studentID string, semester int, path string) error {
	pg, err := cli.gradeSvc.PeriodGrades(context.Background(), studentID, semester)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}

	// grades
	if err = f.SetSheetName("Sheet1", gradesSheet); err != nil {
		return errors.Wrap(err, "naming grades sheet")
	}
	if err = writeRow(f, gradesSheet, 1, gradesHeader); err != nil {
		return err
	}
	row := 2
	for _, subj := range pg.Subjects {
		for _, g := range subj.Grades {
			exam := g.ExamType
			if g.ExamIndex != nil {
				exam = fmt.Sprintf("%s %d", exam, *g.ExamIndex)
			}
			cells := []interface{}{subj.UE, subj.Name, g.Description, exam, markCell(g.Mark), g.Coefficient, g.Date.Format("2006-01-02")}
			if err = writeRow(f, gradesSheet, row, cells); err != nil {
				return err
			}
			row++
		}
	}
	if err = f.SetCellStyle(gradesSheet, "A1", "G1", bold); err != nil {
		return errors.Wrap(err, "styling grades header")
	}

	// modules
	if _, err = f.NewSheet(modulesSheet); err != nil {
		return errors.Wrap(err, "creating modules sheet")
	}
	if err = writeRow(f, modulesSheet, 1, modulesHeader); err != nil {
		return err
	}
	row = 2
	for _, mod := range pg.Modules {
		cells := []interface{}{
			mod.ID, mod.Name, core.Round(mod.StudentAverage.Value, 2), mod.StudentAverage.OutOf,
			mod.IsValidationOnly, mod.HasNonValidated,
		}
		if err = writeRow(f, modulesSheet, row, cells); err != nil {
			return err
		}
		row++
	}
	overall := []interface{}{"Overall", "", core.Round(pg.StudentOverall.Value, 2), pg.StudentOverall.OutOf}
	if err = writeRow(f, modulesSheet, row, overall); err != nil {
		return err
	}
	if err = f.SetCellStyle(modulesSheet, "A1", "F1", bold); err != nil {
		return errors.Wrap(err, "styling modules header")
	}

	if err = f.SaveAs(path); err != nil {
		return errors.Wrap(err, "saving spreadsheet")
	}
	_, _ = fmt.Fprintf(cli.out, "transcript written to %s\n", path)
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return errors.Wrapf(f.SetSheetRow(sheet, cell, &cells), "writing %s row %d", sheet, row)
}
