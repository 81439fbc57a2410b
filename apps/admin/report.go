package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/absence"
	"github.com/trezcool/releve/core/grade"
)

var (
	passColor = color.New(color.FgGreen).SprintFunc()
	failColor = color.New(color.FgRed, color.Bold).SprintFunc()
	dimColor  = color.New(color.Faint).SprintFunc()
)

func formatAverage(avg grade.Average) string {
	s := strconv.FormatFloat(core.Round(avg.Value, 2), 'f', 2, 64)
	if avg.Value < avg.OutOf/2 {
		return failColor(s)
	}
	return passColor(s)
}

func formatValidation(nonValidated bool) string {
	if nonValidated {
		return failColor(grade.AlphaNotValidated)
	}
	return passColor(grade.AlphaValidated)
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%dh%02d", m/60, m%60)
}

func (cli *commandLine) report(studentID string, semester int) error {
	ctx := context.Background()
	pg, err := cli.gradeSvc.PeriodGrades(ctx, studentID, semester)
	if err != nil {
		return err
	}

	title := "Student " + studentID
	if semester > 0 {
		title += fmt.Sprintf(" - semester %d", semester)
	}
	if pg.Stale {
		title += " " + dimColor("(cached)")
	}
	_, _ = fmt.Fprintln(cli.out, title)

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"Module", "Subject", "Coef", "Average"})
	table.SetAutoMergeCells(true)
	table.SetRowLine(true)
	for _, mod := range pg.Modules {
		for _, subj := range mod.Subjects {
			avg := formatAverage(subj.StudentAverage)
			if subj.IsValidationOnly {
				avg = formatValidation(subj.HasNonValidated)
			}
			table.Append([]string{
				mod.Name,
				subj.Name,
				strconv.FormatFloat(subj.Coefficient, 'f', -1, 64),
				avg,
			})
		}
		modAvg := formatAverage(mod.StudentAverage)
		if mod.IsValidationOnly {
			modAvg = formatValidation(mod.HasNonValidated)
		}
		table.Append([]string{mod.Name, dimColor("module average"), "", modAvg})
	}
	table.SetFooter([]string{"", "", "Overall", fmt.Sprintf("%.2f/%g", core.Round(pg.StudentOverall.Value, 2), pg.StudentOverall.OutOf)})
	table.Render()

	absences, err := cli.absenceSvc.Absences(ctx, studentID, absence.QueryFilter{})
	if err != nil {
		return err
	}
	sum := absence.Summarize(absences)
	_, _ = fmt.Fprintf(cli.out, "Absences: %d (%s missed, %s unjustified)\n",
		sum.Count, formatMinutes(sum.TimeMissed), formatMinutes(sum.Unjustified))
	return nil
}
