package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

func (cli *commandLine) unmatched(studentID string) error {
	suggestions, err := cli.gradeSvc.Unmatched(context.Background(), studentID)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		_, _ = fmt.Fprintln(cli.out, passColor("every grade matches a syllabus"))
		return nil
	}

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"Grade", "Code", "Closest syllabus", "Similarity"})
	for _, s := range suggestions {
		closest := s.Closest
		if s.SyllabusID != "" {
			closest += " (" + s.SyllabusID + ")"
		}
		table.Append([]string{s.Grade.Name, s.Code, closest, strconv.FormatFloat(s.Ratio*100, 'f', 0, 64) + "%"})
	}
	table.Render()
	_, _ = fmt.Fprintf(cli.out, "%d unmatched grade(s)\n", len(suggestions))
	return nil
}
