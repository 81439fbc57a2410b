package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/absence"
	"github.com/trezcool/releve/core/grade"
	"github.com/trezcool/releve/core/syllabus"
)

func (cli *commandLine) readPayload(file string, v interface{}) error {
	var r io.Reader = cli.in
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return errors.Wrap(err, "opening payload")
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrap(err, "decoding payload")
	}
	return nil
}

func (cli *commandLine) importData(kind string, student core.StudentRef, file string) error {
	ctx := context.Background()
	if kind != "syllabi" && core.CleanString(student.ID) == "" {
		return core.NewValidationError(errors.New("student is required"), core.FieldError{Field: "student", Error: "this field is required"})
	}

	switch kind {
	case "grades":
		var grades []grade.RawGrade
		if err := cli.readPayload(file, &grades); err != nil {
			return err
		}
		added, err := cli.gradeSvc.Sync(ctx, student, grades)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cli.out, "%d grades imported (%d new)\n", len(grades), len(added))

	case "syllabi":
		var syllabi []syllabus.Syllabus
		if err := cli.readPayload(file, &syllabi); err != nil {
			return err
		}
		if err := cli.syllabusSvc.Import(ctx, syllabi); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cli.out, "%d syllabi imported\n", len(syllabi))

	case "absences":
		var absences []absence.RawAbsence
		if err := cli.readPayload(file, &absences); err != nil {
			return err
		}
		if err := cli.absenceSvc.Sync(ctx, student.ID, absences); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cli.out, "%d absences imported\n", len(absences))

	default:
		return core.NewValidationError(errors.Errorf("unknown kind %q", kind), core.FieldError{Field: "kind", Error: "must be one of grades, syllabi or absences"})
	}
	return nil
}
