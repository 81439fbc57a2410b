package boiledrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/absence"
	"github.com/trezcool/releve/storage/database"
)

type absenceRow struct {
	ID            string    `boil:"id"`
	StudentID     string    `boil:"student_id"`
	SlotID        string    `boil:"slot_id"`
	StartDate     time.Time `boil:"start_date"`
	EndDate       null.Time `boil:"end_date"`
	SubjectName   string    `boil:"subject_name"`
	Justificatory string    `boil:"justificatory"`
	Mandatory     bool      `boil:"mandatory"`
}

type absenceRepository struct {
	db core.DB
}

var _ absence.Repository = (*absenceRepository)(nil) // interface compliance check

func NewAbsenceRepository(db core.DB) *absenceRepository {
	return &absenceRepository{db: db}
}

func (repo absenceRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.db
}

func (repo absenceRepository) boil(studentID string, a absence.RawAbsence) absenceRow {
	return absenceRow{
		ID:            uuid.New().String(),
		StudentID:     studentID,
		SlotID:        a.SlotID,
		StartDate:     a.StartDate.UTC(),
		EndDate:       null.NewTime(a.EndDate.UTC(), !a.EndDate.IsZero()),
		SubjectName:   a.SubjectName,
		Justificatory: a.Justificatory,
		Mandatory:     a.Mandatory,
	}
}

func (repo absenceRepository) unboil(row absenceRow) absence.RawAbsence {
	return absence.RawAbsence{
		SlotID:        row.SlotID,
		StartDate:     row.StartDate,
		EndDate:       row.EndDate.Time,
		SubjectName:   row.SubjectName,
		Justificatory: row.Justificatory,
		Mandatory:     row.Mandatory,
	}
}

func (repo absenceRepository) QueryAbsences(ctx context.Context, studentID string, filter *absence.QueryFilter, exec ...core.DBExecutor) ([]absence.RawAbsence, error) {
	where := []string{"student_id = $1"}
	args := []interface{}{studentID}
	if filter != nil {
		if !filter.From.IsZero() {
			args = append(args, filter.From.UTC())
			where = append(where, fmt.Sprintf("start_date >= $%d", len(args)))
		}
		if !filter.To.IsZero() {
			args = append(args, filter.To.UTC())
			where = append(where, fmt.Sprintf("start_date <= $%d", len(args)))
		}
	}

	q := `SELECT id, student_id, slot_id, start_date, end_date, subject_name, justificatory, mandatory
	FROM absence WHERE ` + strings.Join(where, " AND ") + " ORDER BY start_date, slot_id"

	var rows []absenceRow
	if err := queries.Raw(q, args...).Bind(ctx, repo.getExec(exec), &rows); err != nil {
		return nil, errors.Wrap(database.CheckConnection(err), "querying absences")
	}

	absences := make([]absence.RawAbsence, 0, len(rows))
	for _, r := range rows {
		absences = append(absences, repo.unboil(r))
	}
	return absences, nil
}

func (repo absenceRepository) SaveAbsences(ctx context.Context, studentID string, absences []absence.RawAbsence, exec ...core.DBExecutor) (err error) {
	var exe core.DBExecutor
	if len(exec) > 0 {
		exe = exec[0]
	} else {
		tx, txErr := repo.db.BeginTx(ctx, nil)
		if txErr != nil {
			return errors.Wrap(database.CheckConnection(txErr), "beginning transaction")
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback()
				err = database.CheckConnection(err)
				return
			}
			err = errors.Wrap(database.CheckConnection(tx.Commit()), "committing transaction")
		}()
		exe = tx
	}

	if _, err = queries.Raw("DELETE FROM absence WHERE student_id = $1", studentID).ExecContext(ctx, exe); err != nil {
		return errors.Wrap(err, "deleting absences")
	}
	for _, a := range absences {
		row := repo.boil(studentID, a)
		_, err = queries.Raw(
			`INSERT INTO absence (id, student_id, slot_id, start_date, end_date, subject_name, justificatory, mandatory)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			row.ID, row.StudentID, row.SlotID, row.StartDate, row.EndDate, row.SubjectName, row.Justificatory, row.Mandatory,
		).ExecContext(ctx, exe)
		if err != nil {
			return errors.Wrapf(err, "inserting absence %s", a.SlotID)
		}
	}
	return nil
}
