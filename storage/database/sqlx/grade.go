package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/grade"
)

type gradeRow struct {
	ID        string      `db:"id"`
	StudentID string      `db:"student_id"`
	Code      string      `db:"code"`
	Name      string      `db:"name"`
	Semester  int         `db:"semester"`
	Grade     float64     `db:"grade"`
	AlphaMark null.String `db:"alpha_mark"`
	SyncedAt  time.Time   `db:"synced_at"`
	Position  int         `db:"position"`
}

type gradeRepository struct {
	repository
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{repository{db: db}}
}

func (repo gradeRepository) QueryGrades(ctx context.Context, studentID string, exec ...core.DBExecutor) ([]grade.RawGrade, error) {
	var rows []gradeRow
	err := selectAll(ctx, repo.getExec(exec), &rows,
		`SELECT id, student_id, code, name, semester, grade, alpha_mark, synced_at, position
		FROM grade WHERE student_id = ? ORDER BY position`, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}

	grades := make([]grade.RawGrade, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, grade.RawGrade{
			Code:      r.Code,
			Name:      r.Name,
			Semester:  r.Semester,
			Grade:     r.Grade,
			AlphaMark: r.AlphaMark.String,
			SyncedAt:  r.SyncedAt,
		})
	}
	return grades, nil
}

func (repo gradeRepository) SaveGrades(ctx context.Context, studentID string, grades []grade.RawGrade, exec ...core.DBExecutor) error {
	return repo.inTx(ctx, exec, func(exe core.DBExecutor) error {
		if _, err := exe.ExecContext(ctx, "DELETE FROM grade WHERE student_id = $1", studentID); err != nil {
			return errors.Wrap(err, "deleting grades")
		}
		if len(grades) == 0 {
			return nil
		}

		rows := make([]gradeRow, 0, len(grades))
		for i, g := range grades {
			rows = append(rows, gradeRow{
				ID:        uuid.New().String(),
				StudentID: studentID,
				Code:      g.Code,
				Name:      g.Name,
				Semester:  g.Semester,
				Grade:     g.Grade,
				AlphaMark: null.NewString(g.AlphaMark, g.AlphaMark != ""),
				SyncedAt:  g.SyncedAt.UTC(),
				Position:  i,
			})
		}
		_, err := namedExec(ctx, exe,
			`INSERT INTO grade (id, student_id, code, name, semester, grade, alpha_mark, synced_at, position)
			VALUES (:id, :student_id, :code, :name, :semester, :grade, :alpha_mark, :synced_at, :position)`, rows)
		return errors.Wrap(err, "inserting grades")
	})
}
