package sqlxrepos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/syllabus"
)

const syllabusColumns = "id, name, ue, semester, coeff, duration, title, description, activities"

type (
	syllabusRow struct {
		ID          string         `db:"id"`
		Name        string         `db:"name"`
		UE          string         `db:"ue"`
		Semester    int            `db:"semester"`
		Coeff       null.Float64   `db:"coeff"`
		Duration    int            `db:"duration"`
		Title       string         `db:"title"`
		Description string         `db:"description"`
		Activities  pq.StringArray `db:"activities"`
	}

	examRow struct {
		ID          string   `db:"id"`
		SyllabusID  string   `db:"syllabus_id"`
		Type        string   `db:"type"`
		Index       null.Int `db:"exam_index"`
		Weighting   float64  `db:"weighting"`
		Description string   `db:"description"`
		TypeName    string   `db:"type_name"`
		Position    int      `db:"position"`
	}
)

type syllabusRepository struct {
	repository
}

var _ syllabus.Repository = (*syllabusRepository)(nil) // interface compliance check

func NewSyllabusRepository(db *sqlx.DB) *syllabusRepository {
	return &syllabusRepository{repository{db: db}}
}

func (row syllabusRow) unmarshal(exams []examRow) syllabus.Syllabus {
	s := syllabus.Syllabus{
		ID:         row.ID,
		Name:       row.Name,
		UE:         row.UE,
		Semester:   row.Semester,
		Coeff:      row.Coeff.Ptr(),
		Duration:   row.Duration,
		Caption:    syllabus.Caption{Name: row.Title, Description: row.Description},
		Activities: []string(row.Activities),
		Exams:      make([]syllabus.ExamComponent, 0, len(exams)),
	}
	for _, e := range exams {
		s.Exams = append(s.Exams, syllabus.ExamComponent{
			Type:        e.Type,
			Index:       e.Index.Ptr(),
			Weighting:   e.Weighting,
			Description: e.Description,
			TypeName:    e.TypeName,
		})
	}
	return s
}

func (repo syllabusRepository) queryExams(ctx context.Context, exec core.DBExecutor, ids []string) (map[string][]examRow, error) {
	byID := make(map[string][]examRow, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	q, args, err := sqlx.In(
		`SELECT id, syllabus_id, type, exam_index, weighting, description, type_name, position
		FROM syllabus_exam WHERE syllabus_id IN (?) ORDER BY syllabus_id, position`, ids)
	if err != nil {
		return nil, err
	}
	var rows []examRow
	if err = selectAll(ctx, exec, &rows, q, args...); err != nil {
		return nil, err
	}
	for _, r := range rows {
		byID[r.SyllabusID] = append(byID[r.SyllabusID], r)
	}
	return byID, nil
}

func (repo syllabusRepository) QuerySyllabi(ctx context.Context, filter *syllabus.QueryFilter, exec ...core.DBExecutor) ([]syllabus.Syllabus, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter != nil {
		if filter.Semester != 0 {
			where = append(where, "semester = ?")
			args = append(args, filter.Semester)
		}
		if filter.UE != "" {
			where = append(where, "ue = ?")
			args = append(args, filter.UE)
		}
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			where = append(where, "(name ILIKE ? OR title ILIKE ?)")
			args = append(args, val, val)
		}
	}

	q := "SELECT " + syllabusColumns + " FROM syllabus"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY position"

	exe := repo.getExec(exec)
	var rows []syllabusRow
	if err := selectAll(ctx, exe, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying syllabi")
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	exams, err := repo.queryExams(ctx, exe, ids)
	if err != nil {
		return nil, errors.Wrap(err, "querying syllabus exams")
	}

	syllabi := make([]syllabus.Syllabus, 0, len(rows))
	for _, r := range rows {
		syllabi = append(syllabi, r.unmarshal(exams[r.ID]))
	}
	return syllabi, nil
}

func (repo syllabusRepository) GetSyllabus(ctx context.Context, id string, exec ...core.DBExecutor) (syllabus.Syllabus, error) {
	exe := repo.getExec(exec)

	var rows []syllabusRow
	if err := selectAll(ctx, exe, &rows, "SELECT "+syllabusColumns+" FROM syllabus WHERE id = ?", id); err != nil {
		return syllabus.Syllabus{}, errors.Wrap(err, "finding syllabus")
	}
	if len(rows) == 0 {
		return syllabus.Syllabus{}, syllabus.ErrNotFound
	}

	exams, err := repo.queryExams(ctx, exe, []string{id})
	if err != nil {
		return syllabus.Syllabus{}, errors.Wrap(err, "querying syllabus exams")
	}
	return rows[0].unmarshal(exams[id]), nil
}

func (repo syllabusRepository) SaveSyllabi(ctx context.Context, syllabi []syllabus.Syllabus, exec ...core.DBExecutor) error {
	if len(syllabi) == 0 {
		return nil
	}

	return repo.inTx(ctx, exec, func(exe core.DBExecutor) error {
		for _, s := range syllabi {
			row := syllabusRow{
				ID:          s.ID,
				Name:        s.Name,
				UE:          s.UECode(),
				Semester:    s.Semester,
				Coeff:       null.Float64FromPtr(s.Coeff),
				Duration:    s.Duration,
				Title:       s.Caption.Name,
				Description: s.Caption.Description,
				Activities:  pq.StringArray(s.Activities),
			}
			if row.Activities == nil {
				row.Activities = pq.StringArray{}
			}
			_, err := namedExec(ctx, exe,
				`INSERT INTO syllabus (`+syllabusColumns+`)
				VALUES (:id, :name, :ue, :semester, :coeff, :duration, :title, :description, :activities)
				ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, ue = EXCLUDED.ue, semester = EXCLUDED.semester, coeff = EXCLUDED.coeff,
				duration = EXCLUDED.duration, title = EXCLUDED.title, description = EXCLUDED.description,
				activities = EXCLUDED.activities`, row)
			if err != nil {
				return errors.Wrapf(err, "saving syllabus %s", s.ID)
			}

			if _, err = exe.ExecContext(ctx, "DELETE FROM syllabus_exam WHERE syllabus_id = $1", s.ID); err != nil {
				return errors.Wrapf(err, "deleting exams of syllabus %s", s.ID)
			}
			if len(s.Exams) == 0 {
				continue
			}
			exams := make([]examRow, 0, len(s.Exams))
			for i, e := range s.Exams {
				exams = append(exams, examRow{
					ID:          uuid.New().String(),
					SyllabusID:  s.ID,
					Type:        e.Type,
					Index:       null.IntFromPtr(e.Index),
					Weighting:   e.Weighting,
					Description: e.Description,
					TypeName:    e.TypeName,
					Position:    i,
				})
			}
			_, err = namedExec(ctx, exe,
				`INSERT INTO syllabus_exam (id, syllabus_id, type, exam_index, weighting, description, type_name, position)
				VALUES (:id, :syllabus_id, :type, :exam_index, :weighting, :description, :type_name, :position)`, exams)
			if err != nil {
				return errors.Wrapf(err, "inserting exams of syllabus %s", s.ID)
			}
		}
		return nil
	})
}
