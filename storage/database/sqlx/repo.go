package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/storage/database"
)

// repository holds the default executor of the sqlx repositories.
type repository struct {
	db *sqlx.DB
}

func (repo repository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.db
}

// inTx runs `fn` on the caller's executor, or on a new transaction when none is given.
func (repo repository) inTx(ctx context.Context, svcExec []core.DBExecutor, fn func(exec core.DBExecutor) error) error {
	if len(svcExec) > 0 {
		return fn(svcExec[0])
	}

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(database.CheckConnection(err), "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return database.CheckConnection(err)
	}
	return errors.Wrap(database.CheckConnection(tx.Commit()), "committing transaction")
}

// selectAll runs a `?`-bound query and scans every row into `dest`.
func selectAll(ctx context.Context, exec core.DBExecutor, dest interface{}, query string, args ...interface{}) error {
	rows, err := exec.QueryContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...)
	if err != nil {
		return database.CheckConnection(err)
	}
	defer func() { _ = rows.Close() }()
	return sqlx.StructScan(rows, dest)
}

// namedExec runs a named query; a slice `arg` is expanded into a multi-row insert.
func namedExec(ctx context.Context, exec core.DBExecutor, query string, arg interface{}) (sql.Result, error) {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return nil, err
	}
	return exec.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, q), args...)
}
