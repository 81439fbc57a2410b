package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/releve/core"
)

func TestCheckConnection(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantShutdown bool
	}{
		{name: "nil"},
		{name: "other error", err: errors.New("syntax error")},
		{name: "no rows", err: sql.ErrNoRows},
		{name: "connection done", err: sql.ErrConnDone, wantShutdown: true},
		{name: "bad connection", err: driver.ErrBadConn, wantShutdown: true},
		{name: "wrapped", err: pkgerrors.Wrap(sql.ErrConnDone, "querying grades"), wantShutdown: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckConnection(tt.err)
			assert.Equal(t, tt.wantShutdown, core.IsShutdown(got))
			if !tt.wantShutdown {
				assert.Equal(t, tt.err, got)
			}
		})
	}
}
