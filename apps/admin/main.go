package main

import (
	"context"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/releve/core"
	"github.com/trezcool/releve/core/absence"
	"github.com/trezcool/releve/core/grade"
	"github.com/trezcool/releve/core/syllabus"
	emailsvc "github.com/trezcool/releve/services/email"
	logsvc "github.com/trezcool/releve/services/logger"
	"github.com/trezcool/releve/storage/cache"
	"github.com/trezcool/releve/storage/database"
	boiledrepos "github.com/trezcool/releve/storage/database/sqlboiler"
	sqlxrepos "github.com/trezcool/releve/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf, err := core.NewConfig()
	if err != nil {
		std.Fatalf("loading config: %+v", err)
	}
	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(false)

	cli := &commandLine{conf: conf, out: os.Stdout, in: os.Stdin}

	// createdb runs before the app database exists
	if len(os.Args) < 2 || os.Args[1] != "createdb" {
		db, err := database.Open(context.Background(), conf)
		if err != nil {
			std.Fatalf("%+v", err)
		}
		defer func() { _ = db.Close() }()

		names, err := grade.LoadModuleNames(conf.Grades.ModulesFile)
		if err != nil {
			std.Fatalf("%+v", err)
		}
		// notifications must be written before the process exits
		mailSvc := emailsvc.NewSyncConsoleService(os.Stdout, conf, logger)

		xdb := sqlx.NewDb(db, conf.Database.Engine)
		syllabusRepo := sqlxrepos.NewSyllabusRepository(xdb)

		cli.db = db
		cli.gradeSvc = grade.NewService(
			sqlxrepos.NewGradeRepository(xdb),
			syllabusRepo,
			cache.NewMemoryCache(),
			mailSvc,
			logger,
			grade.Options{Names: names, OutOf: conf.Grades.OutOf},
		)
		cli.absenceSvc = absence.NewService(boiledrepos.NewAbsenceRepository(db), conf.Absences.SlotDuration, conf.Absences.Location)
		cli.syllabusSvc = syllabus.NewService(syllabusRepo)
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %+v\n", err)
		}
		os.Exit(1)
	}
}
