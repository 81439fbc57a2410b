package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/releve/apps/api/echo"
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

const shutdownTimeout = 10 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %+v", err)
	}

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	ctx := context.Background()
	db, err := setUpDB(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()
	xdb := sqlx.NewDb(db, conf.Database.Engine)

	var gradeCache grade.Cache = cache.NewMemoryCache()
	if conf.Redis.Address != "" {
		rc, rErr := cache.NewRedisCache(ctx, conf.Redis)
		if rErr != nil {
			logger.Warn("redis unavailable, caching grades in memory", rErr)
		} else {
			defer func() { _ = rc.Close() }()
			gradeCache = rc
		}
	}

	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	names, err := grade.LoadModuleNames(conf.Grades.ModulesFile)
	if err != nil {
		logger.Fatal(fmt.Sprintf("loading module names: %v", err), err)
	}

	syllabusRepo := sqlxrepos.NewSyllabusRepository(xdb)
	gradeSvc := grade.NewService(
		sqlxrepos.NewGradeRepository(xdb),
		syllabusRepo,
		gradeCache,
		mailSvc,
		logger,
		grade.Options{Names: names, OutOf: conf.Grades.OutOf},
	)
	absenceSvc := absence.NewService(boiledrepos.NewAbsenceRepository(db), conf.Absences.SlotDuration, conf.Absences.Location)
	syllabusSvc := syllabus.NewService(syllabusRepo)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:        conf.Server.Address,
		Debug:          conf.Debug,
		TestMode:       conf.TestMode,
		AppName:        conf.AppName,
		Logger:         logger,
		SignalShutdown: func() { shutdown <- syscall.SIGTERM },
		GradeSvc:       gradeSvc,
		AbsenceSvc:     absenceSvc,
		SyllabusSvc:    syllabusSvc,
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		if err != nil {
			logger.Error(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err = server.Stop(sctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB(ctx context.Context, conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
