package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/lcharvet/sav-coverage/internal/auth"
	"github.com/lcharvet/sav-coverage/internal/config"
	"github.com/lcharvet/sav-coverage/internal/db"
	"github.com/lcharvet/sav-coverage/internal/excel"
	httphandler "github.com/lcharvet/sav-coverage/internal/http"
	"github.com/lcharvet/sav-coverage/internal/http/middleware"
	"github.com/lcharvet/sav-coverage/internal/logger"
	"github.com/lcharvet/sav-coverage/internal/pdf"
	"github.com/lcharvet/sav-coverage/internal/repository"
	"github.com/lcharvet/sav-coverage/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	if cfg.Seed.Demo {
		if err := db.SeedDemo(database, log); err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
	}

	hierarchyRepo := repository.NewHierarchyRepository(database)
	kpiRepo := repository.NewKPIRepository(database)

	coverageService := service.NewCoverageService(hierarchyRepo, pdf.NewGenerator(), excel.NewGenerator())
	kpiService := service.NewKPIService(kpiRepo)

	handler := httphandler.NewHandler(coverageService, kpiService, log)

	var authMiddleware gin.HandlerFunc
	if cfg.Auth.AccessSecret != "" {
		tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
		authMiddleware = middleware.Auth(tokenParser)
	} else {
		log.Warn().Msg("JWT_ACCESS_SECRET not set, running without authentication")
	}

	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment, log)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting coverage service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
