package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go-pos-inventory/internal/config"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"
	"go-pos-inventory/pkg/database"
	"go-pos-inventory/pkg/jwt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	username := flag.String("username", "admin", "account to reset")
	password := flag.String("password", "", "new password (min 6 characters)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on system env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *password == "" {
		log.Fatal().Msg("-password is required")
	}

	// 2. Setup Database
	db, err := database.ConnectDB(cfg.DSN(), cfg.DBLogLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// 3. Reset through the auth service so existing sessions are revoked
	auth := service.NewAuthService(repository.NewUserRepo(db), jwt.NewIssuer(cfg.JWTSecret, cfg.JWTTTL()), false)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := auth.ResetPassword(ctx, *username, *password); err != nil {
		log.Fatal().Err(err).Str("username", *username).Msg("password reset failed")
	}
	log.Info().Str("username", *username).Msg("password reset, existing sessions revoked")
}
