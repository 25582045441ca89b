package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/zarenu/zare-api/internal/config"
	"github.com/zarenu/zare-api/internal/database"
	"github.com/zarenu/zare-api/internal/logger"
	"github.com/zarenu/zare-api/internal/models"
	"github.com/zarenu/zare-api/internal/services"
)

func main() {
	username := flag.String("username", "", "username of the account to promote")
	email := flag.String("email", "", "email of the account to promote")
	password := flag.String("password", "", "optional local password to set")
	revoke := flag.Bool("revoke", false, "remove staff access instead of granting it")
	flag.Parse()

	if (*username == "") == (*email == "") {
		fmt.Println("Usage: promote-staff (-username <name> | -email <address>) [-password <pw>] [-revoke]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(os.Getenv("ENV"))
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New(cfg.Env)

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	users := services.NewUserService(db)

	var user *models.User
	if *username != "" {
		user, err = users.GetByUsername(ctx, *username)
	} else {
		user, err = users.GetByEmail(ctx, *email)
	}
	if errors.Is(err, services.ErrUserNotFound) {
		log.Fatal().Str("username", *username).Str("email", *email).Msg("no such user")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to look up user")
	}

	if err := users.SetStaff(ctx, user.ID, !*revoke); err != nil {
		log.Fatal().Err(err).Msg("failed to update staff flag")
	}

	if *password != "" {
		if err := users.SetPassword(ctx, user.ID, *password); err != nil {
			log.Fatal().Err(err).Msg("failed to set password")
		}
	}

	if *revoke {
		fmt.Printf("Removed staff access from %s\n", user.Username)
		return
	}
	fmt.Printf("Successfully promoted %s to staff\n", user.Username)
}
