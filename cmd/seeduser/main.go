// seeduser creates the owner account, or resets its password and
// reactivates it when it already exists.
//
//	go run ./cmd/seeduser -username owner -password s3cret
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/xZoluGames/InventarioApp-sub001/internal/config"
	"github.com/xZoluGames/InventarioApp-sub001/internal/infra"
	"github.com/xZoluGames/InventarioApp-sub001/internal/model"
	"github.com/xZoluGames/InventarioApp-sub001/internal/repository"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	username := flag.String("username", cfg.OwnerUsername, "owner username")
	password := flag.String("password", cfg.OwnerPassword, "owner password (min 6 chars)")
	flag.Parse()
	if *username == "" || len(*password) < 6 {
		log.Fatal().Msg("username and a password of at least 6 characters are required")
	}

	db, err := infra.NewDatabase(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer infra.CloseDatabase(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	// FindByUsername skips inactive accounts; a deactivated owner is revived.
	u := &model.User{}
	err = db.WithContext(ctx).Where("username = ?", *username).First(u).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = &model.User{
			Username:     *username,
			Name:         *username,
			PasswordHash: string(hash),
			Role:         session.RoleOwner,
			Active:       true,
		}
		err = users.Create(ctx, u)
	case err == nil:
		u.PasswordHash = string(hash)
		u.Role = session.RoleOwner
		u.Active = true
		err = users.Update(ctx, u)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to save owner")
	}
	log.Info().Str("username", u.Username).Str("id", u.ID.String()).Msg("owner account ready")
}
