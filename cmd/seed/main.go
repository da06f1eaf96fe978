package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Kushagra128/LangBridge/internal/config"
	"github.com/Kushagra128/LangBridge/internal/models"
	"github.com/Kushagra128/LangBridge/internal/store"
)

type seedUser struct {
	fullName string
	portrait string
	language string
}

var seedUsers = []seedUser{
	{"Emma Thompson", "women/1", "en"},
	{"Olivia Miller", "women/2", "es"},
	{"Sophia Davis", "women/3", "fr"},
	{"Ava Wilson", "women/4", "de"},
	{"Isabella Brown", "women/5", "it"},
	{"Mia Johnson", "women/6", "pt"},
	{"Charlotte Williams", "women/7", "ru"},
	{"Amelia Garcia", "women/8", "zh"},
	{"James Anderson", "men/1", "ja"},
	{"William Clark", "men/2", "ar"},
	{"Benjamin Taylor", "men/3", "hi"},
	{"Lucas Moore", "men/4", "gu"},
	{"Henry Jackson", "men/5", "bn"},
	{"Alexander Martin", "men/6", "ta"},
	{"Daniel Rodriguez", "men/7", "te"},
}

func main() {
	cfg := config.Load()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store failed")
	}
	defer db.Close()

	created := 0
	for _, su := range seedUsers {
		email := strings.ReplaceAll(strings.ToLower(su.fullName), " ", ".") + "@example.com"
		user := &models.User{
			// stable IDs so a re-run finds the same users
			ID:           uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
			FullName:     su.fullName,
			Email:        email,
			ProfileImage: "https://randomuser.me/api/portraits/" + su.portrait + ".jpg",
			Language:     su.language,
		}

		if _, err := db.GetUser(ctx, user.ID); err == nil {
			logger.Info().Str("email", email).Msg("user exists, skipping")
			continue
		}
		if err := db.CreateUser(ctx, user); err != nil {
			logger.Fatal().Err(err).Str("email", email).Msg("create user failed")
		}
		created++
		logger.Info().Str("user_id", user.ID).Str("language", user.Language).Msg("seeded " + user.FullName)
	}

	logger.Info().Int("created", created).Int("total", len(seedUsers)).Msg("database seeded")
}

func open(ctx context.Context, cfg *config.Config) (store.DataStore, error) {
	switch {
	case cfg.DatabaseURL != "":
		if err := store.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, err
		}
		return store.NewPostgresStore(ctx, cfg.DatabaseURL)
	case cfg.SQLitePath != "":
		return store.NewSQLiteStore(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("set DATABASE_URL or SQLITE_PATH to seed")
	}
}
