// Command seed upserts the embedded question catalogue into Postgres.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/vitoroliveiraifsp/Mangues-sub000/domain"
	"github.com/vitoroliveiraifsp/Mangues-sub000/logger"
	"github.com/vitoroliveiraifsp/Mangues-sub000/migrations"
	"github.com/vitoroliveiraifsp/Mangues-sub000/questions"
	"github.com/vitoroliveiraifsp/Mangues-sub000/storage"
)

type questionStore interface {
	AddQuestion(ctx context.Context, q domain.Question) error
}

func seed(ctx context.Context, store questionStore, qs []domain.Question) (int, error) {
	for i, q := range qs {
		if err := store.AddQuestion(ctx, q); err != nil {
			return i, err
		}
	}
	return len(qs), nil
}

func main() {
	pgurl := flag.String("postgres", os.Getenv("POSTGRES_URL"), "postgres connection url")
	flag.Parse()

	l := logger.Setup(zerolog.InfoLevel, true)
	if *pgurl == "" {
		l.Fatal().Msg("missing postgres url")
	}

	if err := migrations.Migrate(*pgurl); err != nil {
		l.Fatal().Err(err).Msg("migrations failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, err := storage.NewPostgresRepo(ctx, *pgurl)
	if err != nil {
		l.Fatal().Err(err).Msg("connect")
	}
	defer repo.Close()

	catalog, err := questions.Load()
	if err != nil {
		l.Fatal().Err(err).Msg("load catalogue")
	}

	n, err := seed(ctx, repo, catalog.All())
	if err != nil {
		l.Error().Err(err).Int("seeded", n).Msg("seed failed")
		return
	}
	l.Info().Int("questions", n).Msg("catalogue seeded")
}
