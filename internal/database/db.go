package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is nil until ConnectDB succeeds. Callers that can live without
// persistence (the game server) check for nil and degrade.
var DB *pgxpool.Pool

// ConnectDB builds the global pgx pool from POSTGRES_USER, POSTGRES_PASSWORD,
// PG_HOST, PG_PORT and PG_DATABASE and verifies connectivity. DB is left nil
// on failure.
func ConnectDB() error {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		os.Getenv("PG_DATABASE"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return fmt.Errorf("unable to create pgx pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("db ping error: %w", err)
	}

	DB = pool
	log.Printf("Connected to database at %s:%s", os.Getenv("PG_HOST"), os.Getenv("PG_PORT"))
	return nil
}
