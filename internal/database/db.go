package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Pool sizing for a single-binary personal service: a handful of
// concurrent note reads plus the background purge loop is the whole
// load, so a small pool avoids holding idle server connections.
const (
	maxOpenConns = 10
	maxIdleConns = 5
	connLifetime = 30 * time.Minute
)

// Open builds the MySQL pool and verifies it with a ping before the
// schema bootstrap runs. parseTime maps DATETIME columns onto time.Time
// and loc=UTC keeps note timestamps in the same zone the age filters
// compute their windows in.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}
