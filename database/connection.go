// Package database provides the Postgres connection for the pattern
// store. The raw connection is opened through lib/pq with an explicit
// pool configuration, then handed to GORM for the repository layer.
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database holds the GORM handle and the underlying sql.DB.
type Database struct {
	db   *gorm.DB
	conn *sql.DB
}

// Connect establishes the database connection and verifies it with a
// ping.
func Connect(host, port, dbname, user, password string) (*Database, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize ORM: %w", err)
	}

	log.Println("✅ Database connection established")
	return &Database{db: db, conn: conn}, nil
}

// DB returns the GORM handle for repository use.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// Ping checks if the database connection is alive.
func (d *Database) Ping() error {
	return d.conn.Ping()
}

// Close closes the database connection.
func (d *Database) Close() error {
	if d.conn != nil {
		log.Println("📡 Closing database connection...")
		return d.conn.Close()
	}
	return nil
}
