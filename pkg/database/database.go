// Package database opens the relational connections the policy,
// group and user stores run on.
package database

import (
	"strings"

	"github.com/gocraft/dbr/v2"
	"github.com/jackc/pgx"
	"github.com/jackc/pgx/log/zapadapter"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	// registering the driver dbr connects through
	_ "github.com/go-sql-driver/mysql"
)

// MySQLConnection opens a dbr connection pool over a given DSN
func MySQLConnection(dsn string) (*dbr.Connection, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("mysql dsn is empty")
	}

	conn, err := dbr.Open("mysql", dsn, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open mysql connection")
	}

	if err := conn.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping mysql")
	}

	return conn, nil
}

// PostgreSQLConnection opens a pgx connection over a given URI,
// routing driver logs through a given logger
func PostgreSQLConnection(uri string, logger *zap.Logger) (*pgx.Conn, error) {
	conf, err := pgx.ParseURI(strings.TrimSpace(uri))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse postgres uri")
	}

	if logger != nil {
		conf.Logger = zapadapter.NewLogger(logger)
		conf.LogLevel = pgx.LogLevelWarn
	}

	conn, err := pgx.Connect(conf)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}

	return conn, nil
}
