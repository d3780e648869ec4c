package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"go.uber.org/zap"
)

// ErrUnreachable wraps every failure to open or ping the server, so callers
// can report it as an outage rather than a bug.
var ErrUnreachable = errors.New("clickhouse unreachable")

const defaultDialTimeout = 30 * time.Second

type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	DialTimeout     time.Duration
	Username        string
	Password        string
	Database        string
}

type Database struct {
	conn   clickhouse.Conn
	logger *zap.Logger
}

// New opens a native-protocol connection pool and pings it once.
func New(ctx context.Context, opts Options, logger *zap.Logger) (*Database, error) {
	host := hostFromDSN(opts.DSN)
	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Protocol: clickhouse.Native,
		Addr:     []string{host},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		DialTimeout:     dialTimeout,
		MaxOpenConns:    opts.MaxOpenConns,
		MaxIdleConns:    opts.MaxIdleConns,
		ConnMaxLifetime: opts.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrUnreachable, host, err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: pinging %s: %w", ErrUnreachable, host, err)
	}

	logger.Info("connected to clickhouse",
		zap.String("addr", host),
		zap.String("database", opts.Database))

	return &Database{
		conn:   conn,
		logger: logger,
	}, nil
}

func hostFromDSN(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "clickhouse://")
	return strings.Split(dsn, "?")[0]
}

func (db *Database) Close() error {
	if err := db.conn.Close(); err != nil {
		db.logger.Warn("failed to close clickhouse connection", zap.Error(err))
		return err
	}
	return nil
}

func (db *Database) Conn() clickhouse.Conn {
	return db.conn
}
