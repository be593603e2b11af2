/*
Package database reads the lexical tables the metrics depend on: word
frequencies and the DELAF dictionary of inflected forms.
*/
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

// ErrInvalidOptions is returned by Open and Validate for unusable connection options.
var ErrInvalidOptions = errors.New("invalid database options")

// Options configure the MySQL connection.
type Options struct {
	User         string        `yaml:"user" mapstructure:"user"`
	Password     string        `yaml:"password" mapstructure:"password"`
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	DBName       string        `yaml:"name" mapstructure:"name"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxOpenConns int           `yaml:"max_open_conns" mapstructure:"max_open_conns"`
}

// DefaultOptions targets a local cohmetrix_pt_BR database.
func DefaultOptions() Options {
	return Options{
		User:         "cohmetrix",
		Password:     "coh-metrix",
		Host:         "localhost",
		Port:         3306,
		DBName:       "cohmetrix_pt_BR",
		Timeout:      5 * time.Second,
		MaxOpenConns: 8,
	}
}

func (o Options) Validate() error {
	switch {
	case o.Host == "":
		return fmt.Errorf("%w: host is required", ErrInvalidOptions)
	case o.Port <= 0 || o.Port > 65535:
		return fmt.Errorf("%w: port %d out of range", ErrInvalidOptions, o.Port)
	case o.DBName == "":
		return fmt.Errorf("%w: database name is required", ErrInvalidOptions)
	case o.MaxOpenConns < 0:
		return fmt.Errorf("%w: max_open_conns must be >= 0", ErrInvalidOptions)
	}
	return nil
}

// DSN renders the options as a go-sql-driver/mysql data source name.
func (o Options) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = o.User
	cfg.Passwd = o.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
	cfg.DBName = o.DBName
	cfg.Timeout = o.Timeout
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// Frequency is one row of the frequencies table.
type Frequency struct {
	Word      string
	Freq      int
	FreqPerc  float64
	Texts     int
	TextsPerc float64
}

// DelafWord is one entry of the DELAF dictionary.
type DelafWord struct {
	Word  string
	Lemma string
	POS   string
	Morf  string
}

// Store is what hooks need from the database. Lookups that find nothing
// return (nil, nil).
type Store interface {
	Frequency(ctx context.Context, word string) (*Frequency, error)
	DelafWord(ctx context.Context, word, pos string) (*DelafWord, error)
	Close() error
}

// Helper is the MySQL-backed Store.
type Helper struct {
	db *sql.DB
}

var _ Store = (*Helper)(nil)

// Open connects to MySQL and checks the connection.
func Open(ctx context.Context, opts Options) (*Helper, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", opts.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s:%d/%s: %w", opts.Host, opts.Port, opts.DBName, err)
	}
	return NewHelper(db), nil
}

// NewHelper wraps an already opened handle.
func NewHelper(db *sql.DB) *Helper {
	return &Helper{db: db}
}

const frequencyQuery = `SELECT word, freq, freq_perc, texts, texts_perc FROM frequencies WHERE word = ? LIMIT 1`

func (h *Helper) Frequency(ctx context.Context, word string) (*Frequency, error) {
	var f Frequency
	err := h.db.QueryRowContext(ctx, frequencyQuery, word).
		Scan(&f.Word, &f.Freq, &f.FreqPerc, &f.Texts, &f.TextsPerc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("frequency of %q: %w", word, err)
	}
	return &f, nil
}

const (
	delafQuery      = `SELECT word, lemma, pos, morf FROM delaf WHERE word = ? LIMIT 1`
	delafQueryByPOS = `SELECT word, lemma, pos, morf FROM delaf WHERE word = ? AND pos = ? LIMIT 1`
)

// DelafWord looks word up in DELAF. An empty pos matches any part of speech.
func (h *Helper) DelafWord(ctx context.Context, word, pos string) (*DelafWord, error) {
	var row *sql.Row
	if pos == "" {
		row = h.db.QueryRowContext(ctx, delafQuery, word)
	} else {
		row = h.db.QueryRowContext(ctx, delafQueryByPOS, word, pos)
	}

	var d DelafWord
	err := row.Scan(&d.Word, &d.Lemma, &d.POS, &d.Morf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delaf entry for %q: %w", word, err)
	}
	return &d, nil
}

func (h *Helper) Close() error {
	return h.db.Close()
}
