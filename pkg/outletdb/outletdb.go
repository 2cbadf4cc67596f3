// Package outletdb answers outlet lookups from a Postgres outlets table.
package outletdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type Config struct {
	DSN        string        `split_words:"true"`
	MaxResults int           `split_words:"true" default:"50"`
	ListLimit  int           `split_words:"true" default:"50"`
	Timeout    time.Duration `split_words:"true" default:"5s"`
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.DSN) != ""
}

// FitNarrowingCap raises MaxResults past a reply's narrowing cap so a
// keyword search can return enough rows to trigger the narrowing prompt.
func (c Config) FitNarrowingCap(narrowingCap int) Config {
	if narrowingCap > 0 && c.MaxResults <= narrowingCap {
		c.MaxResults = narrowingCap + 1
	}
	return c
}

type outletRow struct {
	bun.BaseModel `bun:"table:outlets"`

	ID       int64    `bun:"id,pk"`
	Name     string   `bun:"name"`
	Location string   `bun:"location"`
	District *string  `bun:"district"`
	Hours    *string  `bun:"hours"`
	Services *string  `bun:"services"`
	Lat      *float64 `bun:"lat"`
	Lon      *float64 `bun:"lon"`
}

func (r outletRow) outlet() contractx.Outlet {
	return contractx.Outlet{
		ID:       r.ID,
		Name:     r.Name,
		Location: r.Location,
		District: deref(r.District),
		Hours:    deref(r.Hours),
		Services: deref(r.Services),
		Lat:      r.Lat,
		Lon:      r.Lon,
	}
}

// Finder implements contract.OutletFinder over bun.
type Finder struct {
	db         *bun.DB
	maxResults int
	listLimit  int
}

var _ contractx.OutletFinder = (*Finder)(nil)

// Open connects lazily; the first query dials the database.
func Open(cfg Config) (*Finder, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("outlet db dsn is required")
	}

	opts := []pgdriver.Option{pgdriver.WithDSN(dsn)}
	if cfg.Timeout > 0 {
		opts = append(opts, pgdriver.WithTimeout(cfg.Timeout))
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(opts...))
	return NewFinder(bun.NewDB(sqldb, pgdialect.New()), cfg), nil
}

func NewFinder(db *bun.DB, cfg Config) *Finder {
	f := &Finder{db: db, maxResults: cfg.MaxResults, listLimit: cfg.ListLimit}
	if f.maxResults <= 0 {
		f.maxResults = 50
	}
	if f.listLimit <= 0 {
		f.listLimit = 50
	}
	return f
}

func (f *Finder) Close() error {
	return f.db.Close()
}

func (f *Finder) FindOutlets(ctx context.Context, req contractx.OutletQueryRequest) (contractx.OutletQueryResponse, error) {
	var rows []outletRow
	q := f.selectQuery(&rows, planSearch(req.NaturalLanguageQuery))
	generated := q.String()

	if err := q.Scan(ctx); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return contractx.OutletQueryResponse{}, fmt.Errorf("query outlets: %w", err)
	}

	out := contractx.OutletQueryResponse{
		Results:        make([]contractx.Outlet, 0, len(rows)),
		GeneratedQuery: generated,
	}
	for _, r := range rows {
		out.Results = append(out.Results, r.outlet())
	}
	log.Debug().Str("query", req.NaturalLanguageQuery).Int("results", len(out.Results)).Msg("outlet lookup")
	return out, nil
}

func (f *Finder) selectQuery(rows *[]outletRow, plan searchPlan) *bun.SelectQuery {
	q := f.db.NewSelect().Model(rows).OrderExpr("id ASC")
	if plan.All {
		return q.Limit(f.listLimit)
	}

	q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		for _, col := range plan.Columns {
			for _, term := range plan.Terms {
				q = q.WhereOr("? ILIKE ?", bun.Ident(col), "%"+escapeLike(term)+"%")
			}
		}
		return q
	})
	return q.Limit(f.maxResults)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
