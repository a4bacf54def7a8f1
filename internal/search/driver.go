package search

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/erpsync/ebsconn/internal/connerr"
	"github.com/erpsync/ebsconn/internal/diag"
	"github.com/erpsync/ebsconn/internal/merge"
	"github.com/erpsync/ebsconn/internal/model"
	"github.com/erpsync/ebsconn/internal/query"
	"github.com/erpsync/ebsconn/internal/resp"
	"github.com/erpsync/ebsconn/internal/schema"
	"github.com/erpsync/ebsconn/internal/sqlutil"
	"github.com/erpsync/ebsconn/internal/store"
)

// State is a driver's position in its single search.
type State int

const (
	Idle State = iota
	Translating
	Executing
	Streaming
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Translating:
		return "translating"
	case Executing:
		return "executing"
	case Streaming:
		return "streaming"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled back"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Handler receives each entity. Returning false stops the search.
type Handler func(model.Entity) bool

// Config configures a Driver.
type Config struct {
	// Schema describes the object kinds; nil uses the built-in schema.
	Schema   *schema.Schema
	NewViews bool
	Logger   *slog.Logger
}

// Driver runs exactly one search on a connection it owns. When the search
// ends the connection's transaction is committed or rolled back.
type Driver struct {
	conn   store.Conn
	schema *schema.Schema
	cfg    Config
	log    *slog.Logger

	state    State
	rows     int64
	searchID string
}

// New creates a driver over conn.
func New(conn store.Conn, cfg Config) *Driver {
	sc := cfg.Schema
	if sc == nil {
		sc = schema.Default()
		if !cfg.NewViews {
			sc = sc.ForLegacyViews()
		}
	}
	return &Driver{conn: conn, schema: sc, cfg: cfg, log: diag.OrDiscard(cfg.Logger)}
}

// State returns the driver's current state.
func (d *Driver) State() State { return d.state }

// Rows returns the number of result rows read so far.
func (d *Driver) Rows() int64 { return d.rows }

// SearchID returns the correlation id of the search, once started.
func (d *Driver) SearchID() string { return d.searchID }

// Search streams the entities of kind matching filter to handle.
//
// Entities already handed to handle stay delivered when the search later
// fails; no further entity is delivered after a failure. A failure reading
// the database is returned as a connerr.DataAccessError after the
// transaction is rolled back.
func (d *Driver) Search(ctx context.Context, kind model.Kind, filter query.Filter, opts Options, handle Handler) error {
	if d.state != Idle {
		return connerr.NewInvalidState("driver already ran a search (" + d.state.String() + ")")
	}
	if handle == nil {
		return connerr.NewInvalidState("nil result handler")
	}

	d.state = Translating
	d.searchID = uuid.NewString()
	log := d.log.With("search_id", d.searchID, "kind", string(kind))

	plan, err := Prepare(kind, filter, opts, d.schema, d.cfg.NewViews, d.conn.Dialect())
	if err != nil {
		d.state = RolledBack
		if rerr := d.conn.Rollback(); rerr != nil {
			log.Error("rollback failed", "op", "search", "err", rerr)
		}
		return err
	}
	log.Debug("search planned", "native", plan.Native(), "requested", plan.Requested)
	for _, name := range plan.Unmapped {
		log.Debug("attribute passes through", "attr", name, "err", connerr.ErrSchemaMismatch)
	}

	d.state = Executing
	err = d.stream(ctx, plan, opts, handle, log)
	if ferr := store.Finish(d.conn, log, "search "+string(kind), err); ferr != nil {
		d.state = RolledBack
		return ferr
	}
	d.state = Committed
	return nil
}

// stream runs the plan's base query and delivers entities until the cursor
// is exhausted or the handler stops. The statement and cursor are closed on
// every path. On single-cursor dialects the base rows are read in full and
// the cursor closed before any detail query runs.
func (d *Driver) stream(ctx context.Context, plan *Plan, opts Options, handle Handler, log *slog.Logger) error {
	timer := diag.Start(log, "stream")

	stmt, err := d.conn.Prepare(ctx, plan.SQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	rows, err := stmt.Query(ctx, plan.Args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("read columns: %w", err)
	}

	next := cursor(rows, columns)
	if d.conn.Dialect().SingleCursor {
		buffered, err := drain(rows, columns)
		if err != nil {
			return err
		}
		log.Debug("base rows buffered", "rows", len(buffered))
		next = replay(buffered)
	}

	d.state = Streaming
	scope := resp.Options{ActiveOnly: opts.ActiveOnly, ID: opts.ID}
	var delivered int64
	for {
		row, ok, err := next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		d.rows++

		entity, err := d.assemble(ctx, plan, scope, row, columns)
		if connerr.IsInvalidState(err) {
			log.Warn("skipping row", "row", d.rows, "err", err)
			continue
		}
		if err != nil {
			return err
		}

		if !query.Matches(plan.PostFilter, entity) {
			continue
		}
		entity.Retain(plan.Requested)

		delivered++
		if !handle(entity) {
			log.Debug("handler stopped search", "row", d.rows)
			break
		}
	}

	timer.Finish(delivered, "rows", d.rows)
	return nil
}

// rowFunc yields the next base row; ok is false once rows are exhausted.
type rowFunc func() (row sqlutil.Row, ok bool, err error)

// cursor reads rows straight from the open result set.
func cursor(rows store.Rows, columns []string) rowFunc {
	n := 0
	return func() (sqlutil.Row, bool, error) {
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return nil, false, fmt.Errorf("read rows: %w", err)
			}
			return nil, false, nil
		}
		n++
		row, err := sqlutil.ScanMap(rows, columns)
		if err != nil {
			return nil, false, fmt.Errorf("scan row %d: %w", n, err)
		}
		return row, true, nil
	}
}

// drain reads every remaining row and closes the result set.
func drain(rows store.Rows, columns []string) ([]sqlutil.Row, error) {
	next := cursor(rows, columns)
	var out []sqlutil.Row
	for {
		row, ok, err := next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, row)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("close rows: %w", err)
	}
	return out, nil
}

func replay(buffered []sqlutil.Row) rowFunc {
	return func() (sqlutil.Row, bool, error) {
		if len(buffered) == 0 {
			return nil, false, nil
		}
		row := buffered[0]
		buffered = buffered[1:]
		return row, true, nil
	}
}

// assemble merges one base row and its detail into an entity.
func (d *Driver) assemble(ctx context.Context, plan *Plan, scope resp.Options, row sqlutil.Row, columns []string) (model.Entity, error) {
	b := merge.New(plan.Interest)
	uid, name, err := plan.Source.Assemble(row, columns, b)
	if err != nil {
		return model.Entity{}, err
	}
	if err := plan.Source.Detail(ctx, d.conn, name, scope, b); err != nil {
		return model.Entity{}, err
	}

	attrs, err := b.Build()
	if err != nil {
		return model.Entity{}, err
	}
	_, _, rest := model.SplitIdentity(attrs)
	return model.Entity{Kind: plan.Kind, UID: uid, Name: name, Attributes: rest}, nil
}
