package resp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erpsync/ebsconn/internal/diag"
	"github.com/erpsync/ebsconn/internal/merge"
	"github.com/erpsync/ebsconn/internal/model"
	"github.com/erpsync/ebsconn/internal/store"
)

// ErrNotFound is returned when the requested responsibility does not exist.
var ErrNotFound = errors.New("responsibility not found")

// Operations are standalone lookups that each own the connection they are
// given: success commits it, failure rolls it back.
type Operations struct {
	cfg Config
	log *slog.Logger
}

// NewOperations creates Operations. A nil logger discards output.
func NewOperations(cfg Config, log *slog.Logger) *Operations {
	return &Operations{cfg: cfg, log: diag.OrDiscard(log)}
}

// UserResponsibilities returns the formatted responsibilities of user for
// kind, merged across the kind's views.
func (o *Operations) UserResponsibilities(ctx context.Context, conn store.Conn, user string, kind model.Kind, activeOnly bool) ([]string, error) {
	views, err := ViewsFor(kind, o.cfg.NewViews)
	if err != nil {
		if rerr := conn.Rollback(); rerr != nil {
			o.log.Error("rollback failed", "op", "user responsibilities", "err", rerr)
		}
		return nil, err
	}

	b := merge.New(nil)
	err = func() error {
		if err := b.AddAttribute(string(kind), nil); err != nil {
			return err
		}
		for _, view := range views {
			values, err := userResponsibilities(ctx, conn, o.cfg.Dialect, view, user, activeOnly)
			if err != nil {
				return fmt.Errorf("%s: %w", view, err)
			}
			if err := b.AddAttribute(string(kind), values); err != nil {
				return err
			}
		}
		return nil
	}()
	if err := store.Finish(conn, o.log, "user responsibilities", err); err != nil {
		return nil, err
	}

	attrs, err := b.Build()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(attrs[0].Values))
	for _, v := range attrs[0].Values {
		out = append(out, v.(string))
	}
	return out, nil
}

// Auditor resolves one responsibility with its menus, functions and forms.
// A nil attrs returns every attribute.
func (o *Operations) Auditor(ctx context.Context, conn store.Conn, respName string, attrs []string) (model.Entity, error) {
	src := &AuditorSource{NameSource{cfg: o.cfg}}

	var interest []string
	if attrs != nil {
		interest = append([]string{model.AttrName, model.AttrUID}, attrs...)
	}
	b := merge.New(interest)

	found := false
	err := func() error {
		sql, args := src.Base(nil, Options{ID: respName})
		rows, err := queryAll(ctx, conn, sql, args...)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		found = true
		// Duplicate names across applications merge into one entity.
		for _, row := range rows {
			if _, _, err := src.Assemble(row, responsibilityColumns, b); err != nil {
				return err
			}
		}
		return src.Detail(ctx, conn, respName, Options{}, b)
	}()
	if err := store.Finish(conn, o.log, "auditor responsibility", err); err != nil {
		return model.Entity{}, err
	}
	if !found {
		return model.Entity{}, fmt.Errorf("%q: %w", respName, ErrNotFound)
	}

	built, err := b.Build()
	if err != nil {
		return model.Entity{}, err
	}
	uid, name, rest := model.SplitIdentity(built)
	e := model.Entity{Kind: model.KindAuditorResps, UID: uid, Name: name, Attributes: rest}
	if attrs != nil {
		e.Retain(attrs)
	}
	return e, nil
}
