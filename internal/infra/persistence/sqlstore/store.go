// Package sqlstore implements domain.Gateway on top of database/sql for
// every SQL dialect the service supports. The dialect packages (sqlite,
// postgres) open the connection, run migrations and hand the handle here.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"

	"ideospace/pkg/domain"
)

var _ domain.Gateway = (*Store)(nil)

// Dialect names a supported SQL backend. Its value doubles as the
// migrations directory name.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

func (d Dialect) flavor() sqlbuilder.Flavor {
	if d == DialectPostgres {
		return sqlbuilder.PostgreSQL
	}
	return sqlbuilder.SQLite
}

const (
	tableIdeologies = "ideologies"
	tableParties    = "parties"
	tableVoters     = "voters"
)

type ideologyRecord struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
	X    int    `db:"center_x"`
	Y    int    `db:"center_y"`
}

type partyRecord struct {
	ID         int           `db:"id"`
	Name       string        `db:"name"`
	IdeologyID sql.NullInt64 `db:"ideology_id"`
	X          int           `db:"ideology_x"`
	Y          int           `db:"ideology_y"`
}

type voterRecord struct {
	ID         int           `db:"id"`
	Name       string        `db:"name"`
	IdeologyID sql.NullInt64 `db:"ideology_id"`
	PartyID    sql.NullInt64 `db:"party_id"`
	X          int           `db:"ideology_x"`
	Y          int           `db:"ideology_y"`
}

// Store is a domain.Gateway over a migrated SQL database. Every call is a
// single statement, so no explicit transactions are needed.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	flavor  sqlbuilder.Flavor
	closed  atomic.Bool
}

// New wraps an open, migrated database handle.
func New(db *sqlx.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect, flavor: dialect.flavor()}
}

// DB exposes the underlying handle for tests and diagnostics.
func (s *Store) DB() *sqlx.DB { return s.db }

// Dialect reports which backend the store talks to.
func (s *Store) Dialect() Dialect { return s.dialect }

// Close releases the connection pool. Later calls fail with
// domain.ErrPersistenceUnavailable.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ready(op string) error {
	if s.closed.Load() {
		return fmt.Errorf("%s: %w: store closed", op, domain.ErrPersistenceUnavailable)
	}
	return nil
}

// ListIdeologies returns every ideology ordered by id.
func (s *Store) ListIdeologies(ctx context.Context) ([]domain.Ideology, error) {
	const op = "list ideologies"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	sb := s.flavor.NewSelectBuilder()
	sb.Select("id", "name", "center_x", "center_y").From(tableIdeologies).OrderBy("id").Asc()
	query, args := sb.Build()

	var records []ideologyRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, classify(op, err, false)
	}
	out := make([]domain.Ideology, 0, len(records))
	for _, r := range records {
		out = append(out, domain.Ideology{ID: r.ID, Name: r.Name, X: r.X, Y: r.Y})
	}
	return out, nil
}

// InsertIdeology stores a reference point and returns its generated id.
func (s *Store) InsertIdeology(ctx context.Context, ideology domain.Ideology) (int, error) {
	const op = "insert ideology"
	if err := s.ready(op); err != nil {
		return domain.NoID, err
	}
	ib := s.flavor.NewInsertBuilder()
	ib.InsertInto(tableIdeologies).Cols("name", "center_x", "center_y").Values(ideology.Name, ideology.X, ideology.Y)
	ib.SQL("RETURNING id")
	return s.insert(ctx, op, ib)
}

// DeleteIdeology removes an ideology. The foreign keys clear party and
// voter links to it. It is not part of domain.Gateway; ideologies are
// reference data the running service never deletes.
func (s *Store) DeleteIdeology(ctx context.Context, id int) error {
	const op = "delete ideology"
	if err := s.ready(op); err != nil {
		return err
	}
	del := s.flavor.NewDeleteBuilder()
	del.DeleteFrom(tableIdeologies).Where(del.Equal("id", id))
	query, args := del.Build()
	return s.exec(ctx, op, domain.KindIdeology, id, query, args)
}

// ListParties returns every party row ordered by id.
func (s *Store) ListParties(ctx context.Context) ([]domain.PartyRow, error) {
	const op = "list parties"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	sb := s.flavor.NewSelectBuilder()
	sb.Select("id", "name", "ideology_id", "ideology_x", "ideology_y").From(tableParties).OrderBy("id").Asc()
	query, args := sb.Build()

	var records []partyRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, classify(op, err, false)
	}
	out := make([]domain.PartyRow, 0, len(records))
	for _, r := range records {
		out = append(out, domain.PartyRow{
			ID:         r.ID,
			Name:       r.Name,
			IdeologyID: fromNull(r.IdeologyID),
			X:          r.X,
			Y:          r.Y,
		})
	}
	return out, nil
}

// InsertParty stores a party and returns its generated id.
func (s *Store) InsertParty(ctx context.Context, row domain.PartyRow) (int, error) {
	const op = "insert party"
	if err := s.ready(op); err != nil {
		return domain.NoID, err
	}
	ib := s.flavor.NewInsertBuilder()
	ib.InsertInto(tableParties).
		Cols("name", "ideology_id", "ideology_x", "ideology_y").
		Values(row.Name, toNull(row.IdeologyID), row.X, row.Y)
	ib.SQL("RETURNING id")
	return s.insert(ctx, op, ib)
}

// UpdateParty overwrites every column of an existing party.
func (s *Store) UpdateParty(ctx context.Context, row domain.PartyRow) error {
	const op = "update party"
	if err := s.ready(op); err != nil {
		return err
	}
	ub := s.flavor.NewUpdateBuilder()
	ub.Update(tableParties).Set(
		ub.Assign("name", row.Name),
		ub.Assign("ideology_id", toNull(row.IdeologyID)),
		ub.Assign("ideology_x", row.X),
		ub.Assign("ideology_y", row.Y),
	).Where(ub.Equal("id", row.ID))
	query, args := ub.Build()
	return s.exec(ctx, op, domain.KindParty, row.ID, query, args)
}

// DeleteParty removes a party. The foreign key clears voters' party links.
func (s *Store) DeleteParty(ctx context.Context, id int) error {
	const op = "delete party"
	if err := s.ready(op); err != nil {
		return err
	}
	del := s.flavor.NewDeleteBuilder()
	del.DeleteFrom(tableParties).Where(del.Equal("id", id))
	query, args := del.Build()
	return s.exec(ctx, op, domain.KindParty, id, query, args)
}

// ListVoters returns every voter row ordered by id.
func (s *Store) ListVoters(ctx context.Context) ([]domain.VoterRow, error) {
	const op = "list voters"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	sb := s.flavor.NewSelectBuilder()
	sb.Select("id", "name", "ideology_id", "party_id", "ideology_x", "ideology_y").From(tableVoters).OrderBy("id").Asc()
	query, args := sb.Build()

	var records []voterRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, classify(op, err, false)
	}
	out := make([]domain.VoterRow, 0, len(records))
	for _, r := range records {
		out = append(out, domain.VoterRow{
			ID:         r.ID,
			Name:       r.Name,
			IdeologyID: fromNull(r.IdeologyID),
			PartyID:    fromNull(r.PartyID),
			X:          r.X,
			Y:          r.Y,
		})
	}
	return out, nil
}

// InsertVoter stores a voter and returns its generated id.
func (s *Store) InsertVoter(ctx context.Context, row domain.VoterRow) (int, error) {
	const op = "insert voter"
	if err := s.ready(op); err != nil {
		return domain.NoID, err
	}
	ib := s.flavor.NewInsertBuilder()
	ib.InsertInto(tableVoters).
		Cols("name", "ideology_id", "party_id", "ideology_x", "ideology_y").
		Values(row.Name, toNull(row.IdeologyID), toNull(row.PartyID), row.X, row.Y)
	ib.SQL("RETURNING id")
	return s.insert(ctx, op, ib)
}

// UpdateVoter overwrites every column of an existing voter.
func (s *Store) UpdateVoter(ctx context.Context, row domain.VoterRow) error {
	const op = "update voter"
	if err := s.ready(op); err != nil {
		return err
	}
	ub := s.flavor.NewUpdateBuilder()
	ub.Update(tableVoters).Set(
		ub.Assign("name", row.Name),
		ub.Assign("ideology_id", toNull(row.IdeologyID)),
		ub.Assign("party_id", toNull(row.PartyID)),
		ub.Assign("ideology_x", row.X),
		ub.Assign("ideology_y", row.Y),
	).Where(ub.Equal("id", row.ID))
	query, args := ub.Build()
	return s.exec(ctx, op, domain.KindVoter, row.ID, query, args)
}

// DeleteVoter removes a voter.
func (s *Store) DeleteVoter(ctx context.Context, id int) error {
	const op = "delete voter"
	if err := s.ready(op); err != nil {
		return err
	}
	del := s.flavor.NewDeleteBuilder()
	del.DeleteFrom(tableVoters).Where(del.Equal("id", id))
	query, args := del.Build()
	return s.exec(ctx, op, domain.KindVoter, id, query, args)
}

func (s *Store) insert(ctx context.Context, op string, ib *sqlbuilder.InsertBuilder) (int, error) {
	query, args := ib.Build()
	var id int
	if err := s.db.GetContext(ctx, &id, query, args...); err != nil {
		return domain.NoID, classify(op, err, true)
	}
	return id, nil
}

// exec runs a single-row write and reports a missing row as a failed write.
func (s *Store) exec(ctx context.Context, op string, kind domain.EntityKind, id int, query string, args []any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(op, err, true)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, err, true)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrWriteFailed, domain.NotFoundError{Kind: kind, ID: id})
	}
	return nil
}

func toNull(id int) sql.NullInt64 {
	if id == domain.NoID {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(id), Valid: true}
}

func fromNull(v sql.NullInt64) int {
	if !v.Valid {
		return domain.NoID
	}
	return int(v.Int64)
}
