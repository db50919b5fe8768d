package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
)

type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Create(ctx context.Context, entity *domain.Entity, data domain.Record) (domain.Record, error) {
	row, err := entity.Prepare(data, s.now())
	if err != nil {
		return nil, err
	}

	cols := entity.ColumnList()
	values := entity.ToRow(row)
	args := make([]any, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		args[i] = values[c]
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		table(entity), columnList(cols), strings.Join(placeholders, ", "), columnList(cols))

	return s.queryOne(ctx, entity, query, args...)
}

func (s *Store) FindByID(ctx context.Context, entity *domain.Entity, id string) (domain.Record, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, columnList(entity.ColumnList()), table(entity))
	return s.queryOne(ctx, entity, query, id)
}

func (s *Store) FindAll(ctx context.Context, entity *domain.Entity, filter domain.Filter) iter.Seq2[domain.Record, error] {
	return func(yield func(domain.Record, error) bool) {
		var (
			conds []string
			args  []any
		)
		for col, v := range entity.Columns(filter) {
			args = append(args, v)
			conds = append(conds, fmt.Sprintf("%s = $%d", pgx.Identifier{col}.Sanitize(), len(args)))
		}
		query := fmt.Sprintf(`SELECT %s FROM %s`, columnList(entity.ColumnList()), table(entity))
		if len(conds) > 0 {
			query += " WHERE " + strings.Join(conds, " AND ")
		}
		query += " ORDER BY created_at, id"

		rows, err := s.pool.Query(ctx, query, args...)
		if err != nil {
			yield(nil, mapError(err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			values, err := pgx.RowToMap(rows)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(entity.FromRow(values), nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, mapError(err))
		}
	}
}

func (s *Store) Update(ctx context.Context, entity *domain.Entity, id string, data domain.Record) (domain.Record, error) {
	changes, err := entity.Assign(domain.Record{}, data)
	if err != nil {
		return nil, err
	}

	args := []any{id}
	sets := []string{}
	for col, v := range entity.ToRow(changes) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", pgx.Identifier{col}.Sanitize(), len(args)))
	}
	args = append(args, s.now())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1 RETURNING %s`,
		table(entity), strings.Join(sets, ", "), columnList(entity.ColumnList()))

	return s.queryOne(ctx, entity, query, args...)
}

func (s *Store) Remove(ctx context.Context, entity *domain.Entity, id string) (domain.Record, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING %s`, table(entity), columnList(entity.ColumnList()))
	return s.queryOne(ctx, entity, query, id)
}

func (s *Store) HasPair(ctx context.Context, join *domain.Join, leftID, rightID string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		pgx.Identifier{join.Table}.Sanitize(), pgx.Identifier{join.LeftColumn}.Sanitize(), pgx.Identifier{join.RightColumn}.Sanitize())

	var exists bool
	if err := s.pool.QueryRow(ctx, query, leftID, rightID).Scan(&exists); err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

func (s *Store) AddPair(ctx context.Context, join *domain.Join, leftID, rightID string) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		pgx.Identifier{join.Table}.Sanitize(), pgx.Identifier{join.LeftColumn}.Sanitize(), pgx.Identifier{join.RightColumn}.Sanitize())

	if _, err := s.pool.Exec(ctx, query, leftID, rightID); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Store) RemovePair(ctx context.Context, join *domain.Join, leftID, rightID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		pgx.Identifier{join.Table}.Sanitize(), pgx.Identifier{join.LeftColumn}.Sanitize(), pgx.Identifier{join.RightColumn}.Sanitize())

	if _, err := s.pool.Exec(ctx, query, leftID, rightID); err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Store) Pairs(ctx context.Context, join *domain.Join, side domain.JoinSide, id string) ([]string, error) {
	match, other := join.LeftColumn, join.RightColumn
	if side == domain.RightSide {
		match, other = other, match
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY created_at`,
		pgx.Identifier{other}.Sanitize(), pgx.Identifier{join.Table}.Sanitize(), pgx.Identifier{match}.Sanitize())

	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, mapError(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapError(err)
	}
	return ids, nil
}

func (s *Store) queryOne(ctx context.Context, entity *domain.Entity, query string, args ...any) (domain.Record, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	values, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, entity.Name)
		}
		return nil, mapError(err)
	}
	return entity.FromRow(values), nil
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation,
			pgerrcode.NotNullViolation,
			pgerrcode.ForeignKeyViolation,
			pgerrcode.CheckViolation:
			return fmt.Errorf("%w: %s", domain.ErrConstraintViolation, pgErr.Message)
		case pgerrcode.InvalidTextRepresentation:
			return fmt.Errorf("%w: %s", domain.ErrValidation, pgErr.Message)
		}
	}
	return err
}

func table(entity *domain.Entity) string {
	return pgx.Identifier{entity.Table}.Sanitize()
}

func columnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
