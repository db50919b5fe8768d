package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gruzdev-dev/codex-recipes/core/domain"
)

var ErrOpenDatabase = errors.New("cannot open sqlite database")

type Store struct {
	db     *gorm.DB
	schema *domain.Schema
	now    func() time.Time
}

// Open connects to the sqlite file at path with foreign keys enforced.
func Open(path string, schema *domain.Schema) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logrus.WithError(err).Error("cannot open GORM database")
		return nil, fmt.Errorf("%w: %v", ErrOpenDatabase, err)
	}
	return &Store{
		db:     db,
		schema: schema,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Migrate creates missing tables for every entity and join of the schema.
func (s *Store) Migrate(ctx context.Context) error {
	for _, e := range s.schema.Entities() {
		if err := s.db.WithContext(ctx).Exec(createTable(e)).Error; err != nil {
			return fmt.Errorf("%s migration failed: %w", e.Name, err)
		}
	}
	for _, j := range s.schema.Joins() {
		if err := s.db.WithContext(ctx).Exec(createJoinTable(s.schema, j)).Error; err != nil {
			return fmt.Errorf("%s migration failed: %w", j.Name, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Create(ctx context.Context, entity *domain.Entity, data domain.Record) (domain.Record, error) {
	row, err := entity.Prepare(data, s.now())
	if err != nil {
		return nil, err
	}

	values := entity.ToRow(row)
	for _, c := range entity.ColumnList() {
		if _, ok := values[c]; !ok {
			values[c] = nil
		}
	}

	result := s.db.WithContext(ctx).Table(entity.Table).Create(values)
	if result.Error != nil {
		return nil, mapError(result.Error)
	}
	return s.FindByID(ctx, entity, row.ID())
}

func (s *Store) FindByID(ctx context.Context, entity *domain.Entity, id string) (domain.Record, error) {
	for rec, err := range s.query(ctx, entity, map[string]string{"id": id}) {
		if err != nil {
			return nil, err
		}
		return rec, nil
	}
	return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, entity.Name, id)
}

func (s *Store) FindAll(ctx context.Context, entity *domain.Entity, filter domain.Filter) iter.Seq2[domain.Record, error] {
	return s.query(ctx, entity, entity.Columns(filter))
}

func (s *Store) Update(ctx context.Context, entity *domain.Entity, id string, data domain.Record) (domain.Record, error) {
	changes, err := entity.Assign(domain.Record{}, data)
	if err != nil {
		return nil, err
	}
	values := entity.ToRow(changes)
	values["updated_at"] = s.now()

	result := s.db.WithContext(ctx).Table(entity.Table).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return nil, mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, entity.Name, id)
	}
	return s.FindByID(ctx, entity, id)
}

func (s *Store) Remove(ctx context.Context, entity *domain.Entity, id string) (domain.Record, error) {
	rec, err := s.FindByID(ctx, entity, id)
	if err != nil {
		return nil, err
	}
	result := s.db.WithContext(ctx).Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", quote(entity.Table)), id)
	if result.Error != nil {
		return nil, mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: %s %s", domain.ErrNotFound, entity.Name, id)
	}
	return rec, nil
}

func (s *Store) HasPair(ctx context.Context, join *domain.Join, leftID, rightID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Table(join.Table).
		Where(fmt.Sprintf("%s = ? AND %s = ?", quote(join.LeftColumn), quote(join.RightColumn)), leftID, rightID).
		Count(&count).Error
	if err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

func (s *Store) AddPair(ctx context.Context, join *domain.Join, leftID, rightID string) error {
	query := fmt.Sprintf("INSERT OR IGNORE INTO %s (%s, %s, created_at) VALUES (?, ?, ?)",
		quote(join.Table), quote(join.LeftColumn), quote(join.RightColumn))
	if err := s.db.WithContext(ctx).Exec(query, leftID, rightID, s.now()).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Store) RemovePair(ctx context.Context, join *domain.Join, leftID, rightID string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s = ?",
		quote(join.Table), quote(join.LeftColumn), quote(join.RightColumn))
	if err := s.db.WithContext(ctx).Exec(query, leftID, rightID).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (s *Store) Pairs(ctx context.Context, join *domain.Join, side domain.JoinSide, id string) ([]string, error) {
	match, other := join.LeftColumn, join.RightColumn
	if side == domain.RightSide {
		match, other = other, match
	}
	ids := []string{}
	err := s.db.WithContext(ctx).Table(join.Table).
		Where(fmt.Sprintf("%s = ?", quote(match)), id).
		Order("created_at").
		Pluck(other, &ids).Error
	if err != nil {
		return nil, mapError(err)
	}
	return ids, nil
}

// query streams rows matching column equality conditions.
func (s *Store) query(ctx context.Context, entity *domain.Entity, conds map[string]string) iter.Seq2[domain.Record, error] {
	return func(yield func(domain.Record, error) bool) {
		tx := s.db.WithContext(ctx).Table(entity.Table).Select(entity.ColumnList())
		cols := make([]string, 0, len(conds))
		for c := range conds {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		for _, c := range cols {
			tx = tx.Where(fmt.Sprintf("%s = ?", quote(c)), conds[c])
		}

		rows, err := tx.Order("created_at, id").Rows()
		if err != nil {
			yield(nil, mapError(err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			values, err := scanRow(rows)
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

func scanRow(rows *sql.Rows) (map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	values := make(map[string]any, len(cols))
	for i, c := range cols {
		if b, ok := raw[i].([]byte); ok {
			values[c] = string(b)
			continue
		}
		values[c] = raw[i]
	}
	return values, nil
}

func mapError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", domain.ErrConstraintViolation, err)
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %v", domain.ErrConstraintViolation, err)
	}
	return err
}

func createTable(e *domain.Entity) string {
	defs := []string{`"id" TEXT PRIMARY KEY`}
	for _, f := range e.Fields {
		def := fmt.Sprintf("%s TEXT", quote(f.Column))
		if f.Required {
			def += " NOT NULL"
		}
		if f.Unique {
			def += " UNIQUE"
		}
		if f.Type == domain.TypeReference {
			onDelete := "SET NULL"
			if f.Required {
				onDelete = "CASCADE"
			}
			def += fmt.Sprintf(" REFERENCES %s (id) ON DELETE %s", quote(domain.ColumnName(f.References)), onDelete)
		}
		defs = append(defs, def)
	}
	defs = append(defs, `"created_at" DATETIME NOT NULL`, `"updated_at" DATETIME NOT NULL`)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(e.Table), strings.Join(defs, ", "))
}

func createJoinTable(schema *domain.Schema, j *domain.Join) string {
	left, _ := schema.Entity(j.Left)
	right, _ := schema.Entity(j.Right)
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s TEXT NOT NULL REFERENCES %s (id) ON DELETE CASCADE, "+
			"%s TEXT NOT NULL REFERENCES %s (id) ON DELETE CASCADE, "+
			`"created_at" DATETIME NOT NULL, PRIMARY KEY (%s, %s))`,
		quote(j.Table),
		quote(j.LeftColumn), quote(left.Table),
		quote(j.RightColumn), quote(right.Table),
		quote(j.LeftColumn), quote(j.RightColumn),
	)
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
