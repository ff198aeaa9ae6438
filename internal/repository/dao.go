package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/incident_assistant/internal/models"
)

// querier - общее подмножество методов пула и транзакции
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// dao - обобщенный доступ к одной таблице.
// columns сопоставляет имя поля фильтра/вставки с колонкой в selectQuery.
type dao[T any] struct {
	db          *pgxpool.Pool
	table       string
	selectQuery string
	idColumn    string
	orderBy     string
	columns     map[string]string
	scan        pgx.RowToFunc[T]
	notFound    error
}

func (d *dao[T]) findByID(ctx context.Context, id int64) (T, error) {
	return d.selectOne(ctx, d.db, d.idColumn+" = $1", id)
}

// findOneOrNone возвращает нулевое значение T, если строка не найдена
func (d *dao[T]) findOneOrNone(ctx context.Context, filter models.Filter) (T, error) {
	var zero T
	where, args, err := buildWhere(filter, d.columns)
	if err != nil {
		return zero, err
	}
	rows, err := d.db.Query(ctx, d.query(where)+" LIMIT 1", args...)
	if err != nil {
		return zero, fmt.Errorf("failed to query %s: %w", d.table, err)
	}
	item, err := pgx.CollectExactlyOneRow(rows, d.scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, nil
		}
		return zero, fmt.Errorf("failed to scan %s row: %w", d.table, err)
	}
	return item, nil
}

func (d *dao[T]) findAll(ctx context.Context, filter models.Filter, skip, limit int) ([]T, error) {
	where, args, err := buildWhere(filter, d.columns)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("%s LIMIT $%d OFFSET $%d", d.query(where), len(args)+1, len(args)+2)
	args = append(args, limit, skip)
	return d.collect(ctx, d.db, query, args...)
}

// findWhere выполняет выборку с произвольным условием
func (d *dao[T]) findWhere(ctx context.Context, where string, args ...any) ([]T, error) {
	return d.collect(ctx, d.db, d.query(where), args...)
}

// add вставляет строку и перечитывает ее в той же транзакции
func (d *dao[T]) add(ctx context.Context, fields models.Fields) (T, error) {
	var created T
	query, args, err := buildInsert(d.table, fields, d.columns)
	if err != nil {
		return created, err
	}

	err = pgx.BeginFunc(ctx, d.db, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
			return err
		}
		item, err := d.selectOne(ctx, tx, d.idColumn+" = $1", id)
		if err != nil {
			return err
		}
		created = item
		return nil
	})
	return created, err
}

func (d *dao[T]) selectOne(ctx context.Context, q querier, where string, args ...any) (T, error) {
	var zero T
	rows, err := q.Query(ctx, d.query(where), args...)
	if err != nil {
		return zero, fmt.Errorf("failed to query %s: %w", d.table, err)
	}
	item, err := pgx.CollectExactlyOneRow(rows, d.scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, d.notFound
		}
		return zero, fmt.Errorf("failed to scan %s row: %w", d.table, err)
	}
	return item, nil
}

func (d *dao[T]) collect(ctx context.Context, q querier, query string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", d.table, err)
	}
	items, err := pgx.CollectRows(rows, d.scan)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s rows: %w", d.table, err)
	}
	return items, nil
}

func (d *dao[T]) query(where string) string {
	var b strings.Builder
	b.WriteString(d.selectQuery)
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	if d.orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(d.orderBy)
	}
	return b.String()
}

// buildWhere собирает условия равенства в порядке сортировки ключей.
// Ключ, которого нет в columns, - ошибка.
func buildWhere(filter models.Filter, columns map[string]string) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	keys, err := sortedKeys(filter, columns)
	if err != nil {
		return "", nil, err
	}

	conds := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for i, key := range keys {
		conds = append(conds, fmt.Sprintf("%s = $%d", columns[key], i+1))
		args = append(args, filter[key])
	}
	return strings.Join(conds, " AND "), args, nil
}

// buildInsert собирает INSERT ... RETURNING id
func buildInsert(table string, fields models.Fields, columns map[string]string) (string, []any, error) {
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("no fields to insert into %s", table)
	}
	keys, err := sortedKeys(fields, columns)
	if err != nil {
		return "", nil, err
	}

	placeholders := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for i, key := range keys {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, fields[key])
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		table, strings.Join(keys, ", "), strings.Join(placeholders, ", "))
	return query, args, nil
}

func sortedKeys[M ~map[string]any](m M, columns map[string]string) ([]string, error) {
	keys := make([]string, 0, len(m))
	for key := range m {
		if _, ok := columns[key]; !ok {
			return nil, fmt.Errorf("unknown column %q", key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
