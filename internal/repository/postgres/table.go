package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"lexdesk/internal/domain"
)

// jsonTable stores whole records as JSONB, next to a few plain columns used for filtering.
// seq keeps insertion order, which List preserves.
type jsonTable[T any] struct {
	pool     *pgxpool.Pool
	name     string
	resource string
	columns  []string
	// key returns the record ID and the filter column values, in columns order
	key func(*T) (string, []any)
}

func (t *jsonTable[T]) create(ctx context.Context, item *T) error {
	id, vals := t.key(item)
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t.resource, err)
	}

	cols := append([]string{"id"}, t.columns...)
	cols = append(cols, "data")
	args := append([]any{id}, vals...)
	args = append(args, data)

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		t.name, strings.Join(cols, ", "), placeholders(1, len(args)))

	if _, err := GetExecutor(ctx, t.pool).Exec(ctx, query, args...); err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("%s already exists: %s", t.resource, id),
				ResourceType: t.resource,
				ResourceID:   id,
			}
		}
		return fmt.Errorf("create %s: %w", t.resource, err)
	}
	return nil
}

// update replaces the whole record
func (t *jsonTable[T]) update(ctx context.Context, item *T) error {
	id, vals := t.key(item)
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t.resource, err)
	}

	sets := make([]string, 0, len(t.columns)+2)
	for i, col := range t.columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
	}
	sets = append(sets, fmt.Sprintf("data = $%d", len(t.columns)+2), "updated_at = now()")

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1`, t.name, strings.Join(sets, ", "))
	args := append([]any{id}, vals...)
	args = append(args, data)

	tag, err := GetExecutor(ctx, t.pool).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", t.resource, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewNotFound(t.resource, id)
	}
	return nil
}

func (t *jsonTable[T]) get(ctx context.Context, id string) (*T, error) {
	return t.getWhere(ctx, id, "id = $1", id)
}

func (t *jsonTable[T]) getWhere(ctx context.Context, ref, cond string, args ...any) (*T, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE %s`, t.name, cond)

	var data []byte
	if err := GetExecutor(ctx, t.pool).QueryRow(ctx, query, args...).Scan(&data); err != nil {
		if isPgNoRowsError(err) {
			return nil, domain.NewNotFound(t.resource, ref)
		}
		return nil, fmt.Errorf("get %s: %w", t.resource, err)
	}

	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", t.resource, ref, err)
	}
	return &item, nil
}

// list returns matching records in insertion order
func (t *jsonTable[T]) list(ctx context.Context, w *where) ([]T, error) {
	query := fmt.Sprintf(`SELECT data FROM %s%s ORDER BY seq`, t.name, w.sql())

	rows, err := GetExecutor(ctx, t.pool).Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.resource, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.resource, err)
		}
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t.resource, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.resource, err)
	}
	return out, nil
}

// where accumulates AND-ed conditions. Each expr carries one %d for its placeholder index.
type where struct {
	clauses []string
	args    []any
}

// eq adds "column = value" unless value is empty
func (w *where) eq(column, value string) *where {
	if value == "" {
		return w
	}
	return w.add(column+" = $%d", value)
}

func (w *where) add(expr string, arg any) *where {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(expr, len(w.args)))
	return w
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// placeholders renders "$from, ..., $to"
func placeholders(from, to int) string {
	ps := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		ps = append(ps, fmt.Sprintf("$%d", i))
	}
	return strings.Join(ps, ", ")
}

// nullable maps "" to SQL NULL so unique indexes ignore it
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullablePtr(s *string) any {
	if s == nil {
		return nil
	}
	return nullable(*s)
}
