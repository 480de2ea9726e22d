package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/grievance-service/internal/domain"
)

const grievanceColumns = `id, ticket_id, complainant_name, complainant_phone, complainant_email, complainant_address,
               department_id, subject, description, location, status, priority, attachments, assigned_to,
               filed_by, created_at, updated_at`

type grievanceRepository struct {
	pool *pgxpool.Pool
}

// NewGrievanceRepository returns a Postgres-backed grievance ledger.
func NewGrievanceRepository(pool *pgxpool.Pool) GrievanceRepository {
	return &grievanceRepository{pool: pool}
}

func (r *grievanceRepository) Create(ctx context.Context, g *domain.Grievance) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	g.UpdatedAt = g.CreatedAt
	if g.Attachments == nil {
		g.Attachments = []string{}
	}

	// The sequence bump commits on its own so a retried insert never reuses a value.
	if g.TicketID == "" {
		seq, err := nextTicketSequence(ctx, r.pool, g.CreatedAt.Year())
		if err != nil {
			return err
		}
		g.TicketID = domain.FormatTicketID(g.CreatedAt.Year(), seq)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO grievances (id, ticket_id, complainant_name, complainant_phone, complainant_email, complainant_address,
            department_id, subject, description, location, status, priority, attachments, assigned_to, filed_by,
            created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`
	if _, err := tx.Exec(ctx, query,
		g.ID,
		g.TicketID,
		g.Complainant.Name,
		g.Complainant.Phone,
		g.Complainant.Email,
		g.Complainant.Address,
		g.DepartmentID,
		g.Subject,
		g.Description,
		g.Location,
		g.Status,
		g.Priority,
		g.Attachments,
		g.AssignedTo,
		g.FiledBy,
		g.CreatedAt,
		g.UpdatedAt,
	); err != nil {
		return mapPgError(err)
	}

	for i := range g.Timeline {
		if err := insertTimelineEntry(ctx, tx, g.ID, &g.Timeline[i]); err != nil {
			return err
		}
	}
	for i := range g.Comments {
		if err := insertComment(ctx, tx, g.ID, &g.Comments[i]); err != nil {
			return err
		}
	}
	return mapPgError(tx.Commit(ctx))
}

func (r *grievanceRepository) GetByID(ctx context.Context, id string) (*domain.Grievance, error) {
	return loadGrievance(ctx, r.pool, id)
}

func (r *grievanceRepository) List(ctx context.Context, filter GrievanceFilter) ([]domain.Grievance, int64, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.DepartmentID != nil {
		args = append(args, *filter.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.FiledBy != nil {
		args = append(args, *filter.FiledBy)
		clauses = append(clauses, fmt.Sprintf("filed_by=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, strings.ToLower(strings.TrimSpace(*filter.Search)))
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(strpos(LOWER(ticket_id), %s) > 0 OR strpos(LOWER(complainant_phone), %s) > 0)", placeholder, placeholder))
	}
	where := strings.Join(clauses, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM grievances WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM grievances WHERE %s ORDER BY created_at DESC, ticket_id DESC LIMIT %d OFFSET %d`,
		grievanceColumns, where, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	items, err := scanGrievances(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := attachLogs(ctx, r.pool, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *grievanceRepository) UpdateStatus(ctx context.Context, id string, from domain.GrievanceStatus, entry domain.TimelineEntry) (*domain.Grievance, error) {
	return r.mutate(ctx, id, func(tx pgx.Tx, current domain.GrievanceStatus) error {
		if current != from {
			return ErrStaleStatus
		}
		if _, err := tx.Exec(ctx, `UPDATE grievances SET status=$1, updated_at=$2 WHERE id=$3`, entry.Status, entry.UpdatedAt, id); err != nil {
			return err
		}
		return insertTimelineEntry(ctx, tx, id, &entry)
	})
}

func (r *grievanceRepository) Assign(ctx context.Context, id, assigneeID string, entry domain.TimelineEntry) (*domain.Grievance, error) {
	return r.mutate(ctx, id, func(tx pgx.Tx, current domain.GrievanceStatus) error {
		if _, err := tx.Exec(ctx, `UPDATE grievances SET assigned_to=$1, updated_at=$2 WHERE id=$3`, assigneeID, entry.UpdatedAt, id); err != nil {
			return err
		}
		entry.Status = current
		return insertTimelineEntry(ctx, tx, id, &entry)
	})
}

func (r *grievanceRepository) AddComment(ctx context.Context, id string, comment domain.Comment) (*domain.Grievance, error) {
	return r.mutate(ctx, id, func(tx pgx.Tx, _ domain.GrievanceStatus) error {
		if _, err := tx.Exec(ctx, `UPDATE grievances SET updated_at=$1 WHERE id=$2`, comment.PostedAt, id); err != nil {
			return err
		}
		return insertComment(ctx, tx, id, &comment)
	})
}

func (r *grievanceRepository) CountByDepartment(ctx context.Context, departmentID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM grievances WHERE department_id=$1`, departmentID).Scan(&count)
	return count, err
}

func (r *grievanceRepository) StatusCounts(ctx context.Context, departmentID string) (map[domain.GrievanceStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM grievances WHERE department_id=$1 GROUP BY status`, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.GrievanceStatus]int64)
	for rows.Next() {
		var status domain.GrievanceStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// mutate locks the grievance row, runs fn and returns the reloaded record.
func (r *grievanceRepository) mutate(ctx context.Context, id string, fn func(tx pgx.Tx, current domain.GrievanceStatus) error) (*domain.Grievance, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var current domain.GrievanceStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM grievances WHERE id=$1 FOR UPDATE`, id).Scan(&current); err != nil {
		return nil, mapPgError(err)
	}
	if err := fn(tx, current); err != nil {
		return nil, mapPgError(err)
	}
	grievance, err := loadGrievance(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return grievance, nil
}

func nextTicketSequence(ctx context.Context, q querier, year int) (int64, error) {
	const query = `
        INSERT INTO ticket_sequences (year, value) VALUES ($1, 1)
        ON CONFLICT (year) DO UPDATE SET value = ticket_sequences.value + 1
        RETURNING value`
	var seq int64
	if err := q.QueryRow(ctx, query, year).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func insertTimelineEntry(ctx context.Context, q querier, grievanceID string, entry *domain.TimelineEntry) error {
	const query = `
        INSERT INTO grievance_timeline (grievance_id, seq, status, updated_by, updated_at, comment)
        SELECT $1, COALESCE(MAX(seq), 0) + 1, $2, $3, $4, $5 FROM grievance_timeline WHERE grievance_id=$1
        RETURNING seq`
	return mapPgError(q.QueryRow(ctx, query,
		grievanceID,
		entry.Status,
		entry.UpdatedBy,
		entry.UpdatedAt,
		entry.Comment,
	).Scan(&entry.Seq))
}

func insertComment(ctx context.Context, q querier, grievanceID string, comment *domain.Comment) error {
	const query = `
        INSERT INTO grievance_comments (grievance_id, seq, text, posted_by, posted_at)
        SELECT $1, COALESCE(MAX(seq), 0) + 1, $2, $3, $4 FROM grievance_comments WHERE grievance_id=$1
        RETURNING seq`
	return mapPgError(q.QueryRow(ctx, query,
		grievanceID,
		comment.Text,
		comment.PostedBy,
		comment.PostedAt,
	).Scan(&comment.Seq))
}

func loadGrievance(ctx context.Context, q querier, id string) (*domain.Grievance, error) {
	rows, err := q.Query(ctx, `SELECT `+grievanceColumns+` FROM grievances WHERE id=$1`, id)
	if err != nil {
		return nil, err
	}
	items, err := scanGrievances(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	if err := attachLogs(ctx, q, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// attachLogs loads timeline and comments for all items with one query per log.
func attachLogs(ctx context.Context, q querier, items []domain.Grievance) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	index := make(map[string]int, len(items))
	for i := range items {
		ids[i] = items[i].ID
		index[items[i].ID] = i
		items[i].Timeline = []domain.TimelineEntry{}
		items[i].Comments = []domain.Comment{}
	}

	rows, err := q.Query(ctx, `
        SELECT grievance_id, seq, status, updated_by, updated_at, comment
        FROM grievance_timeline WHERE grievance_id = ANY($1::uuid[]) ORDER BY grievance_id, seq`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var grievanceID string
		var entry domain.TimelineEntry
		if err := rows.Scan(&grievanceID, &entry.Seq, &entry.Status, &entry.UpdatedBy, &entry.UpdatedAt, &entry.Comment); err != nil {
			rows.Close()
			return err
		}
		i := index[grievanceID]
		items[i].Timeline = append(items[i].Timeline, entry)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = q.Query(ctx, `
        SELECT grievance_id, seq, text, posted_by, posted_at
        FROM grievance_comments WHERE grievance_id = ANY($1::uuid[]) ORDER BY grievance_id, seq`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var grievanceID string
		var comment domain.Comment
		if err := rows.Scan(&grievanceID, &comment.Seq, &comment.Text, &comment.PostedBy, &comment.PostedAt); err != nil {
			return err
		}
		i := index[grievanceID]
		items[i].Comments = append(items[i].Comments, comment)
	}
	return rows.Err()
}

func scanGrievances(rows pgx.Rows) ([]domain.Grievance, error) {
	defer rows.Close()
	result := []domain.Grievance{}
	for rows.Next() {
		var g domain.Grievance
		if err := rows.Scan(
			&g.ID,
			&g.TicketID,
			&g.Complainant.Name,
			&g.Complainant.Phone,
			&g.Complainant.Email,
			&g.Complainant.Address,
			&g.DepartmentID,
			&g.Subject,
			&g.Description,
			&g.Location,
			&g.Status,
			&g.Priority,
			&g.Attachments,
			&g.AssignedTo,
			&g.FiledBy,
			&g.CreatedAt,
			&g.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}
