package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cloo-solutions/pmstd/internal/domain"
	"github.com/cloo-solutions/pmstd/internal/pagination"
	"github.com/cloo-solutions/pmstd/internal/service"
)

const sectionColumns = `s.id, s.standard_id, s.section_number, s.chapter, s.title, s.content, s.position, s.created_at`

// searchCandidatesSQL keeps every section the free-text ranker could accept:
// a substring hit on the whole query, or any query word related to a title
// or content word by containment in either direction.
const searchCandidatesSQL = `SELECT ` + sectionColumns + `
FROM sections s
WHERE ($3::bigint[] IS NULL OR s.standard_id = ANY($3::bigint[]))
  AND (
    strpos(lower(s.title), $1) > 0
    OR strpos(lower(s.content), $1) > 0
    OR EXISTS (
      SELECT 1 FROM unnest($2::text[]) AS q(word)
      WHERE strpos(lower(s.title), q.word) > 0
         OR strpos(lower(s.content), q.word) > 0
         OR EXISTS (
           SELECT 1
           FROM regexp_split_to_table(lower(s.title || ' ' || s.content), '\s+') AS t(word)
           WHERE t.word <> '' AND strpos(q.word, t.word) > 0
         )
    )
  )
ORDER BY s.standard_id, s.position, s.id`

type SectionRepository struct {
	db dbtx
}

func NewSectionRepository(pool *pgxpool.Pool) *SectionRepository {
	return &SectionRepository{db: pool}
}

func NewSectionRepositoryWithTx(tx pgx.Tx) *SectionRepository {
	return &SectionRepository{db: tx}
}

func (r *SectionRepository) GetByID(ctx context.Context, id int64) (*domain.Section, error) {
	var sec domain.Section
	err := r.db.QueryRow(ctx, `SELECT `+sectionColumns+` FROM sections s WHERE s.id = $1`, id).
		Scan(&sec.ID, &sec.StandardID, &sec.SectionNumber, &sec.Chapter, &sec.Title, &sec.Content, &sec.Position, &sec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSectionNotFound
		}
		return nil, err
	}
	return &sec, nil
}

func (r *SectionRepository) ListByStandard(ctx context.Context, standardID int64, cursor *pagination.Cursor, limit int) (*service.SectionPageResult, error) {
	if limit <= 0 {
		limit = pagination.DefaultLimit
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.db.Query(ctx,
			`SELECT `+sectionColumns+`
			 FROM sections s
			 WHERE s.standard_id = $1 AND (s.position, s.id) > ($2, $3)
			 ORDER BY s.position, s.id
			 LIMIT $4`,
			standardID, cursor.Position, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT `+sectionColumns+`
			 FROM sections s
			 WHERE s.standard_id = $1
			 ORDER BY s.position, s.id
			 LIMIT $2`,
			standardID, limit+1,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanSectionRows(rows)
	if err != nil {
		return nil, err
	}

	items, next, hasMore := pagination.Trim(items, limit, func(s *domain.Section) (int, int64) {
		return s.Position, s.ID
	})
	return &service.SectionPageResult{
		Items:      items,
		NextCursor: next,
		HasMore:    hasMore,
	}, nil
}

func (r *SectionRepository) ListByStandards(ctx context.Context, standardIDs []int64) ([]*domain.Section, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+sectionColumns+`
		 FROM sections s
		 WHERE ($1::bigint[] IS NULL OR s.standard_id = ANY($1::bigint[]))
		 ORDER BY s.standard_id, s.position, s.id`,
		nullableInt64s(standardIDs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSectionRows(rows)
}

func (r *SectionRepository) SearchCandidates(ctx context.Context, query string, standardIDs []int64) ([]*domain.Section, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []*domain.Section{}, nil
	}

	rows, err := r.db.Query(ctx, searchCandidatesSQL, q, strings.Fields(q), nullableInt64s(standardIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSectionRows(rows)
}

// ReplaceForStandard deletes and re-inserts a standard's sections, filling
// each section's ID. Callers run it inside a transaction.
func (r *SectionRepository) ReplaceForStandard(ctx context.Context, standardID int64, sections []*domain.Section) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM sections WHERE standard_id = $1`, standardID); err != nil {
		return fmt.Errorf("delete sections: %w", err)
	}
	if len(sections) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, sec := range sections {
		batch.Queue(
			`INSERT INTO sections (standard_id, section_number, chapter, title, content, position, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id`,
			standardID, sec.SectionNumber, sec.Chapter, sec.Title, sec.Content, sec.Position, sec.CreatedAt,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for _, sec := range sections {
		if err := br.QueryRow().Scan(&sec.ID); err != nil {
			return fmt.Errorf("insert section %q: %w", sec.Title, err)
		}
		sec.StandardID = standardID
	}
	return nil
}

func scanSectionRows(rows pgx.Rows) ([]*domain.Section, error) {
	results := []*domain.Section{}
	for rows.Next() {
		var sec domain.Section
		if err := rows.Scan(&sec.ID, &sec.StandardID, &sec.SectionNumber, &sec.Chapter, &sec.Title, &sec.Content, &sec.Position, &sec.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, &sec)
	}
	return results, rows.Err()
}
