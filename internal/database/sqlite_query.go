package database

import (
	"context"
	"fmt"
	"strings"

	"indx-go/internal/indx"
)

// QueryIndexInfos builds and runs the SQL for one parameterized query, then
// fetches tag summaries for the matched records in a second pass.
func (s *SQLiteDatabase) QueryIndexInfos(ctx context.Context, params indx.RequestParams) ([]*indx.IndexInfo, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	query, args, err := buildIndexQuery(params)
	if err != nil {
		return nil, err
	}
	defer s.observe(query, args...)()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying indexes: %w", err)
	}
	defer rows.Close()

	var infos []*indx.IndexInfo
	for rows.Next() {
		rec, err := scanIndex(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning index: %w", err)
		}
		infos = append(infos, &indx.IndexInfo{IndexRecord: *rec})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachTags(ctx, infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// attachTags loads the tag summary of every matched record in one query.
func (s *SQLiteDatabase) attachTags(ctx context.Context, infos []*indx.IndexInfo) error {
	if len(infos) == 0 {
		return nil
	}

	byID := make(map[indx.ContentID]*indx.IndexInfo, len(infos))
	args := make([]any, 0, len(infos))
	for _, info := range infos {
		byID[info.ID] = info
		args = append(args, info.ID)
	}

	query := `SELECT it.index_id, t.type, t.value
		FROM index_tags it
		JOIN tags t ON t.id = it.tag_id
		WHERE it.index_id IN (` + placeholders(len(infos)) + `)
		ORDER BY t.type, t.value`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("querying tag summaries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id indx.ContentID
		var tag indx.FilteringTag
		if err := rows.Scan(&id, &tag.Type, &tag.Value); err != nil {
			return fmt.Errorf("scanning tag summary: %w", err)
		}
		if info, ok := byID[id]; ok {
			info.Tags = append(info.Tags, tag)
		}
	}
	return rows.Err()
}

func buildIndexQuery(params indx.RequestParams) (string, []any, error) {
	var where []string
	var args []any

	if params.Recursive {
		where = append(where, "(location = ? OR location LIKE ? || '/%')")
		args = append(args, params.Root, params.Root)
	} else {
		where = append(where, "location = ?")
		args = append(args, params.Root)
	}

	switch v := params.Visibility; v {
	case "", indx.VisibilityNormal:
		where = append(where, "visibility = ?")
		args = append(args, indx.VisibilityNormal)
	case indx.VisibilityHidden:
		where = append(where, "visibility = ?")
		args = append(args, indx.VisibilityHidden)
	case indx.VisibilityAny:
		// Lost content stays out even under "any".
		where = append(where, "visibility IN (?, ?)")
		args = append(args, indx.VisibilityNormal, indx.VisibilityHidden)
	default:
		return "", nil, fmt.Errorf("unsupported visibility %q: %w", v, indx.ErrInvalidParameter)
	}

	if len(params.Types) > 0 {
		where = append(where, "content_type IN ("+placeholders(len(params.Types))+")")
		for _, t := range params.Types {
			args = append(args, t)
		}
	}

	if len(params.Names) > 0 {
		op := " AND "
		if params.NameOperator == indx.OperatorOr {
			op = " OR "
		}
		var likes []string
		for _, name := range params.Names {
			likes = append(likes, "name LIKE '%' || ? || '%'")
			args = append(args, name)
		}
		where = append(where, "("+strings.Join(likes, op)+")")
	}

	if len(params.Tags) > 0 {
		clause, tagArgs, err := buildTagPredicates(params.Tags, params.TagOperator)
		if err != nil {
			return "", nil, err
		}
		where = append(where, clause)
		args = append(args, tagArgs...)
	}

	query := "SELECT " + indexColumns + " FROM indexes WHERE " + strings.Join(where, " AND ")
	query += " ORDER BY " + orderClause(params.SortBy)

	if params.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, params.Limit)
		if params.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, params.Offset)
		}
	} else if params.Offset > 0 {
		// SQLite requires a LIMIT before OFFSET; -1 means unlimited.
		query += " LIMIT -1 OFFSET ?"
		args = append(args, params.Offset)
	}

	return query, args, nil
}

// buildTagPredicates turns tag filters into EXISTS subqueries (or created_at
// range checks for date-bound tags), joined by the tag operator.
func buildTagPredicates(filters []indx.TagFilter, op indx.Operator) (string, []any, error) {
	joiner := " AND "
	if op == indx.OperatorOr {
		joiner = " OR "
	}

	var preds []string
	var args []any
	for _, f := range filters {
		if f.Tag.Type.IsDateBound() {
			pred, dateArgs, err := datePredicate(f)
			if err != nil {
				return "", nil, err
			}
			preds = append(preds, pred)
			args = append(args, dateArgs...)
			continue
		}

		sub := `EXISTS (SELECT 1 FROM index_tags it
			JOIN tags t ON t.id = it.tag_id
			WHERE it.index_id = indexes.id AND t.type = ? AND t.value = ?)`
		if f.Exclude {
			sub = "NOT " + sub
		}
		preds = append(preds, sub)
		args = append(args, f.Tag.Type, f.Tag.Value)
	}
	return "(" + strings.Join(preds, joiner) + ")", args, nil
}

func datePredicate(f indx.TagFilter) (string, []any, error) {
	bd, err := f.Tag.Date()
	if err != nil {
		return "", nil, err
	}
	r := bd.Range()

	var parts []string
	var args []any
	if !r.Start.IsZero() {
		parts = append(parts, "created_at >= ?")
		args = append(args, r.Start)
	}
	if !r.End.IsZero() {
		parts = append(parts, "created_at < ?")
		args = append(args, r.End)
	}
	if len(parts) == 0 {
		return "", nil, fmt.Errorf("unbounded date tag %s: %w", f.Tag, indx.ErrInvalidParameter)
	}

	pred := "(" + strings.Join(parts, " AND ") + ")"
	if f.Exclude {
		pred = "NOT " + pred
	}
	return pred, args, nil
}

func orderClause(sortBy indx.SortBy) string {
	switch sortBy {
	case indx.SortByNameDesc:
		return "name COLLATE NOCASE DESC"
	case indx.SortByCreated:
		return "created_at ASC"
	case indx.SortByCreatedDesc:
		return "created_at DESC"
	case indx.SortByUpdated:
		return "updated_at ASC"
	case indx.SortByUpdatedDesc:
		return "updated_at DESC"
	default:
		return "name COLLATE NOCASE ASC"
	}
}
