package repository

import (
	"context"
	"strings"
	"time"
)

// TourSearchQuery defines filters & pagination for searching tours.
type TourSearchQuery struct {
	Search        string
	Location      string
	MinPriceCents *uint64
	MaxPriceCents *uint64
	StartAfter    *time.Time
	EndBefore     *time.Time
	AvailableOnly bool
	Page          int
	PageSize      int
}

// Search returns tours matching the query plus the total match count
// for pagination.  Text filters are case-insensitive substring matches
// over name, description and location, mirroring the public catalogue
// search semantics.
func (r *TourRepo) Search(ctx context.Context, q TourSearchQuery) ([]TourListItem, int64, error) {
	where := []string{}
	args := []any{}

	if q.Search != "" {
		where = append(where, "(LOWER(t.name) LIKE ? OR LOWER(t.description) LIKE ? OR LOWER(t.location) LIKE ?)")
		needle := "%" + strings.ToLower(q.Search) + "%"
		args = append(args, needle, needle, needle)
	}
	if q.Location != "" {
		where = append(where, "LOWER(t.location) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Location)+"%")
	}
	if q.MinPriceCents != nil {
		where = append(where, "t.price_cents >= ?")
		args = append(args, *q.MinPriceCents)
	}
	if q.MaxPriceCents != nil {
		where = append(where, "t.price_cents <= ?")
		args = append(args, *q.MaxPriceCents)
	}
	if q.StartAfter != nil {
		where = append(where, "t.start_date >= ?")
		args = append(args, q.StartAfter.UTC())
	}
	if q.EndBefore != nil {
		where = append(where, "t.end_date <= ?")
		args = append(args, q.EndBefore.UTC())
	}
	if q.AvailableOnly {
		where = append(where, "t.booked_slots < t.max_participants")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM tours t WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			t.id, t.provider_id, t.name, t.location, t.description, t.price_cents,
			t.max_participants, t.booked_slots,
			DATE_FORMAT(t.start_date, '%Y-%m-%d %T') AS start_date,
			DATE_FORMAT(t.end_date,   '%Y-%m-%d %T') AS end_date,
			t.image_url,
			COUNT(rv.id) AS review_count,
			COALESCE(AVG(rv.rating), 0) AS avg_rating
		FROM tours t
		LEFT JOIN reviews rv ON rv.tour_id = t.id
		WHERE ` + cond + `
		GROUP BY t.id
		ORDER BY t.start_date ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]TourListItem, 0, limit)
	for rows.Next() {
		var it TourListItem
		var imageURL, start, end *string
		if err := rows.Scan(
			&it.ID, &it.ProviderID, &it.Name, &it.Location, &it.Description, &it.PriceCents,
			&it.MaxParticipants, &it.BookedSlots, &start, &end, &imageURL,
			&it.ReviewCount, &it.AvgRating,
		); err != nil {
			return nil, 0, err
		}
		if start != nil {
			it.StartDate = *start
		}
		if end != nil {
			it.EndDate = *end
		}
		it.ImageURL = imageURL
		if it.MaxParticipants > it.BookedSlots {
			it.AvailableSlots = it.MaxParticipants - it.BookedSlots
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
