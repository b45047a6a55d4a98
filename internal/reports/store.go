package reports

import (
	"context"
	"database/sql"
	"strings"
)

const recentActivityLimit = 10

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type assetRow struct {
	name         string
	status       string
	value        float64
	updatedAt    sql.NullTime
	categoryName string
	firstName    string
	lastName     string
}

// AssetStats pulls every asset with its category and creator in one query,
// newest first, and aggregates in memory. The inventory scale this serves
// makes a single pass cheaper than a fan of aggregate queries.
func (s *Store) AssetStats(ctx context.Context) (*Stats, error) {
	const q = `
		SELECT a.name, a.status, a.value, a.updated_at,
		       COALESCE(c.name, ''), COALESCE(u.first_name, ''), COALESCE(u.last_name, '')
		FROM assets a
		LEFT JOIN categories c ON a.category_id = c.id
		LEFT JOIN users u ON a.created_by = u.id
		ORDER BY a.updated_at DESC
	`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &Stats{
		ByStatus:       map[string]int{},
		ByCategory:     []CategoryStats{},
		RecentActivity: []Activity{},
	}
	categoryIdx := map[string]int{}

	for rows.Next() {
		var row assetRow
		if err := rows.Scan(&row.name, &row.status, &row.value, &row.updatedAt,
			&row.categoryName, &row.firstName, &row.lastName); err != nil {
			return nil, err
		}

		stats.TotalAssets++
		stats.TotalValue += row.value
		stats.ByStatus[row.status]++

		idx, ok := categoryIdx[row.categoryName]
		if !ok {
			idx = len(stats.ByCategory)
			categoryIdx[row.categoryName] = idx
			stats.ByCategory = append(stats.ByCategory, CategoryStats{CategoryName: row.categoryName})
		}
		stats.ByCategory[idx].Count++
		stats.ByCategory[idx].Value += row.value

		if len(stats.RecentActivity) < recentActivityLimit {
			user := strings.TrimSpace(row.firstName + " " + row.lastName)
			if user == "" {
				user = "Unknown"
			}
			stats.RecentActivity = append(stats.RecentActivity, Activity{
				Date:      row.updatedAt.Time,
				Action:    "Updated",
				AssetName: row.name,
				User:      user,
			})
		}
	}
	return stats, rows.Err()
}
