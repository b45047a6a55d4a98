package reports

import "time"

// Stats is the aggregate view behind the reporting page: totals, status and
// category distributions, and the most recently touched assets.
type Stats struct {
	TotalAssets    int             `json:"totalAssets"`
	TotalValue     float64         `json:"totalValue"`
	ByStatus       map[string]int  `json:"byStatus"`
	ByCategory     []CategoryStats `json:"byCategory"`
	RecentActivity []Activity      `json:"recentActivity"`
}

type CategoryStats struct {
	CategoryName string  `json:"categoryName"`
	Count        int     `json:"count"`
	Value        float64 `json:"value"`
}

type Activity struct {
	Date      time.Time `json:"date"`
	Action    string    `json:"action"`
	AssetName string    `json:"assetName"`
	User      string    `json:"user"`
}
