package metrics

import (
	"context"
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// RegisterDBMetrics exposes the number of saved projects, read at scrape time.
func RegisterDBMetrics(reg prometheus.Registerer, db *sql.DB, logr *zap.Logger) error {
	return reg.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "projects_saved",
			Help: "Projects currently stored",
		},
		func() float64 {
			return queryCount(db, logr, "SELECT COUNT(*) FROM projects")
		},
	))
}

func queryCount(db *sql.DB, logr *zap.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var count int64
	if err := db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		if logr != nil {
			logr.Warn("metrics query failed", zap.Error(err))
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
