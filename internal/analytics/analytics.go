package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"portfolio/internal/database"
)

const recentVisitorsLimit = 20

// Repository 记录访客信标并按需计算聚合统计。
type Repository struct {
	db *gorm.DB
}

// NewRepository 构造访客统计库。
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Visit 描述一次到达信标。
type Visit struct {
	SessionID string
	Page      string
	IP        string
	UserAgent string
}

// RecordVisit 落一条到达记录并返回其 id。
func (r *Repository) RecordVisit(ctx context.Context, visit Visit) (uint, error) {
	record := database.Visitor{
		SessionID:   visit.SessionID,
		Page:        visit.Page,
		IP:          visit.IP,
		UserAgent:   visit.UserAgent,
		Country:     "unknown",
		ArrivalTime: time.Now(),
	}
	if record.IP == "" {
		record.IP = "unknown"
	}
	if record.Page == "" {
		record.Page = "/"
	}

	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return 0, fmt.Errorf("record visit: %w", err)
	}
	return record.ID, nil
}

// RecordLeave 把离开信标匹配到该会话最近一次到达的记录上。
// 同一会话可能多次到达（重复访问同一页面），因此按到达时间取最新，
// 而不是按会话 id 唯一查找；没有匹配记录时静默成功。
func (r *Repository) RecordLeave(ctx context.Context, sessionID string, timeSpent int) error {
	if timeSpent < 0 {
		timeSpent = 0
	}

	var record database.Visitor
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("arrival_time DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("find visit for session %q: %w", sessionID, err)
	}

	now := time.Now()
	if err := r.db.WithContext(ctx).Model(&record).Updates(map[string]any{
		"departure_time": now,
		"time_spent":     timeSpent,
	}).Error; err != nil {
		return fmt.Errorf("record leave for session %q: %w", sessionID, err)
	}
	return nil
}

// HourBucket 是 24 小时直方图中的一格（小时为 0–23 的当日小时数）。
type HourBucket struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// Stats 是按需重算的只读聚合，没有增量维护。
type Stats struct {
	TotalVisitors  int64              `json:"totalVisitors"`
	TodayVisitors  int64              `json:"todayVisitors"`
	AvgTimeSpent   int                `json:"avgTimeSpent"`
	VisitsByHour   []HourBucket       `json:"visitsByHour"`
	RecentVisitors []database.Visitor `json:"recentVisitors"`
}

// ComputeStats 聚合访客数据：总量、当日量（服务器本地时区的零点为界）、
// 平均停留（仅统计已上报离开、停留为正的会话）、近 24 小时逐时直方图、最近到达。
func (r *Repository) ComputeStats(ctx context.Context, now time.Time) (*Stats, error) {
	stats := &Stats{VisitsByHour: []HourBucket{}}

	if err := r.db.WithContext(ctx).
		Model(&database.Visitor{}).
		Count(&stats.TotalVisitors).Error; err != nil {
		return nil, fmt.Errorf("count visitors: %w", err)
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := r.db.WithContext(ctx).
		Model(&database.Visitor{}).
		Where("arrival_time >= ?", midnight).
		Count(&stats.TodayVisitors).Error; err != nil {
		return nil, fmt.Errorf("count today visitors: %w", err)
	}

	// 停留为 0 的会话尚未上报离开，排除在均值之外而非按零计入。
	var avg sql.NullFloat64
	if err := r.db.WithContext(ctx).
		Model(&database.Visitor{}).
		Where("time_spent > 0").
		Select("AVG(time_spent)").
		Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("average time spent: %w", err)
	}
	if avg.Valid {
		stats.AvgTimeSpent = int(math.Round(avg.Float64))
	}

	windowStart := now.Add(-24 * time.Hour)
	var arrivals []time.Time
	if err := r.db.WithContext(ctx).
		Model(&database.Visitor{}).
		Where("arrival_time >= ?", windowStart).
		Pluck("arrival_time", &arrivals).Error; err != nil {
		return nil, fmt.Errorf("load hourly window: %w", err)
	}
	counts := map[int]int64{}
	for _, arrival := range arrivals {
		counts[arrival.In(now.Location()).Hour()]++
	}
	for hour := 0; hour < 24; hour++ {
		if counts[hour] > 0 {
			stats.VisitsByHour = append(stats.VisitsByHour, HourBucket{Hour: hour, Count: counts[hour]})
		}
	}

	if err := r.db.WithContext(ctx).
		Order("arrival_time DESC").
		Limit(recentVisitorsLimit).
		Find(&stats.RecentVisitors).Error; err != nil {
		return nil, fmt.Errorf("load recent visitors: %w", err)
	}

	return stats, nil
}
