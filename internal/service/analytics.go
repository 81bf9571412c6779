package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sliramanoel/venda/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxUserAgentLength = 500
	onlineWindow       = 5 * time.Minute
	topPagesLimit      = 10
	defaultPeriod      = "7d"
)

// AnalyticsService records landing page traffic and summarises it
type AnalyticsService interface {
	TrackPageView(ctx context.Context, visit Visit, req *PageViewRequest) error
	TrackAction(ctx context.Context, visit Visit, req *ActionRequest) error
	Overview(ctx context.Context, q OverviewQuery) (*model.OverviewStats, error)
}

// Visit identifies the client behind a tracking call
type Visit struct {
	IP        string
	UserAgent string
}

// PageViewRequest is sent by the storefront on every page load
type PageViewRequest struct {
	Page        string `json:"page" binding:"required,max=255"`
	Referrer    string `json:"referrer"`
	UTMSource   string `json:"utm_source" binding:"max=120"`
	UTMMedium   string `json:"utm_medium" binding:"max=120"`
	UTMCampaign string `json:"utm_campaign" binding:"max=120"`
	UTMTerm     string `json:"utm_term" binding:"max=120"`
	UTMContent  string `json:"utm_content" binding:"max=120"`
}

// ActionRequest is sent for tracked interactions such as click_cta or start_checkout
type ActionRequest struct {
	Action   string                 `json:"action" binding:"required,max=64"`
	Page     string                 `json:"page" binding:"max=255"`
	Metadata map[string]interface{} `json:"metadata"`
}

// OverviewQuery selects the reporting window
type OverviewQuery struct {
	Period    string `form:"period"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type analyticsServiceImpl struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAnalyticsService creates an AnalyticsService over db
func NewAnalyticsService(db *gorm.DB) AnalyticsService {
	return &analyticsServiceImpl{db: db, now: time.Now}
}

// TrackPageView stores a page view with the derived visitor and device data
func (s *analyticsServiceImpl) TrackPageView(ctx context.Context, visit Visit, req *PageViewRequest) error {
	device := ParseDevice(visit.UserAgent)
	view := &model.PageView{
		VisitorID:   VisitorID(visit.IP, visit.UserAgent),
		Page:        req.Page,
		Referrer:    req.Referrer,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		UTMTerm:     req.UTMTerm,
		UTMContent:  req.UTMContent,
		DeviceType:  device.DeviceType,
		Browser:     device.Browser,
		OS:          device.OS,
		IP:          visit.IP,
		UserAgent:   truncateRunes(visit.UserAgent, maxUserAgentLength),
		Timestamp:   s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(view).Error; err != nil {
		return fmt.Errorf("failed to track page view: %w", err)
	}
	return nil
}

// TrackAction stores an interaction event
func (s *analyticsServiceImpl) TrackAction(ctx context.Context, visit Visit, req *ActionRequest) error {
	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode action metadata: %w", err)
	}

	event := &model.ActionEvent{
		VisitorID: VisitorID(visit.IP, visit.UserAgent),
		Action:    req.Action,
		Page:      req.Page,
		Metadata:  datatypes.JSON(raw),
		Timestamp: s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to track action: %w", err)
	}
	return nil
}

// Overview summarises traffic in the requested window
func (s *analyticsServiceImpl) Overview(ctx context.Context, q OverviewQuery) (*model.OverviewStats, error) {
	now := s.now().UTC()
	period := DateRange(q.Period, q.StartDate, q.EndDate, now)
	db := s.db.WithContext(ctx)

	inPeriod := func() *gorm.DB {
		return db.Model(&model.PageView{}).
			Where(clause.Gte{Column: column("timestamp"), Value: period.Start}).
			Where(clause.Lte{Column: column("timestamp"), Value: period.End})
	}

	stats := &model.OverviewStats{Actions: map[string]int64{}, TopPages: []model.PageStat{}, Period: period}

	if err := inPeriod().Count(&stats.TotalPageviews).Error; err != nil {
		return nil, fmt.Errorf("failed to count page views: %w", err)
	}
	if err := inPeriod().Distinct("visitor_id").Count(&stats.UniqueVisitors).Error; err != nil {
		return nil, fmt.Errorf("failed to count visitors: %w", err)
	}

	err := db.Model(&model.PageView{}).
		Where(clause.Gte{Column: column("timestamp"), Value: now.Add(-onlineWindow)}).
		Distinct("visitor_id").
		Count(&stats.OnlineNow).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count online visitors: %w", err)
	}

	var actions []struct {
		Action string
		Count  int64
	}
	err = db.Model(&model.ActionEvent{}).
		Select("action, COUNT(*) AS count").
		Where(clause.Gte{Column: column("timestamp"), Value: period.Start}).
		Where(clause.Lte{Column: column("timestamp"), Value: period.End}).
		Group("action").
		Scan(&actions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate actions: %w", err)
	}
	for _, a := range actions {
		stats.Actions[a.Action] = a.Count
	}

	err = inPeriod().
		Select("page, COUNT(*) AS views, COUNT(DISTINCT visitor_id) AS unique_visitors").
		Group("page").
		Order("views DESC").
		Limit(topPagesLimit).
		Scan(&stats.TopPages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate pages: %w", err)
	}

	return stats, nil
}

// VisitorID is a stable, anonymous id for an ip and user agent pair
func VisitorID(ip, userAgent string) string {
	if ip == "" {
		ip = "unknown"
	}
	if userAgent == "" {
		userAgent = "unknown"
	}
	sum := md5.Sum([]byte(ip + ":" + userAgent))
	return hex.EncodeToString(sum[:])[:16]
}

// ParseDevice classifies a User-Agent into device type, browser and OS
func ParseDevice(userAgent string) model.DeviceInfo {
	ua := strings.ToLower(userAgent)
	info := model.DeviceInfo{DeviceType: "desktop", Browser: "Other", OS: "Other"}

	switch {
	case strings.Contains(ua, "ipad"):
		info.DeviceType = "tablet"
	case containsAny(ua, "mobile", "android", "iphone"):
		info.DeviceType = "mobile"
	}

	switch {
	case strings.Contains(ua, "chrome") && !strings.Contains(ua, "edg"):
		info.Browser = "Chrome"
	case strings.Contains(ua, "firefox"):
		info.Browser = "Firefox"
	case strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome"):
		info.Browser = "Safari"
	case strings.Contains(ua, "edg"):
		info.Browser = "Edge"
	}

	switch {
	case strings.Contains(ua, "windows"):
		info.OS = "Windows"
	case containsAny(ua, "mac", "iphone", "ipad"):
		info.OS = "iOS/macOS"
	case strings.Contains(ua, "android"):
		info.OS = "Android"
	case strings.Contains(ua, "linux"):
		info.OS = "Linux"
	}

	return info
}

// DateRange resolves a named reporting period against now (UTC). Unknown periods and
// unparsable custom bounds fall back to the last seven days.
func DateRange(period, startDate, endDate string, now time.Time) model.Period {
	now = now.UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	if period == "" {
		period = defaultPeriod
	}

	switch period {
	case "today":
		return model.Period{Start: todayStart, End: now}
	case "yesterday":
		return model.Period{Start: todayStart.AddDate(0, 0, -1), End: todayStart}
	case "30d":
		return model.Period{Start: todayStart.AddDate(0, 0, -30), End: now}
	case "this_month":
		return model.Period{Start: monthStart, End: now}
	case "last_month":
		return model.Period{Start: monthStart.AddDate(0, -1, 0), End: monthStart}
	case "custom":
		start, errStart := time.Parse(time.RFC3339, startDate)
		end, errEnd := time.Parse(time.RFC3339, endDate)
		if errStart == nil && errEnd == nil {
			return model.Period{Start: start.UTC(), End: end.UTC()}
		}
	}
	return model.Period{Start: todayStart.AddDate(0, 0, -7), End: now}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
