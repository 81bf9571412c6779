package model

import (
	"time"

	"gorm.io/datatypes"
)

// PageView is one tracked landing page visit
type PageView struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	VisitorID   string    `json:"visitor_id" gorm:"type:varchar(16);index;not null"`
	Page        string    `json:"page" gorm:"type:varchar(255);index;not null"`
	Referrer    string    `json:"referrer" gorm:"type:text"`
	UTMSource   string    `json:"utm_source" gorm:"type:varchar(120)"`
	UTMMedium   string    `json:"utm_medium" gorm:"type:varchar(120)"`
	UTMCampaign string    `json:"utm_campaign" gorm:"type:varchar(120)"`
	UTMTerm     string    `json:"utm_term" gorm:"type:varchar(120)"`
	UTMContent  string    `json:"utm_content" gorm:"type:varchar(120)"`
	DeviceType  string    `json:"device_type" gorm:"type:varchar(20)"`
	Browser     string    `json:"browser" gorm:"type:varchar(20)"`
	OS          string    `json:"os" gorm:"type:varchar(20)"`
	IP          string    `json:"ip" gorm:"type:varchar(64)"`
	UserAgent   string    `json:"user_agent" gorm:"type:varchar(500)"`
	Timestamp   time.Time `json:"timestamp" gorm:"index;not null"`
}

// ActionEvent is a tracked interaction such as click_cta or start_checkout
type ActionEvent struct {
	ID        uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	VisitorID string         `json:"visitor_id" gorm:"type:varchar(16);index;not null"`
	Action    string         `json:"action" gorm:"type:varchar(64);index;not null"`
	Page      string         `json:"page" gorm:"type:varchar(255)"`
	Metadata  datatypes.JSON `json:"metadata"`
	Timestamp time.Time      `json:"timestamp" gorm:"index;not null"`
}

// DeviceInfo is the coarse classification derived from a User-Agent
type DeviceInfo struct {
	DeviceType string `json:"device_type"`
	Browser    string `json:"browser"`
	OS         string `json:"os"`
}

// PageStat counts views for one page
type PageStat struct {
	Page           string `json:"page"`
	Views          int64  `json:"views"`
	UniqueVisitors int64  `json:"unique_visitors"`
}

// Period is an inclusive time window
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// OverviewStats summarises traffic for a period
type OverviewStats struct {
	TotalPageviews int64            `json:"total_pageviews"`
	UniqueVisitors int64            `json:"unique_visitors"`
	OnlineNow      int64            `json:"online_now"`
	Actions        map[string]int64 `json:"actions"`
	TopPages       []PageStat       `json:"top_pages"`
	Period         Period           `json:"period"`
}
