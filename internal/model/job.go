package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// ScreenJob is a cron-scheduled screening run. Payload holds the job
// parameters (symbol list, or empty to screen the watch list) as JSONB.
type ScreenJob struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	Name           string             `gorm:"type:varchar(255);not null" json:"name"`
	CronExpression string             `gorm:"type:varchar(64);not null" json:"cron_expression"`
	Payload        datatypes.JSON     `gorm:"type:jsonb" json:"payload"`
	Timeout        int                `gorm:"default:1800" json:"timeout"`
	IsActive       *bool              `gorm:"not null;default:true" json:"is_active"`
	LastExecution  sql.NullTime       `json:"last_execution"`
	NextExecution  sql.NullTime       `json:"next_execution"`
	CreatedAt      time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
	Histories      []ScreenJobHistory `gorm:"foreignKey:JobID" json:"histories,omitempty"`
}

func (ScreenJob) TableName() string {
	return "screen_jobs"
}

// ScreenJobPayload is the JSONB shape stored in ScreenJob.Payload.
type ScreenJobPayload struct {
	Symbols      []string `json:"symbols"`
	UseWatchlist bool     `json:"use_watchlist"`
}

type ScreenJobHistory struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	JobID        uint           `gorm:"not null;index" json:"job_id"`
	Status       string         `gorm:"type:varchar(32);not null" json:"status"`
	StartedAt    time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt  sql.NullTime   `json:"completed_at"`
	Output       sql.NullString `gorm:"type:text" json:"output"`
	ErrorMessage sql.NullString `gorm:"type:text" json:"error_message"`
}

func (ScreenJobHistory) TableName() string {
	return "screen_job_histories"
}

type GetScreenJobParam struct {
	IDs      []uint `json:"ids"`
	IsActive *bool  `json:"is_active"`
	DueOnly  bool   `json:"due_only"`
	Limit    *int   `json:"limit"`
}
