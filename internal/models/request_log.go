// Package models defines persisted data structures.
package models

import "time"

// RequestLog is one relayed request's outcome, persisted for diagnostics.
type RequestLog struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	Timestamp        time.Time `gorm:"index;not null" json:"timestamp"`
	Model            string    `gorm:"size:255;index" json:"model"`
	IsStream         bool      `gorm:"index" json:"is_stream"`
	IsSuccess        bool      `gorm:"index" json:"is_success"`
	StatusCode       int       `json:"status_code"`
	Duration         int64     `json:"duration_ms"`
	ChunkCount       int       `json:"chunk_count"`
	MessageCount     int       `json:"message_count"`
	ThinkingDetected bool      `json:"thinking_detected"`
	ThinkingChars    int       `json:"thinking_chars"`
	ErrorMessage     string    `gorm:"type:text" json:"error_message,omitempty"`
}

// TableName sets the table name for RequestLog
func (RequestLog) TableName() string {
	return "request_logs"
}
