// Package services contains background services supporting the relay.
package services

import (
	"context"
	"sync"
	"time"

	"chat-relay/internal/models"
	"chat-relay/internal/types"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const logFlushBatchSize = 200

// RequestLogService persists request outcomes asynchronously. Record is
// non-blocking: entries accumulate in a bounded in-memory buffer and are
// flushed to the database in batches by a background goroutine. A persistence
// failure never affects the response path.
type RequestLogService struct {
	db            *gorm.DB
	configManager types.ConfigManager

	mu      sync.Mutex
	pending []*models.RequestLog

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewRequestLogService creates a new RequestLogService instance
func NewRequestLogService(db *gorm.DB, configManager types.ConfigManager) *RequestLogService {
	return &RequestLogService{
		db:            db,
		configManager: configManager,
		stopChan:      make(chan struct{}),
	}
}

// Start launches the periodic flush routine.
func (s *RequestLogService) Start() {
	s.wg.Add(1)
	go s.runLoop()
}

func (s *RequestLogService) runLoop() {
	defer s.wg.Done()

	interval := s.configManager.GetRetentionConfig().FlushInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush()
		case <-s.stopChan:
			return
		}
	}
}

// Stop gracefully stops the service, flushing any remaining entries.
func (s *RequestLogService) Stop(ctx context.Context) {
	close(s.stopChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.flush()
		logrus.Info("RequestLogService stopped gracefully.")
	case <-ctx.Done():
		logrus.Warn("RequestLogService stop timed out.")
	}
}

// Record queues one request outcome for persistence. When the pending buffer
// is full the oldest entries are dropped; losing diagnostics is preferable to
// blocking or growing without bound.
func (s *RequestLogService) Record(entry *models.RequestLog) {
	entry.ID = uuid.NewString()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	maxPending := s.configManager.GetRetentionConfig().MaxPendingEntries
	if maxPending <= 0 {
		maxPending = 1000
	}

	s.mu.Lock()
	if len(s.pending) >= maxPending {
		dropped := len(s.pending) - maxPending + 1
		s.pending = s.pending[dropped:]
		logrus.Warnf("Request log buffer full, dropped %d oldest entries", dropped)
	}
	s.pending = append(s.pending, entry)
	s.mu.Unlock()
}

// List returns the most recent persisted entries, newest first.
func (s *RequestLogService) List(limit int) ([]models.RequestLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []models.RequestLog
	err := s.db.Order("timestamp DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// flush writes all pending entries to the database in batches.
func (s *RequestLogService) flush() {
	s.mu.Lock()
	batch := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	if err := s.db.CreateInBatches(batch, logFlushBatchSize).Error; err != nil {
		logrus.Errorf("Failed to flush %d request logs: %v", len(batch), err)
		return
	}
	logrus.Debugf("Flushed %d request logs to database", len(batch))
}
