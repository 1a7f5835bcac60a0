// Package relay implements the chat-completions relay pipeline.
package relay

import (
	"io"
	"net/http"
	"time"

	app_errors "chat-relay/internal/errors"
	"chat-relay/internal/models"
	"chat-relay/internal/response"
	"chat-relay/internal/services"
	"chat-relay/internal/stats"
	"chat-relay/internal/types"
	"chat-relay/internal/upstream"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Server relays chat completion requests to the single configured upstream.
// Each inbound request gets an independent pipeline instance (requestContext);
// the only shared mutable state is the injected stats collector.
type Server struct {
	configManager     types.ConfigManager
	caller            *upstream.Caller
	collector         *stats.Collector
	requestLogService *services.RequestLogService
}

// requestContext carries per-request relay state. Created at request entry,
// discarded when the response completes or errors.
type requestContext struct {
	id           string
	startTime    time.Time
	stream       bool
	model        string
	messageCount int

	chunkCount int
	splitter   lineSplitter
	inspector  streamInspector

	errorCounted bool
}

// NewServer creates a new relay server.
func NewServer(
	configManager types.ConfigManager,
	caller *upstream.Caller,
	collector *stats.Collector,
	requestLogService *services.RequestLogService,
) *Server {
	return &Server{
		configManager:     configManager,
		caller:            caller,
		collector:         collector,
		requestLogService: requestLogService,
	}
}

// HandleChatCompletions is the entry point for the relay routes.
func (s *Server) HandleChatCompletions(c *gin.Context) {
	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		logrus.Errorf("Failed to read request body: %v", err)
		// The stream flag is unknowable without the body, so the request is
		// counted as non-streaming.
		s.collector.RecordRequest(false)
		s.collector.RecordError()
		response.Error(c, app_errors.NewAPIError(app_errors.ErrBadRequest, "Failed to read request body"))
		return
	}
	c.Request.Body.Close()

	rc := s.newRequestContext(bodyBytes)
	c.Header("X-Request-ID", rc.id)

	logrus.WithFields(logrus.Fields{
		"request_id": rc.id,
		"model":      rc.model,
		"stream":     rc.stream,
		"messages":   rc.messageCount,
	}).Info("Chat completion request received")

	s.collector.RecordRequest(rc.stream)

	// Fail fast before any outbound call when the credential is absent.
	if !s.configManager.IsAPIKeyConfigured() {
		s.failRequest(c, rc, app_errors.ErrMissingCredential)
		return
	}

	// The upstream request is bound to the inbound request context, so a
	// client disconnect aborts the upstream read instead of leaking it.
	resp, err := s.caller.Call(c.Request.Context(), bodyBytes, rc.stream)
	if err != nil {
		s.failRequest(c, rc, upstream.ClassifyError(err))
		return
	}
	defer resp.Body.Close()

	// Upstream answered with an error status: relay it untouched.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.relayUpstreamError(c, rc, resp)
		return
	}

	if rc.stream {
		s.handleStreamingResponse(c, rc, resp)
	} else {
		s.handleBufferedResponse(c, rc, resp)
	}
}

// newRequestContext builds the per-request pipeline state, reading the
// diagnostic fields leniently from the (otherwise opaque) request body.
func (s *Server) newRequestContext(bodyBytes []byte) *requestContext {
	rc := &requestContext{
		id:           uuid.NewString(),
		startTime:    time.Now(),
		stream:       gjson.GetBytes(bodyBytes, "stream").Bool(),
		model:        gjson.GetBytes(bodyBytes, "model").String(),
		messageCount: int(gjson.GetBytes(bodyBytes, "messages.#").Int()),
	}
	rc.inspector.onFirstDetection = func() {
		s.collector.RecordThinkingDetected()
		logrus.WithField("request_id", rc.id).Info("Thinking content detected")
	}
	return rc
}

// countError increments the shared error counter, at most once per request.
func (s *Server) countError(rc *requestContext) {
	if rc.errorCounted {
		return
	}
	rc.errorCounted = true
	s.collector.RecordError()
}

// failRequest reports a structured error for failures that occur before any
// response byte was sent to the client.
func (s *Server) failRequest(c *gin.Context, rc *requestContext, apiErr *app_errors.APIError) {
	s.countError(rc)
	response.Error(c, apiErr)

	logrus.WithFields(logrus.Fields{
		"request_id": rc.id,
		"status":     apiErr.HTTPStatus,
		"code":       apiErr.Code,
		"duration":   time.Since(rc.startTime),
	}).Error(apiErr.Message)

	s.recordOutcome(rc, apiErr.HTTPStatus, false, apiErr.Message)
}

// relayUpstreamError passes a non-2xx upstream response through to the client
// with its status and body untouched.
func (s *Server) relayUpstreamError(c *gin.Context, rc *requestContext, resp *http.Response) {
	s.countError(rc)

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Status(resp.StatusCode)
	c.Header("Content-Type", contentType)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		logUpstreamError("relaying upstream error body", err)
	}

	logrus.WithFields(logrus.Fields{
		"request_id": rc.id,
		"status":     resp.StatusCode,
		"duration":   time.Since(rc.startTime),
	}).Warn("Upstream returned error status")

	s.recordOutcome(rc, resp.StatusCode, false, "upstream error status")
}

// recordOutcome queues the request's outcome for async persistence.
func (s *Server) recordOutcome(rc *requestContext, statusCode int, success bool, errorMessage string) {
	if s.requestLogService == nil {
		return
	}
	s.requestLogService.Record(&models.RequestLog{
		Timestamp:        rc.startTime,
		Model:            rc.model,
		IsStream:         rc.stream,
		IsSuccess:        success,
		StatusCode:       statusCode,
		Duration:         time.Since(rc.startTime).Milliseconds(),
		ChunkCount:       rc.chunkCount,
		MessageCount:     rc.messageCount,
		ThinkingDetected: rc.inspector.Detected(),
		ThinkingChars:    len(rc.inspector.ThinkingText()),
		ErrorMessage:     errorMessage,
	})
}

// logUpstreamError provides a centralized way to log errors from upstream interactions.
func logUpstreamError(context string, err error) {
	if err == nil {
		return
	}
	if app_errors.IsIgnorableError(err) {
		logrus.Debugf("Ignorable upstream error in %s: %v", context, err)
	} else {
		logrus.Errorf("Upstream error in %s: %v", context, err)
	}
}
