package relay

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"chat-relay/internal/upstream"
	"chat-relay/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// handleStreamingResponse relays the upstream event stream chunk by chunk.
// Each chunk is written to the client and flushed before it is fed to the
// splitter/inspector pair: forwarding is never delayed by inspection, and an
// inspection failure can never corrupt the relayed bytes.
func (s *Server) handleStreamingResponse(c *gin.Context, rc *requestContext, resp *http.Response) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		logrus.Error("Streaming unsupported by the writer, falling back to buffered response")
		s.handleBufferedResponse(c, rc, resp)
		return
	}

	c.Status(resp.StatusCode)

	buf := make([]byte, 4*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			rc.chunkCount++
			if _, writeErr := c.Writer.Write(buf[:n]); writeErr != nil {
				// Client went away; the deferred body close plus the request
				// context cancellation stop the upstream read.
				logUpstreamError("writing stream to client", writeErr)
				s.finishStream(c, rc, "client disconnected")
				return
			}
			flusher.Flush()

			for _, line := range rc.splitter.Push(buf[:n]) {
				rc.inspector.InspectLine(line)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			// A cancelled inbound context means the client went away and the
			// aborted upstream read is fallout, not an upstream fault.
			if c.Request.Context().Err() != nil {
				logUpstreamError("reading from upstream", err)
				s.finishStream(c, rc, "client disconnected")
				return
			}
			logUpstreamError("reading from upstream", err)
			s.countError(rc)
			s.writeStreamErrorFrame(c, flusher, err)
			s.finishStream(c, rc, err.Error())
			return
		}
	}

	s.finishStream(c, rc, "")
}

// writeStreamErrorFrame optionally injects a terminal error frame into an
// already-open event stream. Headers are long gone at this point, so the
// status code cannot change; whether clients want a synthetic frame or a bare
// connection close is deployment-specific, hence the config flag.
func (s *Server) writeStreamErrorFrame(c *gin.Context, flusher http.Flusher, streamErr error) {
	if !s.configManager.GetUpstreamConfig().StreamErrorFrame {
		return
	}

	frame, err := json.Marshal(gin.H{
		"error": gin.H{
			"message": "upstream stream interrupted: " + streamErr.Error(),
			"type":    "relay_error",
		},
	})
	if err != nil {
		return
	}
	if _, err := c.Writer.Write(append(append([]byte("data: "), frame...), '\n', '\n')); err != nil {
		logUpstreamError("writing stream error frame", err)
		return
	}
	flusher.Flush()
}

// finishStream emits the end-of-stream summary and records the outcome.
// errorMessage is empty for a clean completion.
func (s *Server) finishStream(c *gin.Context, rc *requestContext, errorMessage string) {
	duration := time.Since(rc.startTime)

	fields := logrus.Fields{
		"request_id": rc.id,
		"duration":   duration,
		"chunks":     rc.chunkCount,
		"thinking":   rc.inspector.Detected(),
	}
	if rc.inspector.Detected() {
		fields["thinking_chars"] = len(rc.inspector.ThinkingText())
	}

	if errorMessage == "" {
		logrus.WithFields(fields).Info("Stream completed")
	} else {
		fields["error"] = errorMessage
		logrus.WithFields(fields).Warn("Stream terminated")
	}

	if rc.inspector.Detected() {
		logrus.WithFields(logrus.Fields{
			"request_id": rc.id,
			"text":       utils.TruncateString(rc.inspector.ThinkingText(), 500),
		}).Debug("Accumulated thinking content")
	}

	s.recordOutcome(rc, c.Writer.Status(), errorMessage == "", errorMessage)
}

// handleBufferedResponse accumulates the whole upstream body, runs a single
// reasoning check over it, and relays the bytes with the upstream's status.
func (s *Server) handleBufferedResponse(c *gin.Context, rc *requestContext, resp *http.Response) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logUpstreamError("reading upstream response body", err)
		s.failRequest(c, rc, upstream.ClassifyError(err))
		return
	}

	// One-shot inspection of the final message shape.
	rc.inspector.inspectPayload(string(body))

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, body)

	logrus.WithFields(logrus.Fields{
		"request_id": rc.id,
		"status":     resp.StatusCode,
		"duration":   time.Since(rc.startTime),
		"bytes":      len(body),
		"thinking":   rc.inspector.Detected(),
	}).Info("Request completed")

	s.recordOutcome(rc, resp.StatusCode, true, "")
}
