package relay

import (
	"strings"

	"github.com/tidwall/gjson"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// thinkingFieldPaths are probed in priority order on each streamed delta.
// reasoning_content is the DeepSeek-style field, reasoning the OpenRouter
// variant, thinking the legacy side-channel name. The message-level paths
// cover the final non-streaming response shape.
var thinkingFieldPaths = []string{
	"choices.0.delta.reasoning_content",
	"choices.0.delta.reasoning",
	"choices.0.delta.thinking",
	"choices.0.message.reasoning_content",
	"choices.0.message.reasoning",
}

// streamInspector classifies SSE data lines and accumulates reasoning
// fragments as a side channel. It never mutates or delays the transport and
// never fails: unparseable or unexpectedly shaped payloads are skipped.
//
// An inspector is owned by exactly one request's pipeline instance.
type streamInspector struct {
	fragments  []string
	detected   bool
	hasContent bool

	// onFirstDetection fires once, on the first reasoning fragment seen for
	// this request. Used to bump the process-wide counter.
	onFirstDetection func()
}

// InspectLine examines one complete line emitted by the splitter. Lines
// without the data prefix (comments, blank keep-alives, event framing) are
// ignored, as are the [DONE] sentinel and anything that does not parse.
func (in *streamInspector) InspectLine(line string) {
	if !strings.HasPrefix(line, dataPrefix) {
		return
	}

	payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
	if payload == doneSentinel || payload == "" {
		return
	}
	if !gjson.Valid(payload) {
		return
	}

	in.inspectPayload(payload)
}

// inspectPayload probes a JSON payload for a thinking fragment and ordinary
// content. Shared by the streaming path (per data line) and the buffered path
// (whole response body once).
func (in *streamInspector) inspectPayload(payload string) {
	for _, path := range thinkingFieldPaths {
		if fragment := gjson.Get(payload, path).String(); fragment != "" {
			in.addFragment(fragment)
			break
		}
	}

	if gjson.Get(payload, "choices.0.delta.content").String() != "" ||
		gjson.Get(payload, "choices.0.message.content").String() != "" {
		in.hasContent = true
	}
}

func (in *streamInspector) addFragment(fragment string) {
	in.fragments = append(in.fragments, fragment)
	if !in.detected {
		in.detected = true
		if in.onFirstDetection != nil {
			in.onFirstDetection()
		}
	}
}

// Detected reports whether any reasoning fragment was seen.
func (in *streamInspector) Detected() bool {
	return in.detected
}

// HasContent reports whether ordinary completion content was seen.
func (in *streamInspector) HasContent() bool {
	return in.hasContent
}

// ThinkingText returns all reasoning fragments concatenated in arrival order.
func (in *streamInspector) ThinkingText() string {
	return strings.Join(in.fragments, "")
}
