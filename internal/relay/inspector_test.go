package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreamInspector_InspectLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		lines            []string
		expectedDetected bool
		expectedText     string
		expectedContent  bool
	}{
		{
			name:             "reasoning_content delta",
			lines:            []string{`data: {"choices":[{"delta":{"reasoning_content":"thinking..."}}]}`},
			expectedDetected: true,
			expectedText:     "thinking...",
		},
		{
			name:             "reasoning delta variant",
			lines:            []string{`data: {"choices":[{"delta":{"reasoning":"hmm"}}]}`},
			expectedDetected: true,
			expectedText:     "hmm",
		},
		{
			name:             "thinking delta variant",
			lines:            []string{`data: {"choices":[{"delta":{"thinking":"let me see"}}]}`},
			expectedDetected: true,
			expectedText:     "let me see",
		},
		{
			name:             "message level reasoning",
			lines:            []string{`data: {"choices":[{"message":{"reasoning_content":"final","content":"answer"}}]}`},
			expectedDetected: true,
			expectedText:     "final",
			expectedContent:  true,
		},
		{
			name:             "fragments accumulate in order",
			lines:            []string{`data: {"choices":[{"delta":{"reasoning_content":"a"}}]}`, `data: {"choices":[{"delta":{"reasoning_content":"b"}}]}`},
			expectedDetected: true,
			expectedText:     "ab",
		},
		{
			name:             "priority prefers reasoning_content over thinking",
			lines:            []string{`data: {"choices":[{"delta":{"thinking":"t","reasoning_content":"r"}}]}`},
			expectedDetected: true,
			expectedText:     "r",
		},
		{
			name:            "ordinary content only",
			lines:           []string{`data: {"choices":[{"delta":{"content":"hello"}}]}`},
			expectedContent: true,
		},
		{
			name:  "done sentinel carries no payload",
			lines: []string{"data: [DONE]"},
		},
		{
			name:  "unparseable payload is skipped",
			lines: []string{"data: not-json"},
		},
		{
			name:  "line without data prefix is ignored",
			lines: []string{": keep-alive", "event: done", "", `{"choices":[{"delta":{"reasoning_content":"x"}}]}`},
		},
		{
			name:  "wrong shapes are tolerated",
			lines: []string{`data: {"choices":"nope"}`, `data: {"choices":[]}`, `data: {"choices":[{"delta":null}]}`, `data: 42`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var in streamInspector
			for _, line := range tt.lines {
				in.InspectLine(line)
			}

			assert.Equal(t, tt.expectedDetected, in.Detected())
			assert.Equal(t, tt.expectedText, in.ThinkingText())
			assert.Equal(t, tt.expectedContent, in.HasContent())
		})
	}
}

// The first-detection hook must fire exactly once per request, no matter how
// many reasoning fragments the stream carries.
func TestStreamInspector_FirstDetectionFiresOnce(t *testing.T) {
	t.Parallel()

	fired := 0
	in := streamInspector{onFirstDetection: func() { fired++ }}

	for i := 0; i < 5; i++ {
		in.InspectLine(`data: {"choices":[{"delta":{"reasoning_content":"x"}}]}`)
	}

	assert.Equal(t, 1, fired)
	assert.True(t, in.Detected())
	assert.Equal(t, "xxxxx", in.ThinkingText())
}

func TestStreamInspector_BufferedPayload(t *testing.T) {
	t.Parallel()

	var in streamInspector
	in.inspectPayload(`{"choices":[{"message":{"role":"assistant","content":"42","reasoning_content":"deep thought"}}]}`)

	assert.True(t, in.Detected())
	assert.True(t, in.HasContent())
	assert.Equal(t, "deep thought", in.ThinkingText())
}
