package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spaarke-dev/spaarke-sub021/internal/domain"
	"github.com/spaarke-dev/spaarke-sub021/internal/metrics"
)

// Event types recognized on the server-push stream.
const (
	EventThinking           = "thinking"
	EventDataverseOperation = "dataverse_operation"
	EventCanvasPatch        = "canvas_patch"
	EventMessage            = "message"
	EventDone               = "done"
	EventError              = "error"
	EventClarification      = "clarification"
	EventPlanPreview        = "plan_preview"
)

// DataverseOperation records a single Dataverse mutation performed on
// behalf of the client.
type DataverseOperation struct {
	Entity      string `json:"entity"`
	Action      string `json:"action"`
	RecordID    string `json:"recordId,omitempty"`
	Description string `json:"description,omitempty"`
}

// CanvasPatch is a structural patch applied to the client's canvas document.
type CanvasPatch struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// PlanStep is one step of a previewed execution plan.
type PlanStep struct {
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// StreamWriter frames domain events onto a chunked text/event-stream
// response. Each frame is an event-type line, a single-line JSON data line,
// and a blank-line terminator, flushed immediately — clients rely on
// line-buffered incremental parsing. Write errors mean the client went
// away; the owning request loop decides when to stop producing.
type StreamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewStreamWriter wraps an HTTP response for server-push streaming.
func NewStreamWriter(w http.ResponseWriter) (*StreamWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, domain.ErrStreamingUnsupported
	}
	return &StreamWriter{w: w, flusher: flusher}, nil
}

// WriteHeaders marks the response as an incrementally flushed, uncached,
// persistent-connection event stream. Must be called before the first frame.
func (sw *StreamWriter) WriteHeaders() {
	h := sw.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
}

// writeFrame is the single generic frame writer every event method goes
// through. Payloads never contain raw newlines: json.Marshal escapes them.
func (sw *StreamWriter) writeFrame(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("stream: marshal %s payload: %w", event, err)
	}
	if _, err := fmt.Fprintf(sw.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	sw.flusher.Flush()
	metrics.StreamFramesWritten.WithLabelValues(event).Inc()
	return nil
}

// WriteThinking emits a progress/thinking note.
func (sw *StreamWriter) WriteThinking(text string) error {
	return sw.writeFrame(EventThinking, map[string]string{"text": text})
}

// WriteDataverseOperation emits a record of a Dataverse operation.
func (sw *StreamWriter) WriteDataverseOperation(op *DataverseOperation) error {
	return sw.writeFrame(EventDataverseOperation, op)
}

// WriteCanvasPatch emits a structural canvas patch.
func (sw *StreamWriter) WriteCanvasPatch(patch *CanvasPatch) error {
	return sw.writeFrame(EventCanvasPatch, patch)
}

// WriteMessage emits a free-text message fragment. partial distinguishes
// incremental fragments from the final one, so clients know whether to
// keep buffering.
func (sw *StreamWriter) WriteMessage(text string, partial bool) error {
	return sw.writeFrame(EventMessage, map[string]any{"text": text, "partial": partial})
}

// WriteDone emits the terminal summary frame.
func (sw *StreamWriter) WriteDone(summary string, result *domain.JobResult) error {
	return sw.writeFrame(EventDone, map[string]any{"summary": summary, "result": result})
}

// WriteError emits an error frame.
func (sw *StreamWriter) WriteError(code, message string) error {
	return sw.writeFrame(EventError, map[string]string{"code": code, "message": message})
}

// WriteClarification emits a clarification request.
func (sw *StreamWriter) WriteClarification(question string) error {
	return sw.writeFrame(EventClarification, map[string]string{"question": question})
}

// WritePlanPreview emits a preview of the planned steps.
func (sw *StreamWriter) WritePlanPreview(steps []PlanStep) error {
	return sw.writeFrame(EventPlanPreview, map[string]any{"steps": steps})
}

// WriteStatusUpdate frames a job status update, picking the event type from
// the update kind: non-terminal updates stream as thinking notes, success
// and cancellation as done, failure as error.
func (sw *StreamWriter) WriteStatusUpdate(update *domain.StatusUpdate) error {
	event := EventThinking
	switch update.UpdateType {
	case domain.UpdateJobCompleted, domain.UpdateJobCancelled:
		event = EventDone
	case domain.UpdateJobFailed:
		event = EventError
	}
	return sw.writeFrame(event, update)
}
