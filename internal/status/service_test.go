package status

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spaarke-dev/spaarke-sub021/internal/broker"
	mockbroker "github.com/spaarke-dev/spaarke-sub021/internal/broker/mock"
	"github.com/spaarke-dev/spaarke-sub021/internal/domain"
)

func newTestService(b broker.Broker) *Service {
	return NewService(b, DefaultHealthTimeout, zap.NewNop())
}

func decodeUpdates(t *testing.T, payloads [][]byte) []domain.StatusUpdate {
	t.Helper()
	updates := make([]domain.StatusUpdate, 0, len(payloads))
	for _, p := range payloads {
		var u domain.StatusUpdate
		if err := json.Unmarshal(p, &u); err != nil {
			t.Fatalf("failed to decode published update: %v", err)
		}
		updates = append(updates, u)
	}
	return updates
}

func TestPublish_SequencesAreGapFree(t *testing.T) {
	b := mockbroker.NewBroker()
	svc := newTestService(b)
	jobID := uuid.New()

	for i := 1; i <= 5; i++ {
		ok := svc.PublishStatusUpdate(context.Background(), domain.NewProgressUpdate(jobID, domain.StatusRunning, i*10, "analyze"))
		if !ok {
			t.Fatalf("publish %d failed", i)
		}
	}

	updates := decodeUpdates(t, b.PublishedOn(ChannelFor(jobID)))
	if len(updates) != 5 {
		t.Fatalf("expected 5 published updates, got %d", len(updates))
	}
	for i, u := range updates {
		if u.Sequence != int64(i+1) {
			t.Errorf("update %d: expected sequence %d, got %d", i, i+1, u.Sequence)
		}
	}
}

func TestPublish_SequencesUnderConcurrency(t *testing.T) {
	b := mockbroker.NewBroker()
	svc := newTestService(b)
	jobID := uuid.New()

	const goroutines = 10
	const perGoroutine = 20

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				svc.PublishStatusUpdate(context.Background(), domain.NewProgressUpdate(jobID, domain.StatusRunning, 50, "analyze"))
			}
		}()
	}
	wg.Wait()

	updates := decodeUpdates(t, b.PublishedOn(ChannelFor(jobID)))
	if len(updates) != goroutines*perGoroutine {
		t.Fatalf("expected %d updates, got %d", goroutines*perGoroutine, len(updates))
	}

	seqs := make([]int64, 0, len(updates))
	for _, u := range updates {
		seqs = append(seqs, u.Sequence)
	}
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	for i, seq := range seqs {
		if seq != int64(i+1) {
			t.Fatalf("sequence gap or duplicate: position %d holds %d", i, seq)
		}
	}
}

func TestPublish_IndependentCountersPerJob(t *testing.T) {
	b := mockbroker.NewBroker()
	svc := newTestService(b)
	jobA := uuid.New()
	jobB := uuid.New()

	svc.PublishStatusUpdate(context.Background(), domain.NewProgressUpdate(jobA, domain.StatusRunning, 10, ""))
	svc.PublishStatusUpdate(context.Background(), domain.NewProgressUpdate(jobA, domain.StatusRunning, 20, ""))
	svc.PublishStatusUpdate(context.Background(), domain.NewProgressUpdate(jobB, domain.StatusRunning, 10, ""))

	updatesB := decodeUpdates(t, b.PublishedOn(ChannelFor(jobB)))
	if len(updatesB) != 1 || updatesB[0].Sequence != 1 {
		t.Errorf("expected job B to start at sequence 1, got %+v", updatesB)
	}
}

func TestPublish_NoBrokerReturnsFalse(t *testing.T) {
	unconfigured := broker.NewRedisBroker(nil, zap.NewNop())
	svc := newTestService(unconfigured)
	jobID := uuid.New()
	ctx := context.Background()

	if svc.PublishStatusUpdate(ctx, domain.NewProgressUpdate(jobID, domain.StatusRunning, 10, "")) {
		t.Error("PublishStatusUpdate should return false without a broker")
	}
	if svc.UpdateJobStatus(ctx, jobID, domain.StatusRunning, 50, "analyze", nil) {
		t.Error("UpdateJobStatus should return false without a broker")
	}
	if svc.CompleteJob(ctx, jobID, &domain.JobResult{ArtifactType: "document"}) {
		t.Error("CompleteJob should return false without a broker")
	}
	if svc.FailJob(ctx, jobID, &domain.JobError{Code: "E_TEST"}) {
		t.Error("FailJob should return false without a broker")
	}
}

func TestSubscribe_NoBrokerYieldsEmptySequence(t *testing.T) {
	unconfigured := broker.NewRedisBroker(nil, zap.NewNop())
	svc := newTestService(unconfigured)

	updates := svc.SubscribeToJob(context.Background(), uuid.New())

	select {
	case _, ok := <-updates:
		if ok {
			t.Error("expected empty sequence, got an update")
		}
	case <-time.After(time.Second):
		t.Error("subscription should complete immediately without a broker")
	}
}

func TestUpdateJobStatus_ChoosesUpdateType(t *testing.T) {
	b := mockbroker.NewBroker()
	svc := newTestService(b)
	jobID := uuid.New()

	svc.UpdateJobStatus(context.Background(), jobID, domain.StatusRunning, 30, "analyze", nil)
	svc.UpdateJobStatus(context.Background(), jobID, domain.StatusRunning, 60, "render", &domain.CompletedPhase{
		Name:        "analyze",
		CompletedAt: time.Now().UTC(),
		DurationMs:  1200,
	})

	updates := decodeUpdates(t, b.PublishedOn(ChannelFor(jobID)))
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].UpdateType != domain.UpdateProgress {
		t.Errorf("expected Progress, got %s", updates[0].UpdateType)
	}
	if updates[1].UpdateType != domain.UpdateStageComplete {
		t.Errorf("expected StageComplete, got %s", updates[1].UpdateType)
	}
	if updates[1].CompletedPhase == nil || updates[1].CompletedPhase.Name != "analyze" {
		t.Errorf("expected completed phase analyze, got %+v", updates[1].CompletedPhase)
	}
}

func TestCompleteJob_ForcesTerminalShape(t *testing.T) {
	b := mockbroker.NewBroker()
	svc := newTestService(b)
	jobID := uuid.New()

	ok := svc.CompleteJob(context.Background(), jobID, &domain.JobResult{
		ArtifactType: "document",
		ArtifactID:   "doc-42",
		URL:          "https://storage.example.com/doc-42",
	})
	if !ok {
		t.Fatal("expected publish to succeed")
	}

	payloads := b.PublishedOn(ChannelFor(jobID))
	if len(payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(payloads))
	}

	raw := string(payloads[0])
	for _, want := range []string{`"updateType":"JobCompleted"`, `"progress":100`, `"status":"Completed"`} {
		if !strings.Contains(raw, want) {
			t.Errorf("payload missing %s: %s", want, raw)
		}
	}

	updates := decodeUpdates(t, payloads)
	if updates[0].Result == nil || updates[0].Result.ArtifactID != "doc-42" {
		t.Errorf("expected result artifact doc-42, got %+v", updates[0].Result)
	}
}

func TestFailJob_CarriesErrorCode(t *testing.T) {
	b := mockbroker.NewBroker()
	svc := newTestService(b)
	jobID := uuid.New()

	svc.FailJob(context.Background(), jobID, &domain.JobError{
		Code:      "E_CONVERT",
		Message:   "conversion backend rejected the document",
		Retryable: true,
	})

	updates := decodeUpdates(t, b.PublishedOn(ChannelFor(jobID)))
	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	u := updates[0]
	if u.UpdateType != domain.UpdateJobFailed {
		t.Errorf("expected JobFailed, got %s", u.UpdateType)
	}
	if u.Status != domain.StatusFailed {
		t.Errorf("expected status Failed, got %s", u.Status)
	}
	if u.Error == nil || u.Error.Code != "E_CONVERT" {
		t.Errorf("expected error code E_CONVERT, got %+v", u.Error)
	}
	if u.Error != nil && !u.Error.Retryable {
		t.Error("expected retryable flag to survive")
	}
}

func TestSubscribe_ReceivesOrderedUpdatesUntilTerminal(t *testing.T) {
	b := mockbroker.NewBroker()
	svc := newTestService(b)
	jobID := uuid.New()
	ctx := context.Background()

	updates := svc.SubscribeToJob(ctx, jobID)

	for _, progress := range []int{25, 50, 75} {
		if !svc.UpdateJobStatus(ctx, jobID, domain.StatusRunning, progress, "analyze", nil) {
			t.Fatalf("publish at %d%% failed", progress)
		}
	}
	svc.CompleteJob(ctx, jobID, &domain.JobResult{ArtifactType: "document", ArtifactID: "doc-1"})

	var received []domain.StatusUpdate
	deadline := time.After(2 * time.Second)
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				goto done
			}
			received = append(received, u)
		case <-deadline:
			t.Fatal("timed out waiting for subscription to terminate")
		}
	}
done:
	if len(received) != 4 {
		t.Fatalf("expected 4 updates, got %d", len(received))
	}
	wantProgress := []int{25, 50, 75, 100}
	for i, u := range received {
		if u.Sequence != int64(i+1) {
			t.Errorf("update %d: expected sequence %d, got %d", i, i+1, u.Sequence)
		}
		if u.Progress != wantProgress[i] {
			t.Errorf("update %d: expected progress %d, got %d", i, wantProgress[i], u.Progress)
		}
	}
	if received[3].UpdateType != domain.UpdateJobCompleted {
		t.Errorf("expected terminal JobCompleted, got %s", received[3].UpdateType)
	}
}

func TestSubscribe_CancellationClosesSequence(t *testing.T) {
	b := mockbroker.NewBroker()
	svc := newTestService(b)
	jobID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())
	updates := svc.SubscribeToJob(ctx, jobID)
	cancel()

	select {
	case _, ok := <-updates:
		if ok {
			t.Error("expected closed channel after cancellation")
		}
	case <-time.After(time.Second):
		t.Error("subscription did not observe cancellation")
	}
}

func TestSubscribe_MalformedPayloadIsSkipped(t *testing.T) {
	b := mockbroker.NewBroker()
	svc := newTestService(b)
	jobID := uuid.New()
	ctx := context.Background()

	updates := svc.SubscribeToJob(ctx, jobID)

	if _, err := b.Publish(ctx, ChannelFor(jobID), []byte("not json")); err != nil {
		t.Fatalf("mock publish failed: %v", err)
	}
	svc.CompleteJob(ctx, jobID, nil)

	select {
	case u := <-updates:
		if u.UpdateType != domain.UpdateJobCompleted {
			t.Errorf("expected JobCompleted after skipping garbage, got %s", u.UpdateType)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
	}
}

func TestIsHealthy_WithinBudget(t *testing.T) {
	b := mockbroker.NewBroker()
	b.PingFn = func(ctx context.Context) (time.Duration, error) {
		return 5 * time.Millisecond, nil
	}
	svc := newTestService(b)

	if !svc.IsHealthy(context.Background()) {
		t.Error("expected healthy when ping is within budget")
	}
}

func TestIsHealthy_ExceedsBudget(t *testing.T) {
	b := mockbroker.NewBroker()
	b.PingFn = func(ctx context.Context) (time.Duration, error) {
		return 1500 * time.Millisecond, nil
	}
	svc := newTestService(b)

	if svc.IsHealthy(context.Background()) {
		t.Error("expected unhealthy when ping exceeds the 1000ms budget")
	}
}

func TestIsHealthy_BrokerUnavailable(t *testing.T) {
	unconfigured := broker.NewRedisBroker(nil, zap.NewNop())
	svc := newTestService(unconfigured)

	if svc.IsHealthy(context.Background()) {
		t.Error("expected unhealthy without a broker")
	}
}
