package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spaarke-dev/spaarke-sub021/internal/domain"
	mockpub "github.com/spaarke-dev/spaarke-sub021/internal/publisher/mock"
	mockrepo "github.com/spaarke-dev/spaarke-sub021/internal/repository/mock"
)

func TestSubmitJob_Success(t *testing.T) {
	repo := mockrepo.NewJobRepository()
	pub := mockpub.NewPublisher()
	logger := zap.NewNop()

	uc := NewSubmitJobUsecase(repo, pub, logger)

	req := &domain.SubmitRequest{
		DocumentID: "doc-123",
		Operation:  domain.OpSummarize,
		SourceURL:  "https://storage.example.com/doc-123",
	}

	resp, err := uc.Execute(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp == nil {
		t.Fatal("expected non-nil response")
	}
	if resp.Status != domain.StatusPending {
		t.Errorf("expected status Pending, got %s", resp.Status)
	}

	jobs := repo.GetAll()
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job in repo, got %d", len(jobs))
	}
	if jobs[0].Operation != domain.OpSummarize {
		t.Errorf("expected operation summarize, got %s", jobs[0].Operation)
	}

	if len(pub.Published) != 1 {
		t.Fatalf("expected 1 published job, got %d", len(pub.Published))
	}
}

func TestSubmitJob_InvalidOperation(t *testing.T) {
	repo := mockrepo.NewJobRepository()
	pub := mockpub.NewPublisher()

	uc := NewSubmitJobUsecase(repo, pub, zap.NewNop())

	req := &domain.SubmitRequest{
		DocumentID: "doc-123",
		Operation:  domain.Operation("transmogrify"),
		SourceURL:  "https://storage.example.com/doc-123",
	}

	_, err := uc.Execute(context.Background(), req)
	if !errors.Is(err, domain.ErrInvalidOperation) {
		t.Errorf("expected ErrInvalidOperation, got %v", err)
	}
}

func TestSubmitJob_EmptyDocument(t *testing.T) {
	repo := mockrepo.NewJobRepository()
	pub := mockpub.NewPublisher()

	uc := NewSubmitJobUsecase(repo, pub, zap.NewNop())

	req := &domain.SubmitRequest{
		DocumentID: "   ",
		Operation:  domain.OpExtract,
		SourceURL:  "https://storage.example.com/doc",
	}

	_, err := uc.Execute(context.Background(), req)
	if !errors.Is(err, domain.ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestSubmitJob_SourceURLTooLong(t *testing.T) {
	repo := mockrepo.NewJobRepository()
	pub := mockpub.NewPublisher()

	uc := NewSubmitJobUsecase(repo, pub, zap.NewNop())

	req := &domain.SubmitRequest{
		DocumentID: "doc-123",
		Operation:  domain.OpExtract,
		SourceURL:  "https://storage.example.com/" + strings.Repeat("x", maxSourceURLLength),
	}

	_, err := uc.Execute(context.Background(), req)
	if !errors.Is(err, domain.ErrSourceURLTooLong) {
		t.Errorf("expected ErrSourceURLTooLong, got %v", err)
	}
}

func TestSubmitJob_PublishFailure(t *testing.T) {
	repo := mockrepo.NewJobRepository()
	pub := mockpub.NewPublisher()
	pub.PublishFn = func(ctx context.Context, job *domain.DocumentJob) error {
		return errors.New("connection refused")
	}

	uc := NewSubmitJobUsecase(repo, pub, zap.NewNop())

	req := &domain.SubmitRequest{
		DocumentID: "doc-123",
		Operation:  domain.OpRedact,
		SourceURL:  "https://storage.example.com/doc-123",
	}

	_, err := uc.Execute(context.Background(), req)
	if !errors.Is(err, domain.ErrPublishFailed) {
		t.Errorf("expected ErrPublishFailed, got %v", err)
	}

	// Job should be marked Failed since it will never be processed.
	jobs := repo.GetAll()
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Status != domain.StatusFailed {
		t.Errorf("expected Failed status, got %s", jobs[0].Status)
	}
	if jobs[0].Error == nil || jobs[0].Error.Code != "E_DISPATCH" {
		t.Errorf("expected E_DISPATCH error, got %+v", jobs[0].Error)
	}
}

func TestSubmitJob_RepoCreateFailure(t *testing.T) {
	repo := mockrepo.NewJobRepository()
	repo.CreateFunc = func(ctx context.Context, job *domain.DocumentJob) error {
		return errors.New("database unavailable")
	}
	pub := mockpub.NewPublisher()

	uc := NewSubmitJobUsecase(repo, pub, zap.NewNop())

	req := &domain.SubmitRequest{
		DocumentID: "doc-123",
		Operation:  domain.OpSummarize,
		SourceURL:  "https://storage.example.com/doc-123",
	}

	_, err := uc.Execute(context.Background(), req)
	if err == nil {
		t.Error("expected error on repo failure")
	}
	// Should NOT have published
	if len(pub.Published) != 0 {
		t.Error("should not publish when repo create fails")
	}
}

func TestGetJob_Success(t *testing.T) {
	repo := mockrepo.NewJobRepository()
	pub := mockpub.NewPublisher()
	logger := zap.NewNop()

	submitUC := NewSubmitJobUsecase(repo, pub, logger)
	resp, err := submitUC.Execute(context.Background(), &domain.SubmitRequest{
		DocumentID: "doc-123",
		Operation:  domain.OpSummarize,
		SourceURL:  "https://storage.example.com/doc-123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	getUC := NewGetJobUsecase(repo, logger)
	job, err := getUC.Execute(context.Background(), resp.JobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.JobID != resp.JobID {
		t.Errorf("expected job ID %s, got %s", resp.JobID, job.JobID)
	}
}

func TestGetJob_NotFound(t *testing.T) {
	repo := mockrepo.NewJobRepository()
	getUC := NewGetJobUsecase(repo, zap.NewNop())

	_, err := getUC.Execute(context.Background(), [16]byte{})
	if !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}
