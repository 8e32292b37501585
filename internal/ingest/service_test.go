package ingest

import (
	"context"
	"testing"

	"studymap/internal/ai"
	"studymap/internal/domain"
	"studymap/internal/store"
	apperrors "studymap/pkg/errors"
)

// fakeClassifier returns canned annotations and records its inputs.
type fakeClassifier struct {
	ann         *ai.Annotation
	enhanced    string
	classifyErr error
	enhanceErr  error

	gotTopic    string
	gotSkills   []string
	gotSummary  string
	gotExisting []domain.Entry
}

func (f *fakeClassifier) ClassifyEntry(_ context.Context, topic string, skills []string, summary string, existing []domain.Entry) (*ai.Annotation, error) {
	f.gotTopic, f.gotSkills, f.gotSummary, f.gotExisting = topic, skills, summary, existing
	if f.classifyErr != nil {
		return nil, f.classifyErr
	}
	return f.ann, nil
}

func (f *fakeClassifier) EnhanceNotes(_ context.Context, topic string, skills []string, summary string) (string, error) {
	f.gotTopic, f.gotSkills, f.gotSummary = topic, skills, summary
	if f.enhanceErr != nil {
		return "", f.enhanceErr
	}
	return f.enhanced, nil
}

func newTestService(t *testing.T, fc *fakeClassifier) (*Service, *store.Store) {
	t.Helper()
	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return New(st, fc), st
}

func TestIngestFirstEntry(t *testing.T) {
	fc := &fakeClassifier{ann: &ai.Annotation{
		Classification:  &domain.Classification{Domain: "Software Engineering", Complexity: "beginner"},
		Blindspots:      []ai.ProposedBlindspot{{Suggestion: "Read about channels", Category: "adjacent"}},
		EnhancedSummary: "Goroutines multiplex onto OS threads.",
	}}
	svc, st := newTestService(t, fc)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, "Go Concurrency", []string{"Go", "Concurrency"}, "Learned about goroutines.")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if res.EntryID == 0 {
		t.Fatal("expected an entry id")
	}
	if res.AnnotationErr != nil {
		t.Errorf("AnnotationErr = %v", res.AnnotationErr)
	}
	if len(fc.gotExisting) != 0 {
		t.Errorf("first entry should see no prior context, got %d", len(fc.gotExisting))
	}

	e, err := st.GetEntry(ctx, res.EntryID)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if e.Classification == nil || e.Classification.Domain != "Software Engineering" {
		t.Errorf("stored classification = %+v", e.Classification)
	}
	if e.EnhancedSummary == nil || *e.EnhancedSummary != "Goroutines multiplex onto OS threads." {
		t.Errorf("stored enhanced summary = %v", e.EnhancedSummary)
	}
	if len(e.SkillList()) != 2 {
		t.Errorf("skills = %v", e.SkillList())
	}

	if len(res.Blindspots) != 1 || res.Blindspots[0].Suggestion != "Read about channels" {
		t.Errorf("result blindspots = %+v", res.Blindspots)
	}
	if len(res.Connections) != 0 {
		t.Errorf("result connections = %+v", res.Connections)
	}
}

func TestIngestConnectsToExistingEntry(t *testing.T) {
	fc := &fakeClassifier{ann: &ai.Annotation{}}
	svc, st := newTestService(t, fc)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, "TCP", []string{"Networking"}, "Handshakes and windows.")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	fc.ann = &ai.Annotation{Connections: []ai.ProposedConnection{{
		EntryID:      first.EntryID,
		Relationship: "builds on",
		Strength:     0.9,
		Explanation:  "HTTP rides on TCP",
	}}}
	second, err := svc.Ingest(ctx, "HTTP", []string{"Networking"}, "Request lifecycle.")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if len(second.Connections) != 1 {
		t.Fatalf("result connections = %+v", second.Connections)
	}
	c := second.Connections[0]
	if c.SourceEntryID != second.EntryID || c.TargetEntryID != first.EntryID {
		t.Errorf("connection endpoints = %d -> %d", c.SourceEntryID, c.TargetEntryID)
	}
	if c.SourceTopic != "HTTP" || c.TargetTopic != "TCP" {
		t.Errorf("connection topics = %q -> %q", c.SourceTopic, c.TargetTopic)
	}
	if c.Explanation == nil || *c.Explanation != "HTTP rides on TCP" {
		t.Errorf("explanation = %v", c.Explanation)
	}

	// The classify call saw only the first entry as context
	if len(fc.gotExisting) != 1 || fc.gotExisting[0].ID != first.EntryID {
		t.Errorf("existing context = %+v", fc.gotExisting)
	}

	conns, err := st.ListConnections(ctx)
	if err != nil {
		t.Fatalf("ListConnections failed: %v", err)
	}
	if len(conns) != 1 {
		t.Errorf("stored connections = %d", len(conns))
	}
}

func TestIngestAIFailureStillStoresEntry(t *testing.T) {
	fc := &fakeClassifier{classifyErr: apperrors.NewBackendUnavailable("http://localhost:11434", nil)}
	svc, st := newTestService(t, fc)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, "Offline Topic", []string{"Resilience"}, "The model was down.")
	if err != nil {
		t.Fatalf("Ingest should not fail when the backend is down: %v", err)
	}
	if res.AnnotationErr == nil {
		t.Error("expected AnnotationErr to carry the backend failure")
	}
	if !apperrors.IsErrorType(res.AnnotationErr, apperrors.ErrorTypeBackend) {
		t.Errorf("AnnotationErr = %v", res.AnnotationErr)
	}

	e, err := st.GetEntry(ctx, res.EntryID)
	if err != nil {
		t.Fatalf("entry should exist despite AI failure: %v", err)
	}
	if e.Classification != nil {
		t.Errorf("classification should be absent, got %+v", e.Classification)
	}
	if e.EnhancedSummary != nil {
		t.Errorf("enhanced summary should be absent, got %v", e.EnhancedSummary)
	}
}

func TestIngestSkipsUnstorableConnection(t *testing.T) {
	fc := &fakeClassifier{ann: &ai.Annotation{
		Connections: []ai.ProposedConnection{{EntryID: 9999, Relationship: "phantom", Strength: 0.5}},
		Blindspots:  []ai.ProposedBlindspot{{Suggestion: "Still saved"}},
	}}
	svc, st := newTestService(t, fc)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, "Solo", []string{"X"}, "no peers yet")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if len(res.Connections) != 0 {
		t.Errorf("phantom connection should be skipped, got %+v", res.Connections)
	}
	if len(res.Blindspots) != 1 {
		t.Errorf("blindspot should survive the skipped connection, got %+v", res.Blindspots)
	}
	if _, err := st.GetEntry(ctx, res.EntryID); err != nil {
		t.Errorf("entry should exist: %v", err)
	}
}

func TestEnhanceEntry(t *testing.T) {
	fc := &fakeClassifier{ann: &ai.Annotation{}, enhanced: "Polished notes."}
	svc, st := newTestService(t, fc)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, "Hashing", []string{"Algorithms", "Security"}, "hash functions spread keys")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	enhanced, err := svc.EnhanceEntry(ctx, res.EntryID)
	if err != nil {
		t.Fatalf("EnhanceEntry failed: %v", err)
	}
	if enhanced != "Polished notes." {
		t.Errorf("enhanced = %q", enhanced)
	}
	if fc.gotTopic != "Hashing" {
		t.Errorf("enhance used topic %q", fc.gotTopic)
	}
	if len(fc.gotSkills) != 2 {
		t.Errorf("enhance used skills %v", fc.gotSkills)
	}

	e, err := st.GetEntry(ctx, res.EntryID)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if e.EnhancedSummary == nil || *e.EnhancedSummary != "Polished notes." {
		t.Errorf("stored enhanced summary = %v", e.EnhancedSummary)
	}
}

func TestEnhanceEntryNotFound(t *testing.T) {
	svc, _ := newTestService(t, &fakeClassifier{})

	_, err := svc.EnhanceEntry(context.Background(), 404)
	if !apperrors.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestEnhanceEntryBackendFailure(t *testing.T) {
	fc := &fakeClassifier{ann: &ai.Annotation{}}
	svc, st := newTestService(t, fc)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, "T", []string{"S"}, "notes")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	fc.enhanceErr = apperrors.NewBackendUnavailable("http://localhost:11434", nil)
	if _, err := svc.EnhanceEntry(ctx, res.EntryID); err == nil {
		t.Fatal("expected error")
	}

	e, err := st.GetEntry(ctx, res.EntryID)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if e.EnhancedSummary != nil {
		t.Errorf("failed enhancement must not write, got %v", e.EnhancedSummary)
	}
}

func TestReclassify(t *testing.T) {
	fc := &fakeClassifier{ann: &ai.Annotation{}}
	svc, st := newTestService(t, fc)
	ctx := context.Background()

	target, err := svc.Ingest(ctx, "Sorting", []string{"Algorithms"}, "quicksort pivots")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	other, err := svc.Ingest(ctx, "Heaps", []string{"Algorithms"}, "priority queues")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	fc.ann = &ai.Annotation{
		Classification: &domain.Classification{Domain: "Computer Science", Complexity: "intermediate"},
		Connections: []ai.ProposedConnection{{
			EntryID: other.EntryID, Relationship: "contrasts with", Strength: 0.6,
		}},
		Blindspots:      []ai.ProposedBlindspot{{Suggestion: "Study heapsort"}},
		EnhancedSummary: "Quicksort partitions around a pivot.",
	}
	res, err := svc.Reclassify(ctx, target.EntryID)
	if err != nil {
		t.Fatalf("Reclassify failed: %v", err)
	}

	// Context excludes the entry being reclassified
	for _, e := range fc.gotExisting {
		if e.ID == target.EntryID {
			t.Error("reclassify context must not include the entry itself")
		}
	}
	if len(fc.gotExisting) != 1 || fc.gotExisting[0].ID != other.EntryID {
		t.Errorf("existing context = %+v", fc.gotExisting)
	}

	e, err := st.GetEntry(ctx, target.EntryID)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if e.Classification == nil || e.Classification.Domain != "Computer Science" {
		t.Errorf("classification = %+v", e.Classification)
	}
	if e.EnhancedSummary == nil || *e.EnhancedSummary != "Quicksort partitions around a pivot." {
		t.Errorf("enhanced summary = %v", e.EnhancedSummary)
	}
	if len(res.Connections) != 1 || res.Connections[0].TargetEntryID != other.EntryID {
		t.Errorf("connections = %+v", res.Connections)
	}
	if len(res.Blindspots) != 1 {
		t.Errorf("blindspots = %+v", res.Blindspots)
	}
}

func TestReclassifyNotFound(t *testing.T) {
	svc, _ := newTestService(t, &fakeClassifier{})

	_, err := svc.Reclassify(context.Background(), 404)
	if !apperrors.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestReclassifyBackendFailureIsHard(t *testing.T) {
	fc := &fakeClassifier{ann: &ai.Annotation{}}
	svc, _ := newTestService(t, fc)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, "T", []string{"S"}, "notes")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	fc.classifyErr = apperrors.NewBackendUnavailable("http://localhost:11434", nil)
	if _, err := svc.Reclassify(ctx, res.EntryID); err == nil {
		t.Fatal("expected reclassify to propagate the backend failure")
	}
}

func TestUnclassified(t *testing.T) {
	fc := &fakeClassifier{classifyErr: apperrors.NewBackendUnavailable("down", nil)}
	svc, _ := newTestService(t, fc)
	ctx := context.Background()

	res, err := svc.Ingest(ctx, "Unlabeled", []string{"X"}, "stored while backend was down")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	ids, err := svc.Unclassified(ctx)
	if err != nil {
		t.Fatalf("Unclassified failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != res.EntryID {
		t.Errorf("unclassified = %v, want [%d]", ids, res.EntryID)
	}

	fc.classifyErr = nil
	fc.ann = &ai.Annotation{Classification: &domain.Classification{Domain: "X"}}
	if _, err := svc.Reclassify(ctx, res.EntryID); err != nil {
		t.Fatalf("Reclassify failed: %v", err)
	}

	ids, err = svc.Unclassified(ctx)
	if err != nil {
		t.Fatalf("Unclassified failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("unclassified after reclassify = %v", ids)
	}
}
