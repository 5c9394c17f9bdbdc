package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/freshspot/jobharvest/internal/prompts"
)

type fakeGenerator struct {
	calls    []string
	failFor  map[string]error
	response string
}

func (g *fakeGenerator) Generate(ctx context.Context, instruction, prompt string) (string, error) {
	g.calls = append(g.calls, instruction)
	for topic, err := range g.failFor {
		if instruction == prompts.Instruction(topic) {
			return "", err
		}
	}
	return g.response, nil
}

func (g *fakeGenerator) GetModel() string { return "test-model" }

func newTestEnricher(gen Generator) (*Enricher, *[]time.Duration) {
	var sleeps []time.Duration
	e := NewEnricher(gen, 5*time.Second)
	e.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	e.jitter = func() time.Duration { return 0 }
	return e, &sleeps
}

func TestEnrichAllTopics(t *testing.T) {
	gen := &fakeGenerator{response: "Some **generated** text."}
	e, sleeps := newTestEnricher(gen)

	sections := e.Enrich(context.Background(), prompts.Details{
		CompanyName: "Acme",
		JobRole:     "Backend Engineer",
	})

	if len(sections) != len(prompts.Topics) {
		t.Fatalf("sections = %d, want %d", len(sections), len(prompts.Topics))
	}
	for _, topic := range prompts.Topics {
		html, ok := sections[topic]
		if !ok {
			t.Errorf("missing topic %q", topic)
			continue
		}
		if !strings.Contains(html, "<strong>generated</strong>") {
			t.Errorf("topic %q not rendered to HTML: %q", topic, html)
		}
	}
	if len(gen.calls) != len(prompts.Topics) {
		t.Errorf("generator called %d times, want %d", len(gen.calls), len(prompts.Topics))
	}
	// Cooling runs between topics only, never after the last one.
	if len(*sleeps) != len(prompts.Topics)-1 {
		t.Errorf("cooling delays = %d, want %d", len(*sleeps), len(prompts.Topics)-1)
	}
}

func TestEnrichFailureKeepsGoing(t *testing.T) {
	genErr := errors.New("model overloaded")
	gen := &fakeGenerator{
		response: "fine",
		failFor:  map[string]error{prompts.TopicAboutCompany: genErr},
	}
	e, _ := newTestEnricher(gen)

	sections := e.Enrich(context.Background(), prompts.Details{CompanyName: "Acme"})

	if len(sections) != len(prompts.Topics) {
		t.Fatalf("sections = %d, want %d", len(sections), len(prompts.Topics))
	}
	marker := sections[prompts.TopicAboutCompany]
	if !strings.Contains(marker, "Error generating content") || !strings.Contains(marker, "model overloaded") {
		t.Errorf("failed topic marker = %q", marker)
	}
	// Topics after the failure are still generated.
	if strings.Contains(sections[prompts.TopicSelectionProcess], "Error generating") {
		t.Errorf("later topic should have succeeded: %q", sections[prompts.TopicSelectionProcess])
	}
	if len(gen.calls) != len(prompts.Topics) {
		t.Errorf("generator called %d times, want all %d topics attempted", len(gen.calls), len(prompts.Topics))
	}
}

func TestEnrichEveryTopicFails(t *testing.T) {
	genErr := errors.New("quota exhausted")
	failAll := make(map[string]error, len(prompts.Topics))
	for _, topic := range prompts.Topics {
		failAll[topic] = genErr
	}
	gen := &fakeGenerator{failFor: failAll}
	e, _ := newTestEnricher(gen)

	sections := e.Enrich(context.Background(), prompts.Details{CompanyName: "Acme"})

	if len(sections) != len(prompts.Topics) {
		t.Fatalf("sections = %d, want %d even when every call fails", len(sections), len(prompts.Topics))
	}
	for _, topic := range prompts.Topics {
		if !strings.Contains(sections[topic], "Error generating content") {
			t.Errorf("topic %q = %q, want error marker", topic, sections[topic])
		}
	}
}

func TestEnrichCanceledContextFillsRemaining(t *testing.T) {
	gen := &fakeGenerator{response: "ok"}
	e := NewEnricher(gen, 5*time.Second)
	e.jitter = func() time.Duration { return 0 }
	e.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	sections := e.Enrich(context.Background(), prompts.Details{CompanyName: "Acme"})

	if len(sections) != len(prompts.Topics) {
		t.Fatalf("sections = %d, want %d", len(sections), len(prompts.Topics))
	}
	// Only the first topic ran; the rest carry markers.
	if strings.Contains(sections[prompts.Topics[0]], "Error generating") {
		t.Errorf("first topic should have succeeded: %q", sections[prompts.Topics[0]])
	}
	for _, topic := range prompts.Topics[1:] {
		if !strings.Contains(sections[topic], "Error generating content") {
			t.Errorf("topic %q = %q, want error marker after cancellation", topic, sections[topic])
		}
	}
	if len(gen.calls) != 1 {
		t.Errorf("generator called %d times, want 1", len(gen.calls))
	}
}
