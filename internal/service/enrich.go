package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/freshspot/jobharvest/internal/logger"
	"github.com/freshspot/jobharvest/internal/markup"
	"github.com/freshspot/jobharvest/internal/prompts"
)

// Generator produces one completion for an instruction/prompt pair.
// Implemented by llm.Caller.
type Generator interface {
	Generate(ctx context.Context, instruction, prompt string) (string, error)
	GetModel() string
}

// Enricher generates the five descriptive sections for one posting.
type Enricher struct {
	gen     Generator
	cooling time.Duration

	// injectable for deterministic tests
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() time.Duration
}

// NewEnricher creates an enricher. cooling is the base delay inserted
// between topic generations so a burst of sections does not trip the quota.
func NewEnricher(gen Generator, cooling time.Duration) *Enricher {
	return &Enricher{
		gen:     gen,
		cooling: cooling,
		sleep:   sleepCtx,
		jitter:  coolingJitter,
	}
}

// Enrich generates all five sections in their fixed order and returns them
// as HTML keyed by topic. The result always carries exactly the five topic
// keys: a topic whose generation fails gets an inline error marker, and the
// next topic is still attempted. Duplicate-cost control happens inside the
// generator; this loop only adds the inter-topic cooling delay, skipped
// after the final topic.
func (e *Enricher) Enrich(ctx context.Context, d prompts.Details) map[string]string {
	log := logger.FromContext(ctx)
	sections := make(map[string]string, len(prompts.Topics))

	for i, topic := range prompts.Topics {
		content, err := e.gen.Generate(ctx, prompts.Instruction(topic), prompts.BuildPrompt(topic, d))
		if err != nil {
			log.WithError(err).WithField("topic", topic).Error("Section generation failed")
			sections[topic] = fmt.Sprintf("<p>Error generating content: %v</p>", err)
		} else {
			sections[topic] = markup.ToHTML(content)
		}

		if i < len(prompts.Topics)-1 {
			if err := e.sleep(ctx, e.cooling+e.jitter()); err != nil {
				// Context gone: mark the remaining topics and stop calling out.
				for _, rest := range prompts.Topics[i+1:] {
					sections[rest] = fmt.Sprintf("<p>Error generating content: %v</p>", err)
				}
				return sections
			}
		}
	}
	return sections
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// coolingJitter spreads inter-topic delays by 1-3s.
func coolingJitter() time.Duration {
	return time.Second + time.Duration(rand.Int63n(int64(2*time.Second)))
}
