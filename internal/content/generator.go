// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content produces post drafts for a topic. The primary strategy
// asks an external text-completion provider; any provider error (timeout,
// auth, quota, malformed response) falls back to local templates, so
// Generate never fails.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"pulsepost/internal/models"
	"pulsepost/internal/topics"
)

// hashtagReserve is how many characters of the platform budget are left
// free for the hashtag block appended after the body.
const hashtagReserve = 30

// truncationMarker is appended when an over-budget body is cut at a word
// boundary.
const truncationMarker = "…"

// Completer is the external text-completion surface the primary strategy
// calls. *ai.Registry satisfies it.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Options configure a Generator. Zero values take the platform defaults.
type Options struct {
	CharBudget   int           // whole-post character budget, default 280
	HashtagCount int           // hashtags per post, default 15
	Timeout      time.Duration // primary strategy ceiling, default 20s
	Seed         int64         // rand seed; 0 seeds from the clock
}

// strategy is one of the two body-text variants. Both produce text for a
// topic; the generator selects the fallback when the primary errors.
type strategy interface {
	compose(ctx context.Context, topic models.Topic) (string, error)
	method() models.GenerationMethod
}

// Generator assembles drafts: body text from one of the two strategies
// plus exactly HashtagCount hashtags.
type Generator struct {
	primary  strategy // nil when no provider is configured
	fallback strategy

	charBudget   int
	hashtagCount int
	timeout      time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Generator. completer may be nil, in which case every
// draft uses the fallback strategy.
func New(completer Completer, opts Options) *Generator {
	if opts.CharBudget == 0 {
		opts.CharBudget = 280
	}
	if opts.HashtagCount == 0 {
		opts.HashtagCount = 15
	}
	if opts.Timeout == 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	g := &Generator{
		fallback:     templateStrategy{},
		charBudget:   opts.CharBudget,
		hashtagCount: opts.HashtagCount,
		timeout:      opts.Timeout,
		rng:          rand.New(rand.NewSource(opts.Seed)),
	}
	if completer != nil {
		g.primary = llmStrategy{completer: completer, budget: opts.CharBudget}
	}
	return g
}

// Generate produces a draft for the topic. It never fails: a primary
// strategy error is absorbed and the template fallback takes over.
func (g *Generator) Generate(ctx context.Context, topic models.Topic) models.ContentDraft {
	body, method := g.composeBody(ctx, topic)

	return models.ContentDraft{
		Topic:    topic,
		Body:     truncate(body, g.charBudget-hashtagReserve),
		Hashtags: g.hashtags(topic),
		Method:   method,
	}
}

// composeBody runs the primary strategy under its timeout and falls back
// to templates on any error.
func (g *Generator) composeBody(ctx context.Context, topic models.Topic) (string, models.GenerationMethod) {
	if g.primary != nil {
		genCtx, cancel := context.WithTimeout(ctx, g.timeout)
		body, err := g.primary.compose(genCtx, topic)
		cancel()
		if err == nil && strings.TrimSpace(body) != "" {
			return strings.TrimSpace(body), g.primary.method()
		}
		slog.Warn("primary text generation failed, using fallback",
			"topic", topic.Name,
			"error", err,
		)
	}

	body, _ := g.fallback.compose(ctx, topic)
	return body, g.fallback.method()
}

// hashtags returns exactly hashtagCount tags for the topic: the category
// pool plus a tag derived from the topic name, in a shuffled order so
// consecutive posts on the same topic are not byte-identical.
func (g *Generator) hashtags(topic models.Topic) []string {
	pool := append([]string(nil), topics.Hashtags(topic.Category)...)

	// A topic-derived tag keeps the set relevant to the exact subject.
	if derived := deriveTag(topic.Name); derived != "" && !contains(pool, derived) {
		pool = append(pool, derived)
	}

	// Pad from the other categories if the pool is short.
	if len(pool) < g.hashtagCount {
		for _, tag := range topics.AllHashtags(topic.Category) {
			if !contains(pool, tag) {
				pool = append(pool, tag)
			}
			if len(pool) >= g.hashtagCount {
				break
			}
		}
	}

	g.mu.Lock()
	g.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	g.mu.Unlock()

	return pool[:g.hashtagCount]
}

// deriveTag turns a topic name into a CamelCase hashtag,
// e.g. "Lightning Network basics" -> "#LightningNetworkBasics".
func deriveTag(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		runes := []rune(word)
		for i, r := range runes {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				continue
			}
			if i == 0 {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(r)
			}
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return "#" + b.String()
}

// truncate cuts text at the last whole-word boundary before limit and
// appends the truncation marker. Text within the limit is returned as is.
func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	cut := limit - len([]rune(truncationMarker))
	if cut <= 0 {
		return truncationMarker
	}

	// Walk back to the last space so no word is split.
	boundary := cut
	for boundary > 0 && !unicode.IsSpace(runes[boundary]) {
		boundary--
	}
	if boundary == 0 {
		boundary = cut // single giant word; hard cut
	}

	return strings.TrimRight(string(runes[:boundary]), " \t\n") + truncationMarker
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// --- primary strategy ---

const systemPrompt = "You are an expert in Bitcoin, Lightning Network, Nostr, and online privacy, creating educational content for social media."

// llmStrategy asks the external completion provider for a post body.
type llmStrategy struct {
	completer Completer
	budget    int
}

func (s llmStrategy) method() models.GenerationMethod { return models.MethodPrimary }

func (s llmStrategy) compose(ctx context.Context, topic models.Topic) (string, error) {
	prompt := fmt.Sprintf(
		"Write a concise, informative post about %s in the context of %s. "+
			"The post should be educational, engaging, and under %d characters to leave room for hashtags. "+
			"Include a thought-provoking question or call to action. Do not include hashtags in your response.",
		topic.Name, topic.Category, s.budget-hashtagReserve,
	)
	return s.completer.Complete(ctx, systemPrompt, prompt)
}

// --- fallback strategy ---

// templateStrategy fills a local template with the topic and category.
// Pure local computation; compose never returns an error.
type templateStrategy struct{}

func (templateStrategy) method() models.GenerationMethod { return models.MethodFallback }

func (templateStrategy) compose(_ context.Context, topic models.Topic) (string, error) {
	tmpl := topics.Templates()
	// Deterministic per topic: the template index derives from the name,
	// so the same topic always renders the same fallback body.
	idx := 0
	for _, r := range topic.Name {
		idx += int(r)
	}
	body := tmpl[idx%len(tmpl)]
	body = strings.ReplaceAll(body, "{topic}", topic.Name)
	body = strings.ReplaceAll(body, "{category}", string(topic.Category))
	return body, nil
}
