package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/soundprediction/reviewgraph/pkg/nlp"
)

const llmSystemPrompt = `You are a zero-shot text classifier for product reviews.
For every numbered review, choose exactly one topic from the candidate list, copied verbatim.
Reply with a JSON object of the form {"topics": [{"index": 1, "label": "<candidate>"}]} and nothing else.`

var (
	thinkTags   = regexp.MustCompile(`(?s)<think>.*?</think>`)
	codeFencing = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")
)

// LLMBackend classifies a whole batch with one chat completion.
type LLMBackend struct {
	client nlp.Client
}

// NewLLMBackend creates a backend over an OpenAI-compatible chat client.
func NewLLMBackend(client nlp.Client) *LLMBackend {
	return &LLMBackend{client: client}
}

type llmReply struct {
	Topics []struct {
		Index int    `json:"index"`
		Label string `json:"label"`
	} `json:"topics"`
}

// Classify implements ZeroShot. Reply entries are matched to inputs by their
// 1-based index; texts the model skipped get an empty ranking.
func (b *LLMBackend) Classify(ctx context.Context, texts []string, candidates []string) ([]Ranking, error) {
	messages := []nlp.Message{
		nlp.NewSystemMessage(llmSystemPrompt),
		nlp.NewUserMessage(buildPrompt(texts, candidates)),
	}

	resp, err := b.client.ChatWithStructuredOutput(ctx, messages, nil)
	if err != nil {
		return nil, err
	}

	reply, err := parseReply(resp.Content)
	if err != nil {
		return nil, err
	}

	rankings := make([]Ranking, len(texts))
	for _, t := range reply.Topics {
		i := t.Index - 1
		if i < 0 || i >= len(texts) || len(rankings[i].Labels) > 0 {
			continue
		}
		rankings[i] = Ranking{Labels: []string{strings.TrimSpace(t.Label)}}
	}
	return rankings, nil
}

func buildPrompt(texts []string, candidates []string) string {
	var b strings.Builder
	b.WriteString("Candidate topics:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	b.WriteString("\nReviews:\n")
	for i, t := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.ReplaceAll(t, "\n", " "))
	}
	return b.String()
}

func parseReply(content string) (*llmReply, error) {
	content = strings.TrimSpace(thinkTags.ReplaceAllString(content, ""))
	if m := codeFencing.FindStringSubmatch(content); m != nil {
		content = m[1]
	}

	var reply llmReply
	if err := json.Unmarshal([]byte(content), &reply); err == nil {
		return &reply, nil
	}

	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return nil, fmt.Errorf("json repair failed: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &reply); err != nil {
		return nil, fmt.Errorf("unmarshal failed after repair: %w", err)
	}
	return &reply, nil
}
