package types

import (
	"fmt"
	"strings"
)

// TopicLabel is the closed set of review topics.
type TopicLabel uint8

const (
	TopicGeneral TopicLabel = iota
	TopicQuality
	TopicPrice
	TopicService
	TopicPerformance
	TopicUsability
)

// TopicPhrasesVersion identifies the phrase table below. Bump it whenever a
// phrase changes, since classifier output is matched against these strings.
const TopicPhrasesVersion = 1

// TopicPhrasesV1 maps each topic to the candidate phrase offered to
// zero-shot classifiers.
var TopicPhrasesV1 = map[TopicLabel]string{
	TopicQuality:     "Product Quality, Durability, and Build",
	TopicPrice:       "Price, Value for Money, and Cost",
	TopicService:     "Customer Service, Shipping, and Returns",
	TopicPerformance: "Performance, Speed, and Reliability",
	TopicUsability:   "Ease of Use and Design",
	TopicGeneral:     "General Experience",
}

// AllTopics lists topics in canonical candidate order.
var AllTopics = []TopicLabel{
	TopicQuality,
	TopicPrice,
	TopicService,
	TopicPerformance,
	TopicUsability,
	TopicGeneral,
}

var topicNames = map[TopicLabel]string{
	TopicGeneral:     "General",
	TopicQuality:     "Quality",
	TopicPrice:       "Price",
	TopicService:     "Service",
	TopicPerformance: "Performance",
	TopicUsability:   "Usability",
}

// String returns the topic's display name.
func (t TopicLabel) String() string {
	if name, ok := topicNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TopicLabel(%d)", uint8(t))
}

// Phrase returns the canonical candidate phrase for the topic.
func (t TopicLabel) Phrase() string {
	return TopicPhrasesV1[t]
}

// TopicPhrases returns the candidate phrases in AllTopics order.
func TopicPhrases() []string {
	phrases := make([]string, len(AllTopics))
	for i, t := range AllTopics {
		phrases[i] = t.Phrase()
	}
	return phrases
}

// TopicFromPhrase maps a classifier label back to its topic by exact match.
func TopicFromPhrase(phrase string) (TopicLabel, bool) {
	for t, p := range TopicPhrasesV1 {
		if p == phrase {
			return t, true
		}
	}
	return TopicGeneral, false
}

// ParseTopic parses a topic display name, case-insensitively.
func ParseTopic(s string) (TopicLabel, error) {
	for t, name := range topicNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return TopicGeneral, fmt.Errorf("%w: %q", ErrUnknownTopic, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t TopicLabel) MarshalText() ([]byte, error) {
	if _, ok := topicNames[t]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTopic, uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TopicLabel) UnmarshalText(text []byte) error {
	parsed, err := ParseTopic(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// SentimentLabel is the closed set of review polarities.
type SentimentLabel uint8

const (
	SentimentNeutral SentimentLabel = iota
	SentimentPositive
	SentimentNegative
)

var sentimentNames = map[SentimentLabel]string{
	SentimentNeutral:  "Neutral",
	SentimentPositive: "Positive",
	SentimentNegative: "Negative",
}

// String returns the sentiment's display name.
func (s SentimentLabel) String() string {
	if name, ok := sentimentNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SentimentLabel(%d)", uint8(s))
}

// ParseSentiment parses a sentiment display name, case-insensitively.
func ParseSentiment(s string) (SentimentLabel, error) {
	for l, name := range sentimentNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return l, nil
		}
	}
	return SentimentNeutral, fmt.Errorf("%w: %q", ErrUnknownMood, s)
}

// MarshalText implements encoding.TextMarshaler.
func (s SentimentLabel) MarshalText() ([]byte, error) {
	if _, ok := sentimentNames[s]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMood, uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SentimentLabel) UnmarshalText(text []byte) error {
	parsed, err := ParseSentiment(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
