package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicPhrasesCoverEveryTopic(t *testing.T) {
	phrases := TopicPhrases()
	require.Len(t, phrases, len(AllTopics))

	seen := make(map[string]bool)
	for i, topic := range AllTopics {
		phrase := phrases[i]
		assert.NotEmpty(t, phrase, "topic %s has no phrase", topic)
		assert.False(t, seen[phrase], "duplicate phrase %q", phrase)
		seen[phrase] = true

		back, ok := TopicFromPhrase(phrase)
		assert.True(t, ok)
		assert.Equal(t, topic, back)
	}
}

func TestTopicFromPhraseUnknown(t *testing.T) {
	topic, ok := TopicFromPhrase("product quality, durability, and build")
	assert.False(t, ok, "phrase matching is exact")
	assert.Equal(t, TopicGeneral, topic)
}

func TestParseLabels(t *testing.T) {
	topic, err := ParseTopic(" price ")
	require.NoError(t, err)
	assert.Equal(t, TopicPrice, topic)

	_, err = ParseTopic("Shipping")
	assert.ErrorIs(t, err, ErrUnknownTopic)

	mood, err := ParseSentiment("NEGATIVE")
	require.NoError(t, err)
	assert.Equal(t, SentimentNegative, mood)

	_, err = ParseSentiment("meh")
	assert.ErrorIs(t, err, ErrUnknownMood)
}

func TestEdgeJSONUsesLabelNames(t *testing.T) {
	end := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	edge := TemporalEdge{
		Seq:       7,
		SourceID:  "Apple",
		TargetID:  "Rev_x_1",
		Relation:  RelationReviewedIn,
		Topic:     TopicService,
		Sentiment: SentimentPositive,
		StartDate: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   &end,
	}

	data, err := json.Marshal(edge)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"topic":"Service"`)
	assert.Contains(t, string(data), `"sentiment":"Positive"`)

	var decoded TemporalEdge
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, edge.Topic, decoded.Topic)
	assert.Equal(t, edge.Sentiment, decoded.Sentiment)
	assert.True(t, decoded.EndDate.Equal(end))
}

func TestInvalidLabelDoesNotMarshal(t *testing.T) {
	_, err := json.Marshal(TemporalEdge{Topic: TopicLabel(99)})
	assert.Error(t, err)
}

func TestEdgeActiveAt(t *testing.T) {
	start := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)

	open := NewReviewEdge(TopicGeneral, SentimentNeutral, start)
	closed := open
	closed.EndDate = &end

	tests := []struct {
		name string
		edge TemporalEdge
		date time.Time
		want bool
	}{
		{"before start", open, start.AddDate(0, 0, -1), false},
		{"on start", open, start, true},
		{"open ended", open, start.AddDate(10, 0, 0), true},
		{"on end", closed, end, true},
		{"after end", closed, end.AddDate(0, 0, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.edge.ActiveAt(tt.date))
		})
	}
}

func TestNodeValidateAndClone(t *testing.T) {
	n := NewReviewNode("Rev_a_0", "great")
	require.NoError(t, n.Validate())

	c := n.Clone()
	c.Properties[PropertyText] = "changed"
	text, ok := n.Text()
	assert.True(t, ok)
	assert.Equal(t, "great", text)

	bad := Node{ID: "x", Type: "Store"}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidType)

	brand := NewBrandNode("Apple")
	_, ok = brand.Text()
	assert.False(t, ok)
}

func TestRecordFullText(t *testing.T) {
	r := Record{Summary: "Great", Text: "Works well"}
	assert.Equal(t, "Great . Works well", r.FullText())
	assert.Equal(t, " . ", Record{}.FullText())
}
