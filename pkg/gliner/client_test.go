package gliner

import (
	"context"
	"testing"

	"github.com/soundprediction/reviewgraph/pkg/extract"
)

func TestRecognizeOrganization(t *testing.T) {
	if testing.Short() {
		t.Skip("downloads a GLiNER model")
	}

	c, err := NewClient("onnx-community/gliner_small-v2.1", nil, 0.3)
	if err != nil {
		t.Skipf("GLiNER model unavailable: %v", err)
	}
	defer c.Close()

	ents, err := c.Recognize(context.Background(), "Apple replaced my cracked screen in two days.")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	candidates := extract.New(c, nil).Candidates(ents)
	if len(candidates) == 0 || candidates[0] != "Apple" {
		t.Errorf("expected Apple as first candidate, got %v (entities %+v)", candidates, ents)
	}
}
