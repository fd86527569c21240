package rustbert

import (
	"context"
	"testing"
)

func TestRecognizeWithDefaultModel(t *testing.T) {
	if testing.Short() {
		t.Skip("loads a BERT NER model")
	}

	c := NewClient(Config{})
	if err := c.LoadNERModel(); err != nil {
		t.Skipf("NER model unavailable: %v", err)
	}
	defer c.Close()

	ents, err := c.Recognize(context.Background(), "Samsung shipped the replacement from Seoul.")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	for _, e := range ents {
		if e.IsOrganization() {
			return
		}
	}
	t.Errorf("no organization entity in %+v", ents)
}

func TestRecognizeCanceled(t *testing.T) {
	c := NewClient(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Recognize(ctx, "anything"); err == nil {
		t.Error("expected context error")
	}
}
