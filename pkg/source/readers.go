package source

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/soundprediction/reviewgraph/pkg/types"
)

// maxLineBytes bounds a single JSON line.
const maxLineBytes = 16 << 20

func (s *Source) eachDelimited(ctx context.Context, comma rune, fn func(types.Record) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.name, err)
	}
	defer f.Close()

	reader := csv.NewReader(bufio.NewReader(f))
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read header of %s: %w", s.name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	for index := 0; !s.limitReached(index); index++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			s.logger.Debug("Skipping malformed row", "file", s.name, "index", index, "error", err)
			continue
		}

		m := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(fields) {
				m[name] = fields[i]
			}
		}
		if err := fn(lowerKeys(m).record(index, s.name)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Source) eachJSONLines(ctx context.Context, fn func(types.Record) error) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", s.name, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for index := 0; !s.limitReached(index) && scanner.Scan(); index++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		var m map[string]any
		if err := json.Unmarshal(line, &m); err != nil || m == nil {
			s.logger.Debug("Skipping malformed line", "file", s.name, "index", index, "error", err)
			continue
		}
		if err := fn(lowerKeys(m).record(index, s.name)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", s.name, err)
	}
	return nil
}
