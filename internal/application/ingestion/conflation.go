package ingestion

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
	appErrors "github.com/nodenorm/node-normalizer/pkg/errors"
)

// ConflationLoader writes conflation NDJSON files into a MultiStore. Each
// line is a JSON array of canonical identifiers that should be treated as
// fused; every identifier in the array is written pointing at the whole
// array, mirroring the original loader's `for identifier in instance:
// pipeline.set(identifier, line)` (spec.md §4.H).
type ConflationLoader struct {
	store      store.MultiStore
	targetLine store.StoreName
	blockSize  int
	logger     logging.Logger
}

// NewConflationLoader builds a ConflationLoader. target selects which of
// the two conflation stores (gene/protein or drug/chemical) this file's
// records belong to.
func NewConflationLoader(s store.MultiStore, target store.StoreName, blockSize int, log logging.Logger) *ConflationLoader {
	return &ConflationLoader{store: s, targetLine: target, blockSize: blockSize, logger: log}
}

// LoadFile ingests one conflation file. The first validationSampleSize
// non-blank lines are schema-checked before any write occurs; on failure
// the file is skipped entirely (spec.md §7).
func (l *ConflationLoader) LoadFile(ctx context.Context, r io.Reader) error {
	reader := bufio.NewReaderSize(r, 64*1024)

	pipe := l.store.Pipeline()
	lineNo := 0
	validated := 0

	for {
		line, err := readLine(reader)
		if err != nil {
			if errors.Is(err, io.EOF) && len(line) == 0 {
				break
			}
			if !errors.Is(err, io.EOF) {
				return appErrors.Wrap(err, appErrors.CodeValidationError, "failed reading conflation file")
			}
		}
		if len(strings.TrimSpace(line)) == 0 {
			if errors.Is(err, io.EOF) {
				break
			}
			continue
		}
		lineNo++

		var rec conflationRecord
		unmarshalErr := json.Unmarshal([]byte(line), &rec)

		if validated < validationSampleSize {
			validated++
			if unmarshalErr != nil {
				return appErrors.New(appErrors.CodeValidationError, "conflation record is not valid JSON").
					WithDetail("line " + strconv.Itoa(lineNo))
			}
			if verr := rec.validate(); verr != nil {
				return appErrors.Wrap(verr, appErrors.CodeValidationError, "conflation schema validation failed on sampled line").
					WithDetail("line " + strconv.Itoa(lineNo))
			}
		}

		if unmarshalErr != nil {
			l.logger.Warn("malformed conflation line, skipping", logging.Int("line", lineNo), logging.Err(unmarshalErr))
		} else if verr := rec.validate(); verr != nil {
			l.logger.Warn("invalid conflation line, skipping", logging.Int("line", lineNo), logging.Err(verr))
		} else {
			l.writeRecord(pipe, rec, line)
		}

		if lineNo%l.blockSize == 0 {
			if ferr := pipe.Flush(ctx); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	return pipe.Flush(ctx)
}

func (l *ConflationLoader) writeRecord(pipe store.WritePipeline, rec conflationRecord, rawLine string) {
	for _, id := range rec {
		pipe.Set(l.targetLine, id, rawLine)
	}
}
