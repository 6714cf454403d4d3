package ingestion

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/nodenorm/node-normalizer/internal/domain/category"
	"github.com/nodenorm/node-normalizer/internal/domain/curie"
	"github.com/nodenorm/node-normalizer/internal/domain/prefixindex"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/monitoring/logging"
	"github.com/nodenorm/node-normalizer/internal/infrastructure/store"
	appErrors "github.com/nodenorm/node-normalizer/pkg/errors"
)

// validationSampleSize is the number of leading lines schema-checked before
// any writes occur (spec.md §4.H, mirroring the original loader's
// five-line sample).
const validationSampleSize = 5

// CompendiumLoader writes compendium NDJSON files into a MultiStore,
// accumulating per-category prefix counts as it goes (spec.md §4.H).
type CompendiumLoader struct {
	store     store.MultiStore
	ontology  category.Ontology
	blockSize int
	logger    logging.Logger
}

// NewCompendiumLoader builds a CompendiumLoader. blockSize is the number of
// records accumulated per pipeline flush.
func NewCompendiumLoader(s store.MultiStore, ontology category.Ontology, blockSize int, log logging.Logger) *CompendiumLoader {
	return &CompendiumLoader{store: s, ontology: ontology, blockSize: blockSize, logger: log}
}

// LoadFile ingests one compendium file, returning the per-category prefix
// counts it observed. The first validationSampleSize non-blank lines are
// schema-checked before any write occurs; on failure the file is skipped
// entirely (spec.md §7 "ValidationError ... ingestion skips the offending
// file").
func (l *CompendiumLoader) LoadFile(ctx context.Context, r io.Reader) (map[string]prefixindex.Counts, error) {
	reader := bufio.NewReaderSize(r, 64*1024)

	counts := make(map[string]prefixindex.Counts)
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
				return nil, appErrors.Wrap(err, appErrors.CodeValidationError, "failed reading compendium file")
			}
		}
		if len(strings.TrimSpace(line)) == 0 {
			if errors.Is(err, io.EOF) {
				break
			}
			continue
		}
		lineNo++

		var rec compendiumRecord
		unmarshalErr := json.Unmarshal([]byte(line), &rec)

		if validated < validationSampleSize {
			validated++
			if unmarshalErr != nil {
				return nil, appErrors.New(appErrors.CodeValidationError, "compendium record is not valid JSON").
					WithDetail("line " + strconv.Itoa(lineNo))
			}
			if verr := rec.validate(); verr != nil {
				return nil, appErrors.Wrap(verr, appErrors.CodeValidationError, "compendium schema validation failed on sampled line").
					WithDetail("line " + strconv.Itoa(lineNo))
			}
		}

		if unmarshalErr != nil {
			l.logger.Warn("malformed compendium line, skipping", logging.Int("line", lineNo), logging.Err(unmarshalErr))
		} else if verr := rec.validate(); verr != nil {
			l.logger.Warn("invalid compendium line, skipping", logging.Int("line", lineNo), logging.Err(verr))
		} else if werr := l.writeRecord(pipe, rec, counts); werr != nil {
			return nil, werr
		}

		if lineNo%l.blockSize == 0 {
			if ferr := pipe.Flush(ctx); ferr != nil {
				return nil, ferr
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
	}

	if err := pipe.Flush(ctx); err != nil {
		return nil, err
	}
	return counts, nil
}

func (l *CompendiumLoader) writeRecord(pipe store.WritePipeline, rec compendiumRecord, counts map[string]prefixindex.Counts) error {
	canonical := rec.Identifiers[0].Identifier

	membersJSON, err := json.Marshal(rec.Identifiers)
	if err != nil {
		return appErrors.Wrap(err, appErrors.CodeSerialization, "failed to marshal clique members")
	}
	pipe.Set(store.StoreCanonicalMembers, canonical, string(membersJSON))
	pipe.Set(store.StoreCanonicalCategory, canonical, rec.Type)
	if rec.IC != "" {
		pipe.Set(store.StoreCanonicalIC, canonical, rec.IC)
	}
	for _, member := range rec.Identifiers {
		pipe.Set(store.StoreEqToCanonical, curie.CURIE(member.Identifier).Upper(), canonical)
	}

	ancestors, err := l.ontology.Ancestors(context.Background(), rec.Type)
	if err != nil {
		l.logger.Warn("ancestor lookup failed while accumulating prefix counts", logging.String("category", rec.Type), logging.Err(err))
		ancestors = []string{rec.Type}
	}
	for _, ancestor := range ancestors {
		bucket, ok := counts[ancestor]
		if !ok {
			bucket = make(prefixindex.Counts)
			counts[ancestor] = bucket
		}
		for _, member := range rec.Identifiers {
			bucket.Add(curie.CURIE(member.Identifier).Prefix(), 1)
		}
	}
	return nil
}

// FlushPrefixCounts persists one file's accumulated prefix counts as a
// partial blob per category, via RPush, so a later merge step can union
// every file's contribution (spec.md §4.H).
func (l *CompendiumLoader) FlushPrefixCounts(ctx context.Context, counts map[string]prefixindex.Counts) error {
	pipe := l.store.Pipeline()
	for category, bucket := range counts {
		blob, err := json.Marshal(bucket)
		if err != nil {
			return appErrors.Wrap(err, appErrors.CodeSerialization, "failed to marshal prefix counts")
		}
		pipe.RPush(store.StoreCategoryPrefixes, category, string(blob))
	}
	return pipe.Flush(ctx)
}

// readLine reads a single newline-delimited line, trimming the trailing
// newline. It may return a non-empty line alongside io.EOF when the file's
// final line lacks a trailing newline.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}
