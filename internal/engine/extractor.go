package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
	"github.com/widingmarcus-cyber/mindgardener/internal/graph"
	"github.com/widingmarcus-cyber/mindgardener/internal/llm"
	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

// ExtractedEntity is one entity as reported by the model.
type ExtractedEntity struct {
	Name  string   `json:"name"`
	Type  string   `json:"type"`
	Facts []string `json:"facts"`
}

// ExtractedTriplet is one edge as reported by the model.
type ExtractedTriplet struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Detail    string `json:"detail"`
}

// Extraction is the parsed result of one extraction call.
type Extraction struct {
	Entities []ExtractedEntity  `json:"entities"`
	Triplets []ExtractedTriplet `json:"triplets"`
	Events   []string           `json:"events"`
}

// IngestReport summarizes one day's ingestion.
type IngestReport struct {
	Date     string
	Chunks   int
	Entities int
	Triplets int
	Events   int
	Tokens   int
	Skipped  []SkippedEntity
}

// SkippedEntity records an entity dropped from a batch with the reason.
type SkippedEntity struct {
	Name string
	Err  error
}

// decodeModelJSON decodes a model reply into v, tolerating markdown
// code fences around the JSON body.
func decodeModelJSON(raw string, v any) error {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("decode model reply: %w", err)
	}
	return nil
}

// ParseExtraction decodes and validates one extraction reply. The
// entities and events keys must both be present; a reply missing either
// is malformed and fails the whole ingestion.
func ParseExtraction(raw string) (*Extraction, error) {
	var keys map[string]json.RawMessage
	if err := decodeModelJSON(raw, &keys); err != nil {
		return nil, err
	}
	for _, required := range []string{"entities", "events"} {
		if _, ok := keys[required]; !ok {
			return nil, fmt.Errorf("malformed extraction: missing %q", required)
		}
	}

	var ext Extraction
	if err := decodeModelJSON(raw, &ext); err != nil {
		return nil, err
	}
	return &ext, nil
}

// Ingest extracts structured knowledge from one daily log and merges it
// into the entity store and the graph ledger. All collaborator calls
// happen before any write, so a failed call leaves no partial state. A
// single invalid entity only skips that entity; the rest of the batch
// commits.
func (e *Engine) Ingest(ctx context.Context, date string) (*IngestReport, error) {
	if !workspace.IsDate(date) {
		return nil, fmt.Errorf("invalid date %q", date)
	}
	content, err := e.WS.ReadDailyLog(date)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("no daily log for %s", date)
	}
	if e.LLM == nil {
		return nil, llm.ErrNoProvider
	}

	chunks := Chunk(PreFilter(content), e.Cfg.Extraction.MaxChunk)
	report := &IngestReport{Date: date, Chunks: len(chunks)}

	var merged Extraction
	for i, chunk := range chunks {
		resp, err := e.LLM.Complete(ctx, llm.ExtractionPrompt(date, chunk))
		if err != nil {
			return nil, fmt.Errorf("extract %s chunk %d/%d: %w", date, i+1, len(chunks), err)
		}
		report.Tokens += resp.TokensUsed

		ext, err := ParseExtraction(resp.Content)
		if err != nil {
			return nil, fmt.Errorf("extract %s chunk %d/%d: %w", date, i+1, len(chunks), err)
		}
		merged.Entities = append(merged.Entities, ext.Entities...)
		merged.Triplets = append(merged.Triplets, ext.Triplets...)
		merged.Events = append(merged.Events, ext.Events...)
	}

	return report, e.commit(date, &merged, report)
}

// commit folds a completed extraction into the stores.
func (e *Engine) commit(date string, ext *Extraction, report *IngestReport) error {
	upserts := buildUpserts(date, ext)

	names := make([]string, 0, len(upserts))
	for name := range upserts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := e.Entities.Upsert(*upserts[name]); err != nil {
			var verr *entity.ValidationError
			if errors.As(err, &verr) {
				log.Printf("ingest %s: skipping entity %q: %v", date, name, err)
				report.Skipped = append(report.Skipped, SkippedEntity{Name: name, Err: err})
				continue
			}
			return fmt.Errorf("ingest %s: entity %q: %w", date, name, err)
		}
		report.Entities++
	}

	now := time.Now().UTC().Format(time.RFC3339)
	triplets := make([]graph.Triplet, 0, len(ext.Triplets))
	for _, t := range ext.Triplets {
		triplets = append(triplets, graph.Triplet{
			Subject:   strings.TrimSpace(t.Subject),
			Predicate: strings.TrimSpace(t.Predicate),
			Object:    strings.TrimSpace(t.Object),
			Detail:    strings.TrimSpace(t.Detail),
			Date:      date,
			Timestamp: now,
			Source:    "extraction",
		})
	}
	added, err := e.Graph.Append(triplets...)
	if err != nil {
		return fmt.Errorf("ingest %s: append triplets: %w", date, err)
	}
	report.Triplets = added
	report.Events = len(ext.Events)
	return nil
}

// buildUpserts turns one extraction into per-entity observations. Every
// triplet endpoint gets a record even when the model did not list it as
// an entity, so the graph never points at a name the store cannot
// resolve.
func buildUpserts(date string, ext *Extraction) map[string]*entity.Upsert {
	upserts := make(map[string]*entity.Upsert)
	get := func(name string) *entity.Upsert {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if u, ok := upserts[key]; ok {
			return u
		}
		u := &entity.Upsert{Name: name}
		upserts[key] = u
		return u
	}

	for _, ee := range ext.Entities {
		u := get(ee.Name)
		u.Kind = entity.ParseKind(ee.Type)
		u.Facts = append(u.Facts, ee.Facts...)
		for _, event := range ext.Events {
			if mentions(event, ee.Name) {
				u.Timeline = append(u.Timeline, entity.TimelineEntry{Date: date, Text: event})
			}
		}
	}

	for _, t := range ext.Triplets {
		if strings.TrimSpace(t.Subject) == "" || strings.TrimSpace(t.Object) == "" {
			continue
		}
		subj, obj := get(t.Subject), get(t.Object)
		subj.Relations = append(subj.Relations, obj.Name)
		obj.Relations = append(obj.Relations, subj.Name)
		subj.Timeline = append(subj.Timeline, entity.TimelineEntry{
			Date: date,
			Text: tripletLine(t.Predicate, obj.Name, t.Detail, false),
		})
		obj.Timeline = append(obj.Timeline, entity.TimelineEntry{
			Date: date,
			Text: tripletLine(t.Predicate, subj.Name, t.Detail, true),
		})
	}

	return upserts
}

// tripletLine renders an edge as an inline timeline line. The rebuild
// parser reads these back, so the shape is load-bearing.
func tripletLine(predicate, other, detail string, inbound bool) string {
	var s string
	if inbound {
		s = fmt.Sprintf("[[%s]] %s → this", other, predicate)
	} else {
		s = fmt.Sprintf("%s → [[%s]]", predicate, other)
	}
	if detail = strings.TrimSpace(detail); detail != "" {
		s += ": " + detail
	}
	return s
}

func mentions(text, name string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(strings.TrimSpace(name)))
}
