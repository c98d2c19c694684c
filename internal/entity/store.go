package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

// ErrNotFound is returned when no active entity matches an identifier.
var ErrNotFound = errors.New("entity not found")

// Store reads and writes entity files under the workspace. It holds no
// cross-call cache; every operation re-reads the files it needs and
// commits with an atomic replace.
type Store struct {
	ws *workspace.Workspace
}

// NewStore creates a Store over a workspace.
func NewStore(ws *workspace.Workspace) *Store {
	return &Store{ws: ws}
}

// Upsert is one observation of an entity to be merged into its record.
type Upsert struct {
	Name      string
	Kind      Kind
	Facts     []string
	Timeline  []TimelineEntry
	Relations []string
}

func (s *Store) path(name string) string {
	return filepath.Join(s.ws.EntitiesDir, Sanitize(name)+".md")
}

func (s *Store) archivePath(name string) string {
	return filepath.Join(s.ws.ArchiveDir, Sanitize(name)+".md")
}

// Get returns the active record for an identifier, resolving aliases.
// Archived entities are not found here; see GetArchived and Restore.
func (s *Store) Get(name string) (*Record, error) {
	name = s.resolveAlias(name)
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read entity %s: %w", name, err)
	}
	return ParseRecord(name, string(data)), nil
}

// GetArchived returns the archived record for an identifier.
func (s *Store) GetArchived(name string) (*Record, error) {
	name = s.resolveAlias(name)
	data, err := os.ReadFile(s.archivePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (archive)", ErrNotFound, name)
		}
		return nil, fmt.Errorf("read archived entity %s: %w", name, err)
	}
	return ParseRecord(name, string(data)), nil
}

// Upsert merges an observation into the entity's record, creating it on
// first mention and restoring it from the archive if needed. Facts
// dedupe by case-insensitive trim compare, timeline entries by
// (date, text), relations by union. A conflicting kind never overwrites
// the established one; it is recorded as a note instead.
func (s *Store) Upsert(u Upsert) (*Record, error) {
	if strings.TrimSpace(u.Name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "empty entity name"}
	}

	// Re-reference restores archived entities before merging.
	if err := s.restoreIfArchived(u.Name); err != nil {
		return nil, err
	}

	rec, err := s.Get(u.Name)
	switch {
	case errors.Is(err, ErrNotFound):
		rec = &Record{Name: strings.TrimSpace(u.Name), Kind: u.Kind}
		if rec.Kind == "" {
			rec.Kind = KindOther
		}
	case err != nil:
		return nil, err
	default:
		if u.Kind != "" && u.Kind != KindOther && u.Kind != rec.Kind {
			latest := ""
			for _, e := range u.Timeline {
				if e.Date > latest {
					latest = e.Date
				}
			}
			note := fmt.Sprintf("extraction reported %q", u.Kind)
			if latest != "" {
				note = fmt.Sprintf("extraction reported %q on %s", u.Kind, latest)
			}
			rec.KindNote = note
		}
	}

	mergeInto(rec, u)

	if err := s.write(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func mergeInto(rec *Record, u Upsert) {
	for _, f := range u.Facts {
		f = strings.TrimSpace(f)
		if f == "" || containsFact(rec.Facts, f) {
			continue
		}
		rec.Facts = append(rec.Facts, f)
	}

	for _, e := range u.Timeline {
		e.Text = strings.TrimSpace(e.Text)
		if e.Text == "" || !workspace.IsDate(e.Date) || containsEntry(rec.Timeline, e) {
			continue
		}
		rec.Timeline = append(rec.Timeline, e)
	}

	for _, rel := range u.Relations {
		rel = strings.TrimSpace(rel)
		if rel == "" || SameName(rel, rec.Name) || rec.HasRelation(rel) {
			continue
		}
		rec.Relations = append(rec.Relations, rel)
	}
}

func containsFact(facts []string, f string) bool {
	for _, have := range facts {
		if strings.EqualFold(strings.TrimSpace(have), f) {
			return true
		}
	}
	return false
}

func containsEntry(entries []TimelineEntry, e TimelineEntry) bool {
	for _, have := range entries {
		if have.Date == e.Date && strings.EqualFold(strings.TrimSpace(have.Text), e.Text) {
			return true
		}
	}
	return false
}

func (s *Store) write(rec *Record) error {
	if err := workspace.WriteFileAtomic(s.path(rec.Name), []byte(rec.Render())); err != nil {
		return fmt.Errorf("write entity %s: %w", rec.Name, err)
	}
	return nil
}

// Touch increments the retrieval counter on an entity, feeding the
// ranking boost for frequently recalled records.
func (s *Store) Touch(name string) error {
	rec, err := s.Get(name)
	if err != nil {
		return err
	}
	rec.Accessed++
	return s.write(rec)
}

// Names lists all active entity display names, sorted.
func (s *Store) Names() ([]string, error) {
	return s.namesIn(s.ws.EntitiesDir)
}

// ArchivedNames lists all archived entity display names, sorted.
func (s *Store) ArchivedNames() ([]string, error) {
	return s.namesIn(s.ws.ArchiveDir)
}

func (s *Store) namesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read entities dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), ".md")
		// Prefer the heading inside the file; fall back to the stem.
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		rec := ParseRecord(strings.ReplaceAll(stem, "-", " "), string(data))
		names = append(names, rec.Name)
	}
	sort.Strings(names)
	return names, nil
}

// List yields active records, optionally filtered by kind (empty kind
// means all). The sequence re-scans the directory on every range, so it
// is restartable and observes no stale state.
func (s *Store) List(kind Kind) iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		names, err := s.Names()
		if err != nil {
			yield(nil, err)
			return
		}
		for _, name := range names {
			rec, err := s.Get(name)
			if err != nil {
				if !yield(nil, err) {
					return
				}
				continue
			}
			if kind != "" && rec.Kind != kind {
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Merge unions two records under the canonically-chosen survivor: the
// record with more timeline references wins, ties broken by longer
// identifier, then by the first argument (first-seen). The losing
// identifier becomes an alias pointer so old-name lookups still
// resolve. Triplet relinking is the graph store's side of the merge;
// see engine.MergeEntities.
func (s *Store) Merge(a, b string) (*Record, error) {
	ra, err := s.Get(a)
	if err != nil {
		return nil, err
	}
	rb, err := s.Get(b)
	if err != nil {
		return nil, err
	}
	if SameName(ra.Name, rb.Name) {
		return ra, nil
	}

	survivor, loser := ra, rb
	switch {
	case len(rb.Timeline) > len(ra.Timeline):
		survivor, loser = rb, ra
	case len(rb.Timeline) == len(ra.Timeline) && len(rb.Name) > len(ra.Name):
		survivor, loser = rb, ra
	}

	mergeInto(survivor, Upsert{
		Name:      survivor.Name,
		Facts:     loser.Facts,
		Timeline:  loser.Timeline,
		Relations: loser.Relations,
	})
	survivor.Aliases = append(survivor.Aliases, loser.Name)
	survivor.Aliases = append(survivor.Aliases, loser.Aliases...)
	survivor.Accessed += loser.Accessed
	// A relation edge to the absorbed identifier is now a self-edge.
	survivor.Relations = dropName(survivor.Relations, loser.Name)

	if err := s.write(survivor); err != nil {
		return nil, err
	}
	if err := os.Remove(s.path(loser.Name)); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove merged entity %s: %w", loser.Name, err)
	}

	aliases, err := s.loadAliases()
	if err != nil {
		return nil, err
	}
	aliases[loser.Name] = survivor.Name
	// Repoint any aliases that resolved to the loser.
	for alias, target := range aliases {
		if SameName(target, loser.Name) {
			aliases[alias] = survivor.Name
		}
	}
	if err := s.saveAliases(aliases); err != nil {
		return nil, err
	}

	return survivor, nil
}

func dropName(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if !SameName(n, name) {
			out = append(out, n)
		}
	}
	return out
}

// resolveAlias follows the alias table to the canonical identifier.
func (s *Store) resolveAlias(name string) string {
	aliases, err := s.loadAliases()
	if err != nil {
		return name
	}
	seen := 0
	for {
		target, ok := lookupFold(aliases, name)
		if !ok || seen > len(aliases) {
			return name
		}
		name = target
		seen++
	}
}

func lookupFold(aliases map[string]string, name string) (string, bool) {
	for alias, target := range aliases {
		if SameName(alias, name) && !SameName(target, name) {
			return target, true
		}
	}
	return "", false
}

func (s *Store) loadAliases() (map[string]string, error) {
	data, err := os.ReadFile(s.ws.AliasFile)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read aliases: %w", err)
	}
	aliases := map[string]string{}
	if err := json.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("parse aliases: %w", err)
	}
	return aliases, nil
}

func (s *Store) saveAliases(aliases map[string]string) error {
	data, err := json.MarshalIndent(aliases, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal aliases: %w", err)
	}
	if err := workspace.WriteFileAtomic(s.ws.AliasFile, append(data, '\n')); err != nil {
		return fmt.Errorf("write aliases: %w", err)
	}
	return nil
}

// ValidationError reports malformed input for a single entity update.
// It aborts only that entity's merge; the rest of the batch proceeds.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid entity %s: %s", e.Field, e.Reason)
}
