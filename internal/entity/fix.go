package entity

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// Quick corrections for extraction mistakes: wrong kind, wrong name,
// facts to add or drop. These are the deliberate user actions that are
// allowed to change established record metadata.

// FixKind sets an entity's kind and clears any conflict note.
func (s *Store) FixKind(name string, kind Kind) (*Record, error) {
	rec, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	rec.Kind = kind
	rec.KindNote = ""
	if err := s.write(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Rename changes an entity's canonical name. Renaming onto an existing
// record is refused; that is a merge, not a rename.
func (s *Store) Rename(oldName, newName string) (*Record, error) {
	if _, err := s.Get(newName); err == nil {
		return nil, fmt.Errorf("entity %q already exists: merge instead of rename", newName)
	}

	rec, err := s.Get(oldName)
	if err != nil {
		return nil, err
	}
	oldCanonical := rec.Name
	rec.Name = strings.TrimSpace(newName)

	if err := s.write(rec); err != nil {
		return nil, err
	}
	if !strings.EqualFold(Sanitize(oldCanonical), Sanitize(rec.Name)) {
		if err := os.Remove(s.path(oldCanonical)); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove renamed entity %s: %w", oldCanonical, err)
		}
	}

	aliases, err := s.loadAliases()
	if err != nil {
		return nil, err
	}
	aliases[oldCanonical] = rec.Name
	if err := s.saveAliases(aliases); err != nil {
		return nil, err
	}
	return rec, nil
}

// AddFact appends a fact unless an equivalent one is present.
func (s *Store) AddFact(name, fact string) (*Record, error) {
	rec, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	fact = strings.TrimSpace(fact)
	if fact == "" {
		return nil, &ValidationError{Field: "fact", Reason: "empty fact"}
	}
	if containsFact(rec.Facts, fact) {
		return rec, nil
	}
	rec.Facts = append(rec.Facts, fact)
	if err := s.write(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// RemoveFact drops facts containing the given substring. Returns the
// number removed.
func (s *Store) RemoveFact(name, substring string) (int, error) {
	rec, err := s.Get(name)
	if err != nil {
		return 0, err
	}
	needle := strings.ToLower(strings.TrimSpace(substring))
	if needle == "" {
		return 0, &ValidationError{Field: "fact", Reason: "empty substring"}
	}

	kept := rec.Facts[:0]
	removed := 0
	for _, f := range rec.Facts {
		if strings.Contains(strings.ToLower(f), needle) {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	if removed == 0 {
		return 0, nil
	}
	rec.Facts = kept
	if err := s.write(rec); err != nil {
		return 0, err
	}
	return removed, nil
}

// DuplicatePair is a candidate merge reported by DetectDuplicates.
type DuplicatePair struct {
	A, B       string
	Confidence float64
}

// DetectDuplicates reports likely duplicate entity pairs by name
// containment and significant-word overlap, highest confidence first.
func (s *Store) DetectDuplicates() ([]DuplicatePair, error) {
	names, err := s.Names()
	if err != nil {
		return nil, err
	}

	stop := map[string]bool{"the": true, "a": true, "an": true, "of": true, "at": true, "in": true, "on": true}
	sigWords := func(name string) map[string]bool {
		words := map[string]bool{}
		for _, w := range strings.Fields(strings.ToLower(name)) {
			if !stop[w] {
				words[w] = true
			}
		}
		return words
	}

	var pairs []DuplicatePair
	for i, a := range names {
		for _, b := range names[i+1:] {
			al, bl := strings.ToLower(a), strings.ToLower(b)
			if strings.Contains(al, bl) || strings.Contains(bl, al) {
				pairs = append(pairs, DuplicatePair{a, b, 0.8})
				continue
			}
			wa, wb := sigWords(a), sigWords(b)
			if len(wa) == 0 || len(wb) == 0 {
				continue
			}
			common := 0
			for w := range wa {
				if wb[w] {
					common++
				}
			}
			smaller := len(wa)
			if len(wb) < smaller {
				smaller = len(wb)
			}
			if overlap := float64(common) / float64(smaller); overlap >= 0.5 {
				pairs = append(pairs, DuplicatePair{a, b, overlap})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Confidence > pairs[j].Confidence
	})
	return pairs, nil
}
