package entity

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

// SweepResult reports what a decay sweep changed.
type SweepResult struct {
	Archived []string
	Restored []string
}

// Sweep archives active entities whose last reference is older than
// inactiveDays and restores archived entities that have since been
// referenced again (e.g. by a manual edit in archive/). Content is
// preserved verbatim in both directions; running the sweep twice with
// no intervening activity changes nothing the second time.
func (s *Store) Sweep(inactiveDays int, today time.Time) (SweepResult, error) {
	res, err := s.SweepPlan(inactiveDays, today)
	if err != nil {
		return res, err
	}

	var done SweepResult
	for _, name := range res.Archived {
		if err := s.moveRecord(s.path(name), s.archivePath(name), name); err != nil {
			return done, err
		}
		done.Archived = append(done.Archived, name)
	}
	for _, name := range res.Restored {
		if err := s.Restore(name); err != nil {
			return done, err
		}
		done.Restored = append(done.Restored, name)
	}
	return done, nil
}

// SweepPlan computes what Sweep would do without moving anything.
func (s *Store) SweepPlan(inactiveDays int, today time.Time) (SweepResult, error) {
	var res SweepResult

	names, err := s.Names()
	if err != nil {
		return res, err
	}
	for _, name := range names {
		rec, err := s.Get(name)
		if err != nil {
			return res, err
		}
		if staleDays(rec, today) > inactiveDays {
			res.Archived = append(res.Archived, rec.Name)
		}
	}

	archived, err := s.ArchivedNames()
	if err != nil {
		return res, err
	}
	for _, name := range archived {
		rec, err := s.GetArchived(name)
		if err != nil {
			return res, err
		}
		if staleDays(rec, today) <= inactiveDays {
			res.Restored = append(res.Restored, rec.Name)
		}
	}

	return res, nil
}

// staleDays is the age of the most recent timeline reference. An entity
// with no dated history counts as maximally stale.
func staleDays(rec *Record, today time.Time) int {
	last := rec.LastReferenced()
	if last == "" {
		return 1 << 20
	}
	t, err := time.Parse("2006-01-02", last)
	if err != nil {
		return 1 << 20
	}
	return int(today.Sub(t).Hours() / 24)
}

// Restore moves an archived entity back to active status.
func (s *Store) Restore(name string) error {
	name = s.resolveAlias(name)
	src := s.archivePath(name)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s (archive)", ErrNotFound, name)
		}
		return fmt.Errorf("stat archived entity %s: %w", name, err)
	}
	return s.moveRecord(src, s.path(name), name)
}

// restoreIfArchived restores an entity iff it currently lives in the
// archive. Missing entirely is fine; the caller will create it.
func (s *Store) restoreIfArchived(name string) error {
	err := s.Restore(name)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// moveRecord relocates an entity file between the active and archive
// namespaces via read + atomic write + remove, so a crash never leaves
// a half-moved record visible in both places without content.
func (s *Store) moveRecord(src, dst, name string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read entity %s: %w", name, err)
	}
	if err := workspace.WriteFileAtomic(dst, data); err != nil {
		return fmt.Errorf("move entity %s: %w", name, err)
	}
	if err := os.Remove(src); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove moved entity %s: %w", name, err)
	}
	return nil
}
