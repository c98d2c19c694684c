package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
	"github.com/widingmarcus-cyber/mindgardener/internal/workspace"
)

// RebuildStats reports what a rebuild scanned and produced.
type RebuildStats struct {
	Entities int
	Triplets int
	BackedUp bool
}

var (
	outboundRe = regexp.MustCompile(`(\w[\w\s]*?)\s*→\s*\[\[([^\]]+)\]\](?::\s*(.*))?`)
	inboundRe  = regexp.MustCompile(`\[\[([^\]]+)\]\]\s+(\w[\w\s]*?)\s*→\s*this(?::\s*(.*))?`)
	dateLinkRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// RebuildFromEntities reconstructs the ledger from entity files alone,
// after manual edits have made the graph stale. The scan is
// deterministic: entities in sorted name order, edges deduplicated by
// (subject, predicate, object), dates taken from the entity's timeline,
// no wall-clock timestamps. The prior ledger is backed up first.
func RebuildFromEntities(store *entity.Store, ws *workspace.Workspace) (RebuildStats, error) {
	var stats RebuildStats

	seen := map[string]bool{}
	var triplets []Triplet

	for rec, err := range store.List("") {
		if err != nil {
			return stats, fmt.Errorf("rebuild: %w", err)
		}
		stats.Entities++

		date := rec.LastReferenced()
		add := func(t Triplet) {
			key := strings.ToLower(t.Subject) + "\x00" + strings.ToLower(t.Predicate) + "\x00" + strings.ToLower(t.Object)
			if t.Subject == "" || t.Object == "" || seen[key] {
				return
			}
			seen[key] = true
			t.Source = "reindex"
			triplets = append(triplets, t)
		}

		for _, e := range rec.Timeline {
			for _, m := range outboundRe.FindAllStringSubmatch(e.Text, -1) {
				if dateLinkRe.MatchString(m[2]) {
					continue
				}
				add(Triplet{
					Subject:   rec.Name,
					Predicate: strings.TrimSpace(m[1]),
					Object:    strings.TrimSpace(m[2]),
					Detail:    strings.TrimSpace(m[3]),
					Date:      e.Date,
				})
			}
			for _, m := range inboundRe.FindAllStringSubmatch(e.Text, -1) {
				if dateLinkRe.MatchString(m[1]) {
					continue
				}
				add(Triplet{
					Subject:   strings.TrimSpace(m[1]),
					Predicate: strings.TrimSpace(m[2]),
					Object:    rec.Name,
					Detail:    strings.TrimSpace(m[3]),
					Date:      e.Date,
				})
			}
		}

		for _, rel := range rec.Relations {
			already := false
			for _, t := range triplets {
				if entity.SameName(t.Subject, rel) || entity.SameName(t.Object, rel) {
					if entity.SameName(t.Subject, rec.Name) || entity.SameName(t.Object, rec.Name) {
						already = true
						break
					}
				}
			}
			if !already {
				add(Triplet{
					Subject:   rec.Name,
					Predicate: "related_to",
					Object:    rel,
					Date:      date,
				})
			}
		}
	}

	if _, err := os.Stat(ws.GraphFile); err == nil {
		backup := ws.GraphFile + ".bak"
		data, err := os.ReadFile(ws.GraphFile)
		if err != nil {
			return stats, fmt.Errorf("rebuild: read prior ledger: %w", err)
		}
		if err := workspace.WriteFileAtomic(backup, data); err != nil {
			return stats, fmt.Errorf("rebuild: back up prior ledger: %w", err)
		}
		stats.BackedUp = true
	}

	var b strings.Builder
	for _, t := range triplets {
		line, err := json.Marshal(t)
		if err != nil {
			return stats, fmt.Errorf("rebuild: marshal triplet: %w", err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	if err := workspace.WriteFileAtomic(ws.GraphFile, []byte(b.String())); err != nil {
		return stats, err
	}

	stats.Triplets = len(triplets)
	return stats, nil
}
