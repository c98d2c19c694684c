package engine

import (
	"context"
	"testing"

	"github.com/widingmarcus-cyber/mindgardener/internal/entity"
	"github.com/widingmarcus-cyber/mindgardener/internal/llm"
)

func TestLexicalScoreSurpriseLevels(t *testing.T) {
	worldModel := `Marcus maintains OpenClaw and reviews PRs most days.
Kadoa partnership discussions are ongoing.`

	// Unforeseen event: most content words are new.
	high := LexicalScore("Repo renamed to openclaw-labs organization", worldModel)
	if high <= 0.6 {
		t.Errorf("unexpected event scored %.2f, want > 0.6", high)
	}

	// Foretold event: nearly every word is already in the model.
	low := LexicalScore("Marcus reviews OpenClaw PRs", worldModel)
	if low >= 0.3 {
		t.Errorf("predicted event scored %.2f, want < 0.3", low)
	}
}

func TestLexicalScoreEmptyWorldModel(t *testing.T) {
	if got := LexicalScore("anything at all happened", ""); got != 1.0 {
		t.Errorf("score = %.2f, want 1.0 with empty world model", got)
	}
}

func TestScoreDateLexicalFallback(t *testing.T) {
	eng := testEngine(t, nil)
	writeDailyLog(t, eng, "2026-02-16", "## Day\n\n- Repo renamed to openclaw organization\n")
	writeSummary(t, eng, "# Memory\n\nNothing about repos here.\n")

	records, err := eng.ScoreDate(context.Background(), "2026-02-16")
	if err != nil {
		t.Fatalf("ScoreDate: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %v", records)
	}
	if records[0].Score <= 0.6 {
		t.Errorf("score = %.2f", records[0].Score)
	}
	if records[0].Consolidated {
		t.Error("fresh record marked consolidated")
	}

	// Stored in the surprise ledger.
	stored, err := eng.LoadScores()
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Event != records[0].Event {
		t.Errorf("stored = %v", stored)
	}
}

func TestScoreDateReplacesPriorRecords(t *testing.T) {
	eng := testEngine(t, nil)
	writeDailyLog(t, eng, "2026-02-16", "- something new happened today\n")
	writeDailyLog(t, eng, "2026-02-15", "- an earlier thing happened\n")

	if _, err := eng.ScoreDate(context.Background(), "2026-02-15"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.ScoreDate(context.Background(), "2026-02-16"); err != nil {
		t.Fatal(err)
	}
	// Re-score the 16th; the 15th must be untouched.
	if _, err := eng.ScoreDate(context.Background(), "2026-02-16"); err != nil {
		t.Fatal(err)
	}

	records, err := eng.LoadScores()
	if err != nil {
		t.Fatal(err)
	}
	byDate := map[string]int{}
	for _, r := range records {
		byDate[r.Date]++
	}
	if byDate["2026-02-15"] != 1 || byDate["2026-02-16"] != 1 {
		t.Errorf("records per date = %v", byDate)
	}
}

func TestScoreDateTwoStage(t *testing.T) {
	mock := &llm.MockClient{Responses: []*llm.Response{
		{Content: `{"predictions": [{"event": "Marcus reviews PRs", "confidence": 0.9, "reasoning": "routine"}]}`},
		{Content: `{"errors": [
			{"event": "Repo renamed", "score": 0.85, "predicted": "no rename expected", "reason": "structural change", "category": "entity_change", "entities": ["OpenClaw"]},
			{"event": "PR review", "score": 0.1, "predicted": "Marcus reviews PRs", "reason": "as predicted", "category": "routine", "entities": ["Marcus"]}
		], "model_updates": []}`},
	}}
	eng := testEngine(t, mock)
	writeDailyLog(t, eng, "2026-02-16", "- Repo renamed\n- PR review\n")
	writeSummary(t, eng, "world model text")
	if _, err := eng.Entities.Upsert(entity.Upsert{Name: "Marcus", Kind: entity.KindPerson}); err != nil {
		t.Fatal(err)
	}

	records, err := eng.ScoreDate(context.Background(), "2026-02-16")
	if err != nil {
		t.Fatalf("ScoreDate: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %v", records)
	}
	if records[0].Score != 0.85 || records[0].Category != "entity_change" {
		t.Errorf("first = %+v", records[0])
	}
	if len(mock.Calls) != 2 {
		t.Errorf("calls = %d, want predict + compare", len(mock.Calls))
	}
}

func TestScoreDateCollaboratorFailureLeavesNoState(t *testing.T) {
	mock := &llm.MockClient{Responses: []*llm.Response{
		{Content: `not json`},
	}}
	eng := testEngine(t, mock)
	writeDailyLog(t, eng, "2026-02-16", "- a thing\n")

	if _, err := eng.ScoreDate(context.Background(), "2026-02-16"); err == nil {
		t.Fatal("want error")
	}
	records, err := eng.LoadScores()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Errorf("records written despite failure: %v", records)
	}
}
