package llm

import "fmt"

// ExtractionPrompt asks for structured knowledge from one daily log.
func ExtractionPrompt(date, content string) string {
	return fmt.Sprintf(`Extract structured knowledge from this daily log. Output ONLY valid JSON.

{
  "entities": [
    {
      "name": "canonical name",
      "type": "person|company|project|tool|concept|event|other",
      "facts": ["permanent fact 1", "permanent fact 2"]
    }
  ],
  "triplets": [
    {"subject": "Entity1", "predicate": "verb_phrase", "object": "Entity2", "detail": "context"}
  ],
  "events": ["what happened"]
}

Rules:
- Canonical names: "Marcus" (not "Marcus Widing"), "OpenClaw" (not "openclaw/openclaw")
- Types: tools like Greptile/GitHub are "tool", not "person"
- Facts = permanent truths ("CTO of Sana Labs", "195k stars"). Events = temporal ("submitted PR on Feb 16")
- Predicates: active verbs ("submitted_pr", "applied_to", "contacted", "works_at", "merged")
- Skip low-significance routine items (heartbeats, status checks)

DAILY LOG (%s):
%s
`, date, content)
}

// PredictionPrompt asks for a prediction of a day's events from the
// world model, before the log is shown.
func PredictionPrompt(date, memory, entities string) string {
	return fmt.Sprintf(`You are a prediction engine for an AI agent's daily activities.

Based on the agent's long-term memory (world model) below, predict what likely
happened on %s. Consider:
- Active projects and their likely next steps
- Pending tasks or follow-ups
- Regular patterns (daily routines, recurring checks)
- Relationships and expected interactions

Output ONLY valid JSON:
{
  "predictions": [
    {"event": "description of predicted event", "confidence": 0.0, "reasoning": "why you expect this"}
  ]
}

Make 5-15 predictions. Be specific, not vague.

AGENT'S WORLD MODEL:
%s

RECENT ENTITY CONTEXT:
%s
`, date, memory, entities)
}

// BeliefBootstrapPrompt asks for an initial identity model of the
// principal from accumulated memory.
func BeliefBootstrapPrompt(text string) string {
	return fmt.Sprintf(`You are building an identity model of a person based on their memory files.

Analyze the text below and extract beliefs about this person across these categories:
- values: what they care about, principles they follow
- goals: what they are working toward
- preferences: how they like to work, communicate, make decisions
- skills: what they are good at, their expertise
- relationships: key people in their life, team dynamics
- habits: regular patterns, routines, tendencies

Output ONLY valid JSON:
{
  "beliefs": [
    {
      "claim": "concise statement about the person",
      "confidence": 0.0,
      "category": "one of the categories above",
      "evidence_for": ["specific observation supporting this"]
    }
  ]
}

Extract 10-20 beliefs. Be specific, not generic.

TEXT TO ANALYZE:
%s
`, text)
}

// BeliefDriftPrompt asks whether a day's events change the identity
// model, given the current beliefs.
func BeliefDriftPrompt(model, events string) string {
	return fmt.Sprintf(`You are detecting identity-level changes in a person's beliefs and behavior.

Given the current self-model and today's events, determine which beliefs should be UPDATED.

Drift types:
- strengthened: more evidence supporting an existing belief
- weakened: evidence contradicting an existing belief
- contradicted: strong evidence that a belief is wrong
- new: a belief not in the model yet
- evolved: belief needs refinement (not wrong, more nuanced now)

Only report MEANINGFUL changes; skip routine confirmations.
A belief going 0.8 to 0.82 is not worth reporting. 0.8 to 0.4 is.

Output ONLY valid JSON:
{
  "drifts": [
    {
      "claim": "the belief affected (existing claim, or the new one)",
      "type": "one of the drift types",
      "old_confidence": 0.0,
      "new_confidence": 0.0,
      "trigger": "the specific event that triggered this",
      "reasoning": "why this changes the identity model",
      "significance": 0.0
    }
  ]
}

CURRENT SELF-MODEL:
%s

TODAY'S EVENTS:
%s
`, model, events)
}

// ComparePrompt asks for a prediction-error score per actual event.
func ComparePrompt(date, predictions, actual string) string {
	return fmt.Sprintf(`You are computing prediction errors for a memory consolidation system.

You were given predictions about what would happen on %s.
Now compare against what ACTUALLY happened.

For each ACTUAL event, score it:
- score: 0.0 = exactly as predicted, 1.0 = completely unexpected
- predicted: what was expected instead (or empty if unpredicted)
- reason: why this deviates from the world model
- category: one of [entity_change, new_relationship, status_shift, external_event, routine, skill_gain]
- entities: list of entity names involved

Output ONLY valid JSON:
{
  "errors": [
    {
      "event": "what actually happened",
      "score": 0.0,
      "predicted": "what was expected instead",
      "reason": "why this was/wasn't surprising",
      "category": "category",
      "entities": ["Entity1", "Entity2"]
    }
  ],
  "model_updates": [
    "Suggested world-model update to reduce future prediction errors"
  ]
}

Skip trivial routine events (heartbeats, status checks).

PREDICTIONS MADE:
%s

WHAT ACTUALLY HAPPENED (%s):
%s
`, date, predictions, date, actual)
}
