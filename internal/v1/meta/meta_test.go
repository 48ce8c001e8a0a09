package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogSizes(t *testing.T) {
	assert.Len(t, MeetingGoals, 7)
	assert.Len(t, ParticipationFormats, 12)
	assert.Len(t, DecisionRules, 10)
	assert.Len(t, Deliverables, 16)
}

func TestCatalogEntriesComplete(t *testing.T) {
	catalogs := map[string][]Entry{
		"meeting goals":         MeetingGoals,
		"participation formats": ParticipationFormats,
		"decision rules":        DecisionRules,
		"deliverables":          Deliverables,
	}

	for name, entries := range catalogs {
		seen := map[string]bool{}
		for _, e := range entries {
			assert.NotEmpty(t, e.Value, "%s: value missing", name)
			assert.NotEmpty(t, e.DisplayName, "%s: displayName missing for %s", name, e.Value)
			assert.NotEmpty(t, e.Description, "%s: description missing for %s", name, e.Value)
			assert.False(t, seen[e.Value], "%s: duplicate value %s", name, e.Value)
			seen[e.Value] = true
		}
	}
}

func TestParseMeetingGoal(t *testing.T) {
	goal, ok := ParseMeetingGoal("MAKE_DECISIONS")
	assert.True(t, ok)
	assert.Equal(t, GoalMakeDecisions, goal)

	_, ok = ParseMeetingGoal("make_decisions")
	assert.False(t, ok, "parsing is case-sensitive")

	_, ok = ParseMeetingGoal("NOT_A_GOAL")
	assert.False(t, ok)

	_, ok = ParseMeetingGoal("")
	assert.False(t, ok)
}

func TestParseParticipationFormat(t *testing.T) {
	format, ok := ParseParticipationFormat("FISHBOWLS")
	assert.True(t, ok)
	assert.Equal(t, FormatFishbowls, format)

	_, ok = ParseParticipationFormat("KARAOKE")
	assert.False(t, ok)
}

func TestParseDecisionRule(t *testing.T) {
	rule, ok := ParseDecisionRule("FLIP_A_COIN")
	assert.True(t, ok)
	assert.Equal(t, RuleFlipACoin, rule)

	_, ok = ParseDecisionRule("DICE_ROLL")
	assert.False(t, ok)
}

func TestParseDeliverable(t *testing.T) {
	d, ok := ParseDeliverable("DRAW_FLOWCHART")
	assert.True(t, ok)
	assert.Equal(t, DeliverableDrawFlowchart, d)

	_, ok = ParseDeliverable("DRAW_OWL")
	assert.False(t, ok)
}
