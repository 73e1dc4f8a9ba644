package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/netsentry/netsentry/internal/datastore"
	"github.com/netsentry/netsentry/internal/datastore/entities"
	"github.com/netsentry/netsentry/internal/datastore/repository"
	"github.com/netsentry/netsentry/internal/errors"
	"github.com/netsentry/netsentry/internal/logger"
	"github.com/netsentry/netsentry/internal/notification"
	"github.com/netsentry/netsentry/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) (*Engine, *datastore.Store) {
	t.Helper()
	store := testutil.NewStore(t)
	return NewEngine(store, nil, logger.NewNopLogger()), store
}

func auditEntries(t *testing.T, store *datastore.Store, ruleID uint) []entities.AuditLog {
	t.Helper()
	entries, err := store.Audit().List(t.Context(), repository.AuditFilter{
		TargetType: entities.TargetTypeRule,
		TargetID:   ruleID,
	})
	require.NoError(t, err)
	return entries
}

func queueEntries(t *testing.T, store *datastore.Store) []entities.NotificationQueueEntry {
	t.Helper()
	entries, err := store.Queue().List(t.Context(), 0)
	require.NoError(t, err)
	return entries
}

func strRef(s string) *string { return &s }
func boolRef(b bool) *bool    { return &b }

func TestCreate_RecordsAuditWithoutNotification(t *testing.T) {
	t.Parallel()
	engine, store := newEngine(t)

	actorID := uint(42)
	rule, err := engine.Create(t.Context(), RuleInput{
		Name:    "ssh-bruteforce",
		Pattern: "dst_port == 22",
	}, Actor{ID: &actorID, Metadata: map[string]any{"ip": "10.0.0.9"}})
	require.NoError(t, err)
	require.NotZero(t, rule.ID)
	assert.False(t, rule.Enabled)
	assert.False(t, rule.NotifyOnChange)

	entries := auditEntries(t, store, rule.ID)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, entities.ActionRuleCreate, entry.Action)
	assert.Equal(t, entities.TargetTypeRule, entry.TargetType)
	assert.Equal(t, rule.ID, entry.TargetID)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, actorID, *entry.ActorID)

	var diffs []entities.FieldDiff
	require.NoError(t, json.Unmarshal([]byte(entry.Diff), &diffs))
	require.Len(t, diffs, 1)
	assert.Equal(t, "create", diffs[0].Field)
	assert.Nil(t, diffs[0].Old)

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(entry.Metadata), &meta))
	assert.Equal(t, "10.0.0.9", meta["ip"])

	// Creation is audited but never announced.
	assert.Empty(t, queueEntries(t, store))
}

func TestCreate_ValidatesMandatoryFields(t *testing.T) {
	t.Parallel()
	engine, _ := newEngine(t)

	_, err := engine.Create(t.Context(), RuleInput{Pattern: "x"}, Actor{})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	_, err = engine.Create(t.Context(), RuleInput{Name: "x"}, Actor{})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestUpdate_SingleFieldPatchYieldsSingleFieldDiff(t *testing.T) {
	t.Parallel()
	engine, store := newEngine(t)

	rule, err := engine.Create(t.Context(), RuleInput{
		Name: "scan", Pattern: "old-pattern", NotifyOnChange: true,
	}, Actor{})
	require.NoError(t, err)

	updated, err := engine.Update(t.Context(), rule.ID, RulePatch{
		Pattern: strRef("new-pattern"),
	}, Actor{})
	require.NoError(t, err)
	assert.Equal(t, "new-pattern", updated.Pattern)

	entries := auditEntries(t, store, rule.ID)
	require.Len(t, entries, 2)
	update := entries[0] // newest first
	assert.Equal(t, entities.ActionRuleUpdate, update.Action)

	var diffs []entities.FieldDiff
	require.NoError(t, json.Unmarshal([]byte(update.Diff), &diffs))
	require.Len(t, diffs, 1)
	assert.Equal(t, "pattern", diffs[0].Field)
	assert.Equal(t, "old-pattern", diffs[0].Old)
	assert.Equal(t, "new-pattern", diffs[0].New)

	queued := queueEntries(t, store)
	require.Len(t, queued, 1)
	assert.Equal(t, notification.EventRuleChanged, queued[0].EventType)

	var payload notification.RuleChangedPayload
	require.NoError(t, json.Unmarshal([]byte(queued[0].Payload), &payload))
	assert.Equal(t, rule.ID, payload.RuleID)
	assert.Equal(t, "scan", payload.RuleName)
	require.Len(t, payload.Diffs, 1)
	assert.Equal(t, "pattern", payload.Diffs[0].Field)
}

func TestUpdate_NotifyDisabledBothSidesSkipsQueue(t *testing.T) {
	t.Parallel()
	engine, store := newEngine(t)

	rule, err := engine.Create(t.Context(), RuleInput{Name: "quiet", Pattern: "p"}, Actor{})
	require.NoError(t, err)

	_, err = engine.Update(t.Context(), rule.ID, RulePatch{Pattern: strRef("p2")}, Actor{})
	require.NoError(t, err)

	require.Len(t, auditEntries(t, store, rule.ID), 2)
	assert.Empty(t, queueEntries(t, store))
}

// Turning notify_on_change off still announces that edit: the pre-image had
// it set.
func TestUpdate_PreImageNotifyGatesTheDisablingEdit(t *testing.T) {
	t.Parallel()
	engine, store := newEngine(t)

	rule, err := engine.Create(t.Context(), RuleInput{
		Name: "watched", Pattern: "p", NotifyOnChange: true,
	}, Actor{})
	require.NoError(t, err)

	_, err = engine.Update(t.Context(), rule.ID, RulePatch{NotifyOnChange: boolRef(false)}, Actor{})
	require.NoError(t, err)

	queued := queueEntries(t, store)
	require.Len(t, queued, 1)
	assert.Equal(t, notification.EventRuleChanged, queued[0].EventType)

	// A later edit sees notify off on both sides.
	_, err = engine.Update(t.Context(), rule.ID, RulePatch{Pattern: strRef("p2")}, Actor{})
	require.NoError(t, err)
	assert.Len(t, queueEntries(t, store), 1)
}

func TestUpdate_PostImageNotifyGatesTheEnablingEdit(t *testing.T) {
	t.Parallel()
	engine, store := newEngine(t)

	rule, err := engine.Create(t.Context(), RuleInput{Name: "r", Pattern: "p"}, Actor{})
	require.NoError(t, err)

	_, err = engine.Update(t.Context(), rule.ID, RulePatch{NotifyOnChange: boolRef(true)}, Actor{})
	require.NoError(t, err)

	queued := queueEntries(t, store)
	require.Len(t, queued, 1)
	assert.Equal(t, notification.EventRuleChanged, queued[0].EventType)
}

func TestUpdate_NoOpPatchRecordsEmptyDiff(t *testing.T) {
	t.Parallel()
	engine, store := newEngine(t)

	rule, err := engine.Create(t.Context(), RuleInput{Name: "same", Pattern: "p"}, Actor{})
	require.NoError(t, err)

	_, err = engine.Update(t.Context(), rule.ID, RulePatch{Name: strRef("same")}, Actor{})
	require.NoError(t, err)

	entries := auditEntries(t, store, rule.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, "[]", entries[0].Diff)
}

func TestUpdate_BumpsUpdatedAt(t *testing.T) {
	t.Parallel()
	engine, _ := newEngine(t)

	rule, err := engine.Create(t.Context(), RuleInput{Name: "r", Pattern: "p"}, Actor{})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	updated, err := engine.Update(t.Context(), rule.ID, RulePatch{Pattern: strRef("p2")}, Actor{})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(rule.UpdatedAt))
}

func TestUpdate_UnknownRule(t *testing.T) {
	t.Parallel()
	engine, _ := newEngine(t)

	_, err := engine.Update(t.Context(), 9999, RulePatch{Name: strRef("x")}, Actor{})
	assert.ErrorIs(t, err, repository.ErrRuleNotFound)
}

func TestDelete_AnnouncesUnconditionallyAndDetachesAlerts(t *testing.T) {
	t.Parallel()
	engine, store := newEngine(t)

	// notify_on_change off: deletion is announced regardless.
	rule, err := engine.Create(t.Context(), RuleInput{Name: "doomed", Pattern: "p"}, Actor{})
	require.NoError(t, err)

	alert := entities.Alert{
		Timestamp: time.Now().UTC(),
		SrcIP:     "1.1.1.1",
		DstIP:     "2.2.2.2",
		Severity:  "low",
		RuleID:    &rule.ID,
	}
	require.NoError(t, store.Alerts().Insert(t.Context(), &alert))

	require.NoError(t, engine.Delete(t.Context(), rule.ID, Actor{}))

	_, err = store.Rules().Get(t.Context(), rule.ID)
	assert.ErrorIs(t, err, repository.ErrRuleNotFound)

	detached, err := store.Alerts().Get(t.Context(), alert.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.RuleID)

	entries := auditEntries(t, store, rule.ID)
	require.Len(t, entries, 2)
	del := entries[0]
	assert.Equal(t, entities.ActionRuleDelete, del.Action)

	var diffs []entities.FieldDiff
	require.NoError(t, json.Unmarshal([]byte(del.Diff), &diffs))
	require.Len(t, diffs, 1)
	assert.Equal(t, "delete", diffs[0].Field)
	assert.Nil(t, diffs[0].New)
	old, ok := diffs[0].Old.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "doomed", old["name"])
	assert.Contains(t, old, "id")
	assert.Contains(t, old, "created_at")

	queued := queueEntries(t, store)
	require.Len(t, queued, 1)
	assert.Equal(t, notification.EventRuleDeleted, queued[0].EventType)

	var payload notification.RuleDeletedPayload
	require.NoError(t, json.Unmarshal([]byte(queued[0].Payload), &payload))
	assert.Equal(t, rule.ID, payload.RuleID)
	assert.Equal(t, "doomed", payload.RuleName)
	assert.True(t, payload.Deleted)
}

func TestDelete_UnknownRule(t *testing.T) {
	t.Parallel()
	engine, store := newEngine(t)

	err := engine.Delete(t.Context(), 9999, Actor{})
	assert.ErrorIs(t, err, repository.ErrRuleNotFound)
	assert.Empty(t, queueEntries(t, store))
}
