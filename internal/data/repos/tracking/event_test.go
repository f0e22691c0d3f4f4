package tracking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/lumen-backend/internal/data/repos/testutil"
	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
)

func TestLearningEventRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewLearningEventRepo(db, testutil.Logger(t))

	user := uuid.New()
	other := uuid.New()

	events := []*types.LearningEvent{
		{UserID: user, SkillID: "math.fractions.add", IsCorrect: true, Attempts: 1},
		{UserID: user, SkillID: "math.fractions.add", IsCorrect: false, Attempts: 2},
		{UserID: user, SkillID: "math.decimals.round", IsCorrect: true, Attempts: 1},
		{UserID: other, SkillID: "math.fractions.add", IsCorrect: true, Attempts: 1},
	}
	created, err := repo.Create(dbc, events)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i, ev := range created {
		if ev.ID == uuid.Nil {
			t.Fatalf("event %d: id not assigned", i)
		}
		if ev.Timestamp.IsZero() {
			t.Fatalf("event %d: timestamp not defaulted", i)
		}
		if ev.EventType != types.EventTypeStudentAction {
			t.Fatalf("event %d: event_type=%q", i, ev.EventType)
		}
	}

	byUser, err := repo.ListByUser(dbc, user, 0)
	if err != nil || len(byUser) != 3 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(byUser))
	}

	limited, err := repo.ListByUser(dbc, user, 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("ListByUser(limit=2): err=%v len=%d", err, len(limited))
	}

	bySkill, err := repo.ListByUserAndSkill(dbc, user, "math.fractions.add")
	if err != nil || len(bySkill) != 2 {
		t.Fatalf("ListByUserAndSkill: err=%v len=%d", err, len(bySkill))
	}

	// Explicit timestamps survive.
	ts := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	withTS, err := repo.Create(dbc, []*types.LearningEvent{
		{UserID: user, SkillID: "math.decimals.round", IsCorrect: true, Attempts: 1, Timestamp: ts},
	})
	if err != nil {
		t.Fatalf("Create with timestamp: %v", err)
	}
	if !withTS[0].Timestamp.Equal(ts) {
		t.Fatalf("timestamp overwritten: %v", withTS[0].Timestamp)
	}
}
