package tracking

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/lumenlearn/lumen-backend/internal/data/repos/testutil"
	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
	"github.com/lumenlearn/lumen-backend/internal/pkg/pointers"
)

func TestStudentSkillStateRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewStudentSkillStateRepo(db, testutil.Logger(t))

	user := uuid.New()

	// Missing row resolves to nil without error.
	missing, err := repo.GetForUpdate(dbc, user, "math.fractions.add")
	if err != nil || missing != nil {
		t.Fatalf("GetForUpdate(missing): err=%v row=%+v", err, missing)
	}

	st := &types.StudentSkillState{
		UserID:             user,
		SkillID:            "math.fractions.add",
		ProbabilityMastery: 0.5,
	}
	if err := repo.Create(dbc, st); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st.ID == uuid.Nil {
		t.Fatalf("id not assigned")
	}

	locked, err := repo.GetForUpdate(dbc, user, "math.fractions.add")
	if err != nil || locked == nil {
		t.Fatalf("GetForUpdate: err=%v row=%+v", err, locked)
	}

	locked.ProbabilityMastery = 0.6
	locked.TotalAttempts = 1
	locked.CorrectAttempts = 1
	if err := repo.Save(dbc, locked); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := repo.Create(dbc, &types.StudentSkillState{
		UserID:             user,
		SkillID:            "math.decimals.round",
		ProbabilityMastery: 0.95,
	}); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	byUser, err := repo.ListByUser(dbc, user)
	if err != nil || len(byUser) != 2 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(byUser))
	}
	if byUser[0].SkillID > byUser[1].SkillID {
		t.Fatalf("ListByUser not ordered by skill_id")
	}

	high, err := repo.ListAll(dbc, pointers.Float64(0.9))
	if err != nil || len(high) != 1 {
		t.Fatalf("ListAll(min=0.9): err=%v len=%d", err, len(high))
	}
	if high[0].SkillID != "math.decimals.round" {
		t.Fatalf("ListAll(min=0.9): skill_id=%q", high[0].SkillID)
	}
}
