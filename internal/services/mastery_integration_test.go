package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	trackingrepos "github.com/lumenlearn/lumen-backend/internal/data/repos/tracking"
	"github.com/lumenlearn/lumen-backend/internal/data/repos/testutil"
	types "github.com/lumenlearn/lumen-backend/internal/domain"
	"github.com/lumenlearn/lumen-backend/internal/pkg/dbctx"
)

// Concurrent writers on the same (user, skill) must serialize: the final
// projection has to equal a sequential replay of the same outcomes.
func TestMasteryServiceSerializesConcurrentUpdates(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)

	skills := trackingrepos.NewSkillRepo(db, log)
	events := trackingrepos.NewLearningEventRepo(db, log)
	states := trackingrepos.NewStudentSkillStateRepo(db, log)

	params := DefaultMasteryParams()
	params.RetryBudget = 10
	svc := NewMasteryService(db, log, skills, events, states, nil, params)

	ctx := context.Background()
	user := uuid.New()
	skillID := "it." + uuid.NewString()

	if _, err := skills.Upsert(dbctx.Context{Ctx: ctx}, []*types.Skill{
		{SkillID: skillID, SkillName: "Concurrency probe"},
	}); err != nil {
		t.Fatalf("register skill: %v", err)
	}
	t.Cleanup(func() {
		db.Where("user_id = ?", user).Delete(&types.LearningEvent{})
		db.Where("user_id = ?", user).Delete(&types.StudentSkillState{})
		db.Unscoped().Where("skill_id = ?", skillID).Delete(&types.Skill{})
	})

	const writers = 8
	const perWriter = 5

	var wg sync.WaitGroup
	errs := make(chan error, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				// Half the writers answer correctly, half incorrectly.
				_, err := svc.RecordEvent(ctx, RecordEventInput{
					UserID:    user,
					SkillID:   skillID,
					IsCorrect: w%2 == 0,
					Attempts:  1,
				})
				if err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("RecordEvent: %v", err)
	}

	var st types.StudentSkillState
	if err := db.Where("user_id = ? AND skill_id = ?", user, skillID).First(&st).Error; err != nil {
		t.Fatalf("load state: %v", err)
	}

	total := writers * perWriter
	correct := (writers / 2) * perWriter
	if st.TotalAttempts != total {
		t.Fatalf("total_attempts=%d want=%d (lost update)", st.TotalAttempts, total)
	}
	if st.CorrectAttempts != correct {
		t.Fatalf("correct_attempts=%d want=%d", st.CorrectAttempts, correct)
	}
	if st.ProbabilityMastery < 0 || st.ProbabilityMastery > 1 {
		t.Fatalf("probability out of bounds: %v", st.ProbabilityMastery)
	}

	var eventCount int64
	if err := db.Model(&types.LearningEvent{}).
		Where("user_id = ? AND skill_id = ?", user, skillID).
		Count(&eventCount).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if eventCount != int64(total) {
		t.Fatalf("event log count=%d want=%d", eventCount, total)
	}
}

func TestMasteryServiceRejectsUnknownSkill(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)

	skills := trackingrepos.NewSkillRepo(db, log)
	events := trackingrepos.NewLearningEventRepo(db, log)
	states := trackingrepos.NewStudentSkillStateRepo(db, log)
	svc := NewMasteryService(db, log, skills, events, states, nil, DefaultMasteryParams())

	_, err := svc.RecordEvent(context.Background(), RecordEventInput{
		UserID:    uuid.New(),
		SkillID:   "never.registered",
		IsCorrect: true,
	})
	if err == nil {
		t.Fatalf("expected unknown skill rejection")
	}
}
