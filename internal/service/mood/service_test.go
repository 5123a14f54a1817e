package mood_test

import (
	"path/filepath"
	"testing"

	model "github.com/sakurane/tsumugi/backend/internal/model/mood"
	mood "github.com/sakurane/tsumugi/backend/internal/service/mood"
)

func TestCoaxThresholdExactness(t *testing.T) {
	svc := mood.NewService(nil)
	const session = "s1"

	snap := svc.MarkUpset(session)
	if snap.State != model.Angry || snap.Coax != 0 {
		t.Fatalf("unexpected snapshot after upset: %+v", snap)
	}

	for i := 1; i < model.CoaxThreshold; i++ {
		snap, reconciled := svc.RecordCoax(session, true)
		if reconciled {
			t.Fatalf("reconciled early at attempt %d", i)
		}
		if snap.State != model.Angry {
			t.Fatalf("left angry early at attempt %d: %+v", i, snap)
		}
		if snap.Coax != i {
			t.Fatalf("unexpected counter at attempt %d: %d", i, snap.Coax)
		}
	}

	snap, reconciled := svc.RecordCoax(session, true)
	if !reconciled {
		t.Fatal("expected reconciliation at the threshold")
	}
	if snap.State != model.Normal || snap.Coax != 0 {
		t.Fatalf("counter not reset at transition: %+v", snap)
	}
}

func TestRejectedCoaxDoesNotAdvance(t *testing.T) {
	svc := mood.NewService(nil)
	const session = "s1"

	svc.MarkUpset(session)
	snap, reconciled := svc.RecordCoax(session, false)
	if reconciled || snap.Coax != 0 || snap.State != model.Angry {
		t.Fatalf("rejected coax changed state: %+v reconciled=%v", snap, reconciled)
	}
}

func TestCoaxWhileNormalIsNoOp(t *testing.T) {
	svc := mood.NewService(nil)

	snap, reconciled := svc.RecordCoax("s1", true)
	if reconciled || snap.State != model.Normal || snap.Coax != 0 {
		t.Fatalf("coax while normal mutated state: %+v", snap)
	}
}

func TestMoodSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moods.db")

	store, err := mood.OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore err: %v", err)
	}

	svc := mood.NewService(store)
	svc.MarkUpset("s1")
	svc.RecordCoax("s1", true)
	if err := store.Close(); err != nil {
		t.Fatalf("Close err: %v", err)
	}

	reopened, err := mood.OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen err: %v", err)
	}
	defer reopened.Close()

	snap := mood.NewService(reopened).Get("s1")
	if snap.State != model.Angry || snap.Coax != 1 {
		t.Fatalf("persisted snapshot lost: %+v", snap)
	}
}
