package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestJournal(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "nested", "decisions.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer j.Close()

	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []Entry{
		{Session: "s1", FEN: "fen-1", Side: "white", Piece: "queen", Verdict: "wait", Reason: "none", Score: 0.1, Threshold: 0.5, CreatedAt: base},
		{Session: "s1", FEN: "fen-2", Side: "white", Piece: "queen", Verdict: "use now", Reason: "evaluator: losing", Score: 0.42, Threshold: 0.5, Evaluation: -6, HasEvaluation: true, Square: "d1", CreatedAt: base.Add(time.Minute)},
		{Session: "s2", FEN: "fen-3", Side: "black", Piece: "rook", Verdict: "use now", Reason: "score", Score: 0.61, Threshold: 0.4, Square: "e7", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := j.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(got))
	}
	if got[0].FEN != "fen-3" || got[1].FEN != "fen-2" {
		t.Errorf("Recent order = %s, %s; want fen-3, fen-2", got[0].FEN, got[1].FEN)
	}
	e := got[1]
	if e.ID == "" || e.Session != "s1" || e.Verdict != "use now" || e.Reason != "evaluator: losing" ||
		!e.HasEvaluation || e.Evaluation != -6 || e.Square != "d1" || e.Score != 0.42 {
		t.Errorf("entry did not round trip: %+v", e)
	}
	if !e.CreatedAt.Equal(base.Add(time.Minute)) {
		t.Errorf("CreatedAt = %v, want %v", e.CreatedAt, base.Add(time.Minute))
	}
	if got[0].HasEvaluation {
		t.Error("entry without an evaluation reports one")
	}
}

func TestNilJournal(t *testing.T) {
	var j *Journal
	if err := j.Record(context.Background(), Entry{}); err != nil {
		t.Errorf("Record on a nil journal = %v", err)
	}
	if got, err := j.Recent(context.Background(), 5); err != nil || got != nil {
		t.Errorf("Recent on a nil journal = %v, %v", got, err)
	}
	if err := j.Close(); err != nil {
		t.Errorf("Close on a nil journal = %v", err)
	}
}
