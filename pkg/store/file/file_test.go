package file

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/alterfero/dig4el-sub001/pkg/common"
	"github.com/alterfero/dig4el-sub001/pkg/store"
)

func TestSnapshotFileStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewSnapshotFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	kg, err := common.NewKnowledgeGraph("english", []common.Entry{
		{Index: 0, Language: "english", Turn: "1", Recording: common.RecordingData{
			Translation:  "Mary eats",
			ConceptWords: map[string]string{"EAT": "eats"},
		}},
		{Index: 1, Language: "english", Turn: "2"},
	})
	if err != nil {
		t.Fatal(err)
	}
	built := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)
	snap := &common.Snapshot{
		Language:      "English",
		Graph:         kg,
		UniqueWords:   []string{"Mary", "eats"},
		WordFrequency: map[string]float64{"Mary": 1000, "eats": 500},
		TotalWords:    2,
		BuiltAt:       built,
	}
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	got, err := s.LoadSnapshot(ctx, "english")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if diff := cmp.Diff(snap.Graph.Entries(), got.Graph.Entries()); diff != "" {
		t.Errorf("entries differ (-want +got):\n%s", diff)
	}

	infos, err := s.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	want := []store.SnapshotInfo{{Language: "english", Entries: 2, TotalWords: 2, BuiltAt: built}}
	if diff := cmp.Diff(want, infos); diff != "" {
		t.Errorf("infos differ (-want +got):\n%s", diff)
	}

	if err := s.DeleteSnapshot(ctx, "ENGLISH"); err != nil {
		t.Fatalf("DeleteSnapshot: %v", err)
	}
	if _, err := s.LoadSnapshot(ctx, "english"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
