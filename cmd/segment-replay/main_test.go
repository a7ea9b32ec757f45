package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"expensetracker/internal/voice"
)

type recordingPublisher struct {
	got    []int
	failAt int
}

func (p *recordingPublisher) PublishSegment(_ context.Context, seg voice.Segment) error {
	if p.failAt > 0 && seg.ID == p.failAt {
		return errors.New("broker unavailable")
	}
	p.got = append(p.got, seg.ID)
	return nil
}

func TestReplayPublishesInOrder(t *testing.T) {
	segs := []voice.Segment{{ID: 1}, {ID: 2}, {ID: 3}}
	pub := &recordingPublisher{}

	n, err := replay(context.Background(), pub, segs, 0)
	if err != nil {
		t.Fatalf("replay() error = %v", err)
	}
	if n != 3 {
		t.Errorf("published = %d, want 3", n)
	}
	for i, id := range []int{1, 2, 3} {
		if pub.got[i] != id {
			t.Errorf("got[%d] = %d, want %d", i, pub.got[i], id)
		}
	}
}

func TestReplayStopsOnPublishError(t *testing.T) {
	segs := []voice.Segment{{ID: 1}, {ID: 2}, {ID: 3}}
	pub := &recordingPublisher{failAt: 2}

	n, err := replay(context.Background(), pub, segs, 0)
	if err == nil {
		t.Fatal("expected an error")
	}
	if n != 1 {
		t.Errorf("published = %d, want 1", n)
	}
}

func TestReadSegments(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	body := `[{"id":1,"contextId":"a","isFinal":false,"intent":{"intent":"add_expense"},"entities":[{"type":"amount","value":"12"}],"words":[]},
	          {"id":2,"contextId":"a","isFinal":true,"intent":{"intent":"add_expense"},"entities":[],"words":[]}]`
	if err := os.WriteFile(good, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	segs, err := readSegments(good)
	if err != nil {
		t.Fatalf("readSegments() error = %v", err)
	}
	if len(segs) != 2 || !segs[1].IsFinal || segs[0].ContextID != "a" {
		t.Errorf("unexpected segments: %+v", segs)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"id":1}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readSegments(bad); err == nil {
		t.Error("expected an error for a non-array file")
	}

	if _, err := readSegments(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
