package input

import (
	"errors"
	"sync"
	"testing"
)

type recordingAction struct {
	mu      sync.Mutex
	calls   []string
	deleted int
	err     error
}

func (r *recordingAction) Insert(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "insert:"+text)
	return r.err
}

func (r *recordingAction) DeleteChars(count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "delete")
	r.deleted += count
	return r.err
}

func TestInserterSkipsNoops(t *testing.T) {
	rec := &recordingAction{}
	ins := NewWith(rec)

	if err := ins.Insert(""); err != nil {
		t.Fatalf("Insert(\"\") error = %v", err)
	}
	if err := ins.DeleteChars(0); err != nil {
		t.Fatalf("DeleteChars(0) error = %v", err)
	}
	if err := ins.DeleteChars(-3); err != nil {
		t.Fatalf("DeleteChars(-3) error = %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("calls = %v, want none", rec.calls)
	}
}

func TestInserterForwards(t *testing.T) {
	rec := &recordingAction{}
	ins := NewWith(rec)

	if err := ins.DeleteChars(2); err != nil {
		t.Fatal(err)
	}
	if err := ins.Insert("привет"); err != nil {
		t.Fatal(err)
	}

	want := []string{"delete", "insert:привет"}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("call[%d] = %q, want %q", i, rec.calls[i], want[i])
		}
	}
	if rec.deleted != 2 {
		t.Errorf("deleted = %d, want 2", rec.deleted)
	}
}

func TestInserterPropagatesErrors(t *testing.T) {
	want := errors.New("no focused field")
	ins := NewWith(&recordingAction{err: want})

	if err := ins.Insert("x"); !errors.Is(err, want) {
		t.Errorf("Insert() error = %v, want %v", err, want)
	}
	if err := ins.DeleteChars(1); !errors.Is(err, want) {
		t.Errorf("DeleteChars() error = %v, want %v", err, want)
	}
}

func TestInserterConcurrent(t *testing.T) {
	rec := &recordingAction{}
	ins := NewWith(rec)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ins.Insert("a")
			_ = ins.DeleteChars(1)
		}()
	}
	wg.Wait()

	if len(rec.calls) != 40 {
		t.Errorf("calls = %d, want 40", len(rec.calls))
	}
}
