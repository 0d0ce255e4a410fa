package sparse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInsertContains(t *testing.T) {
	s := New(8)
	if s.Contains(0) {
		t.Fatal("empty set contains 0")
	}
	if !s.Insert(5) {
		t.Error("first insert of 5 reported present")
	}
	if s.Insert(5) {
		t.Error("second insert of 5 reported absent")
	}
	if !s.Contains(5) || s.Contains(4) {
		t.Errorf("membership wrong after insert: 5=%v 4=%v", s.Contains(5), s.Contains(4))
	}
	if s.Contains(100) {
		t.Error("out of range value reported present")
	}
}

func TestClearKeepsStaleEntriesInvisible(t *testing.T) {
	s := New(4)
	s.Insert(3)
	s.Insert(1)
	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("Len() = %d after Clear", s.Len())
	}
	for v := uint32(0); v < 4; v++ {
		if s.Contains(v) {
			t.Errorf("Contains(%d) after Clear", v)
		}
	}
	s.Insert(1)
	if s.Contains(3) {
		t.Error("stale sparse entry for 3 became visible")
	}
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name   string
		insert []uint32
		remove uint32
		want   []uint32
	}{
		{"last", []uint32{1, 2, 3}, 3, []uint32{1, 2}},
		{"first", []uint32{1, 2, 3}, 1, []uint32{3, 2}},
		{"absent", []uint32{1, 2}, 0, []uint32{1, 2}},
		{"only", []uint32{7}, 7, []uint32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(8)
			for _, v := range tt.insert {
				s.Insert(v)
			}
			s.Remove(tt.remove)
			if diff := cmp.Diff(tt.want, s.Values()); diff != "" {
				t.Errorf("Values() mismatch (-want +got):\n%s", diff)
			}
			if s.Contains(tt.remove) {
				t.Errorf("Contains(%d) after Remove", tt.remove)
			}
		})
	}
}
