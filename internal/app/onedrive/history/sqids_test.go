package history

import "testing"

// 测试公开 ID 满足最小长度且稳定
func TestEncodeID(t *testing.T) {
	a, err := encodeID(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a) < 6 {
		t.Errorf("public id %q shorter than min length", a)
	}

	b, err := encodeID(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("encodeID not deterministic: %q vs %q", a, b)
	}
}

// 测试不同行 ID 派生不同公开 ID
func TestEncodeIDUnique(t *testing.T) {
	seen := make(map[string]uint64)
	for id := uint64(1); id <= 1000; id++ {
		pid, err := encodeID(id)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if prev, dup := seen[pid]; dup {
			t.Fatalf("ids %d and %d both encode to %q", prev, id, pid)
		}
		seen[pid] = id
	}
}
