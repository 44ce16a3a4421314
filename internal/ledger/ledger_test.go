package ledger

import "testing"

func TestPolicies(t *testing.T) {
	cases := []struct {
		name   string
		policy Policy
		deltas []int
		want   int
	}{
		{"positive only", Policy{}, []int{50, -10, 25}, 75},
		{"negative allowed", Policy{AllowNegative: true}, []int{10, -25}, -15},
		{"floored", Policy{AllowNegative: true, FloorAtZero: true}, []int{10, -25, 5}, 5},
	}
	for _, tc := range cases {
		l := New(tc.policy)
		for _, d := range tc.deltas {
			l.AddXP(d)
		}
		if l.Total() != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, l.Total())
		}
	}
}

func TestAuditTrail(t *testing.T) {
	l := New(Policy{AllowNegative: true, FloorAtZero: true})
	l.Add("phase", 20)
	if applied := l.Add("wrong extinguisher", -30); applied != -20 {
		t.Fatalf("expected -20 applied at floor, got %d", applied)
	}
	entries := l.Entries()
	if len(entries) != 2 || entries[1].Requested != -30 || entries[1].Total != 0 {
		t.Fatalf("unexpected entries %+v", entries)
	}
}
