package retention

import "testing"

func TestCheckSafety(t *testing.T) {
	tests := []struct {
		name     string
		keep     int
		discard  int
		minKeep  int
		wantSafe bool
	}{
		{name: "nothing discarded", keep: 0, discard: 0, minKeep: 10, wantSafe: true},
		{name: "mostly discarded, few kept", keep: 2, discard: 100, minKeep: 10, wantSafe: false},
		{name: "keeps enough", keep: 10, discard: 100, minKeep: 10, wantSafe: true},
		{name: "discard equals keep", keep: 5, discard: 5, minKeep: 10, wantSafe: true},
		{name: "discard below keep", keep: 5, discard: 4, minKeep: 10, wantSafe: true},
		{name: "everything discarded", keep: 0, discard: 3, minKeep: 1, wantSafe: false},
		{name: "guard disabled", keep: 0, discard: 3, minKeep: 0, wantSafe: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckSafety(tt.keep, tt.discard, tt.minKeep); got != tt.wantSafe {
				t.Errorf("CheckSafety(%d, %d, %d) = %v, want %v",
					tt.keep, tt.discard, tt.minKeep, got, tt.wantSafe)
			}
		})
	}
}

func TestResultSafe(t *testing.T) {
	r := &Result{}
	for i := 0; i < 100; i++ {
		r.Discard = append(r.Discard, testNow)
	}
	r.Keep = append(r.Keep, testNow, testNow)

	if r.Safe(10) {
		t.Error("Safe(10) = true for 2 kept / 100 discarded, want false")
	}
	if !r.Safe(2) {
		t.Error("Safe(2) = false for 2 kept, want true")
	}
	if len(r.Keep) != 2 || len(r.Discard) != 100 {
		t.Error("Safe() modified the result")
	}
}
