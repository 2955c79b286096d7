package mcraptor

import "testing"

func TestLabelDominates(t *testing.T) {
	tests := []struct {
		name string
		a, b Label
		want bool
	}{
		{
			name: "strictly better arrival",
			a:    Label{Arrival: 100, Fare: 0, Trips: 1},
			b:    Label{Arrival: 200, Fare: 0, Trips: 1},
			want: true,
		},
		{
			name: "equal on everything",
			a:    Label{Arrival: 100, Fare: 1.5, Trips: 2},
			b:    Label{Arrival: 100, Fare: 1.5, Trips: 2},
			want: false,
		},
		{
			name: "better arrival worse trips",
			a:    Label{Arrival: 100, Fare: 0, Trips: 3},
			b:    Label{Arrival: 200, Fare: 0, Trips: 1},
			want: false,
		},
		{
			name: "better fare only",
			a:    Label{Arrival: 100, Fare: 0, Trips: 1},
			b:    Label{Arrival: 100, Fare: 1.67, Trips: 1},
			want: true,
		},
		{
			name: "worse fare",
			a:    Label{Arrival: 100, Fare: 1.67, Trips: 1},
			b:    Label{Arrival: 100, Fare: 0, Trips: 1},
			want: false,
		},
		{
			name: "fare within epsilon counts as equal",
			a:    Label{Arrival: 100, Fare: 1.6700000001, Trips: 1},
			b:    Label{Arrival: 100, Fare: 1.67, Trips: 1},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.dominates(tt.b); got != tt.want {
				t.Errorf("dominates(%+v, %+v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestBagMerge(t *testing.T) {
	base := Bag{{Arrival: 200, Fare: 0, Trips: 1}}

	// dominated incoming label changes nothing
	merged, changed := merge(base, []Label{{Arrival: 300, Fare: 0, Trips: 2}})
	if changed || len(merged) != 1 {
		t.Errorf("dominated merge changed=%v len=%d, want false/1", changed, len(merged))
	}

	// identical incoming label changes nothing
	merged, changed = merge(base, []Label{{Arrival: 200, Fare: 0, Trips: 1}})
	if changed || len(merged) != 1 {
		t.Errorf("identical merge changed=%v len=%d, want false/1", changed, len(merged))
	}

	// dominating incoming label replaces the existing one
	merged, changed = merge(base, []Label{{Arrival: 100, Fare: 0, Trips: 1}})
	if !changed || len(merged) != 1 || merged[0].Arrival != 100 {
		t.Errorf("dominating merge changed=%v result=%+v", changed, merged)
	}

	// incomparable incoming label joins the bag
	merged, changed = merge(base, []Label{{Arrival: 100, Fare: 0, Trips: 3}})
	if !changed || len(merged) != 2 {
		t.Errorf("incomparable merge changed=%v len=%d, want true/2", changed, len(merged))
	}

	// original backing array untouched by merges
	if base[0].Arrival != 200 {
		t.Errorf("merge mutated the input bag: %+v", base)
	}
}

func TestBagMergePreservesMinimality(t *testing.T) {
	bag := Bag{}
	incoming := []Label{
		{Arrival: 300, Fare: 2, Trips: 1},
		{Arrival: 200, Fare: 1, Trips: 2},
		{Arrival: 100, Fare: 0, Trips: 3},
		{Arrival: 150, Fare: 1.5, Trips: 2}, // dominates nothing, dominated by nothing
		{Arrival: 250, Fare: 3, Trips: 3},   // dominated
	}
	merged, changed := merge(bag, incoming)
	if !changed {
		t.Fatal("expected merge to change an empty bag")
	}
	assertParetoMinimal(t, merged)
	if len(merged) != 4 {
		t.Errorf("merged bag has %d labels, want 4: %+v", len(merged), merged)
	}
}

// assertParetoMinimal fails the test when any label in the bag dominates
// another.
func assertParetoMinimal(t *testing.T, bag Bag) {
	t.Helper()
	for i, a := range bag {
		for j, b := range bag {
			if i != j && a.dominates(b) {
				t.Errorf("bag not Pareto-minimal: %+v dominates %+v", a, b)
			}
		}
	}
}
