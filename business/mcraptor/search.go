package mcraptor

import (
	"context"
	"fmt"
	logger "log"

	"github.com/OpenTransitTools/journeyplanner/business/data/timetable"
)

// McRaptor runs multi-criteria round-based searches over one timetable. The
// timetable is shared and read-only; every search owns its bags, so one
// McRaptor value may serve concurrent searches.
type McRaptor struct {
	log *logger.Logger
	tt  *timetable.Timetable
}

// NewMcRaptor creates a search engine over tt.
func NewMcRaptor(log *logger.Logger, tt *timetable.Timetable) *McRaptor {
	return &McRaptor{log: log, tt: tt}
}

// Run performs the round loop from fromStops departing at depSecs, up to
// maxRounds boardings. seed, when non-nil, is a prior search's final bags;
// its labels join round zero so known-reachable states prune this search.
// It returns the per-round bags and the index of the last round, and honors
// ctx cancellation between rounds.
func (m *McRaptor) Run(ctx context.Context, fromStops []int, depSecs, maxRounds int, seed StopBags) ([]StopBags, int, error) {
	if maxRounds < 1 {
		return nil, 0, fmt.Errorf("round budget %d below one: %w", maxRounds, ErrInvalidInput)
	}
	if len(fromStops) == 0 {
		return nil, 0, fmt.Errorf("no origin stops: %w", ErrInvalidInput)
	}

	initial := make(StopBags, len(m.tt.Stops))
	marked := map[int]struct{}{}
	for _, stop := range fromStops {
		initial[stop], _ = merge(initial[stop], []Label{{Arrival: depSecs, Ref: originRef(stop)}})
		marked[stop] = struct{}{}
	}
	if seed != nil {
		// Seed labels are a fixed point of the search that produced them:
		// everything reachable from them is already in the seed, so they
		// prune without being re-propagated.
		for stop, bag := range seed {
			if len(bag) == 0 {
				continue
			}
			initial[stop], _ = merge(initial[stop], bag)
		}
	}

	bags := make([]StopBags, 1, maxRounds+1)
	bags[0] = initial

	for k := 1; k <= maxRounds; k++ {
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		default:
		}

		cur := bags[k-1].shallowCopy()
		marked = m.round(bags[k-1], cur, marked)
		bags = append(bags, cur)
		if len(marked) == 0 {
			break
		}
	}
	return bags, len(bags) - 1, nil
}

// RunMcRaptor resolves an origin station and runs a single search from all
// of its platforms.
func RunMcRaptor(ctx context.Context, log *logger.Logger, tt *timetable.Timetable,
	originStationID string, depSecs, maxRounds int) ([]StopBags, int, error) {

	origin, present := tt.StationIndex(originStationID)
	if !present {
		return nil, 0, fmt.Errorf("station %s: %w", originStationID, ErrUnknownStation)
	}
	return NewMcRaptor(log, tt).Run(ctx, tt.StopsOf(origin), depSecs, maxRounds, nil)
}
