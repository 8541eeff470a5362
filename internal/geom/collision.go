package geom

import "sort"

// Item is a stationary collectible presented to the collision kernel. IDs are
// opaque to the kernel; callers choose their own addressing scheme.
type Item struct {
	Pos   Point2D
	Width float64
	ID    uint64
}

// Gatherer is the swept segment of a moving collector for one tick.
type Gatherer struct {
	Start Point2D
	End   Point2D
	Width float64
	ID    uint64
}

// GatheringEvent records that a gatherer sweep touched an item. Time is the
// fraction of the sweep travelled at the moment of contact.
type GatheringEvent struct {
	ItemID     uint64
	GathererID uint64
	SqDistance float64
	Time       float64
}

// CollectionResult is the projection of an item onto a gatherer's sweep line.
type CollectionResult struct {
	// SqDistance is the squared perpendicular distance from the item to the line.
	SqDistance float64
	// ProjRatio is the share of the segment travelled to reach the projection.
	// Values outside [0, 1] mean the projection falls beyond an endpoint.
	ProjRatio float64
}

// IsCollected reports whether the projection lands on the segment and within
// collectRadius (the sum of the item and gatherer radii) of the line.
func (r CollectionResult) IsCollected(collectRadius float64) bool {
	if r.ProjRatio < 0 || r.ProjRatio > 1 {
		return false
	}
	return r.SqDistance <= collectRadius*collectRadius
}

// TryCollectPoint projects point c onto the segment a-b. The segment must be
// non-degenerate (a != b).
func TryCollectPoint(a, b, c Point2D) CollectionResult {
	ux := c.X - a.X
	uy := c.Y - a.Y
	vx := b.X - a.X
	vy := b.Y - a.Y

	uDotV := ux*vx + uy*vy
	uLen2 := ux*ux + uy*uy
	vLen2 := vx*vx + vy*vy

	return CollectionResult{
		SqDistance: uLen2 - uDotV*uDotV/vLen2,
		ProjRatio:  uDotV / vLen2,
	}
}

// FindGatherEvents enumerates every (item, gatherer) contact and returns the
// events in chronological order. Stationary gatherers produce no events.
// Inputs are never mutated; equal times keep enumeration order (stable sort).
func FindGatherEvents(items []Item, gatherers []Gatherer) []GatheringEvent {
	var events []GatheringEvent

	for _, g := range gatherers {
		if g.Start == g.End {
			continue
		}
		for _, item := range items {
			res := TryCollectPoint(g.Start, g.End, item.Pos)
			if !res.IsCollected(item.Width + g.Width) {
				continue
			}
			events = append(events, GatheringEvent{
				ItemID:     item.ID,
				GathererID: g.ID,
				SqDistance: res.SqDistance,
				Time:       res.ProjRatio,
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})

	return events
}
