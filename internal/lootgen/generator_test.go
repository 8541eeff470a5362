package lootgen

import (
	"fmt"
	"math"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// subBaseInterval is the dt at which 1-(1-0.5)^(dt/base) equals 0.25,
// truncated to whole milliseconds the way tick deltas arrive on the wire.
func subBaseInterval() time.Duration {
	seconds := 1.0 / (math.Log(1-0.5) / math.Log(1.0-0.25))
	return time.Duration(seconds*1000) * time.Millisecond
}

func TestGenerate(t *testing.T) {
	Convey("Given a generator that always spawns", t, func() {
		gen := New(time.Second, 1.0)

		Convey("enough loot for every looter spawns nothing", func() {
			for looters := 0; looters < 10; looters++ {
				for loot := looters; loot < looters+10; loot++ {
					SoMsg(fmt.Sprintf("loot=%d looters=%d", loot, looters),
						gen.Generate(time.Second, loot, looters), ShouldEqual, 0)
				}
			}
		})

		Convey("more looters than loot spawns exactly the shortage", func() {
			for loot := 0; loot < 10; loot++ {
				for looters := loot; looters < loot+10; looters++ {
					SoMsg(fmt.Sprintf("loot=%d looters=%d", loot, looters),
						gen.Generate(time.Second, loot, looters), ShouldEqual, looters-loot)
				}
			}
		})
	})

	Convey("Given a generator with probability 0.5 over 1s", t, func() {
		gen := New(time.Second, 0.5)

		Convey("twice the base interval spawns most of the shortage", func() {
			So(gen.Generate(2*time.Second, 0, 4), ShouldEqual, 3)
		})

		Convey("a fraction of the base interval spawns a fraction", func() {
			So(gen.Generate(subBaseInterval(), 0, 4), ShouldEqual, 1)
		})
	})

	Convey("Given a generator with a custom random source", t, func() {
		gen := NewWithRandom(time.Second, 0.5, func() float64 { return 0.5 })

		Convey("a failed roll keeps accumulating elapsed time", func() {
			So(gen.Generate(subBaseInterval(), 0, 4), ShouldEqual, 0)
			So(gen.Generate(subBaseInterval(), 0, 4), ShouldEqual, 1)
		})
	})
}
