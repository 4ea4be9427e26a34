package sandbox_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ballbox/internal/config"
	"github.com/san-kum/ballbox/internal/sandbox"
	"github.com/san-kum/ballbox/internal/snapshot"
	"github.com/san-kum/ballbox/internal/surface"
	"github.com/san-kum/ballbox/internal/verlet"
)

func newSandbox(w, h float64) *sandbox.Sandbox {
	s, err := sandbox.New(config.DefaultConfig().Sandbox, w, h, 42)
	Expect(err).NotTo(HaveOccurred())
	return s
}

// twoBalls has one ball moving right in the damper chamber and one moving
// down in the box chamber.
func twoBalls() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Width:  200,
		Height: 100,
		Points: []snapshot.Point{
			{CX: 50, CY: 50, PX: 47, PY: 50, Dt: 1, Color: "#ff0000", R: snapshot.Radius(5)},
			{CX: 150, CY: 54, PX: 150, PY: 50, Dt: 1, Color: "#00ff00", R: snapshot.Radius(8)},
		},
		DamperIndices:  []int{0},
		BoxIndices:     []int{1},
		InspectedIndex: -1,
	}
}

func tempDir() string {
	dir, err := os.MkdirTemp("", "ballbox-sandbox")
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(os.RemoveAll, dir)
	return dir
}

var _ = Describe("Sandbox", func() {
	Describe("New", func() {
		It("rejects a bad chamber colour", func() {
			cfg := config.DefaultConfig().Sandbox
			cfg.BoxColor = "chartreuse-ish"
			_, err := sandbox.New(cfg, 100, 100, 1)
			Expect(err).To(MatchError(surface.ErrBadColor))
		})

		DescribeTable("rejects an unusable viewport",
			func(w, h float64) {
				_, err := sandbox.New(config.DefaultConfig().Sandbox, w, h, 1)
				Expect(err).To(HaveOccurred())
			},
			Entry("empty", 0.0, 100.0),
			Entry("NaN width", math.NaN(), 100.0),
			Entry("infinite height", 100.0, math.Inf(1)),
		)

		It("splits the viewport at the midline", func() {
			s := newSandbox(160, 88)
			Expect(s.Damper().Left).To(Equal(0.0))
			Expect(s.Damper().Right).To(Equal(80.0))
			Expect(s.Box().Left).To(Equal(80.0))
			Expect(s.Box().Right).To(Equal(160.0))
			Expect(s.Box().Bottom).To(Equal(88.0))
		})
	})

	Describe("Populate", func() {
		var s *sandbox.Sandbox

		BeforeEach(func() {
			s = newSandbox(160, 88)
			s.Populate()
		})

		It("fills the left chamber only", func() {
			Expect(s.Scene().Len()).To(BeNumerically(">", 0))
			Expect(s.Damper().Len()).To(Equal(s.Scene().Len()))
			Expect(s.Box().Len()).To(BeZero())
		})

		It("draws radii from the configured range", func() {
			for i := range s.Scene().Bodies {
				Expect(s.Scene().Bodies[i].R).To(BeNumerically(">=", 4))
				Expect(s.Scene().Bodies[i].R).To(BeNumerically("<=", 8))
			}
		})

		It("covers at least the fill ratio of the chamber", func() {
			used := 0.0
			for i := range s.Scene().Bodies {
				r := s.Scene().Bodies[i].R
				used += math.Pi * r * r
			}
			Expect(used).To(BeNumerically(">=", 80*88*0.6))
		})

		It("leaves a finite, settled scene", func() {
			Expect(s.Scene().Valid()).To(BeTrue())
		})

		It("is deterministic for a seed", func() {
			other := newSandbox(160, 88)
			other.Populate()
			Expect(other.Snapshot()).To(Equal(s.Snapshot()))
		})
	})

	Describe("Tick", func() {
		It("skips the first tick and zero intervals", func() {
			s := newSandbox(160, 88)
			s.Populate()
			t0 := time.Unix(100, 0)
			Expect(s.Tick(t0)).To(BeFalse())
			Expect(s.Tick(t0)).To(BeFalse())
			Expect(s.Tick(t0.Add(16 * time.Millisecond))).To(BeTrue())
			Expect(s.Frames()).To(Equal(1))

			s.PauseClock()
			Expect(s.Tick(t0.Add(time.Hour))).To(BeFalse())
			Expect(s.Frames()).To(Equal(1))
		})
	})

	Describe("Resize", func() {
		It("scales positions linearly and radii by the square root", func() {
			s := newSandbox(200, 100)
			Expect(s.Restore(twoBalls())).To(Succeed())

			s.Resize(400, 100)
			b := s.Scene().Body(0)
			Expect(b.CX).To(BeNumerically("~", 100, 1e-9))
			Expect(b.PX).To(BeNumerically("~", 94, 1e-9))
			Expect(b.CY).To(BeNumerically("~", 50, 1e-9))
			Expect(b.R).To(BeNumerically("~", 5*math.Sqrt2, 1e-9))
			Expect(s.Damper().Right).To(Equal(200.0))
			Expect(s.Box().Left).To(Equal(200.0))
		})

		It("ignores a degenerate size", func() {
			s := newSandbox(200, 100)
			s.Resize(0, 50)
			w, h := s.Size()
			Expect(w).To(Equal(200.0))
			Expect(h).To(Equal(100.0))
		})

		DescribeTable("ignores a non-finite size",
			func(w, h float64) {
				s := newSandbox(200, 100)
				Expect(s.Restore(twoBalls())).To(Succeed())

				s.Resize(w, h)
				sw, sh := s.Size()
				Expect(sw).To(Equal(200.0))
				Expect(sh).To(Equal(100.0))
				Expect(s.Scene().Valid()).To(BeTrue())
				Expect(s.Scene().Body(0).CX).To(Equal(50.0))
			},
			Entry("NaN width", math.NaN(), 88.0),
			Entry("NaN height", 200.0, math.NaN()),
			Entry("+Inf width", math.Inf(1), 100.0),
			Entry("-Inf height", 200.0, math.Inf(-1)),
		)
	})

	Describe("dragging", func() {
		var s *sandbox.Sandbox

		BeforeEach(func() {
			s = newSandbox(200, 100)
			Expect(s.Restore(twoBalls())).To(Succeed())
		})

		It("ignores presses on empty space", func() {
			Expect(s.Press(5, 5, sandbox.ButtonLeft)).To(BeFalse())
			Expect(s.Grabbed()).To(Equal(verlet.NoHandle))
		})

		It("takes the grabbed ball out of both chambers", func() {
			Expect(s.Press(50, 50, sandbox.ButtonLeft)).To(BeTrue())
			Expect(s.Grabbed()).To(Equal(verlet.Handle(0)))
			Expect(s.Damper().Contains(0)).To(BeFalse())
			Expect(s.Box().Contains(0)).To(BeFalse())
		})

		It("pulls the ball towards the cursor", func() {
			s.Press(50, 50, sandbox.ButtonLeft)
			s.Move(90, 50)
			before := s.Scene().Body(0).CX
			s.Step(1)
			Expect(s.Scene().Body(0).CX).To(BeNumerically(">", before))
		})

		It("drops into the right chamber past the midline", func() {
			s.Press(50, 50, sandbox.ButtonLeft)
			b := s.Scene().Body(0)
			b.CX, b.PX = 130, 130
			s.Release()
			Expect(s.Grabbed()).To(Equal(verlet.NoHandle))
			Expect(s.Box().Contains(0)).To(BeTrue())
			Expect(s.Damper().Contains(0)).To(BeFalse())
		})

		It("drops into the left chamber while straddling the midline", func() {
			s.Press(50, 50, sandbox.ButtonLeft)
			b := s.Scene().Body(0)
			b.CX, b.PX = 102, 102
			s.Release()
			Expect(s.Damper().Contains(0)).To(BeTrue())
		})
	})

	Describe("inspection", func() {
		var s *sandbox.Sandbox

		BeforeEach(func() {
			s = newSandbox(200, 100)
			Expect(s.Restore(twoBalls())).To(Succeed())
		})

		It("toggles on right click", func() {
			Expect(s.Press(150, 54, sandbox.ButtonRight)).To(BeTrue())
			Expect(s.Inspected()).To(Equal(verlet.Handle(1)))
			s.Press(150, 54, sandbox.ButtonRight)
			Expect(s.Inspected()).To(Equal(verlet.NoHandle))
		})

		It("reports derived quantities", func() {
			s.Press(150, 54, sandbox.ButtonRight)
			in, ok := s.Inspect()
			Expect(ok).To(BeTrue())
			Expect(in.Color).To(Equal("#00ff00"))
			Expect(in.Mass).To(Equal(1.0))
			Expect(in.Radius).To(Equal(8.0))
			Expect(in.VX).To(BeNumerically("~", 0, 1e-12))
			Expect(in.VY).To(BeNumerically("~", 4, 1e-12))
			Expect(in.Speed).To(BeNumerically("~", 4, 1e-12))
			Expect(in.Energy.Y).To(BeNumerically("~", 8, 1e-12))
		})

		It("lists the ball in the info panel", func() {
			s.Press(150, 54, sandbox.ButtonRight)
			Expect(s.InfoLines()).To(ContainElement("Radius: 8.00"))
			Expect(s.InfoLines()).To(ContainElement("Velocity: 4.00 (0.00; 4.00)"))
		})

		It("has nothing to show by default", func() {
			_, ok := s.Inspect()
			Expect(ok).To(BeFalse())
			Expect(s.InfoLines()).To(BeEmpty())
		})
	})

	Describe("energy overlay", func() {
		It("splits kinetic energy per chamber and axis", func() {
			s := newSandbox(200, 100)
			Expect(s.Restore(twoBalls())).To(Succeed())
			o := s.Energy()
			Expect(o.Left.X).To(BeNumerically("~", 4.5, 1e-12))
			Expect(o.Left.Y).To(BeNumerically("~", 0, 1e-12))
			Expect(o.Right.X).To(BeNumerically("~", 0, 1e-12))
			Expect(o.Right.Y).To(BeNumerically("~", 8, 1e-12))
			Expect(o.Total().Total()).To(BeNumerically("~", 12.5, 1e-12))

			s.ToggleSystemInfo()
			Expect(s.InfoLines()).To(ContainElement("Full energy: 12.50 (4.50; 8.00)"))
		})

		It("excludes a dragged ball", func() {
			s := newSandbox(200, 100)
			Expect(s.Restore(twoBalls())).To(Succeed())
			s.Press(50, 50, sandbox.ButtonLeft)
			Expect(s.Energy().Left.Total()).To(Equal(0.0))
		})
	})

	Describe("snapshots", func() {
		It("round-trips to identical bytes", func() {
			s := newSandbox(160, 88)
			s.Populate()
			s.Press(s.Scene().Body(0).CX, s.Scene().Body(0).CY, sandbox.ButtonRight)
			s.ToggleSystemInfo()
			first, err := snapshot.Encode(s.Snapshot())
			Expect(err).NotTo(HaveOccurred())

			decoded, err := snapshot.Decode(first)
			Expect(err).NotTo(HaveOccurred())
			other := newSandbox(10, 10)
			Expect(other.Restore(decoded)).To(Succeed())
			second, err := snapshot.Encode(other.Snapshot())
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(MatchJSON(first))
		})

		It("records a dragged ball in its landing chamber", func() {
			s := newSandbox(200, 100)
			Expect(s.Restore(twoBalls())).To(Succeed())
			s.Press(150, 54, sandbox.ButtonLeft)
			snap := s.Snapshot()
			Expect(snap.BoxIndices).To(Equal([]int{1}))
			Expect(snap.DamperIndices).To(Equal([]int{0}))
			Expect(s.Grabbed()).To(Equal(verlet.Handle(1)))
		})

		It("keeps point masses radius-free", func() {
			snap := twoBalls()
			snap.Points = append(snap.Points, snapshot.Point{CX: 10, CY: 10, PX: 10, PY: 10, Color: "#000000"})
			s := newSandbox(200, 100)
			Expect(s.Restore(snap)).To(Succeed())
			Expect(s.Scene().Body(2).Shape).To(Equal(verlet.ShapePoint))
			Expect(s.Snapshot().Points[2].R).To(BeNil())
		})

		DescribeTable("fails closed",
			func(mutate func(*snapshot.Snapshot)) {
				s := newSandbox(200, 100)
				Expect(s.Restore(twoBalls())).To(Succeed())
				before := s.Snapshot()

				bad := twoBalls()
				mutate(bad)
				Expect(s.Restore(bad)).To(MatchError(snapshot.ErrInvalid))
				Expect(s.Snapshot()).To(Equal(before))
			},
			Entry("index out of range", func(sn *snapshot.Snapshot) { sn.BoxIndices = []int{7} }),
			Entry("shared membership", func(sn *snapshot.Snapshot) { sn.BoxIndices = []int{0, 1} }),
			Entry("bad colour", func(sn *snapshot.Snapshot) { sn.Points[1].Color = "nope" }),
			Entry("non-finite position", func(sn *snapshot.Snapshot) { sn.Points[0].CX = math.Inf(1) }),
			Entry("negative radius", func(sn *snapshot.Snapshot) { sn.Points[0].R = snapshot.Radius(-1) }),
			Entry("inspected out of range", func(sn *snapshot.Snapshot) { sn.InspectedIndex = 2 }),
		)
	})

	Describe("persistence", func() {
		var (
			ctx   context.Context
			store *snapshot.FileStore
		)

		BeforeEach(func() {
			ctx = context.Background()
			store = snapshot.NewFileStore(tempDir())
		})

		It("populates when nothing is stored", func() {
			s := newSandbox(160, 88)
			Expect(s.Load(ctx, store)).To(Succeed())
			Expect(s.Scene().Len()).To(BeNumerically(">", 0))
		})

		It("populates and reports a corrupt snapshot", func() {
			Expect(os.MkdirAll(filepath.Dir(store.Path()), 0755)).To(Succeed())
			Expect(os.WriteFile(store.Path(), []byte(`{"width":1,"height":1,"points":[],"boxIndices":[3]}`), 0644)).To(Succeed())
			s := newSandbox(160, 88)
			Expect(s.Load(ctx, store)).To(MatchError(snapshot.ErrInvalid))
			Expect(s.Scene().Len()).To(BeNumerically(">", 0))
			Expect(s.Damper().Len()).To(Equal(s.Scene().Len()))
		})

		It("releases the dragged ball before saving", func() {
			s := newSandbox(200, 100)
			Expect(s.Restore(twoBalls())).To(Succeed())
			s.Press(50, 50, sandbox.ButtonLeft)
			Expect(s.Save(ctx, store)).To(Succeed())
			Expect(s.Grabbed()).To(Equal(verlet.NoHandle))
			Expect(s.Damper().Contains(0)).To(BeTrue())
		})

		It("reloads scaled to the current viewport", func() {
			s := newSandbox(200, 100)
			Expect(s.Restore(twoBalls())).To(Succeed())
			Expect(s.Save(ctx, store)).To(Succeed())

			other := newSandbox(400, 200)
			Expect(other.Load(ctx, store)).To(Succeed())
			w, h := other.Size()
			Expect(w).To(Equal(400.0))
			Expect(h).To(Equal(200.0))
			b := other.Scene().Body(1)
			Expect(b.CX).To(BeNumerically("~", 300, 1e-9))
			Expect(b.CY).To(BeNumerically("~", 108, 1e-9))
			Expect(b.R).To(BeNumerically("~", 16, 1e-9))
			Expect(other.Box().Contains(1)).To(BeTrue())
		})
	})

	It("lists the help entries", func() {
		Expect(sandbox.HelpLines()).To(HaveLen(5))
		Expect(sandbox.HelpLines()[0]).To(Equal("LMB: drag ball"))
	})
})
