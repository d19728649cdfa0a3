package track_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/beamkit/beamkit/internal/beam"
	"github.com/beamkit/beamkit/internal/element"
	"github.com/beamkit/beamkit/internal/lattice"
	"github.com/beamkit/beamkit/internal/optics"
	"github.com/beamkit/beamkit/internal/track"
)

var _ = Describe("Tracker", func() {
	var (
		lat *lattice.Lattice
		tr  *track.Tracker
	)

	BeforeEach(func() {
		qf, err := element.NewQuadrupole("qf", 0.2, 1.8, 0)
		Expect(err).NotTo(HaveOccurred())
		qd, err := element.NewQuadrupole("qd", 0.2, -1.8, 0)
		Expect(err).NotTo(HaveOccurred())
		lat = lattice.New("cell",
			qf,
			element.NewDrift("d1", 0.5),
			qd,
			element.NewDrift("d2", 0.5),
		)
		tr = track.New(lat)
	})

	Context("with a stable bunch", func() {
		It("completes every requested turn without losses", func() {
			ps := beam.Bunch{{1e-4, 0, -1e-4, 0, 0, 0}}
			res, err := tr.Run(context.Background(), ps, track.Config{Turns: 32})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Turns).To(Equal(32))
			Expect(res.Losses).To(BeEmpty())
			Expect(res.Survivors).To(Equal(1))
		})

		It("leaves the momentum deviation alone", func() {
			ps := beam.Bunch{{1e-4, 0, 0, 0, 2e-3, 0}}
			_, err := tr.Run(context.Background(), ps, track.Config{Turns: 16})

			Expect(err).NotTo(HaveOccurred())
			Expect(ps[0][beam.Delta]).To(Equal(2e-3))
		})
	})

	Context("with an aperture in the line", func() {
		BeforeEach(func() {
			lat.Append(element.NewCollimator("jaw", optics.RectAperture{-0.5e-3, 0.5e-3, -0.5e-3, 0.5e-3}))
		})

		It("records each lost particle exactly once", func() {
			ps := beam.Bunch{
				{1e-4, 0, 0, 0, 0, 0},
				{2e-3, 0, 0, 0, 0, 0},
			}
			res, err := tr.Run(context.Background(), ps, track.Config{Turns: 8})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Losses).To(HaveLen(1))
			Expect(res.Losses[0].Index).To(Equal(1))
			Expect(res.Losses[0].Turn).To(Equal(0))
			Expect(res.Survivors).To(Equal(1))
		})

		It("keeps tracking the survivors", func() {
			ps := beam.Bunch{
				{1e-4, 0, 0, 0, 0, 0},
				{2e-3, 0, 0, 0, 0, 0},
			}
			res, err := tr.Run(context.Background(), ps, track.Config{Turns: 8})

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Turns).To(Equal(8))
			Expect(ps[0].Lost()).To(BeFalse())
			Expect(ps[1].Lost()).To(BeTrue())
		})
	})

	Context("when the context is cancelled", func() {
		It("returns the cancellation error and a partial result", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			res, err := tr.Run(ctx, beam.NewBunch(2), track.Config{Turns: 1000})

			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Turns).To(BeZero())
		})
	})
})
