package broadphase_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/broadphase/internal/broadphase"
	"github.com/san-kum/broadphase/internal/geom"
)

type pair struct{ A, B string }

func box(minX, minY, minZ, maxX, maxY, maxZ float64) geom.AABB {
	return geom.NewAABB(mgl64.Vec3{minX, minY, minZ}, mgl64.Vec3{maxX, maxY, maxZ})
}

var _ = Describe("BroadPhase", func() {
	var (
		bp       *broadphase.BroadPhase[string]
		reported []pair
	)

	step := func() []pair {
		reported = nil
		_, err := bp.ComputeOverlappingPairs(func(a, b string) {
			reported = append(reported, pair{a, b})
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(bp.Validate()).To(Succeed())
		return reported
	}

	BeforeEach(func() {
		bp = broadphase.New[string](broadphase.DefaultOptions())
		_, err := bp.AddShape("A", box(0, 0, 0, 1, 1, 1))
		Expect(err).NotTo(HaveOccurred())
		_, err = bp.AddShape("B", box(0.5, 0.5, 0.5, 1.5, 1.5, 1.5))
		Expect(err).NotTo(HaveOccurred())
	})

	It("reports two freshly added overlapping shapes exactly once", func() {
		Expect(step()).To(Equal([]pair{{"A", "B"}}))
		Expect(bp.MovedLen()).To(BeZero())
	})

	Context("after the first step", func() {
		BeforeEach(func() {
			step()
		})

		It("reports nothing for a distant new shape", func() {
			_, err := bp.AddShape("C", box(10, 10, 10, 11, 11, 11))
			Expect(err).NotTo(HaveOccurred())
			Expect(step()).To(BeEmpty())
		})

		It("reports the distant shape once it moves into range", func() {
			bp.AddShape("C", box(10, 10, 10, 11, 11, 11))
			step()

			// teleported, so no displacement hint
			changed, err := bp.UpdateShape("C", box(1.3, 1.3, 1.3, 2.3, 2.3, 2.3), mgl64.Vec3{})
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
			Expect(step()).To(ConsistOf(pair{"B", "C"}))
		})

		It("reports zero pairs once A moves away", func() {
			changed, err := bp.UpdateShape("A", box(20, 20, 20, 21, 21, 21), mgl64.Vec3{20, 20, 20})
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(BeTrue())
			Expect(step()).To(BeEmpty())

			ok, err := bp.TestOverlap("A", "B")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("tolerates removing a moved shape before the step", func() {
			_, err := bp.UpdateShape("B", box(0.6, 0.5, 0.5, 5, 1.5, 1.5), mgl64.Vec3{0.1, 0, 0})
			Expect(err).NotTo(HaveOccurred())
			Expect(bp.MovedLen()).To(Equal(1))

			Expect(bp.RemoveShape("B")).To(Succeed())
			Expect(bp.MovedLen()).To(BeZero())
			Expect(step()).To(BeEmpty())
		})
	})

	Describe("symmetry", func() {
		It("collapses both query directions into one notification", func() {
			step()
			Expect(bp.TouchShape("A")).To(Succeed())
			Expect(bp.TouchShape("B")).To(Succeed())
			Expect(step()).To(Equal([]pair{{"A", "B"}}))
		})

		It("agrees with TestOverlap", func() {
			ok, err := bp.TestOverlap("B", "A")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})
	})

	Describe("errors", func() {
		It("rejects unknown shapes without disturbing the coordinator", func() {
			Expect(bp.RemoveShape("Z")).To(MatchError(broadphase.ErrUnknownShape))
			_, err := bp.FatAABB("Z")
			Expect(err).To(MatchError(broadphase.ErrUnknownShape))
			Expect(step()).To(HaveLen(1))
		})

		It("rejects a box with NaN bounds", func() {
			nan := box(0, 0, 0, 1, 1, 1)
			nan.Max[1] = math.NaN()
			_, err := bp.AddShape("N", nan)
			Expect(err).To(MatchError(broadphase.ErrInvalidBox))
			Expect(bp.Len()).To(Equal(2))
		})
	})
})
