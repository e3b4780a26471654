package grid

import (
	"math"
	"strings"

	ginkgo "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/helicalc/busgrid/internal/failure"
)

var _ = ginkgo.Describe("Axis", func() {
	ginkgo.DescribeTable("counts samples inclusively",
		func(a Axis, want int, last float64) {
			Expect(a.Count()).To(Equal(want))
			vals := a.Values()
			Expect(vals).To(HaveLen(want))
			Expect(vals[0]).To(Equal(a.Min))
			Expect(vals[len(vals)-1]).To(BeNumerically("~", last, 1e-12))
		},
		ginkgo.Entry("max on lattice is included", Axis{Min: 0, Max: 1, Step: 0.25}, 5, 1.0),
		ginkgo.Entry("max off lattice is excluded", Axis{Min: 0, Max: 1, Step: 0.3}, 4, 0.9),
		ginkgo.Entry("degenerate range", Axis{Min: 2, Max: 2, Step: 0.1}, 1, 2.0),
		ginkgo.Entry("inexact decimal span", Axis{Min: -0.8, Max: 0.8, Step: 0.05}, 33, 0.8),
		ginkgo.Entry("span just short of lattice", Axis{Min: 0.05, Max: 0.75, Step: 0.1}, 8, 0.75),
	)

	ginkgo.It("rejects invalid ranges", func() {
		Expect(Axis{Min: 0, Max: 1, Step: 0}.Validate()).To(HaveOccurred())
		Expect(Axis{Min: 1, Max: 0, Step: 0.1}.Validate()).To(HaveOccurred())
		Expect(Axis{Min: 0, Max: math.Inf(1), Step: 0.1}.Validate()).To(HaveOccurred())
	})
})

var _ = ginkgo.Describe("Generate", func() {
	regions := Builtin()

	ginkgo.DescribeTable("built-in regions match their analytic size",
		func(name string, want int) {
			r, err := regions.Lookup(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Count()).To(Equal(want))

			g, err := Generate(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(g).To(HaveLen(want))
		},
		ginkgo.Entry("TSd", "TSd", 33*33*31),
		ginkgo.Entry("DS", "DS", 33*33*201),
		ginkgo.Entry("DSCartVal", "DSCartVal", 13*13*101),
		ginkgo.Entry("DSCylFMS", "DSCylFMS", (8*12+1)*401),
		ginkgo.Entry("DSCylFMSAll", "DSCylFMSAll", (8*12+1)*401+8*12*401),
		ginkgo.Entry("DSCylFine", "DSCylFine", (32*32+1)*401),
	)

	ginkgo.It("orders Cartesian points with Z innermost", func() {
		r := Region{Name: "box", Kind: Cartesian, Parts: []Part{{
			Label: "box",
			X:     Axis{Min: 0, Max: 1, Step: 1},
			Y:     Axis{Min: 0, Max: 1, Step: 1},
			Z:     Axis{Min: 0, Max: 2, Step: 1},
		}}}
		g, err := Generate(r)
		Expect(err).NotTo(HaveOccurred())
		Expect(g).To(HaveLen(12))
		Expect(g[0]).To(Equal(Point{X: 0, Y: 0, Z: 0, HP: "box"}))
		Expect(g[1]).To(Equal(Point{X: 0, Y: 0, Z: 1, HP: "box"}))
		Expect(g[3]).To(Equal(Point{X: 0, Y: 1, Z: 0, HP: "box"}))
		Expect(g[11]).To(Equal(Point{X: 1, Y: 1, Z: 2, HP: "box"}))
	})

	ginkgo.It("collapses the axis of a cylindrical part to one point per z", func() {
		r := Region{Name: "cyl", Kind: Cylindrical, Parts: []Part{{
			Label: "cyl",
			R:     Axis{Min: 0, Max: 0.2, Step: 0.1},
			Phi:   Axis{Min: 0, Max: 3 * math.Pi / 2, Step: math.Pi / 2},
			Z:     Axis{Min: 1, Max: 1, Step: 1},
		}}}
		g, err := Generate(r)
		Expect(err).NotTo(HaveOccurred())
		Expect(g).To(HaveLen(1 + 2*4))
		Expect(g[0]).To(Equal(Point{X: 0, Y: 0, Z: 1, HP: "cyl"}))
		Expect(g[2].X).To(Equal(0.0))
		Expect(g[2].Y).To(Equal(0.1))
	})

	ginkgo.It("produces reproducible rounded cylindrical coordinates", func() {
		r, err := regions.Lookup("DSCylFMSAll")
		Expect(err).NotTo(HaveOccurred())

		a, err := Generate(r)
		Expect(err).NotTo(HaveOccurred())
		b, err := Generate(r)
		Expect(err).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))

		for _, p := range a {
			for _, v := range []float64{p.X, p.Y, p.Z} {
				Expect(v).To(Equal(round(v)))
			}
		}
	})

	ginkgo.It("concatenates composite parts in order without cross-part dedup", func() {
		r, _ := regions.Lookup("DSCylFMSAll")
		fms, _ := regions.Lookup("DSCylFMS")

		all, err := Generate(r)
		Expect(err).NotTo(HaveOccurred())
		first, err := Generate(fms)
		Expect(err).NotTo(HaveOccurred())

		Expect(all[:len(first)]).To(Equal(first))
		for _, p := range all[len(first):] {
			Expect(p.HP).To(Equal("FMS_SP"))
		}

		overlap := Region{Name: "twice", Kind: Cylindrical, Parts: []Part{r.Parts[0], r.Parts[0]}}
		g, err := Generate(overlap)
		Expect(err).NotTo(HaveOccurred())
		Expect(g).To(HaveLen(2 * len(first)))
	})

	ginkgo.It("refuses to generate external regions", func() {
		r, _ := regions.Lookup("DSUnc")
		_, err := Generate(r)
		Expect(err).To(HaveOccurred())
	})

	ginkgo.It("rejects wrapping phi ranges", func() {
		r := Region{Name: "wrap", Kind: Cylindrical, Parts: []Part{{
			R:   Axis{Min: 0.1, Max: 0.1, Step: 0.1},
			Phi: Axis{Min: 0, Max: 2 * math.Pi, Step: math.Pi},
			Z:   Axis{Min: 0, Max: 0, Step: 1},
		}}}
		_, err := Generate(r)
		Expect(err).To(MatchError(ContainSubstring("wraps")))
	})
})

var _ = ginkgo.Describe("Registry", func() {
	ginkgo.It("reports unknown names as invalid regions", func() {
		_, err := Builtin().Lookup("DSX")
		Expect(err).To(MatchError(failure.ErrInvalidRegion))
		Expect(err).To(MatchError(failure.ErrConfiguration))
	})

	ginkgo.It("validates added regions", func() {
		reg := Builtin()
		Expect(reg.Add(Region{Name: "bad", Kind: "spherical"})).To(HaveOccurred())
		Expect(reg.Add(Region{Name: "Unc2", Kind: External})).To(Succeed())
		Expect(reg.Names()).To(ContainElement("Unc2"))
	})
})

var _ = ginkgo.Describe("Truncate", func() {
	g := Grid{{X: 1}, {X: 2}, {X: 3}}

	ginkgo.DescribeTable("keeps min(n, len) leading rows",
		func(n, want int) {
			out := Truncate(g, n)
			Expect(out).To(HaveLen(want))
			Expect(out).To(Equal(g[:want]))
		},
		ginkgo.Entry("shorter", 2, 2),
		ginkgo.Entry("exact", 3, 3),
		ginkgo.Entry("longer", 10000, 3),
		ginkgo.Entry("zero", 0, 0),
	)

	ginkgo.It("does not alias the input", func() {
		out := Truncate(g, 2)
		out[0].X = 99
		Expect(g[0].X).To(Equal(1.0))
	})
})

var _ = ginkgo.Describe("AugmentJacobian", func() {
	const h = 0.001
	src := Grid{
		{X: 0.1, Y: 0.2, Z: 4.5, HP: "SP1"},
		{X: -0.3, Y: 0, Z: 6.0, HP: "SP2"},
		{X: 0, Y: 0.7, Z: 13.9, HP: "SP3"},
	}

	ginkgo.It("emits 7 points per source point in fixed groups", func() {
		out := AugmentJacobian(src, h)
		Expect(out).To(HaveLen(7 * len(src)))

		for i, p := range src {
			group := out[i*GroupSize : (i+1)*GroupSize]
			Expect(group[0].X).To(Equal(p.X))
			Expect(group[0].Y).To(Equal(p.Y))
			Expect(group[0].Z).To(Equal(p.Z))

			for k, q := range group {
				Expect(q.Group).To(Equal(i))
				Expect(q.Offset).To(Equal(Offset(k)))
				Expect(q.HP).To(Equal(p.HP))

				d := []float64{q.X - p.X, q.Y - p.Y, q.Z - p.Z}
				moved := 0
				for _, v := range d {
					if v != 0 {
						moved++
						Expect(math.Abs(v)).To(BeNumerically("~", h, 1e-12))
					}
				}
				if k == 0 {
					Expect(moved).To(Equal(0))
				} else {
					Expect(moved).To(Equal(1))
				}
			}

			Expect(group[PlusX].X).To(BeNumerically(">", p.X))
			Expect(group[MinusX].X).To(BeNumerically("<", p.X))
			Expect(group[PlusY].Y).To(BeNumerically(">", p.Y))
			Expect(group[MinusY].Y).To(BeNumerically("<", p.Y))
			Expect(group[PlusZ].Z).To(BeNumerically(">", p.Z))
			Expect(group[MinusZ].Z).To(BeNumerically("<", p.Z))
		}
	})

	ginkgo.It("is not idempotent: applying it twice yields 49n points", func() {
		twice := AugmentJacobian(AugmentJacobian(src, h), h)
		Expect(twice).To(HaveLen(49 * len(src)))
	})

	ginkgo.It("operates on the truncated grid", func() {
		out := AugmentJacobian(Truncate(src, 2), h)
		Expect(out).To(HaveLen(14))
	})

	ginkgo.It("names offsets", func() {
		names := make([]string, 0, GroupSize)
		for o := Center; o <= MinusZ; o++ {
			names = append(names, o.String())
		}
		Expect(strings.Join(names, " ")).To(Equal("0 +x -x +y -y +z -z"))
	})
})

var _ = ginkgo.Describe("LoadExternal", func() {
	ginkgo.It("requires an input file", func() {
		_, err := LoadExternal("")
		Expect(err).To(MatchError(failure.ErrMissingInput))
		Expect(err).To(MatchError(failure.ErrConfiguration))
	})

	ginkgo.It("keeps only coordinate and label columns", func() {
		g, err := LoadExternal("testdata/unc_grid.csv")
		Expect(err).NotTo(HaveOccurred())
		Expect(g).To(HaveLen(5))
		Expect(g[1]).To(Equal(Point{X: 0.054, Y: 0, Z: 4.5, HP: "SP2"}))
	})

	ginkgo.It("rejects files without the required columns", func() {
		_, err := ReadExternal(strings.NewReader("X,Y,Z\n0,0,1\n"))
		Expect(err).To(MatchError(ContainSubstring(`missing column "HP"`)))
	})

	ginkgo.It("reports unreadable files as configuration errors", func() {
		_, err := LoadExternal("testdata/does_not_exist.csv")
		Expect(err).To(MatchError(failure.ErrConfiguration))
	})
})
