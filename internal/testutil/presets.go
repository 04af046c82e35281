package testutil

import "github.com/zjrosen/legend/internal/legend"

// Handles used by the standard legend.
const (
	RootHandle legend.Handle = 0
	Roads      legend.Handle = 10
	Rivers     legend.Handle = 11
	Parcels    legend.Handle = 12
	Cadastre   legend.Handle = 20
)

// WithStandardLegend adds the reference layout:
//
//	root (0)
//	├── Roads (10)
//	├── Rivers (11)
//	└── Cadastre (20)
//	    └── Parcels (12)
func (b *Builder) WithStandardLegend() *Builder {
	return b.
		WithLayer(Roads, "Roads", b.root, Source("roads.shp")).
		WithLayer(Rivers, "Rivers", b.root, Source("rivers.shp")).
		WithGroup(Cadastre, "Cadastre", b.root).
		WithLayer(Parcels, "Parcels", Cadastre, Source("parcels.shp"))
}

// WithNestedGroups adds three nested groups with one layer each:
//
//	root
//	└── A (30)
//	    ├── a1 (31)
//	    └── B (32)
//	        ├── b1 (33)
//	        └── C (34)
//	            └── c1 (35)
func (b *Builder) WithNestedGroups() *Builder {
	return b.
		WithGroup(30, "A", b.root).
		WithLayer(31, "a1", 30).
		WithGroup(32, "B", 30).
		WithLayer(33, "b1", 32).
		WithGroup(34, "C", 32).
		WithLayer(35, "c1", 34)
}
