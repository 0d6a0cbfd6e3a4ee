package testutil

import (
	"github.com/InsightCenterNoodles/noodles-core/broadcast"
	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/InsightCenterNoodles/noodles-core/registry"
)

// SeededRegistry bundles a registry.Registry already populated with one
// of everything, plus the ids a test needs to reach into it. Modeled on
// coreengine/testutil's NewTestPipelineConfig: a single builder that
// returns a ready-to-use fixture instead of requiring every test to
// hand-assemble one.
type SeededRegistry struct {
	Reg *registry.Registry

	Method id.Id[id.MethodTag]
	Signal id.Id[id.SignalTag]
	Buffer id.Id[id.BufferTag]
	Root   id.Id[id.EntityTag]
	Child  id.Id[id.EntityTag]
	Table  id.Id[id.TableTag]
}

// NewSeededRegistry builds a registry carrying one method, one signal,
// one buffer, a two-entity parent/child chain, and one empty table, all
// created through broadcast.NopWriter so no Hub needs to be wired for a
// test that only cares about registry state.
func NewSeededRegistry() *SeededRegistry {
	reg := registry.New()
	w := broadcast.NopWriter{}

	s := &SeededRegistry{Reg: reg}

	s.Method = reg.CreateMethod(w, registry.Method{Name: "demo_method"})
	s.Signal = reg.CreateSignal(w, registry.Signal{Name: "demo_signal"})
	s.Buffer = reg.CreateBuffer(w, registry.Buffer{Size: 16, InlineData: make([]byte, 16)})

	s.Root, _ = reg.CreateEntity(w, registry.Entity{Name: "root", Parent: id.Invalid[id.EntityTag]()})
	s.Child, _ = reg.CreateEntity(w, registry.Entity{Name: "child", Parent: s.Root})

	source := registry.NewMemoryTableSource([]registry.ColSpec{
		{Name: "x", Type: "REAL"},
	})
	s.Table, _ = reg.CreateTable(w, registry.Table{Name: "demo_table", Source: source})

	return s
}
