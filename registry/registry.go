package registry

import (
	"fmt"

	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/broadcast"
	"github.com/InsightCenterNoodles/noodles-core/id"
	"github.com/InsightCenterNoodles/noodles-core/nlog"
	"github.com/InsightCenterNoodles/noodles-core/wire"
)

// Registry aggregates one Arena per kind and owns the referential
// invariants that cross arena boundaries (spec.md §3, §4.1, §4.3). It is
// owned exclusively by the session core (spec.md §5 "shared resources");
// nothing here is safe for concurrent mutation from more than one
// goroutine.
type Registry struct {
	Methods      *Arena[id.MethodTag, Method]
	Signals      *Arena[id.SignalTag, Signal]
	Buffers      *Arena[id.BufferTag, Buffer]
	BufferViews  *Arena[id.BufferViewTag, BufferView]
	Images       *Arena[id.ImageTag, Image]
	Samplers     *Arena[id.SamplerTag, Sampler]
	Textures     *Arena[id.TextureTag, Texture]
	Materials    *Arena[id.MaterialTag, Material]
	Geometries   *Arena[id.GeometryTag, Geometry]
	Lights       *Arena[id.LightTag, Light]
	Entities     *Arena[id.EntityTag, Entity]
	Tables       *Arena[id.TableTag, Table]
	Plots        *Arena[id.PlotTag, Plot]
	Document     Document

	logger nlog.Logger
}

// SetLogger installs the logger used for the silent-warning cases spec.md
// §4.3 calls for (delete of a non-existent or stale id). Defaults to
// nlog.Std() until called.
func (r *Registry) SetLogger(l nlog.Logger) {
	r.logger = nlog.OrStd(l)
}

func (r *Registry) warnStaleDelete(kind string, i fmt.Stringer) {
	nlog.OrStd(r.logger).Warn("delete of stale or non-existent id", "kind", kind, "id", i.String())
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		Methods:     NewArena[id.MethodTag, Method](),
		Signals:     NewArena[id.SignalTag, Signal](),
		Buffers:     NewArena[id.BufferTag, Buffer](),
		BufferViews: NewArena[id.BufferViewTag, BufferView](),
		Images:      NewArena[id.ImageTag, Image](),
		Samplers:    NewArena[id.SamplerTag, Sampler](),
		Textures:    NewArena[id.TextureTag, Texture](),
		Materials:   NewArena[id.MaterialTag, Material](),
		Geometries:  NewArena[id.GeometryTag, Geometry](),
		Lights:      NewArena[id.LightTag, Light](),
		Entities:    NewArena[id.EntityTag, Entity](),
		Tables:      NewArena[id.TableTag, Table](),
		Plots:       NewArena[id.PlotTag, Plot](),
	}
}

// --- Methods / Signals (create/delete only; spec.md §4.3 table) ---

func (r *Registry) CreateMethod(w broadcast.Writer, m Method) id.Id[id.MethodTag] {
	i := r.Methods.Create(m)
	w.Emit(wire.NewMessage(wire.TagMethodCreate, map[string]anyvar.AnyVar{
		"id":         anyvar.ID(id.FromMethod(i)),
		"name":       anyvar.String(m.Name),
		"docs":       anyvar.String(m.Docs),
		"arg_doc":    stringList(m.ArgDoc),
		"return_doc": anyvar.String(m.ReturnDoc),
	}))
	return i
}

func (r *Registry) DeleteMethod(w broadcast.Writer, i id.Id[id.MethodTag]) bool {
	if !r.Methods.Delete(i) {
		r.warnStaleDelete("Method", i)
		return false
	}
	w.Emit(wire.NewMessage(wire.TagMethodDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(id.FromMethod(i)),
	}))
	return true
}

func (r *Registry) CreateSignal(w broadcast.Writer, s Signal) id.Id[id.SignalTag] {
	i := r.Signals.Create(s)
	w.Emit(wire.NewMessage(wire.TagSignalCreate, map[string]anyvar.AnyVar{
		"id":      anyvar.ID(id.FromSignal(i)),
		"name":    anyvar.String(s.Name),
		"docs":    anyvar.String(s.Docs),
		"arg_doc": stringList(s.ArgDoc),
	}))
	return i
}

func (r *Registry) DeleteSignal(w broadcast.Writer, i id.Id[id.SignalTag]) bool {
	if !r.Signals.Delete(i) {
		r.warnStaleDelete("Signal", i)
		return false
	}
	w.Emit(wire.NewMessage(wire.TagSignalDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(id.FromSignal(i)),
	}))
	return true
}

// --- Buffer (create/delete only) ---

func (r *Registry) CreateBuffer(w broadcast.Writer, b Buffer) id.Id[id.BufferTag] {
	i := r.Buffers.Create(b)
	w.Emit(wire.NewMessage(wire.TagBufferCreate, map[string]anyvar.AnyVar{
		"id":          anyvar.ID(id.FromBuffer(i)),
		"size":        anyvar.Int64(int64(b.Size)),
		"inline_data": anyvar.Bytes(b.InlineData),
		"uri":         anyvar.String(b.URIBytes),
	}))
	return i
}

func (r *Registry) DeleteBuffer(w broadcast.Writer, i id.Id[id.BufferTag]) bool {
	if !r.Buffers.Delete(i) {
		r.warnStaleDelete("Buffer", i)
		return false
	}
	w.Emit(wire.NewMessage(wire.TagBufferDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(id.FromBuffer(i)),
	}))
	return true
}

// --- BufferView (create/delete; references Buffer) ---

func (r *Registry) CreateBufferView(w broadcast.Writer, bv BufferView) (id.Id[id.BufferViewTag], error) {
	if _, ok := r.Buffers.Get(bv.Source); !ok {
		return id.Id[id.BufferViewTag]{}, &RefError{Kind: "BufferView", Field: "Source", ID: bv.Source}
	}
	i := r.BufferViews.Create(bv)
	w.Emit(wire.NewMessage(wire.TagBufferViewCreate, map[string]anyvar.AnyVar{
		"id":        anyvar.ID(id.FromBufferView(i)),
		"source":    anyvar.ID(id.FromBuffer(bv.Source)),
		"offset":    anyvar.Int64(int64(bv.Offset)),
		"length":    anyvar.Int64(int64(bv.Length)),
		"view_kind": anyvar.String(bv.ViewKind),
	}))
	return i, nil
}

func (r *Registry) DeleteBufferView(w broadcast.Writer, i id.Id[id.BufferViewTag]) bool {
	if !r.BufferViews.Delete(i) {
		r.warnStaleDelete("BufferView", i)
		return false
	}
	w.Emit(wire.NewMessage(wire.TagBufferViewDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(id.FromBufferView(i)),
	}))
	return true
}

// --- Image (create/delete; references BufferView, optional URI) ---

func (r *Registry) CreateImage(w broadcast.Writer, img Image) (id.Id[id.ImageTag], error) {
	if img.URISource == "" {
		if _, ok := r.BufferViews.Get(img.BufferSource); !ok {
			return id.Id[id.ImageTag]{}, &RefError{Kind: "Image", Field: "BufferSource", ID: img.BufferSource}
		}
	}
	i := r.Images.Create(img)
	w.Emit(wire.NewMessage(wire.TagImageCreate, map[string]anyvar.AnyVar{
		"id":            anyvar.ID(id.FromImage(i)),
		"uri":           anyvar.String(img.URISource),
		"buffer_source": anyvar.ID(bufferViewRefOrNone(img.BufferSource)),
	}))
	return i, nil
}

func (r *Registry) DeleteImage(w broadcast.Writer, i id.Id[id.ImageTag]) bool {
	if !r.Images.Delete(i) {
		r.warnStaleDelete("Image", i)
		return false
	}
	w.Emit(wire.NewMessage(wire.TagImageDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(id.FromImage(i)),
	}))
	return true
}

// --- Sampler (create/delete only) ---

func (r *Registry) CreateSampler(w broadcast.Writer, s Sampler) id.Id[id.SamplerTag] {
	i := r.Samplers.Create(s)
	w.Emit(wire.NewMessage(wire.TagSamplerCreate, map[string]anyvar.AnyVar{
		"id":         anyvar.ID(id.FromSampler(i)),
		"mag_filter": anyvar.String(s.MagFilter),
		"min_filter": anyvar.String(s.MinFilter),
		"wrap_s":     anyvar.String(s.WrapS),
		"wrap_t":     anyvar.String(s.WrapT),
	}))
	return i
}

func (r *Registry) DeleteSampler(w broadcast.Writer, i id.Id[id.SamplerTag]) bool {
	if !r.Samplers.Delete(i) {
		r.warnStaleDelete("Sampler", i)
		return false
	}
	w.Emit(wire.NewMessage(wire.TagSamplerDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(id.FromSampler(i)),
	}))
	return true
}

// --- Texture (create/delete; references Image + Sampler) ---

func (r *Registry) CreateTexture(w broadcast.Writer, t Texture) (id.Id[id.TextureTag], error) {
	if _, ok := r.Images.Get(t.Image); !ok {
		return id.Id[id.TextureTag]{}, &RefError{Kind: "Texture", Field: "Image", ID: t.Image}
	}
	if t.Sampler.Valid() {
		if _, ok := r.Samplers.Get(t.Sampler); !ok {
			return id.Id[id.TextureTag]{}, &RefError{Kind: "Texture", Field: "Sampler", ID: t.Sampler}
		}
	}
	i := r.Textures.Create(t)
	w.Emit(wire.NewMessage(wire.TagTextureCreate, map[string]anyvar.AnyVar{
		"id":      anyvar.ID(id.FromTexture(i)),
		"image":   anyvar.ID(id.FromImage(t.Image)),
		"sampler": anyvar.ID(samplerRefOrNone(t.Sampler)),
	}))
	return i, nil
}

func (r *Registry) DeleteTexture(w broadcast.Writer, i id.Id[id.TextureTag]) bool {
	if !r.Textures.Delete(i) {
		r.warnStaleDelete("Texture", i)
		return false
	}
	w.Emit(wire.NewMessage(wire.TagTextureDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(id.FromTexture(i)),
	}))
	return true
}

// --- Material (create/update/delete) ---

// materialTextureRefs checks every populated texture slot against the
// Textures arena, matching spec.md §3's Material→Texture dependency.
func (r *Registry) materialTextureRefs(m Material) error {
	for field, ref := range map[string]TextureRef{
		"BaseColorTexture":  m.BaseColorTexture,
		"MetalRoughTexture": m.MetalRoughTexture,
		"NormalTexture":     m.NormalTexture,
		"EmissiveTexture":   m.EmissiveTexture,
		"OcclusionTexture":  m.OcclusionTexture,
	} {
		if !ref.Valid() {
			continue
		}
		if _, ok := r.Textures.Get(ref.Texture); !ok {
			return &RefError{Kind: "Material", Field: field, ID: ref.Texture}
		}
	}
	return nil
}

func (r *Registry) CreateMaterial(w broadcast.Writer, m Material) (id.Id[id.MaterialTag], error) {
	if err := r.materialTextureRefs(m); err != nil {
		return id.Id[id.MaterialTag]{}, err
	}
	i := r.Materials.Create(m)
	w.Emit(wire.NewMessage(wire.TagMaterialCreate, materialBody(i, m)))
	return i, nil
}

func (r *Registry) UpdateMaterial(w broadcast.Writer, i id.Id[id.MaterialTag], m Material) error {
	if err := r.materialTextureRefs(m); err != nil {
		return err
	}
	if !r.Materials.Set(i, m) {
		return &RefError{Kind: "Material", Field: "id", ID: i}
	}
	w.Emit(wire.NewMessage(wire.TagMaterialUpdate, materialBody(i, m)))
	return nil
}

func (r *Registry) DeleteMaterial(w broadcast.Writer, i id.Id[id.MaterialTag]) bool {
	if !r.Materials.Delete(i) {
		r.warnStaleDelete("Material", i)
		return false
	}
	w.Emit(wire.NewMessage(wire.TagMaterialDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(id.FromMaterial(i)),
	}))
	return true
}

// --- Geometry (create/delete; references BufferViews + Material per patch) ---

func (r *Registry) CreateGeometry(w broadcast.Writer, g Geometry) (id.Id[id.GeometryTag], error) {
	for _, p := range g.Patches {
		for _, a := range p.Attributes {
			if _, ok := r.BufferViews.Get(a.View); !ok {
				return id.Id[id.GeometryTag]{}, &RefError{Kind: "Geometry", Field: "Patches.Attributes.View", ID: a.View}
			}
		}
		if p.Indices.Valid() {
			if _, ok := r.BufferViews.Get(p.Indices); !ok {
				return id.Id[id.GeometryTag]{}, &RefError{Kind: "Geometry", Field: "Patches.Indices", ID: p.Indices}
			}
		}
		if _, ok := r.Materials.Get(p.Material); !ok {
			return id.Id[id.GeometryTag]{}, &RefError{Kind: "Geometry", Field: "Patches.Material", ID: p.Material}
		}
	}
	i := r.Geometries.Create(g)
	w.Emit(wire.NewMessage(wire.TagGeometryCreate, geometryBody(i, g)))
	return i, nil
}

func (r *Registry) DeleteGeometry(w broadcast.Writer, i id.Id[id.GeometryTag]) bool {
	if !r.Geometries.Delete(i) {
		r.warnStaleDelete("Geometry", i)
		return false
	}
	w.Emit(wire.NewMessage(wire.TagGeometryDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(id.FromGeometry(i)),
	}))
	return true
}

// --- Light (create/update/delete) ---

func (r *Registry) CreateLight(w broadcast.Writer, l Light) id.Id[id.LightTag] {
	i := r.Lights.Create(l)
	w.Emit(wire.NewMessage(wire.TagLightCreate, lightBody(i, l)))
	return i
}

func (r *Registry) UpdateLight(w broadcast.Writer, i id.Id[id.LightTag], l Light) error {
	if !r.Lights.Set(i, l) {
		return &RefError{Kind: "Light", Field: "id", ID: i}
	}
	w.Emit(wire.NewMessage(wire.TagLightUpdate, lightBody(i, l)))
	return nil
}

func (r *Registry) DeleteLight(w broadcast.Writer, i id.Id[id.LightTag]) bool {
	if !r.Lights.Delete(i) {
		r.warnStaleDelete("Light", i)
		return false
	}
	w.Emit(wire.NewMessage(wire.TagLightDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(id.FromLight(i)),
	}))
	return true
}

// --- Entity (create/update/delete; parent chain must stay acyclic) ---

// entityRefs checks every cross-kind reference an Entity can carry
// (spec.md §3's Entity row: parent, render geometry/instance-source,
// lights, tables, plots) except the parent cycle check, which needs the
// slot the entity will occupy and so runs separately in Create/UpdateEntity.
func (r *Registry) entityRefs(e Entity) error {
	if e.Parent.Valid() {
		if _, ok := r.Entities.Get(e.Parent); !ok {
			return &RefError{Kind: "Entity", Field: "Parent", ID: e.Parent}
		}
	}
	if e.Representation.Kind == EntityRepRender {
		g := e.Representation.Render.Geometry
		if _, ok := r.Geometries.Get(g); !ok {
			return &RefError{Kind: "Entity", Field: "Representation.Render.Geometry", ID: g}
		}
		if src := e.Representation.Render.InstanceSource; src.Valid() {
			if _, ok := r.BufferViews.Get(src); !ok {
				return &RefError{Kind: "Entity", Field: "Representation.Render.InstanceSource", ID: src}
			}
		}
	}
	for _, l := range e.Lights {
		if _, ok := r.Lights.Get(l); !ok {
			return &RefError{Kind: "Entity", Field: "Lights", ID: l}
		}
	}
	for _, t := range e.Tables {
		if _, ok := r.Tables.Get(t); !ok {
			return &RefError{Kind: "Entity", Field: "Tables", ID: t}
		}
	}
	for _, p := range e.Plots {
		if _, ok := r.Plots.Get(p); !ok {
			return &RefError{Kind: "Entity", Field: "Plots", ID: p}
		}
	}
	for _, m := range e.Methods {
		if _, ok := r.Methods.Get(m); !ok {
			return &RefError{Kind: "Entity", Field: "Methods", ID: m}
		}
	}
	for _, s := range e.Signals {
		if _, ok := r.Signals.Get(s); !ok {
			return &RefError{Kind: "Entity", Field: "Signals", ID: s}
		}
	}
	return nil
}

func (r *Registry) CreateEntity(w broadcast.Writer, e Entity) (id.Id[id.EntityTag], error) {
	if err := r.entityRefs(e); err != nil {
		return id.Id[id.EntityTag]{}, err
	}
	i := r.Entities.Create(e)
	if e.Parent.Valid() {
		if r.wouldCycle(i, e.Parent) {
			r.Entities.Delete(i)
			return id.Id[id.EntityTag]{}, &CycleError{Kind: "Entity"}
		}
	}
	w.Emit(wire.NewMessage(wire.TagEntityCreate, entityBody(i, e)))
	return i, nil
}

func (r *Registry) UpdateEntity(w broadcast.Writer, i id.Id[id.EntityTag], e Entity) error {
	if err := r.entityRefs(e); err != nil {
		return err
	}
	if e.Parent.Valid() && r.wouldCycle(i, e.Parent) {
		return &CycleError{Kind: "Entity"}
	}
	if !r.Entities.Set(i, e) {
		return &RefError{Kind: "Entity", Field: "id", ID: i}
	}
	w.Emit(wire.NewMessage(wire.TagEntityUpdate, entityBody(i, e)))
	return nil
}

func (r *Registry) DeleteEntity(w broadcast.Writer, i id.Id[id.EntityTag]) bool {
	if !r.Entities.Delete(i) {
		r.warnStaleDelete("Entity", i)
		return false
	}
	w.Emit(wire.NewMessage(wire.TagEntityDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(id.FromEntity(i)),
	}))
	return true
}

// wouldCycle walks from candidateParent towards the root looking for
// child, bounded by the arena's live count so a corrupt chain can never
// spin forever (spec.md invariant 4).
func (r *Registry) wouldCycle(child id.Id[id.EntityTag], candidateParent id.Id[id.EntityTag]) bool {
	bound := r.Entities.Len() + 1
	cur := candidateParent
	for step := 0; step < bound; step++ {
		if !cur.Valid() {
			return false
		}
		if cur == child {
			return true
		}
		parent, ok := r.Entities.Get(cur)
		if !ok {
			return false
		}
		cur = parent.Parent
	}
	return true
}

func entityRefOrNone(i id.Id[id.EntityTag]) id.AnyID {
	if !i.Valid() {
		return id.NoneID
	}
	return id.FromEntity(i)
}

// --- Table (create/update/delete) ---

// tableAttachmentRefs checks a Table's attached methods/signals resolve,
// same invariant UpdateDocument already enforces for the document scope.
func (r *Registry) tableAttachmentRefs(t Table) error {
	for _, m := range t.Methods {
		if _, ok := r.Methods.Get(m); !ok {
			return &RefError{Kind: "Table", Field: "Methods", ID: m}
		}
	}
	for _, s := range t.Signals {
		if _, ok := r.Signals.Get(s); !ok {
			return &RefError{Kind: "Table", Field: "Signals", ID: s}
		}
	}
	return nil
}

func (r *Registry) CreateTable(w broadcast.Writer, t Table) (id.Id[id.TableTag], error) {
	if err := r.tableAttachmentRefs(t); err != nil {
		return id.Id[id.TableTag]{}, err
	}
	i := r.Tables.Create(t)
	w.Emit(wire.NewMessage(wire.TagTableCreate, tableBody(i, t)))
	return i, nil
}

func (r *Registry) UpdateTable(w broadcast.Writer, i id.Id[id.TableTag], t Table) error {
	if err := r.tableAttachmentRefs(t); err != nil {
		return err
	}
	if !r.Tables.Set(i, t) {
		return &RefError{Kind: "Table", Field: "id", ID: i}
	}
	w.Emit(wire.NewMessage(wire.TagTableUpdate, tableBody(i, t)))
	return nil
}

func (r *Registry) DeleteTable(w broadcast.Writer, i id.Id[id.TableTag]) bool {
	if !r.Tables.Delete(i) {
		r.warnStaleDelete("Table", i)
		return false
	}
	w.Emit(wire.NewMessage(wire.TagTableDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(id.FromTable(i)),
	}))
	return true
}

// --- Plot (create/update/delete; references Table) ---

// plotRefs checks Plot's optional Table plus its attached methods/signals.
func (r *Registry) plotRefs(p Plot) error {
	if p.Table.Valid() {
		if _, ok := r.Tables.Get(p.Table); !ok {
			return &RefError{Kind: "Plot", Field: "Table", ID: p.Table}
		}
	}
	for _, m := range p.Methods {
		if _, ok := r.Methods.Get(m); !ok {
			return &RefError{Kind: "Plot", Field: "Methods", ID: m}
		}
	}
	for _, s := range p.Signals {
		if _, ok := r.Signals.Get(s); !ok {
			return &RefError{Kind: "Plot", Field: "Signals", ID: s}
		}
	}
	return nil
}

func (r *Registry) CreatePlot(w broadcast.Writer, p Plot) (id.Id[id.PlotTag], error) {
	if err := r.plotRefs(p); err != nil {
		return id.Id[id.PlotTag]{}, err
	}
	i := r.Plots.Create(p)
	w.Emit(wire.NewMessage(wire.TagPlotCreate, plotBody(i, p)))
	return i, nil
}

func (r *Registry) UpdatePlot(w broadcast.Writer, i id.Id[id.PlotTag], p Plot) error {
	if err := r.plotRefs(p); err != nil {
		return err
	}
	if !r.Plots.Set(i, p) {
		return &RefError{Kind: "Plot", Field: "id", ID: i}
	}
	w.Emit(wire.NewMessage(wire.TagPlotUpdate, plotBody(i, p)))
	return nil
}

func (r *Registry) DeletePlot(w broadcast.Writer, i id.Id[id.PlotTag]) bool {
	if !r.Plots.Delete(i) {
		r.warnStaleDelete("Plot", i)
		return false
	}
	w.Emit(wire.NewMessage(wire.TagPlotDelete, map[string]anyvar.AnyVar{
		"id": anyvar.ID(id.FromPlot(i)),
	}))
	return true
}

// --- Document (update only; always exists, never created/deleted) ---

// UpdateDocument replaces the document-scope attached methods/signals,
// checking invariant 6: every attached method/signal must already
// resolve in the corresponding arena.
func (r *Registry) UpdateDocument(w broadcast.Writer, d Document) error {
	for _, m := range d.Methods {
		if _, ok := r.Methods.Get(m); !ok {
			return &RefError{Kind: "Document", Field: "Methods", ID: m}
		}
	}
	for _, s := range d.Signals {
		if _, ok := r.Signals.Get(s); !ok {
			return &RefError{Kind: "Document", Field: "Signals", ID: s}
		}
	}
	r.Document = d
	w.Emit(wire.NewMessage(wire.TagDocumentUpdate, documentBody(d)))
	return nil
}

// Reset clears every arena and the document, emitting DocumentReset.
// Used when an application wants to discard the whole scene and start
// over without tearing down client connections.
func (r *Registry) Reset(w broadcast.Writer) {
	*r = *New()
	w.Emit(wire.NewMessage(wire.TagDocumentReset, nil))
}

// CatchUp appends one create message per live component, in the fixed
// dependency order spec.md §4.5 requires, followed by the current
// document state — the batch a newly introduced client receives
// (spec.md invariant 6 / scenario E3).
func (r *Registry) CatchUp(w broadcast.Writer) {
	r.Buffers.Live(func(i id.Id[id.BufferTag], b Buffer) {
		w.Emit(wire.NewMessage(wire.TagBufferCreate, map[string]anyvar.AnyVar{
			"id":          anyvar.ID(id.FromBuffer(i)),
			"size":        anyvar.Int64(int64(b.Size)),
			"inline_data": anyvar.Bytes(b.InlineData),
			"uri":         anyvar.String(b.URIBytes),
		}))
	})
	r.BufferViews.Live(func(i id.Id[id.BufferViewTag], bv BufferView) {
		w.Emit(wire.NewMessage(wire.TagBufferViewCreate, map[string]anyvar.AnyVar{
			"id":        anyvar.ID(id.FromBufferView(i)),
			"source":    anyvar.ID(id.FromBuffer(bv.Source)),
			"offset":    anyvar.Int64(int64(bv.Offset)),
			"length":    anyvar.Int64(int64(bv.Length)),
			"view_kind": anyvar.String(bv.ViewKind),
		}))
	})
	r.Images.Live(func(i id.Id[id.ImageTag], img Image) {
		w.Emit(wire.NewMessage(wire.TagImageCreate, map[string]anyvar.AnyVar{
			"id":            anyvar.ID(id.FromImage(i)),
			"uri":           anyvar.String(img.URISource),
			"buffer_source": anyvar.ID(bufferViewRefOrNone(img.BufferSource)),
		}))
	})
	r.Samplers.Live(func(i id.Id[id.SamplerTag], s Sampler) {
		w.Emit(wire.NewMessage(wire.TagSamplerCreate, map[string]anyvar.AnyVar{
			"id":         anyvar.ID(id.FromSampler(i)),
			"mag_filter": anyvar.String(s.MagFilter),
			"min_filter": anyvar.String(s.MinFilter),
			"wrap_s":     anyvar.String(s.WrapS),
			"wrap_t":     anyvar.String(s.WrapT),
		}))
	})
	r.Textures.Live(func(i id.Id[id.TextureTag], tex Texture) {
		w.Emit(wire.NewMessage(wire.TagTextureCreate, map[string]anyvar.AnyVar{
			"id":      anyvar.ID(id.FromTexture(i)),
			"image":   anyvar.ID(id.FromImage(tex.Image)),
			"sampler": anyvar.ID(samplerRefOrNone(tex.Sampler)),
		}))
	})
	r.Materials.Live(func(i id.Id[id.MaterialTag], m Material) {
		w.Emit(wire.NewMessage(wire.TagMaterialCreate, materialBody(i, m)))
	})
	r.Geometries.Live(func(i id.Id[id.GeometryTag], g Geometry) {
		w.Emit(wire.NewMessage(wire.TagGeometryCreate, geometryBody(i, g)))
	})
	r.Lights.Live(func(i id.Id[id.LightTag], l Light) {
		w.Emit(wire.NewMessage(wire.TagLightCreate, lightBody(i, l)))
	})
	r.Tables.Live(func(i id.Id[id.TableTag], t Table) {
		w.Emit(wire.NewMessage(wire.TagTableCreate, tableBody(i, t)))
	})
	r.Plots.Live(func(i id.Id[id.PlotTag], p Plot) {
		w.Emit(wire.NewMessage(wire.TagPlotCreate, plotBody(i, p)))
	})
	r.Entities.Live(func(i id.Id[id.EntityTag], e Entity) {
		w.Emit(wire.NewMessage(wire.TagEntityCreate, entityBody(i, e)))
	})
	r.Methods.Live(func(i id.Id[id.MethodTag], m Method) {
		w.Emit(wire.NewMessage(wire.TagMethodCreate, map[string]anyvar.AnyVar{
			"id":         anyvar.ID(id.FromMethod(i)),
			"name":       anyvar.String(m.Name),
			"docs":       anyvar.String(m.Docs),
			"arg_doc":    stringList(m.ArgDoc),
			"return_doc": anyvar.String(m.ReturnDoc),
		}))
	})
	r.Signals.Live(func(i id.Id[id.SignalTag], s Signal) {
		w.Emit(wire.NewMessage(wire.TagSignalCreate, map[string]anyvar.AnyVar{
			"id":      anyvar.ID(id.FromSignal(i)),
			"name":    anyvar.String(s.Name),
			"docs":    anyvar.String(s.Docs),
			"arg_doc": stringList(s.ArgDoc),
		}))
	})
	w.Emit(wire.NewMessage(wire.TagDocumentUpdate, documentBody(r.Document)))
}

// EntityMethodSet and EntitySignalSet expose the attachment sets the
// dispatcher needs for invariant 7/8's context-scoped resolution.
func EntityMethodSet(e Entity) MethodSet { return newMethodSet(e.Methods) }
func EntitySignalSet(e Entity) SignalSet { return newSignalSet(e.Signals) }
func TableMethodSet(t Table) MethodSet   { return newMethodSet(t.Methods) }
func TableSignalSet(t Table) SignalSet   { return newSignalSet(t.Signals) }
func PlotMethodSet(p Plot) MethodSet     { return newMethodSet(p.Methods) }
func PlotSignalSet(p Plot) SignalSet     { return newSignalSet(p.Signals) }
func DocumentMethodSet(d Document) MethodSet { return newMethodSet(d.Methods) }
func DocumentSignalSet(d Document) SignalSet { return newSignalSet(d.Signals) }
