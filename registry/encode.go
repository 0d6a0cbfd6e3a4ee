package registry

import (
	"github.com/InsightCenterNoodles/noodles-core/anyvar"
	"github.com/InsightCenterNoodles/noodles-core/id"
)

// The helpers in this file turn a component's typed Go fields into the
// AnyVar shapes registry.go's Create*/Update*/CatchUp bodies carry, so
// every wire message holds the component's full essential state
// (spec.md §4.4) instead of just its id and name.

func stringList(ss []string) anyvar.AnyVar {
	out := make([]anyvar.AnyVar, len(ss))
	for i, s := range ss {
		out[i] = anyvar.String(s)
	}
	return anyvar.List(out)
}

func methodIDList(ms []id.Id[id.MethodTag]) anyvar.AnyVar {
	out := make([]anyvar.AnyVar, len(ms))
	for i, m := range ms {
		out[i] = anyvar.ID(id.FromMethod(m))
	}
	return anyvar.List(out)
}

func signalIDList(ss []id.Id[id.SignalTag]) anyvar.AnyVar {
	out := make([]anyvar.AnyVar, len(ss))
	for i, s := range ss {
		out[i] = anyvar.ID(id.FromSignal(s))
	}
	return anyvar.List(out)
}

func lightIDList(ls []id.Id[id.LightTag]) anyvar.AnyVar {
	out := make([]anyvar.AnyVar, len(ls))
	for i, l := range ls {
		out[i] = anyvar.ID(id.FromLight(l))
	}
	return anyvar.List(out)
}

func tableIDList(ts []id.Id[id.TableTag]) anyvar.AnyVar {
	out := make([]anyvar.AnyVar, len(ts))
	for i, t := range ts {
		out[i] = anyvar.ID(id.FromTable(t))
	}
	return anyvar.List(out)
}

func plotIDList(ps []id.Id[id.PlotTag]) anyvar.AnyVar {
	out := make([]anyvar.AnyVar, len(ps))
	for i, p := range ps {
		out[i] = anyvar.ID(id.FromPlot(p))
	}
	return anyvar.List(out)
}

func bufferViewRefOrNone(i id.Id[id.BufferViewTag]) id.AnyID {
	if !i.Valid() {
		return id.NoneID
	}
	return id.FromBufferView(i)
}

func samplerRefOrNone(i id.Id[id.SamplerTag]) id.AnyID {
	if !i.Valid() {
		return id.NoneID
	}
	return id.FromSampler(i)
}

func textureRefOrNone(i id.Id[id.TextureTag]) id.AnyID {
	if !i.Valid() {
		return id.NoneID
	}
	return id.FromTexture(i)
}

func tableRefOrNone(i id.Id[id.TableTag]) id.AnyID {
	if !i.Valid() {
		return id.NoneID
	}
	return id.FromTable(i)
}

func geometryRefOrNone(i id.Id[id.GeometryTag]) id.AnyID {
	if !i.Valid() {
		return id.NoneID
	}
	return id.FromGeometry(i)
}

func textureRefMap(t TextureRef) anyvar.AnyVar {
	return anyvar.Map(map[string]anyvar.AnyVar{
		"texture":   anyvar.ID(textureRefOrNone(t.Texture)),
		"transform": anyvar.PackedFloat64List(t.Transform[:]),
		"uv_slot":   anyvar.Int64(t.UVSlot),
	})
}

func materialBody(i id.Id[id.MaterialTag], m Material) map[string]anyvar.AnyVar {
	return map[string]anyvar.AnyVar{
		"id":                  anyvar.ID(id.FromMaterial(i)),
		"name":                anyvar.String(m.Name),
		"base_color_factor":   anyvar.Vec4(m.BaseColorFactor[0], m.BaseColorFactor[1], m.BaseColorFactor[2], m.BaseColorFactor[3]),
		"metallic_factor":     anyvar.Float64(m.MetallicFactor),
		"roughness_factor":    anyvar.Float64(m.RoughnessFactor),
		"emissive_factor":     anyvar.Vec3(m.EmissiveFactor[0], m.EmissiveFactor[1], m.EmissiveFactor[2]),
		"base_color_texture":  textureRefMap(m.BaseColorTexture),
		"metal_rough_texture": textureRefMap(m.MetalRoughTexture),
		"normal_texture":      textureRefMap(m.NormalTexture),
		"emissive_texture":    textureRefMap(m.EmissiveTexture),
		"occlusion_texture":   textureRefMap(m.OcclusionTexture),
		"alpha_mode":          anyvar.String(m.AlphaMode),
		"double_sided":        anyvar.Int64(boolToInt(m.DoubleSided)),
	}
}

func geometryAttributeMap(a GeometryAttribute) anyvar.AnyVar {
	return anyvar.Map(map[string]anyvar.AnyVar{
		"semantic":  anyvar.String(a.Semantic),
		"view":      anyvar.ID(id.FromBufferView(a.View)),
		"format":    anyvar.String(a.Format),
		"offset":    anyvar.Int64(int64(a.Offset)),
		"stride":    anyvar.Int64(int64(a.Stride)),
		"normalize": anyvar.Int64(boolToInt(a.Normalize)),
	})
}

func geometryPatchMap(p GeometryPatch) anyvar.AnyVar {
	attrs := make([]anyvar.AnyVar, len(p.Attributes))
	for i, a := range p.Attributes {
		attrs[i] = geometryAttributeMap(a)
	}
	return anyvar.Map(map[string]anyvar.AnyVar{
		"attributes":     anyvar.List(attrs),
		"indices":        anyvar.ID(bufferViewRefOrNone(p.Indices)),
		"index_count":    anyvar.Int64(int64(p.IndexCount)),
		"primitive_type": anyvar.String(p.PrimitiveType),
		"material":       anyvar.ID(id.FromMaterial(p.Material)),
	})
}

func geometryBody(i id.Id[id.GeometryTag], g Geometry) map[string]anyvar.AnyVar {
	patches := make([]anyvar.AnyVar, len(g.Patches))
	for n, p := range g.Patches {
		patches[n] = geometryPatchMap(p)
	}
	return map[string]anyvar.AnyVar{
		"id":      anyvar.ID(id.FromGeometry(i)),
		"name":    anyvar.String(g.Name),
		"patches": anyvar.List(patches),
	}
}

func lightBody(i id.Id[id.LightTag], l Light) map[string]anyvar.AnyVar {
	return map[string]anyvar.AnyVar{
		"id":         anyvar.ID(id.FromLight(i)),
		"name":       anyvar.String(l.Name),
		"color":      anyvar.Vec3(l.Color[0], l.Color[1], l.Color[2]),
		"intensity":  anyvar.Float64(l.Intensity),
		"kind":       anyvar.String(l.Kind.String()),
		"range":      anyvar.Float64(l.Range),
		"inner_cone": anyvar.Float64(l.InnerCone),
		"outer_cone": anyvar.Float64(l.OuterCone),
	}
}

func entityRepresentationMap(rep EntityRepresentation) anyvar.AnyVar {
	return anyvar.Map(map[string]anyvar.AnyVar{
		"kind":            anyvar.String(rep.Kind.String()),
		"text":            anyvar.String(rep.Text),
		"web_url":         anyvar.String(rep.WebURL),
		"geometry":        anyvar.ID(geometryRefOrNone(rep.Render.Geometry)),
		"instance_source": anyvar.ID(bufferViewRefOrNone(rep.Render.InstanceSource)),
	})
}

func entityBody(i id.Id[id.EntityTag], e Entity) map[string]anyvar.AnyVar {
	return map[string]anyvar.AnyVar{
		"id":             anyvar.ID(id.FromEntity(i)),
		"name":           anyvar.String(e.Name),
		"parent":         anyvar.ID(entityRefOrNone(e.Parent)),
		"transform":      anyvar.Mat4(e.Transform),
		"representation": entityRepresentationMap(e.Representation),
		"lights":         lightIDList(e.Lights),
		"tables":         tableIDList(e.Tables),
		"plots":          plotIDList(e.Plots),
		"tags":           stringList(e.Tags),
		"methods":        methodIDList(e.Methods),
		"signals":        signalIDList(e.Signals),
		"influence_aabb": anyvar.PackedFloat64List(e.InfluenceAABB[:]),
	}
}

func metadataMap(md map[string]anyvar.AnyVar) anyvar.AnyVar {
	if md == nil {
		md = map[string]anyvar.AnyVar{}
	}
	return anyvar.Map(md)
}

func tableBody(i id.Id[id.TableTag], t Table) map[string]anyvar.AnyVar {
	return map[string]anyvar.AnyVar{
		"id":       anyvar.ID(id.FromTable(i)),
		"name":     anyvar.String(t.Name),
		"methods":  methodIDList(t.Methods),
		"signals":  signalIDList(t.Signals),
		"metadata": metadataMap(t.Metadata),
	}
}

func plotBody(i id.Id[id.PlotTag], p Plot) map[string]anyvar.AnyVar {
	return map[string]anyvar.AnyVar{
		"id":      anyvar.ID(id.FromPlot(i)),
		"name":    anyvar.String(p.Name),
		"table":   anyvar.ID(tableRefOrNone(p.Table)),
		"rep":     anyvar.String(p.RepKind.String()),
		"text":    anyvar.String(p.Text),
		"url":     anyvar.String(p.URL),
		"methods": methodIDList(p.Methods),
		"signals": signalIDList(p.Signals),
	}
}

func documentBody(d Document) map[string]anyvar.AnyVar {
	return map[string]anyvar.AnyVar{
		"methods_count": anyvar.Int64(int64(len(d.Methods))),
		"signals_count": anyvar.Int64(int64(len(d.Signals))),
		"methods":       methodIDList(d.Methods),
		"signals":       signalIDList(d.Signals),
		"metadata":      metadataMap(d.Metadata),
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
