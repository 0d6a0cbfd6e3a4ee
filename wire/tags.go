// Package wire implements the NOODLES binary codec: the bidirectional
// mapping between AnyVar values / tagged messages and the byte stream
// carried by the transport (spec.md §4.2, §4.4, §6). It drives the
// low-level github.com/tinylib/msgp/msgp Append*/Read*Bytes token API by
// hand rather than using msgp's struct codegen, since AnyVar is a closed
// hand-written sum type and not a Go struct msgp can reflect over. The
// resulting wire format is a "CBOR-like tagged encoding" in the sense
// spec.md §4.2 allows: MessagePack is exactly that.
package wire

// Tag identifies a message type on the wire. Values and direction match
// spec.md §6 verbatim; the flatbuffers-based predecessor mentioned in
// spec.md §9 is obsolete and has no representation here.
type Tag int

const (
	TagMethodCreate      Tag = 0  // S
	TagMethodDelete      Tag = 1  // S
	TagSignalCreate      Tag = 2  // S
	TagSignalDelete      Tag = 3  // S
	TagEntityCreate      Tag = 4  // S
	TagEntityUpdate      Tag = 5  // S
	TagEntityDelete      Tag = 6  // S
	TagPlotCreate        Tag = 7  // S
	TagPlotUpdate        Tag = 8  // S
	TagPlotDelete        Tag = 9  // S
	TagBufferCreate      Tag = 10 // S
	TagBufferDelete      Tag = 11 // S
	TagBufferViewCreate  Tag = 12 // S
	TagBufferViewDelete  Tag = 13 // S
	TagMaterialCreate    Tag = 14 // S
	TagMaterialUpdate    Tag = 15 // S
	TagMaterialDelete    Tag = 16 // S
	TagImageCreate       Tag = 17 // S
	TagImageDelete       Tag = 18 // S
	TagTextureCreate     Tag = 19 // S
	TagTextureDelete     Tag = 20 // S
	TagSamplerCreate     Tag = 21 // S
	TagSamplerDelete     Tag = 22 // S
	TagLightCreate       Tag = 23 // S
	TagLightUpdate       Tag = 24 // S
	TagLightDelete       Tag = 25 // S
	TagGeometryCreate    Tag = 26 // S
	TagGeometryDelete    Tag = 27 // S
	TagTableCreate       Tag = 28 // S
	TagTableUpdate       Tag = 29 // S
	TagTableDelete       Tag = 30 // S
	TagDocumentUpdate    Tag = 31 // S
	TagDocumentReset     Tag = 32 // S
	TagSignalInvoke      Tag = 33 // S
	TagMethodReply       Tag = 34 // S

	TagIntroduction Tag = 50 // C
	TagMethodInvoke Tag = 51 // C
)

// Direction reports which side of the connection originates messages of
// tag t.
type Direction int

const (
	DirectionServerToClient Direction = iota
	DirectionClientToServer
)

func (t Tag) Direction() Direction {
	if t == TagIntroduction || t == TagMethodInvoke {
		return DirectionClientToServer
	}
	return DirectionServerToClient
}

func (t Tag) String() string {
	switch t {
	case TagMethodCreate:
		return "MethodCreate"
	case TagMethodDelete:
		return "MethodDelete"
	case TagSignalCreate:
		return "SignalCreate"
	case TagSignalDelete:
		return "SignalDelete"
	case TagEntityCreate:
		return "EntityCreate"
	case TagEntityUpdate:
		return "EntityUpdate"
	case TagEntityDelete:
		return "EntityDelete"
	case TagPlotCreate:
		return "PlotCreate"
	case TagPlotUpdate:
		return "PlotUpdate"
	case TagPlotDelete:
		return "PlotDelete"
	case TagBufferCreate:
		return "BufferCreate"
	case TagBufferDelete:
		return "BufferDelete"
	case TagBufferViewCreate:
		return "BufferViewCreate"
	case TagBufferViewDelete:
		return "BufferViewDelete"
	case TagMaterialCreate:
		return "MaterialCreate"
	case TagMaterialUpdate:
		return "MaterialUpdate"
	case TagMaterialDelete:
		return "MaterialDelete"
	case TagImageCreate:
		return "ImageCreate"
	case TagImageDelete:
		return "ImageDelete"
	case TagTextureCreate:
		return "TextureCreate"
	case TagTextureDelete:
		return "TextureDelete"
	case TagSamplerCreate:
		return "SamplerCreate"
	case TagSamplerDelete:
		return "SamplerDelete"
	case TagLightCreate:
		return "LightCreate"
	case TagLightUpdate:
		return "LightUpdate"
	case TagLightDelete:
		return "LightDelete"
	case TagGeometryCreate:
		return "GeometryCreate"
	case TagGeometryDelete:
		return "GeometryDelete"
	case TagTableCreate:
		return "TableCreate"
	case TagTableUpdate:
		return "TableUpdate"
	case TagTableDelete:
		return "TableDelete"
	case TagDocumentUpdate:
		return "DocumentUpdate"
	case TagDocumentReset:
		return "DocumentReset"
	case TagSignalInvoke:
		return "SignalInvoke"
	case TagMethodReply:
		return "MethodReply"
	case TagIntroduction:
		return "Introduction"
	case TagMethodInvoke:
		return "MethodInvoke"
	default:
		return "Unknown"
	}
}

// CatchUpOrder is the fixed dependency order spec.md §4.5 requires new
// clients be caught up in.
var CatchUpOrder = []Tag{
	TagBufferCreate,
	TagBufferViewCreate,
	TagImageCreate,
	TagSamplerCreate,
	TagTextureCreate,
	TagMaterialCreate,
	TagGeometryCreate,
	TagLightCreate,
	TagTableCreate,
	TagPlotCreate,
	TagEntityCreate,
	TagMethodCreate,
	TagSignalCreate,
}
