package entities

import (
	"testing"

	"github.com/csdemo-go/csdemo"
	"github.com/csdemo-go/csdemo/fieldpath"
	"github.com/csdemo-go/csdemo/sendtables"
	"github.com/csdemo-go/csdemo/wire"
	"github.com/stretchr/testify/require"
)

func testSerializer() *sendtables.Serializer {
	return &sendtables.Serializer{
		Name: "CBaseEntity",
		Fields: []*sendtables.Field{
			{Category: sendtables.FieldValue, Name: "m_iHealth", FullName: "CBaseEntity.m_iHealth", Decoder: sendtables.DecUnsigned, ShouldParse: true},
		},
	}
}

func TestCreateEntityReadsHeaderAndRegisters(t *testing.T) {
	props := sendtables.NewPropController()
	ctx := NewContext(props, nil)
	// class-id=5 (8 bits), serial=0 (17 bits), unknown=0 (varint).
	r := csdemo.NewBitReader([]byte{0x05, 0x00, 0x00, 0x00, 0x00})
	classID, err := ctx.CreateEntity(1, r)
	require.NoError(t, err)
	require.Equal(t, int32(5), classID)
	require.Contains(t, ctx.entities, int32(1))
}

func TestDecodeEntityUpdateUnknownEntityErrors(t *testing.T) {
	props := sendtables.NewPropController()
	ctx := NewContext(props, nil)
	_, _, err := ctx.DecodeEntityUpdate(42, csdemo.NewBitReader(nil), nil)
	require.Error(t, err)
}

func TestDecodePacketEntitiesDeleteTag(t *testing.T) {
	props := sendtables.NewPropController()
	ctx := NewContext(props, nil)
	ctx.entities[0] = &Entity{ID: 0, ClassID: 5}

	// One entry: u-bit-var delta 0 (6 zero bits), then 2-bit tag 01 = delete.
	data := []byte{0x40}
	out, err := ctx.DecodePacketEntities(&wire.PacketEntities{UpdatedEntries: 1, EntityData: data})
	require.NoError(t, err)
	require.Equal(t, []EntityState{{EntityID: 0, Deleted: true}}, out)
	require.NotContains(t, ctx.entities, int32(0))
}

func TestDecodePacketEntitiesPVSBitDiscardsUpdate(t *testing.T) {
	props := sendtables.NewPropController()
	ctx := NewContext(props, nil)
	ctx.entities[0] = &Entity{ID: 0, ClassID: 5}
	ctx.classes[5] = &Class{ID: 5, Name: "CBaseEntity", Serializer: testSerializer()}

	// One entry: u-bit-var delta 0, tag 00 (update), then 2 PVS bits with
	// the low bit set -- the update is discarded without reading any paths.
	data := []byte{0x00, 0x01}
	out, err := ctx.DecodePacketEntities(&wire.PacketEntities{
		UpdatedEntries: 1,
		HasPVSVisBits:  1,
		EntityData:     data,
	})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestDecodeEntityUpdateSkipsFilteredClass(t *testing.T) {
	props := sendtables.NewPropController()
	ctx := NewContext(props, func(name string) bool { return name == "CBaseEntity" })
	ctx.entities[1] = &Entity{ID: 1, ClassID: 5}
	ctx.classes[5] = &Class{ID: 5, Name: "CBaseEntity", Serializer: testSerializer()}

	_, ok, err := ctx.DecodeEntityUpdate(1, csdemo.NewBitReader(nil), nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDecodeEntityUpdateFilteredClassStillConsumesBits(t *testing.T) {
	props := sendtables.NewPropController()
	ctx := NewContext(props, func(name string) bool { return name == "CBaseEntity" })
	ctx.entities[1] = &Entity{ID: 1, ClassID: 5}
	ctx.classes[5] = &Class{ID: 5, Name: "CBaseEntity", Serializer: testSerializer()}

	// One PlusOne op then the terminator, addressing field 0 (m_iHealth).
	paths, err := fieldpath.ReadFieldPaths(csdemo.NewBitReader([]byte{0x18}))
	require.NoError(t, err)
	require.Len(t, paths, 1)

	// The filtered entity's varint value must still be consumed so the next
	// entity in the packet stays bit-aligned.
	r := csdemo.NewBitReader([]byte{0x2a})
	_, ok, err := ctx.DecodeEntityUpdate(1, r, paths)
	require.NoError(t, err)
	require.False(t, ok)
	require.True(t, r.EOF())
}
