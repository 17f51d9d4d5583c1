/*

The primitive value decoders: a closed, named set of bit-stream-to-Variant
mappings (spec.md §4.3).

*/

package sendtables

import (
	"fmt"
	"math"

	"github.com/csdemo-go/csdemo"
)

// Decoder names one of the primitive value decoders. Dispatch is a plain
// switch (spec.md §9: "dynamic dispatch across ~23 decoders is expressed as
// a tagged variant + switch, not virtual calls"), matching the
// switch-on-s2pType style s2prot.bitPackedDec.instance / versionedDec.instance
// already use for their own, differently-shaped, decode dispatch.
type Decoder uint8

// The named primitive decoders.
const (
	DecNoscale Decoder = iota
	DecFloatSimulationTime
	DecFloatCoord
	DecUnsigned
	DecSigned
	DecUnsigned64
	DecFixed64
	DecBoolean
	DecComponent
	DecString
	DecQangle3
	DecQanglePitchYaw
	DecQangleVar
	DecQanglePres
	DecVectorNoscale
	DecVectorFloatCoord
	DecVectorNormal
	DecQuantizedFloat
	DecAmmo
	DecGameModeRules
	DecCEntityHandle
	DecBase
)

const simulationTimeTicksPerSecond = 30

// Decode reads one value for d from r. qf is only consulted when
// d == DecQuantizedFloat and must be non-nil in that case (the schema
// builder attaches one QuantizedFloat per such field at build time).
func Decode(d Decoder, qf *QuantizedFloat, r *csdemo.BitReader) (csdemo.Variant, error) {
	switch d {
	case DecNoscale:
		v, err := r.ReadFloat32()
		return csdemo.F32Variant(v), err

	case DecFloatSimulationTime:
		v, err := r.ReadVarUint32()
		return csdemo.F32Variant(float32(v) * (1.0 / simulationTimeTicksPerSecond)), err

	case DecFloatCoord:
		v, err := r.ReadBitCoord()
		return csdemo.F32Variant(v), err

	case DecUnsigned:
		v, err := r.ReadVarUint32()
		return csdemo.U32Variant(v), err

	case DecSigned:
		v, err := r.ReadVarInt32()
		return csdemo.I32Variant(v), err

	case DecUnsigned64:
		v, err := r.ReadVarUint64()
		return csdemo.U64Variant(v), err

	case DecFixed64:
		v, err := r.ReadUint64LE()
		return csdemo.U64Variant(v), err

	case DecBoolean, DecComponent:
		v, err := r.ReadBoolean()
		return csdemo.BoolVariant(v), err

	case DecString:
		v, err := r.ReadString(0)
		return csdemo.StringVariant(v), err

	case DecQangle3:
		return decodeQangle3(r)

	case DecQanglePitchYaw:
		return decodeQanglePitchYaw(r)

	case DecQangleVar:
		return decodeQangleMasked(r, (*csdemo.BitReader).ReadBitCoord)

	case DecQanglePres:
		return decodeQangleMasked(r, (*csdemo.BitReader).ReadBitCoordPres)

	case DecVectorNoscale:
		return decodeVector3(r, (*csdemo.BitReader).ReadFloat32)

	case DecVectorFloatCoord:
		return decodeVector3(r, (*csdemo.BitReader).ReadBitCoord)

	case DecVectorNormal:
		return decodeVectorNormal(r)

	case DecQuantizedFloat:
		if qf == nil {
			return csdemo.Variant{}, fmt.Errorf("sendtables: DecQuantizedFloat used without a descriptor")
		}
		v, err := qf.Decode(r)
		return csdemo.F32Variant(v), err

	case DecAmmo:
		v, err := r.ReadVarUint32()
		if err != nil {
			return csdemo.Variant{}, err
		}
		if v != 0 {
			v--
		}
		return csdemo.U32Variant(v), nil

	case DecGameModeRules:
		v, err := r.ReadNBits(7)
		return csdemo.U32Variant(v), err

	case DecCEntityHandle, DecBase:
		v, err := r.ReadVarUint32()
		return csdemo.U32Variant(v), err

	default:
		return csdemo.Variant{}, fmt.Errorf("sendtables: unknown decoder %d", d)
	}
}

func decodeQangle3(r *csdemo.BitReader) (csdemo.Variant, error) {
	var v csdemo.Vec3
	for i := range v {
		f, err := r.ReadFloat32()
		if err != nil {
			return csdemo.Variant{}, err
		}
		v[i] = f
	}
	return csdemo.Vec3Variant(v), nil
}

func decodeQanglePitchYaw(r *csdemo.BitReader) (csdemo.Variant, error) {
	// Each axis is the 32 raw bits reinterpreted as an IEEE float, scaled
	// down by 2^32.
	const scale = 1.0 / (1 << 32)
	var v csdemo.Vec3
	for i := 0; i < 3; i++ {
		bits, err := r.ReadNBits(32)
		if err != nil {
			return csdemo.Variant{}, err
		}
		v[i] = math.Float32frombits(bits) * scale
	}
	return csdemo.Vec3Variant(v), nil
}

func decodeQangleMasked(r *csdemo.BitReader, readAxis func(*csdemo.BitReader) (float32, error)) (csdemo.Variant, error) {
	var v csdemo.Vec3
	for i := 0; i < 3; i++ {
		has, err := r.ReadBoolean()
		if err != nil {
			return csdemo.Variant{}, err
		}
		if has {
			f, err := readAxis(r)
			if err != nil {
				return csdemo.Variant{}, err
			}
			v[i] = f
		}
	}
	return csdemo.Vec3Variant(v), nil
}

func decodeVector3(r *csdemo.BitReader, readAxis func(*csdemo.BitReader) (float32, error)) (csdemo.Variant, error) {
	var v csdemo.Vec3
	for i := range v {
		f, err := readAxis(r)
		if err != nil {
			return csdemo.Variant{}, err
		}
		v[i] = f
	}
	return csdemo.Vec3Variant(v), nil
}

const normalFracBits = 11
const normalDenom = (1 << normalFracBits) - 1

func decodeVectorNormal(r *csdemo.BitReader) (csdemo.Variant, error) {
	hasX, err := r.ReadBoolean()
	if err != nil {
		return csdemo.Variant{}, err
	}
	hasY, err := r.ReadBoolean()
	if err != nil {
		return csdemo.Variant{}, err
	}

	var x, y float32
	if hasX {
		v, err := decodeNormalAxis(r)
		if err != nil {
			return csdemo.Variant{}, err
		}
		x = v
	}
	if hasY {
		v, err := decodeNormalAxis(r)
		if err != nil {
			return csdemo.Variant{}, err
		}
		y = v
	}

	zSq := 1 - x*x - y*y
	var z float32
	if zSq > 0 {
		z = float32(math.Sqrt(float64(zSq)))
	}
	negZ, err := r.ReadBoolean()
	if err != nil {
		return csdemo.Variant{}, err
	}
	if negZ {
		z = -z
	}
	return csdemo.Vec3Variant(csdemo.Vec3{x, y, z}), nil
}

func decodeNormalAxis(r *csdemo.BitReader) (float32, error) {
	negative, err := r.ReadBoolean()
	if err != nil {
		return 0, err
	}
	bits, err := r.ReadNBits(normalFracBits)
	if err != nil {
		return 0, err
	}
	v := float32(bits) / normalDenom
	if negative {
		v = -v
	}
	return v, nil
}
