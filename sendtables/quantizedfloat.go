/*

The quantised-float codec (spec.md §4.4): a bit-packed float descriptor with
optional rounding and zero-encode behaviours, normalized once at construction
time.

*/

package sendtables

import (
	"math"

	"github.com/csdemo-go/csdemo"
)

// QuantizedFloatFlag is one of the four rounding/encoding behaviour bits a
// quantised-float descriptor can carry.
type QuantizedFloatFlag uint32

// Quantised-float flag bits.
const (
	QFFRoundDown      QuantizedFloatFlag = 1 << 0
	QFFRoundUp        QuantizedFloatFlag = 1 << 1
	QFFEncodeZero     QuantizedFloatFlag = 1 << 2
	QFFEncodeIntegers QuantizedFloatFlag = 1 << 3
)

// fallbackMultipliers is tried in order when the natural high_low_mul would
// overflow the available bit budget.
var fallbackMultipliers = [...]float64{0.9999, 0.99, 0.9, 0.8, 0.7}

// QuantizedFloat is a normalized, ready-to-decode quantised-float descriptor.
type QuantizedFloat struct {
	Low, High float64
	BitCount  uint
	Flags     QuantizedFloatFlag

	decMul     float64
	highLowMul float64
	offset     float64
	noScale    bool
}

// NewQuantizedFloat constructs and normalizes a QuantizedFloat per spec.md
// §4.4's construction rules.
func NewQuantizedFloat(low, high float64, bitCount uint, flags QuantizedFloatFlag) *QuantizedFloat {
	qf := &QuantizedFloat{Low: low, High: high, BitCount: bitCount, Flags: flags}

	if bitCount == 0 || bitCount >= 32 {
		qf.noScale = true
		return qf
	}

	if low == 0 {
		qf.Flags &^= QFFRoundDown
	}
	if high == 0 {
		qf.Flags &^= QFFRoundUp
	}
	if low > 0 || high < 0 {
		qf.Flags &^= (QFFRoundDown | QFFRoundUp)
	}
	if qf.Flags&QFFEncodeIntegers != 0 {
		qf.Flags &^= (QFFRoundDown | QFFRoundUp)
	}

	rangeVal := qf.High - qf.Low

	if qf.Flags&QFFRoundDown != 0 {
		qf.offset = rangeVal / float64(uint64(1)<<bitCount)
		qf.High -= qf.offset
	}
	if qf.Flags&QFFRoundUp != 0 {
		qf.offset = rangeVal / float64(uint64(1)<<bitCount)
		qf.Low += qf.offset
	}

	if qf.Flags&QFFEncodeIntegers != 0 {
		deltaVal := math.Max(1, qf.High-qf.Low)
		neededBits := uint(math.Ceil(math.Log2(deltaVal)))
		pow := uint64(1) << neededBits
		if uint(math.Log2(float64(pow))) > bitCount {
			// Grow to cover the integer range.
			bitCount = uint(math.Log2(float64(pow)))
			qf.BitCount = bitCount
		}
		qf.offset = float64(pow) / float64(uint64(1)<<bitCount)
		qf.High = qf.Low + float64(pow) - qf.offset
	}

	rangeVal = qf.High - qf.Low
	maxValue := float64((uint64(1) << bitCount) - 1)
	qf.highLowMul = computeHighLowMul(rangeVal, maxValue)

	// Clear any rounding flag that is a fixed point of quantize().
	if qf.Flags&QFFRoundDown != 0 && qf.quantize(qf.Low) == qf.Low {
		qf.Flags &^= QFFRoundDown
	}
	if qf.Flags&QFFRoundUp != 0 && qf.quantize(qf.High) == qf.High {
		qf.Flags &^= QFFRoundUp
	}
	if qf.Flags&QFFEncodeZero != 0 && qf.quantize(0) == 0 {
		qf.Flags &^= QFFEncodeZero
	}

	qf.decMul = 1.0 / maxValue
	if rangeVal != 0 {
		qf.decMul = 1.0 / float64((uint64(1)<<bitCount)-1)
	}

	return qf
}

func computeHighLowMul(rangeVal, maxValue float64) float64 {
	if rangeVal <= 0 {
		return 1
	}
	mul := maxValue / rangeVal
	if mul*rangeVal > maxValue {
		for _, fb := range fallbackMultipliers {
			if mul*fb*rangeVal <= maxValue {
				return mul * fb
			}
		}
	}
	return mul
}

// quantize maps a float value through an encode-then-decode round trip; used
// only at construction time to detect flags that are already fixed points.
func (qf *QuantizedFloat) quantize(v float64) float64 {
	if v < qf.Low {
		return qf.Low
	}
	if v > qf.High {
		return qf.High
	}
	u := uint64((v - qf.Low) * qf.highLowMul)
	maxValue := uint64(1)<<qf.BitCount - 1
	if u > maxValue {
		u = maxValue
	}
	return qf.Low + (qf.High-qf.Low)*float64(u)*qf.decMul
}

// Decode reads one quantised float from r.
func (qf *QuantizedFloat) Decode(r *csdemo.BitReader) (float32, error) {
	if qf.noScale {
		v, err := r.ReadFloat32()
		return v, err
	}

	if qf.Flags&QFFRoundDown != 0 {
		if b, err := r.ReadBoolean(); err != nil {
			return 0, err
		} else if b {
			return float32(qf.Low), nil
		}
	}
	if qf.Flags&QFFRoundUp != 0 {
		if b, err := r.ReadBoolean(); err != nil {
			return 0, err
		} else if b {
			return float32(qf.High), nil
		}
	}
	if qf.Flags&QFFEncodeZero != 0 {
		if b, err := r.ReadBoolean(); err != nil {
			return 0, err
		} else if b {
			return 0, nil
		}
	}

	bits, err := r.ReadNBits(qf.BitCount)
	if err != nil {
		return 0, err
	}
	return float32(qf.Low + (qf.High-qf.Low)*float64(bits)*qf.decMul), nil
}
