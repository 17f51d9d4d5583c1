package sendtables

import (
	"testing"

	"github.com/csdemo-go/csdemo"
	"github.com/stretchr/testify/require"
)

func TestQuantizedFloatDecodeWithinRange(t *testing.T) {
	qf := NewQuantizedFloat(0, 1, 8, 0)
	r := csdemo.NewBitReader([]byte{0xff})
	v, err := qf.Decode(r)
	require.NoError(t, err)
	require.InDelta(t, 1.0, v, 0.01)
}

func TestQuantizedFloatDecodeZero(t *testing.T) {
	qf := NewQuantizedFloat(0, 1, 8, 0)
	r := csdemo.NewBitReader([]byte{0x00})
	v, err := qf.Decode(r)
	require.NoError(t, err)
	require.InDelta(t, 0.0, v, 0.01)
}

func TestQuantizedFloatNoScaleFallsBackToRawFloat(t *testing.T) {
	qf := NewQuantizedFloat(0, 1, 0, 0)
	require.True(t, qf.noScale)
}

func TestQuantizedFloatEncodeZeroFlagClearedWhenAlreadyFixedPoint(t *testing.T) {
	qf := NewQuantizedFloat(0, 100, 8, QFFEncodeZero)
	require.Equal(t, QuantizedFloatFlag(0), qf.Flags&QFFEncodeZero)
}

func TestQuantizedFloatQuantizeGrid(t *testing.T) {
	// §8's range invariant over a grid of descriptors: every quantized value
	// stays within [low, high] plus-or-minus one quant step, and quantizing
	// a quantized value again moves it by at most one step.
	lows := []float64{-180, -1, 0, 0.5}
	highs := []float64{0, 1, 100, 360}
	bitCounts := []uint{4, 8, 12, 20}
	flagSets := []QuantizedFloatFlag{0, QFFRoundDown, QFFRoundUp, QFFEncodeZero, QFFEncodeIntegers}

	for _, low := range lows {
		for _, high := range highs {
			if low >= high {
				continue
			}
			for _, bits := range bitCounts {
				for _, flags := range flagSets {
					qf := NewQuantizedFloat(low, high, bits, flags)
					if qf.noScale {
						continue
					}
					step := (qf.High - qf.Low) * qf.decMul
					for _, v := range []float64{qf.Low, (qf.Low + qf.High) / 2, qf.High} {
						q := qf.quantize(v)
						require.GreaterOrEqual(t, q, qf.Low-step,
							"low=%v high=%v bits=%d flags=%#x v=%v", low, high, bits, flags, v)
						require.LessOrEqual(t, q, qf.High+step,
							"low=%v high=%v bits=%d flags=%#x v=%v", low, high, bits, flags, v)
						require.InDelta(t, q, qf.quantize(q), step+1e-9,
							"re-quantizing may move at most one step: low=%v high=%v bits=%d flags=%#x", low, high, bits, flags)
					}
				}
			}
		}
	}
}

func TestQuantizedFloatRoundDownDisabledWhenLowIsZero(t *testing.T) {
	qf := NewQuantizedFloat(0, 100, 8, QFFRoundDown)
	require.Equal(t, QuantizedFloatFlag(0), qf.Flags&QFFRoundDown)
}

func TestQuantizedFloatRoundUpDisabledWhenHighIsZero(t *testing.T) {
	qf := NewQuantizedFloat(-100, 0, 8, QFFRoundUp)
	require.Equal(t, QuantizedFloatFlag(0), qf.Flags&QFFRoundUp)
}
