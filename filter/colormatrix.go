package filter

import (
	_ "embed"
	"image"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/framerender"
)

//go:embed shaders/colormatrix.wgsl
var colorMatrixShaderSource string

// ColorMatrix is a 4x5 color transformation matrix in row-major order:
//
//	[R']   [a00 a01 a02 a03 a04]   [R]
//	[G'] = [a10 a11 a12 a13 a14] * [G]
//	[B']   [a20 a21 a22 a23 a24]   [B]
//	[A']   [a30 a31 a32 a33 a34]   [A]
//	                               [1]
//
// The fifth column is a bias. Channels are straight-alpha values in
// [0, 255] during the transformation and are clamped afterwards.
type ColorMatrix [20]float32

// IdentityMatrix passes colors through unchanged.
func IdentityMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0, // R
		0, 1, 0, 0, 0, // G
		0, 0, 1, 0, 0, // B
		0, 0, 0, 1, 0, // A
	}
}

// BrightnessMatrix scales RGB by factor.
// factor: 0.0 = black, 1.0 = unchanged, 2.0 = twice as bright
func BrightnessMatrix(factor float32) ColorMatrix {
	return ColorMatrix{
		factor, 0, 0, 0, 0,
		0, factor, 0, 0, 0,
		0, 0, factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// ContrastMatrix scales RGB around mid gray.
// factor: 0.0 = gray, 1.0 = unchanged, 2.0 = high contrast
func ContrastMatrix(factor float32) ColorMatrix {
	offset := 128 * (1 - factor)
	return ColorMatrix{
		factor, 0, 0, 0, offset,
		0, factor, 0, 0, offset,
		0, 0, factor, 0, offset,
		0, 0, 0, 1, 0,
	}
}

// SaturationMatrix blends between luminance and the original color.
// factor: 0.0 = grayscale, 1.0 = unchanged, 2.0 = oversaturated
func SaturationMatrix(factor float32) ColorMatrix {
	// BT.601 luma weights, matching the NV12 readback.
	const (
		lumR = 0.299
		lumG = 0.587
		lumB = 0.114
	)
	inv := 1 - factor
	return ColorMatrix{
		lumR*inv + factor, lumG * inv, lumB * inv, 0, 0,
		lumR * inv, lumG*inv + factor, lumB * inv, 0, 0,
		lumR * inv, lumG * inv, lumB*inv + factor, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// SepiaMatrix applies a sepia tone.
func SepiaMatrix() ColorMatrix {
	return ColorMatrix{
		0.393, 0.769, 0.189, 0, 0,
		0.349, 0.686, 0.168, 0, 0,
		0.272, 0.534, 0.131, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// InvertMatrix inverts RGB and keeps alpha.
func InvertMatrix() ColorMatrix {
	return ColorMatrix{
		-1, 0, 0, 0, 255,
		0, -1, 0, 0, 255,
		0, 0, -1, 0, 255,
		0, 0, 0, 1, 0,
	}
}

// HueRotateMatrix rotates hue by degrees.
func HueRotateMatrix(degrees float32) ColorMatrix {
	rad := float64(degrees) * math.Pi / 180
	cos := float32(math.Cos(rad))
	sin := float32(math.Sin(rad))

	const (
		lumR = 0.213
		lumG = 0.715
		lumB = 0.072
	)
	return ColorMatrix{
		lumR + cos*(1-lumR) + sin*(-lumR), lumG + cos*(-lumG) + sin*(-lumG), lumB + cos*(-lumB) + sin*(1-lumB), 0, 0,
		lumR + cos*(-lumR) + sin*(0.143), lumG + cos*(1-lumG) + sin*(0.140), lumB + cos*(-lumB) + sin*(-0.283), 0, 0,
		lumR + cos*(-lumR) + sin*(-(1 - lumR)), lumG + cos*(-lumG) + sin*(lumG), lumB + cos*(1-lumB) + sin*(lumB), 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Multiply returns the matrix that applies m first, then other.
func (m ColorMatrix) Multiply(other ColorMatrix) ColorMatrix {
	var r ColorMatrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += other[row*5+k] * m[k*5+col]
			}
			r[row*5+col] = sum
		}
		r[row*5+4] = other[row*5+0]*m[4] + other[row*5+1]*m[9] +
			other[row*5+2]*m[14] + other[row*5+3]*m[19] + other[row*5+4]
	}
	return r
}

// Apply transforms one straight-alpha pixel.
func (m *ColorMatrix) Apply(r, g, b, a uint8) (uint8, uint8, uint8, uint8) {
	fr, fg, fb, fa := float32(r), float32(g), float32(b), float32(a)
	return clampUint8(m[0]*fr + m[1]*fg + m[2]*fb + m[3]*fa + m[4]),
		clampUint8(m[5]*fr + m[6]*fg + m[7]*fb + m[8]*fa + m[9]),
		clampUint8(m[10]*fr + m[11]*fg + m[12]*fb + m[13]*fa + m[14]),
		clampUint8(m[15]*fr + m[16]*fg + m[17]*fb + m[18]*fa + m[19])
}

// Kernel returns a kernel applying m on the GPU and the CPU.
func (m ColorMatrix) Kernel(name string) framerender.Kernel {
	return framerender.Kernel{
		Name: name,
		WGSL: m.wgsl(),
		CPU: func(dst, src *image.RGBA) {
			eachPixel(dst, src, m.Apply)
		},
	}
}

// wgsl fills the shader template with the matrix rows.
func (m ColorMatrix) wgsl() string {
	row := func(i int) string {
		return strings.Join([]string{lit(m[i*5]), lit(m[i*5+1]), lit(m[i*5+2]), lit(m[i*5+3])}, ", ")
	}
	return strings.NewReplacer(
		"{{R}}", row(0), "{{R4}}", lit(m[4]),
		"{{G}}", row(1), "{{G4}}", lit(m[9]),
		"{{B}}", row(2), "{{B4}}", lit(m[14]),
		"{{A}}", row(3), "{{A4}}", lit(m[19]),
	).Replace(colorMatrixShaderSource)
}

// lit formats v as a WGSL f32 literal.
func lit(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// clampUint8 clamps a float32 to [0, 255] and converts to uint8.
func clampUint8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5) // Round to nearest
}
