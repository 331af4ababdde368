// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package yuv converts between 8-bit RGBA and NV12 using BT.601
// limited-range integer arithmetic.
//
// NV12 is a full resolution luma plane followed by a half-width,
// half-height plane of interleaved Cb/Cr pairs. The GPU readback path
// stores it inside an RGBA texture of width/4 x height*3/2 texels, four
// bytes per texel; Pack writes exactly that layout.
package yuv

import "image"

// Size returns the byte size of a width x height NV12 image.
func Size(width, height int) int {
	return width * height * 3 / 2
}

// PackedSize returns the RGBA texture geometry that holds a width x height
// NV12 image. A packed row carries 4*(width/4) luma samples, so for widths
// that are not a multiple of 4 the last width%4 columns are lost and the
// result is not a well-formed width x height NV12 image.
func PackedSize(width, height int) (w, h int) {
	return width / 4, height * 3 / 2
}

// Luma returns the BT.601 limited-range Y for an RGB triple.
func Luma(r, g, b uint8) uint8 {
	return uint8(((66*int(r) + 129*int(g) + 25*int(b) + 128) >> 8) + 16)
}

// Chroma returns the BT.601 limited-range Cb and Cr for an RGB triple.
func Chroma(r, g, b uint8) (cb, cr uint8) {
	ri, gi, bi := int(r), int(g), int(b)
	cb = uint8(((-38*ri - 74*gi + 112*bi + 128) >> 8) + 128)
	cr = uint8(((112*ri - 94*gi - 18*bi + 128) >> 8) + 128)
	return cb, cr
}

// Pack writes the NV12 encoding of src into dst, which must be
// PackedSize(src width, src height) texels.
//
// Rows [0, srcHeight) of dst hold four luma samples per texel. The rows
// after that hold two Cb/Cr pairs per texel, each pair averaged over a
// 2x2 block of src. Samples outside src repeat the edge pixel.
func Pack(dst, src *image.RGBA) {
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	db := dst.Bounds()
	dw, dh := db.Dx(), db.Dy()

	for y := 0; y < dh; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+dw*4]
		if y < sh {
			for i := range row {
				r, g, b := at(src, i, y, sw, sh)
				row[i] = Luma(r, g, b)
			}
			continue
		}
		cy := y - sh
		for i := 0; i+1 < len(row); i += 2 {
			r, g, b := block(src, i, cy*2, sw, sh)
			row[i], row[i+1] = Chroma(r, g, b)
		}
	}
}

// block returns the rounded average of the 2x2 block starting at x, y.
func block(src *image.RGBA, x, y, sw, sh int) (r, g, b uint8) {
	var sr, sg, sb int
	for dy := 0; dy < 2; dy++ {
		for dx := 0; dx < 2; dx++ {
			pr, pg, pb := at(src, x+dx, y+dy, sw, sh)
			sr += int(pr)
			sg += int(pg)
			sb += int(pb)
		}
	}
	return uint8((sr + 2) / 4), uint8((sg + 2) / 4), uint8((sb + 2) / 4)
}

// at returns the pixel at x, y clamped to the image.
func at(src *image.RGBA, x, y, sw, sh int) (r, g, b uint8) {
	x = min(max(x, 0), sw-1)
	y = min(max(y, 0), sh-1)
	i := src.PixOffset(src.Rect.Min.X+x, src.Rect.Min.Y+y)
	p := src.Pix[i : i+3 : i+3]
	return p[0], p[1], p[2]
}

// Planes splits an NV12 buffer into its luma and chroma planes.
func Planes(buf []byte, width, height int) (y, uv []byte) {
	n := width * height
	if n > len(buf) {
		n = len(buf)
	}
	return buf[:n], buf[n:]
}

// Unpack decodes an NV12 buffer into an opaque RGBA image.
func Unpack(buf []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	luma, uv := Planes(buf, width, height)
	cw := width / 2 * 2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			li := y*width + x
			if li >= len(luma) {
				return img
			}
			cb, cr := uint8(128), uint8(128)
			if ci := (y/2)*cw + (x/2)*2; ci+1 < len(uv) {
				cb, cr = uv[ci], uv[ci+1]
			}
			r, g, b := toRGB(luma[li], cb, cr)
			o := img.PixOffset(x, y)
			img.Pix[o+0] = r
			img.Pix[o+1] = g
			img.Pix[o+2] = b
			img.Pix[o+3] = 0xff
		}
	}
	return img
}

func toRGB(y, cb, cr uint8) (r, g, b uint8) {
	c := 298 * (int(y) - 16)
	d := int(cb) - 128
	e := int(cr) - 128
	return clamp((c + 409*e + 128) >> 8),
		clamp((c - 100*d - 208*e + 128) >> 8),
		clamp((c + 516*d + 128) >> 8)
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
