package framerender

import (
	"image"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Device is the GPU context a Unit renders on.
//
// The host application owns the context and the thread it is current on;
// the unit only creates and destroys resources through this interface.
// Backends live in backend/native (gogpu/wgpu HAL) and backend/software
// (CPU, *image.RGBA).
//
// Device implementations are NOT thread-safe. All calls happen on the
// goroutine that owns the context.
type Device interface {
	// CreateTexture allocates a 2D texture. The contents are undefined.
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// CreateRenderTarget creates an offscreen render target whose color
	// attachment is tex. The target does not own tex.
	CreateRenderTarget(tex Texture) (RenderTarget, error)

	// CreatePixelBuffer allocates a host-visible staging buffer of exactly
	// size bytes.
	CreatePixelBuffer(size int) (PixelBuffer, error)

	// WriteTexture uploads tightly packed RGBA rows covering all of tex.
	WriteTexture(tex Texture, pixels []byte) error

	// CreateProgram compiles a kernel into a runnable program.
	CreateProgram(k Kernel) (Program, error)

	// SetViewport sets the drawing viewport used by subsequent draws.
	SetViewport(width, height int)

	// Viewport returns the current viewport size.
	Viewport() (width, height int)
}

// TextureDescriptor describes parameters for creating a texture.
type TextureDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Width is the texture width in pixels.
	Width int

	// Height is the texture height in pixels.
	Height int

	// Format is the pixel format. Zero means RGBA8Unorm.
	Format gputypes.TextureFormat
}

// Texture is a GPU texture handle.
//
// It satisfies gpucontext.Texture so textures can be handed to host
// compositors that only know the gpucontext interfaces.
type Texture interface {
	gpucontext.Texture

	// Format returns the texture pixel format.
	Format() gputypes.TextureFormat

	// Destroy releases the texture. Safe to call more than once.
	Destroy()
}

// RenderTarget is an offscreen framebuffer bound to a texture.
type RenderTarget interface {
	// Texture returns the color attachment.
	Texture() Texture

	// Bind makes the target current for draws and reads. The returned
	// Binding must be released with Unbind on every exit path.
	Bind() (Binding, error)

	// Destroy releases the target. Safe to call more than once.
	Destroy()
}

// Binding is a scoped acquisition of a bound RenderTarget.
type Binding interface {
	// ReadPixels reads the bound target's pixels into dst.
	ReadPixels(dst []byte) error

	// Unbind restores the previous binding. Idempotent.
	Unbind()
}

// PixelBuffer is host-visible staging memory for pixel readback.
type PixelBuffer interface {
	// Bytes returns the buffer contents without copying.
	Bytes() []byte

	// Len returns the buffer size in bytes.
	Len() int

	// Destroy releases the buffer. Safe to call more than once.
	Destroy()
}

// Program is a compiled Kernel ready to draw.
type Program interface {
	// Draw runs the kernel over the current viewport, sampling src and
	// writing dst.
	Draw(src, dst Texture) error

	// Destroy releases the program. Safe to call more than once.
	Destroy()
}

// Kernel is a full-screen image operation.
//
// GPU backends compile WGSL; the software backend runs CPU. Both address
// the source at the destination pixel, clamped to the source edges, and
// agree up to rounding for 8-bit RGBA input.
type Kernel struct {
	// Name identifies the kernel in labels and logs.
	Name string

	// WGSL is the shader source. It must define vs_main and fs_main and
	// read the source texture at @group(0) @binding(0).
	WGSL string

	// CPU writes dst from src.
	CPU func(dst, src *image.RGBA)
}

// DefaultFormat is the format used when a TextureDescriptor leaves
// Format unset.
const DefaultFormat = gputypes.TextureFormatRGBA8Unorm
