// Command framedemo runs frames through a framerender unit and writes the
// NV12 output.
//
// The input image (PNG, JPEG or BMP, or a generated test pattern) is
// uploaded once and rendered -frames times through the chosen filter.
// Every readback is appended to -output; -preview decodes the last frame
// back to PNG.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/gogpu/framerender"
	"github.com/gogpu/framerender/backend"
	_ "github.com/gogpu/framerender/backend/native"
	"github.com/gogpu/framerender/filter"
	"github.com/gogpu/framerender/internal/yuv"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	var (
		input   = flag.String("input", "", "input image (PNG, JPEG or BMP); empty uses a test pattern")
		width   = flag.Int("width", 0, "frame width (0 keeps the input width)")
		height  = flag.Int("height", 0, "frame height (0 keeps the input height)")
		name    = flag.String("filter", filter.NameNormal, "primary filter")
		frames  = flag.Int("frames", 30, "number of frames to render")
		fps     = flag.Int("fps", 30, "frame rate used for timestamps")
		output  = flag.String("output", "frames.nv12", "NV12 output file")
		preview = flag.String("preview", "", "optional PNG preview of the last frame")
		bname   = flag.String("backend", "", "device backend (default: best available)")
		lang    = flag.String("lang", "en", "language for the summary")
	)
	flag.Parse()

	src, err := loadImage(*input)
	if err != nil {
		log.Fatalf("Failed to load input: %v", err)
	}
	img := scale(src, *width, *height)
	w, h := img.Rect.Dx(), img.Rect.Dy()

	f, err := filter.New(*name)
	if err != nil {
		log.Fatalf("Failed to create filter: %v", err)
	}

	out, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	defer out.Close()
	bw := bufio.NewWriter(out)

	var (
		written  int
		last     []byte
		writeErr error
	)
	notifier := framerender.NotifierFunc(func(n framerender.Notification) {
		p, ok := n.(framerender.PixelsReady)
		if !ok || writeErr != nil {
			return
		}
		if _, err := bw.Write(p.Pixels); err != nil {
			writeErr = err
			return
		}
		written += len(p.Pixels)
		last = append(last[:0], p.Pixels...)
	})

	var (
		b     backend.RenderBackend
		frame framerender.Frame
	)
	d, err := framerender.NewDispatcher(func() (*framerender.Unit, error) {
		var err error
		b, err = initBackend(*bname)
		if err != nil {
			return nil, err
		}
		dev, err := b.Device()
		if err != nil {
			return nil, err
		}
		tex, err := dev.CreateTexture(framerender.TextureDescriptor{Label: "input", Width: w, Height: h})
		if err != nil {
			return nil, err
		}
		if err := dev.WriteTexture(tex, img.Pix); err != nil {
			return nil, err
		}
		frame.Texture = tex
		return framerender.NewUnit(dev,
			framerender.WithFilter(f),
			framerender.WithNotifier(notifier),
			framerender.WithLabel("framedemo"),
		), nil
	}, framerender.WithTeardown(func() {
		if frame.Texture != nil {
			frame.Texture.Destroy()
		}
		if b != nil {
			b.Close()
		}
	}))
	if err != nil {
		log.Fatalf("Failed to start unit: %v", err)
	}

	start := time.Now()
	interval := time.Second / time.Duration(max(*fps, 1))
	ctx := context.Background()
	for i := 0; i < *frames; i++ {
		frame.Timestamp = int64(i) * int64(interval)
		if err := d.Submit(ctx, framerender.RenderFilterRequest{Frame: frame}); err != nil {
			log.Fatalf("Frame %d: %v", i, err)
		}
	}
	elapsed := time.Since(start)
	d.Close()

	if writeErr != nil {
		log.Fatalf("Failed to write output: %v", writeErr)
	}
	if err := bw.Flush(); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}

	if *preview != "" && last != nil {
		if err := savePNG(*preview, yuv.Unpack(last, w, h)); err != nil {
			log.Fatalf("Failed to save preview: %v", err)
		}
	}

	p := message.NewPrinter(language.Make(*lang))
	p.Printf("%d frames (%dx%d, %s) on %s: %d bytes of NV12 written to %s in %v\n",
		*frames, w, h, *name, b.Name(), written, *output, elapsed.Round(time.Millisecond))
}

func initBackend(name string) (backend.RenderBackend, error) {
	if name == "" {
		return backend.InitDefault()
	}
	b := backend.Get(name)
	if b == nil {
		return nil, fmt.Errorf("%w: %q (available: %v)", backend.ErrBackendNotAvailable, name, backend.Available())
	}
	if err := b.Init(); err != nil {
		return nil, err
	}
	return b, nil
}

func loadImage(path string) (image.Image, error) {
	if path == "" {
		return testPattern(640, 360), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// scale converts src to RGBA at w x h. Zero dimensions keep the source
// size; a single zero keeps the aspect ratio.
func scale(src image.Image, w, h int) *image.RGBA {
	sb := src.Bounds()
	switch {
	case w == 0 && h == 0:
		w, h = sb.Dx(), sb.Dy()
	case w == 0:
		w = max(1, sb.Dx()*h/sb.Dy())
	case h == 0:
		h = max(1, sb.Dy()*w/sb.Dx())
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == sb.Dx() && h == sb.Dy() {
		draw.Draw(dst, dst.Rect, src, sb.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Rect, src, sb, draw.Src, nil)
	return dst
}

// testPattern draws vertical color bars over a horizontal gray ramp.
func testPattern(w, h int) image.Image {
	bars := []color.RGBA{
		{R: 235, G: 235, B: 235, A: 255},
		{R: 235, G: 235, B: 16, A: 255},
		{R: 16, G: 235, B: 235, A: 255},
		{R: 16, G: 235, B: 16, A: 255},
		{R: 235, G: 16, B: 235, A: 255},
		{R: 235, G: 16, B: 16, A: 255},
		{R: 16, G: 16, B: 235, A: 255},
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := bars[x*len(bars)/w]
			if y >= h*3/4 {
				v := uint8(x * 255 / max(w-1, 1))
				c = color.RGBA{R: v, G: v, B: v, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
