package frame

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Frame is an RGB pixel buffer, three bytes per pixel, row-major.
// A Frame is owned by whoever is analyzing or capturing it; it is never
// shared between concurrent analyses.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

const channels = 3

func New(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*channels),
	}
}

// FromImage copies any image into a new Frame, dropping alpha.
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	return fromRGBA(rgba)
}

func fromRGBA(src *image.RGBA) *Frame {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	f := New(w, h)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := f.Pix[y*w*channels : (y+1)*w*channels]
		for x := 0; x < w; x++ {
			out[x*channels] = row[x*4]
			out[x*channels+1] = row[x*4+1]
			out[x*channels+2] = row[x*4+2]
		}
	}
	return f
}

// DefaultMaxPixels caps decoded frames at 40 megapixels.
const DefaultMaxPixels = 40_000_000

var ErrTooLarge = errors.New("image dimensions exceed pixel limit")

// Decode reads an encoded image (jpeg, png, gif, webp, bmp, tiff) of at most
// DefaultMaxPixels.
func Decode(r io.Reader) (*Frame, error) {
	return DecodeLimit(r, DefaultMaxPixels)
}

// DecodeLimit is Decode with an explicit pixel budget. The header is checked
// before any pixel data is decoded, so a small file declaring huge
// dimensions is rejected without allocating for it.
func DecodeLimit(r io.Reader, maxPixels int) (*Frame, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("decode image: empty %dx%d image", cfg.Width, cfg.Height)
	}
	if cfg.Width > maxPixels/cfg.Height {
		return nil, fmt.Errorf("%dx%d: %w", cfg.Width, cfg.Height, ErrTooLarge)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return FromImage(img), nil
}

func (f *Frame) offset(x, y int) int {
	return (y*f.Width + x) * channels
}

func (f *Frame) RGB(x, y int) (r, g, b uint8) {
	i := f.offset(x, y)
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

func (f *Frame) SetRGB(x, y int, r, g, b uint8) {
	i := f.offset(x, y)
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
}

// Luma is the perceptual brightness of a pixel: 0.299R + 0.587G + 0.114B.
func (f *Frame) Luma(x, y int) float64 {
	r, g, b := f.RGB(x, y)
	return Luma(r, g, b)
}

func Luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// Contrast is the summed absolute per-channel difference between two pixels.
func (f *Frame) Contrast(x1, y1, x2, y2 int) int {
	i, j := f.offset(x1, y1), f.offset(x2, y2)
	return absDiff(f.Pix[i], f.Pix[j]) + absDiff(f.Pix[i+1], f.Pix[j+1]) + absDiff(f.Pix[i+2], f.Pix[j+2])
}

// GradientSum adds up the horizontal contrast between each sampled pixel and
// the pixel stride positions to its right, sampling every stride-th row and column.
func (f *Frame) GradientSum(stride int) int {
	if stride < 1 {
		stride = 1
	}
	total := 0
	for y := 0; y < f.Height; y += stride {
		for x := 0; x+stride < f.Width; x += stride {
			total += f.Contrast(x, y, x+stride, y)
		}
	}
	return total
}

func (f *Frame) Clone() *Frame {
	pix := make([]uint8, len(f.Pix))
	copy(pix, f.Pix)
	return &Frame{Width: f.Width, Height: f.Height, Pix: pix}
}

// image.Image implementation, so frames can be scaled and encoded directly.

func (f *Frame) ColorModel() color.Model { return color.RGBAModel }

func (f *Frame) Bounds() image.Rectangle { return image.Rect(0, 0, f.Width, f.Height) }

func (f *Frame) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return color.RGBA{}
	}
	r, g, b := f.RGB(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
