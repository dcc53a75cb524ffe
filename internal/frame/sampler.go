package frame

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// DefaultSampleWidth is the width live frames are reduced to before analysis.
const DefaultSampleWidth = 320

// Sampler downsamples frames to a fixed width, keeping the aspect ratio.
type Sampler struct {
	Width int
}

func NewSampler(width int) Sampler {
	if width <= 0 {
		width = DefaultSampleWidth
	}
	return Sampler{Width: width}
}

// Sample returns a new frame Width pixels wide and floor(h*Width/w) tall.
func (s Sampler) Sample(f *Frame) *Frame {
	width := s.Width
	if width <= 0 {
		width = DefaultSampleWidth
	}
	if f.Width == 0 || f.Height == 0 {
		return New(0, 0)
	}
	height := f.Height * width / f.Width
	if height < 1 {
		height = 1
	}
	if width == f.Width && height == f.Height {
		return f.Clone()
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), f, f.Bounds(), xdraw.Src, nil)
	return fromRGBA(dst)
}
