package text

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/math/fixed"
)

// RenderImage renders s on a new image just large enough for its ink and
// advance, plus pad pixels on every side.
func (r *Renderer) RenderImage(face Face, s string, fg, bg color.Color, pad int) (*image.RGBA, error) {
	adv, ink, err := r.Measure(face, s)
	if err != nil {
		return nil, err
	}

	area := ink.Union(image.Rect(0, 0, adv.Ceil(), 1)).Inset(-pad)
	img := image.NewRGBA(image.Rect(0, 0, area.Dx(), area.Dy()))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	dot := fixed.P(-area.Min.X, -area.Min.Y)
	if err := r.Draw(img, face, s, dot, image.NewUniform(fg)); err != nil {
		return nil, err
	}
	return img, nil
}
