package viz

import (
	"image"
	"image/color"
	"image/gif"
	"os"
)

const recordingPath = "broadphase.gif"

// recorder rasterizes canvas frames into a two-color GIF.
type recorder struct {
	frames []*image.Paletted
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = &recorder{}
		return
	}
	m.recording = false
	if err := m.frames.save(recordingPath); err != nil {
		m.err = err
	}
	m.frames = nil
}

func (r *recorder) capture(c *Canvas) {
	const charW, charH = 8, 16
	dotW, dotH := charW/2, charH/4
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), color.Palette{color.Black, color.White})

	cw, ch := c.Dots()
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			if !c.Lit(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *recorder) save(path string) error {
	if len(r.frames) == 0 {
		return nil
	}
	anim := gif.GIF{}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 100/frameRate)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
