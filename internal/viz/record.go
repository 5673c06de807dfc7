package viz

import (
	"image"
	"image/color"
	"image/gif"
	"os"
)

const (
	charW = 8
	charH = 16
)

// Recorder collects canvas snapshots and writes them as an animated GIF.
type Recorder struct {
	path   string
	frames []*image.Paletted
}

func NewRecorder(path string) *Recorder {
	return &Recorder{path: path}
}

func (r *Recorder) Len() int     { return len(r.frames) }
func (r *Recorder) Path() string { return r.path }

// Capture rasterizes every braille dot of c as a charW/2 x charH/4 block.
func (r *Recorder) Capture(c *Canvas) {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), color.Palette{color.Black, color.White})
	dotW, dotH := charW/2, charH/4
	for y := 0; y < c.DotHeight(); y++ {
		for x := 0; x < c.DotWidth(); x++ {
			if !c.IsSet(x, y) {
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

// Save writes the collected frames and clears them. It is a no-op without
// frames.
func (r *Recorder) Save() error {
	if len(r.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(r.path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return err
	}
	r.frames = nil
	return nil
}
