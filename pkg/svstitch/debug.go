package svstitch

// Debug dumps, gated on Verbosity. Masks render as a false-colour
// heat map (blue=transparent, red=opaque) with the camera name and
// placement annotated; handy when a seam lands somewhere surprising.

import(
	"fmt"
	"image"
	"log"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
)

// DumpMaskImage writes one camera's blend mask as an annotated PNG.
func DumpMaskImage(bm *BlendMask, name, filename string) error {
	img := image.NewRGBA(image.Rect(0, 0, bm.W, bm.H))

	for y:=0; y<bm.H; y++ {
		for x:=0; x<bm.W; x++ {
			// Hue 240 (blue) at weight 0 down to 0 (red) at weight 255.
			t := float64(bm.At(x, y)) / 255.0
			c := colorful.Hsv(240.0*(1.0-t), 1.0, 0.9)
			r, g, b := c.RGB255()
			i := img.PixOffset(x, y)
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = r, g, b, 0xff
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1, 1, 1)
	dc.DrawString(fmt.Sprintf("%s mask %dx%d at %v", name, bm.W, bm.H, bm.Corner), 10, 16)
	return dc.SavePNG(filename)
}

// DumpGeometry writes the initialized pipeline's masks and warp grids
// to the current directory.
func (p *Pipeline)DumpGeometry() {
	names := make([]string, len(p.cals))
	for i := range p.cals {
		names[i] = p.CameraName(i)
	}
	DumpGeometry(p.warps, p.masks, names)
}

func DumpGeometry(warps []*WarpMap, masks []*BlendMask, names []string) {
	for i := range warps {
		name := fmt.Sprintf("cam%d", i)
		if i < len(names) {
			name = names[i]
		}

		if err := DumpMaskImage(masks[i], name, fmt.Sprintf("debug-mask-%02d.png", i)); err != nil {
			log.Printf("debug mask dump %d: %v", i, err)
		}
		if err := warps[i].XMap.ToImg(name+" xmap", fmt.Sprintf("debug-xmap-%02d.png", i)); err != nil {
			log.Printf("debug xmap dump %d: %v", i, err)
		}
		if err := warps[i].YMap.ToImg(name+" ymap", fmt.Sprintf("debug-ymap-%02d.png", i)); err != nil {
			log.Printf("debug ymap dump %d: %v", i, err)
		}
	}
}
