package svcalib

// Optional output-crop document (corner_warppts.yaml): four corners
// in canvas space plus the final output resolution. When present, the
// blended canvas gets perspective-warped so those corners land on the
// output rectangle. Absent file just means "no crop".

import(
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/GKT-github/surroundview/pkg/svmath"
)

type OutputCrop struct {
	Width   int
	Height  int
	TL, TR  svmath.Point2
	BL, BR  svmath.Point2
}

type cropDoc struct {
	ResSize [2]int     `yaml:"res_size"`
	TL      [2]float64 `yaml:"tl"`
	TR      [2]float64 `yaml:"tr"`
	BL      [2]float64 `yaml:"bl"`
	BR      [2]float64 `yaml:"br"`
}

// LoadOutputCrop reads the crop document. A missing file is reported
// via found=false, not an error; malformed content is an error.
func LoadOutputCrop(filename string) (crop OutputCrop, found bool, err error) {
	contents, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return OutputCrop{}, false, nil
	}
	if err != nil {
		return OutputCrop{}, false, fmt.Errorf("crop read '%s': %v", filename, err)
	}

	doc := cropDoc{}
	if err := yaml.Unmarshal(contents, &doc); err != nil {
		return OutputCrop{}, false, fmt.Errorf("crop parse '%s': %v", filename, err)
	}
	if doc.ResSize[0] <= 0 || doc.ResSize[1] <= 0 {
		return OutputCrop{}, false, fmt.Errorf("'%s': bad res_size %v", filename, doc.ResSize)
	}

	return OutputCrop{
		Width:  doc.ResSize[0],
		Height: doc.ResSize[1],
		TL:     svmath.Point2{X: doc.TL[0], Y: doc.TL[1]},
		TR:     svmath.Point2{X: doc.TR[0], Y: doc.TR[1]},
		BL:     svmath.Point2{X: doc.BL[0], Y: doc.BL[1]},
		BR:     svmath.Point2{X: doc.BR[0], Y: doc.BR[1]},
	}, true, nil
}

// SaveOutputCrop writes the crop document; the generator command uses
// this to emit a full-frame default.
func SaveOutputCrop(filename string, crop OutputCrop) error {
	doc := cropDoc{
		ResSize: [2]int{crop.Width, crop.Height},
		TL:      [2]float64{crop.TL.X, crop.TL.Y},
		TR:      [2]float64{crop.TR.X, crop.TR.Y},
		BL:      [2]float64{crop.BL.X, crop.BL.Y},
		BR:      [2]float64{crop.BR.X, crop.BR.Y},
	}
	b, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("crop marshal: %v", err)
	}
	return os.WriteFile(filename, b, 0644)
}
