package svstitch

import(
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

/* Example config file ...

verbosity: 1

stitcher:
  warper: spherical
  blender: multiband
  blendbands: 5
  scalefactor: 0.65
  gaincompensation: true
  gainupdateinterval: 30
  fadewidth: 40

camera:
  count: 4
  width: 1280
  height: 800

canvas:
  width: 640
  height: 800

calibration:
  folder: ../camparameters
  pointsfile: ""
  cropfile: ""

*/

type StitcherOptions struct {
	Warper             string  // "spherical" or "homography"
	Blender            string  // "multiband" or "alpha"
	BlendBands         int     // multiband only; fewer bands = faster
	ScaleFactor        float64 // processing resolution vs camera resolution
	GainCompensation   bool
	GainUpdateInterval int     // in completed stitch cycles
	FadeWidth          int     // px, diagonal-seam fade zone
	SampleAttempts     int     // bounded wait for the init frame set
}

type CameraOptions struct {
	Count  int
	Width  int
	Height int
}

type CanvasOptions struct {
	Width  int
	Height int
}

type CalibrationOptions struct {
	Folder     string // Camparam<i>.yaml files (spherical)
	PointsFile string // cached manual correspondences (homography)
	CropFile   string // optional corner_warppts.yaml
}

type Config struct {
	Verbosity   int
	Stitcher    StitcherOptions
	Camera      CameraOptions
	Canvas      CanvasOptions
	Calibration CalibrationOptions
}

func NewConfig() Config {
	return Config{
		Stitcher: StitcherOptions{
			Warper:             "spherical",
			Blender:            "multiband",
			BlendBands:         5,
			ScaleFactor:        0.65,
			GainCompensation:   true,
			GainUpdateInterval: 30,
			FadeWidth:          40,
			SampleAttempts:     100,
		},
		Camera: CameraOptions{Count: 4, Width: 1280, Height: 800},
		Canvas: CanvasOptions{Width: 640, Height: 800},
	}
}

func LoadConfig(filename string) (Config, error) {
	c := NewConfig()

	contents, err := os.ReadFile(filename)
	if err != nil {
		return c, fmt.Errorf("config read '%s': %v: %w", filename, err, ErrConfiguration)
	}
	if err := yaml.Unmarshal(contents, &c); err != nil {
		return c, fmt.Errorf("config parse '%s': %v: %w", filename, err, ErrConfiguration)
	}

	return c, c.FinalizeConfiguration()
}

func (c Config)AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("can't marshal config: %v", err)
	}
	return string(b)
}

// FinalizeConfiguration sanity-checks and fills in anything
// derivable. Strategy names are verified here so a typo dies at init,
// not mid-run.
func (c *Config)FinalizeConfiguration() error {
	switch c.Stitcher.Warper {
	case "spherical", "homography":
	default:
		return fmt.Errorf("no warper strategy named '%s': %w", c.Stitcher.Warper, ErrConfiguration)
	}

	switch c.Stitcher.Blender {
	case "alpha", "multiband":
	default:
		return fmt.Errorf("no blender strategy named '%s': %w", c.Stitcher.Blender, ErrConfiguration)
	}

	if c.Stitcher.ScaleFactor <= 0 || c.Stitcher.ScaleFactor > 1 {
		return fmt.Errorf("scale factor %f out of (0,1]: %w", c.Stitcher.ScaleFactor, ErrConfiguration)
	}
	if c.Camera.Count < 2 {
		return fmt.Errorf("need at least 2 cameras, have %d: %w", c.Camera.Count, ErrConfiguration)
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("bad camera size %dx%d: %w", c.Camera.Width, c.Camera.Height, ErrConfiguration)
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("bad canvas size %dx%d: %w", c.Canvas.Width, c.Canvas.Height, ErrConfiguration)
	}
	if c.Stitcher.BlendBands < 1 {
		c.Stitcher.BlendBands = 1
	}
	if c.Stitcher.GainUpdateInterval < 1 {
		c.Stitcher.GainUpdateInterval = 1
	}
	if c.Stitcher.FadeWidth < 0 {
		return fmt.Errorf("fade width %d is negative: %w", c.Stitcher.FadeWidth, ErrConfiguration)
	}
	if c.Stitcher.SampleAttempts < 1 {
		c.Stitcher.SampleAttempts = 1
	}

	return nil
}

// ScaledInputSize is the processing resolution every frame is
// resampled to before warping.
func (c Config)ScaledInputSize() (int, int) {
	return int(float64(c.Camera.Width) * c.Stitcher.ScaleFactor),
		int(float64(c.Camera.Height) * c.Stitcher.ScaleFactor)
}
