package svcalib

// Calibration file formats. Spherical rigs keep one Camparam<i>.yaml
// per camera (FocalLength scalar, 3x3 "Intrisic" - the key keeps its
// historical spelling - and 3x3 Rotation). Manually calibrated rigs
// keep a single custom_homography_points.yaml caching the four-point
// correspondences so the interactive selection step can be skipped.

import(
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/GKT-github/surroundview/pkg/svmath"
)

type camparamDoc struct {
	Name        string        `yaml:"name"`
	FocalLength float64       `yaml:"focallength"`
	Intrisic    [][]float64   `yaml:"intrisic"`
	Rotation    [][]float64   `yaml:"rotation"`
}

type homographyDoc struct {
	NumCameras  int           `yaml:"num_cameras"`
	ScaleFactor float64       `yaml:"scale_factor"`
	Cameras     []pointsEntry `yaml:"cameras"`
}

type pointsEntry struct {
	Name string       `yaml:"name"`
	Src  [][2]float64 `yaml:"src"`
	Dst  [][2]float64 `yaml:"dst"`
}

// CamparamFilename is the per-camera calibration filename convention.
func CamparamFilename(i int) string {
	return fmt.Sprintf("Camparam%d.yaml", i)
}

// LoadFolder reads Camparam0.yaml .. Camparam<n-1>.yaml from a
// calibration folder. Any missing or malformed file is fatal; partial
// rigs can't be stitched.
func LoadFolder(folder string, numCameras int) ([]CameraCalibration, error) {
	cals := make([]CameraCalibration, numCameras)

	for i:=0; i<numCameras; i++ {
		filename := filepath.Join(folder, CamparamFilename(i))
		cal, err := loadCamparam(filename)
		if err != nil {
			return nil, fmt.Errorf("camera %d: %w", i, err)
		}
		if cal.Name == "" && i < len(DefaultRoles) {
			cal.Name = DefaultRoles[i]
		}
		if err := cal.Validate(); err != nil {
			return nil, fmt.Errorf("'%s': %w", filename, err)
		}
		cals[i] = cal
	}

	return cals, nil
}

func loadCamparam(filename string) (CameraCalibration, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return CameraCalibration{}, fmt.Errorf("calibration read '%s': %v", filename, err)
	}

	doc := camparamDoc{}
	if err := yaml.Unmarshal(contents, &doc); err != nil {
		return CameraCalibration{}, fmt.Errorf("calibration parse '%s': %v", filename, err)
	}

	cal := CameraCalibration{
		Name:        doc.Name,
		FocalLength: doc.FocalLength,
	}

	if cal.Intrinsic, err = toMat3(doc.Intrisic); err != nil {
		return cal, fmt.Errorf("'%s' Intrisic: %v", filename, err)
	}
	if cal.Rotation, err = toMat3(doc.Rotation); err != nil {
		return cal, fmt.Errorf("'%s' Rotation: %v", filename, err)
	}

	return cal, nil
}

// LoadHomographyPoints reads the cached manual-calibration document.
// Wrong camera count or a camera without exactly four point pairs is
// fatal.
func LoadHomographyPoints(filename string, numCameras int) ([]CameraCalibration, float64, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return nil, 0, fmt.Errorf("points read '%s': %v", filename, err)
	}

	doc := homographyDoc{}
	if err := yaml.Unmarshal(contents, &doc); err != nil {
		return nil, 0, fmt.Errorf("points parse '%s': %v", filename, err)
	}

	if doc.NumCameras != numCameras || len(doc.Cameras) != numCameras {
		return nil, 0, fmt.Errorf("'%s': has %d cameras (header %d), rig needs %d",
			filename, len(doc.Cameras), doc.NumCameras, numCameras)
	}

	cals := make([]CameraCalibration, numCameras)
	for i, entry := range doc.Cameras {
		cal := CameraCalibration{Name: entry.Name}
		if cal.Name == "" && i < len(DefaultRoles) {
			cal.Name = DefaultRoles[i]
		}
		cal.SrcPoints = toPoints(entry.Src)
		cal.DstPoints = toPoints(entry.Dst)
		if err := cal.Validate(); err != nil {
			return nil, 0, fmt.Errorf("'%s': %w", filename, err)
		}
		cals[i] = cal
	}

	return cals, doc.ScaleFactor, nil
}

// SaveHomographyPoints writes the manual-calibration cache, so the
// next run skips interactive point selection.
func SaveHomographyPoints(filename string, cals []CameraCalibration, scaleFactor float64) error {
	doc := homographyDoc{
		NumCameras:  len(cals),
		ScaleFactor: scaleFactor,
	}
	for _, cal := range cals {
		doc.Cameras = append(doc.Cameras, pointsEntry{
			Name: cal.Name,
			Src:  fromPoints(cal.SrcPoints),
			Dst:  fromPoints(cal.DstPoints),
		})
	}

	b, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("points marshal: %v", err)
	}
	return os.WriteFile(filename, b, 0644)
}

// SaveCamparam writes one spherical calibration file; the generator
// command uses this.
func SaveCamparam(filename string, cal CameraCalibration) error {
	doc := camparamDoc{
		Name:        cal.Name,
		FocalLength: cal.FocalLength,
		Intrisic:    fromMat3(cal.Intrinsic),
		Rotation:    fromMat3(cal.Rotation),
	}
	b, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("camparam marshal: %v", err)
	}
	return os.WriteFile(filename, b, 0644)
}

func toMat3(rows [][]float64) (svmath.Mat3, error) {
	m := svmath.Mat3{}
	if len(rows) != 3 {
		return m, fmt.Errorf("need 3 rows, have %d", len(rows))
	}
	for r:=0; r<3; r++ {
		if len(rows[r]) != 3 {
			return m, fmt.Errorf("row %d: need 3 values, have %d", r, len(rows[r]))
		}
		for c:=0; c<3; c++ {
			m[3*r+c] = rows[r][c]
		}
	}
	return m, nil
}

func fromMat3(m svmath.Mat3) [][]float64 {
	return [][]float64{
		{m[0], m[1], m[2]},
		{m[3], m[4], m[5]},
		{m[6], m[7], m[8]},
	}
}

func toPoints(pairs [][2]float64) []svmath.Point2 {
	pts := make([]svmath.Point2, len(pairs))
	for i, p := range pairs {
		pts[i] = svmath.Point2{X: p[0], Y: p[1]}
	}
	return pts
}

func fromPoints(pts []svmath.Point2) [][2]float64 {
	pairs := make([][2]float64, len(pts))
	for i, p := range pts {
		pairs[i] = [2]float64{p.X, p.Y}
	}
	return pairs
}
