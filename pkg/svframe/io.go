package svframe

// File loading for offline runs and tests. The live system gets its
// frames from the capture collaborator; this path exists so recorded
// frames can be replayed through the stitcher.

import(
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

// LoadFile reads a .png or .tif frame from disk.
func LoadFile(filename string) (*Frame, error) {
	reader, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open+r '%s': %v", filename, err)
	}
	defer reader.Close()

	var img image.Image
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		img, err = png.Decode(reader)
	case ".tif", ".tiff":
		img, err = tiff.Decode(reader)
	default:
		return nil, fmt.Errorf("'%s': unsupported frame format", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("decode '%s': %v", filename, err)
	}

	return FromImage(img), nil
}

func WritePNG(img image.Image, filename string) error {
	writer, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	}
	defer writer.Close()
	return png.Encode(writer, img)
}
