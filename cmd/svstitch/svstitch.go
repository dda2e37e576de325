package main

// svstitch replays recorded rig footage through the stitch pipeline
// and writes the composites out as PNGs. Give it one directory of
// frames per camera, in rig order (front, left, rear, right).
//
//   svstitch -config rig.yaml footage/front footage/left footage/rear footage/right

import(
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/GKT-github/surroundview/pkg/svcalib"
	"github.com/GKT-github/surroundview/pkg/svframe"
	"github.com/GKT-github/surroundview/pkg/svsource"
	"github.com/GKT-github/surroundview/pkg/svstitch"
)

var(
	fVerbosity int
	fConfig string
	fWarper string
	fBlender string
	fCycles int
	fLoop bool
	fOutPrefix string
	fDumpGeometry bool
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fConfig, "config", "svstitch.yaml", "rig configuration file")
	flag.StringVar(&fWarper, "warper", "", "override the configured warper: spherical|homography")
	flag.StringVar(&fBlender, "blender", "", "override the configured blender: alpha|multiband")
	flag.IntVar(&fCycles, "cycles", 0, "how many cycles to stitch (0 = until footage runs out)")
	flag.BoolVar(&fLoop, "loop", false, "loop the footage instead of stopping at the end")
	flag.StringVar(&fOutPrefix, "out", "composite", "output filename prefix")
	flag.BoolVar(&fDumpGeometry, "dumpgeometry", false, "write mask/warp debug images after init")
	flag.Parse()

	log.Printf("svstitch starting\n")
}

func main() {
	cfg, err := svstitch.LoadConfig(fConfig)
	if err != nil {
		log.Fatal(err)
	}
	cfg.Verbosity = fVerbosity
	if fWarper != "" {
		cfg.Stitcher.Warper = fWarper
	}
	if fBlender != "" {
		cfg.Stitcher.Blender = fBlender
	}
	if err := cfg.FinalizeConfiguration(); err != nil {
		log.Fatal(err)
	}
	if cfg.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", cfg.AsYaml())
	}

	dirs := flag.Args()
	if len(dirs) != cfg.Camera.Count {
		log.Fatalf("rig has %d cameras, but %d footage dirs given", cfg.Camera.Count, len(dirs))
	}

	src, err := svsource.NewFileSource(dirs, fLoop)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	cals, err := loadCalibration(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	sample, err := svsource.AcquireSampleSet(ctx, src, cfg.Stitcher.SampleAttempts, 100*time.Millisecond)
	if err != nil {
		log.Fatal(err)
	}

	p := svstitch.NewPipeline(cfg)
	if err := p.Init(cals, sample); err != nil {
		log.Fatal(err)
	}
	if fDumpGeometry {
		p.DumpGeometry()
	}

	// The sample set is real footage, so stitch it too rather than
	// dropping the first cycle on the floor.
	fs, ferr := sample, error(nil)
	for i:=0; fCycles == 0 || i < fCycles; i++ {
		if ferr != nil {
			log.Printf("%v; done after %d cycles", ferr, i)
			break
		}

		composite, err := p.Stitch(fs)
		if err != nil {
			log.Printf("cycle %d: %v", i, err)
		} else {
			filename := fmt.Sprintf("%s-%04d.png", fOutPrefix, i)
			if err := svframe.WritePNG(composite.ToImage(), filename); err != nil {
				log.Fatal(err)
			}
			if cfg.Verbosity > 0 {
				log.Printf("cycle %d -> %s", i, filename)
			}
		}

		fs, ferr = src.Capture(ctx)
	}

	h := p.Latencies()
	log.Printf("stitched %d cycles; latency p50=%.1fms p95=%.1fms p99=%.1fms max=%.1fms",
		p.Cycles(),
		float64(h.ValueAtQuantile(50))/1000.0,
		float64(h.ValueAtQuantile(95))/1000.0,
		float64(h.ValueAtQuantile(99))/1000.0,
		float64(h.Max())/1000.0)
}

func loadCalibration(cfg svstitch.Config) ([]svcalib.CameraCalibration, error) {
	switch cfg.Stitcher.Warper {
	case "homography":
		cals, scale, err := svcalib.LoadHomographyPoints(cfg.Calibration.PointsFile, cfg.Camera.Count)
		if err != nil {
			return nil, err
		}
		if scale != cfg.Stitcher.ScaleFactor {
			log.Printf("points file was calibrated at scale %.2f, config says %.2f", scale, cfg.Stitcher.ScaleFactor)
		}
		return cals, nil
	default:
		return svcalib.LoadFolder(cfg.Calibration.Folder, cfg.Camera.Count)
	}
}
