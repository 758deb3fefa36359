package main

// Develops a raw sensor dump into a viewable image. The mosaic comes
// in as a 16-bit grayscale TIFF (or PNG) straight from an external
// raw decoder, with the calibration metadata in a YAML sidecar.

import(
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"

	_ "golang.org/x/image/tiff"
	"gopkg.in/yaml.v2"

	"github.com/abworrall/go-rawdev/pkg/demosaic"
	"github.com/abworrall/go-rawdev/pkg/rawdev"
)

var(
	fMeta      string
	fSettings  string
	fOutput    string
	fHistogram string
	fHDR       string
	fPreview   string
)

func init() {
	flag.StringVar(&fMeta, "meta", "", "YAML sidecar describing the sensor (required)")
	flag.StringVar(&fSettings, "settings", "", "YAML development settings; empty means the full default pipeline")
	flag.StringVar(&fOutput, "o", "developed.tif", "output TIFF")
	flag.StringVar(&fHistogram, "histogram", "", "also write a channel histogram PNG here")
	flag.StringVar(&fHDR, "hdr", "", "also write a Radiance .hdr here (use settings without toneencode)")
	flag.StringVar(&fPreview, "preview", "", "also write a small preview PNG here")
	flag.Parse()

	log.Printf("rawdev-develop starting\n")
}

// The YAML sidecar. Levels and white balance are scalars or
// per-channel lists; the color matrix is the XYZ->camera D65 rows,
// flattened.
type sensorMeta struct {
	Make, Model    string
	BayerPattern   string    // e.g. "RGGB"; empty plus XTrans=false means monochrome
	XTrans         bool
	BlackLevels    []float32
	WhiteLevels    []float32
	WBCoeffs       []float32
	ColorMatrixD65 []float64
	ActiveArea     []int     // x0 y0 x1 y1
	CropArea       []int
}

func loadSensor(mosaicFilename, metaFilename string) (*rawdev.SensorImage, error) {
	contents, err := os.ReadFile(metaFilename)
	if err != nil {
		return nil, fmt.Errorf("meta read '%s': %v", metaFilename, err)
	}
	meta := sensorMeta{}
	if err := yaml.Unmarshal(contents, &meta); err != nil {
		return nil, fmt.Errorf("meta parse '%s': %v", metaFilename, err)
	}

	reader, err := os.Open(mosaicFilename)
	if err != nil {
		return nil, fmt.Errorf("open+r '%s': %v", mosaicFilename, err)
	}
	defer reader.Close()
	img, _, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("mosaic decode '%s': %v", mosaicFilename, err)
	}

	b := img.Bounds()
	s := &rawdev.SensorImage{
		Make: meta.Make, Model: meta.Model,
		Width: b.Dx(), Height: b.Dy(),
		Components: 1,
		Data: make([]float32, b.Dx()*b.Dy()),
	}

	for y:=0; y<s.Height; y++ {
		for x:=0; x<s.Width; x++ {
			r, _, _, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			s.Data[y*s.Width + x] = float32(r)
		}
	}

	switch {
	case meta.XTrans:
		s.CFA = demosaic.NewXTransCFA()
	case meta.BayerPattern != "":
		if s.CFA, err = demosaic.NewBayerCFA(meta.BayerPattern); err != nil {
			return nil, err
		}
	}

	spread(&s.BlackLevels, meta.BlackLevels, 0)
	spread(&s.WhiteLevels, meta.WhiteLevels, rawdev.WhiteCeiling)
	spread(&s.WBCoeffs, meta.WBCoeffs, 1)

	if len(meta.ColorMatrixD65) > 0 {
		s.ColorMatrices = map[rawdev.Illuminant][]float64{
			rawdev.IllumD65: meta.ColorMatrixD65,
		}
	}
	if len(meta.ActiveArea) == 4 {
		a := meta.ActiveArea
		s.ActiveArea = image.Rect(a[0], a[1], a[2], a[3])
	}
	if len(meta.CropArea) == 4 {
		a := meta.CropArea
		crop := image.Rect(a[0], a[1], a[2], a[3])
		s.CropArea = &crop
	}

	return s, nil
}

// spread fills the 4-channel level array from a scalar, a full list,
// or the fallback.
func spread(dst *[4]float32, src []float32, fallback float32) {
	for i:=0; i<4; i++ {
		switch {
		case i < len(src):   dst[i] = src[i]
		case len(src) == 1:  dst[i] = src[0]
		default:             dst[i] = fallback
		}
	}
}

func writePNG(filename string, img image.Image) {
	writer, err := os.Create(filename)
	if err != nil {
		log.Fatalf("open+w '%s': %v", filename, err)
	}
	defer writer.Close()
	if err := png.Encode(writer, img); err != nil {
		log.Fatalf("png encode '%s': %v", filename, err)
	}
}

func main() {
	if flag.NArg() != 1 || fMeta == "" {
		log.Fatal("usage: rawdev-develop -meta sensor.yaml [flags] mosaic.tif")
	}

	settings := rawdev.DefaultSettings()
	if fSettings != "" {
		var err error
		if settings, err = rawdev.LoadSettings(fSettings); err != nil {
			log.Fatal(err)
		}
	}

	developer, err := rawdev.NewDeveloper(settings)
	if err != nil {
		log.Fatal(err)
	}

	sensor, err := loadSensor(flag.Arg(0), fMeta)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %s", sensor)

	im, err := developer.Develop(sensor, nil)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("developed to %s", im)

	writer, err := os.Create(fOutput)
	if err != nil {
		log.Fatalf("open+w '%s': %v", fOutput, err)
	}
	if err := rawdev.WriteTIFF(writer, im, sensor); err != nil {
		log.Fatalf("tiff write '%s': %v", fOutput, err)
	}
	writer.Close()
	log.Printf("wrote %s", fOutput)

	if fHistogram != "" {
		names := []string{"red", "green", "blue", "luma"}
		for i, h := range rawdev.Levels(im) {
			log.Printf("%5s levels: %v", names[i], h)
		}
		writePNG(fHistogram, rawdev.RenderLevels(im, fmt.Sprintf("%s %s", sensor.Make, sensor.Model)))
		log.Printf("wrote %s", fHistogram)
	}

	if fHDR != "" {
		li, err := rawdev.NewLinearImage(im)
		if err != nil {
			log.Fatal(err)
		}
		if err := li.WriteToHDR(fHDR); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", fHDR)
	}

	if fPreview != "" {
		preview, err := developer.DevelopPreview(sensor, nil, 640, 480)
		if err != nil {
			log.Fatal(err)
		}
		writePNG(fPreview, preview)
		log.Printf("wrote %s", fPreview)
	}
}
