package rawdev

import(
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

/* Example settings file ...

steps: [rescale, demosaic, cropactivearea, whitebalance, calibrate, cropdefault, toneencode]
demosaicalgorithm: quality
highlightcompressionpoint: 2.2
denoisechroma: true

*/

// The pipeline steps, in the one canonical execution order. Callers
// pick a subset; they can't reorder.
type Step int

const (
	StepRescale Step = iota
	StepDemosaic
	StepCropActiveArea
	StepWhiteBalance
	StepCalibrate
	StepCropDefault
	StepToneEncode
	numSteps
)

var stepNames = map[string]Step{
	"rescale":        StepRescale,
	"demosaic":       StepDemosaic,
	"cropactivearea": StepCropActiveArea,
	"whitebalance":   StepWhiteBalance,
	"calibrate":      StepCalibrate,
	"cropdefault":    StepCropDefault,
	"toneencode":     StepToneEncode,
}

func (s Step)String() string {
	for name, step := range stepNames {
		if step == s {
			return name
		}
	}
	return fmt.Sprintf("step(%d)", int(s))
}

type DemosaicAlgorithm int

const (
	Quality DemosaicAlgorithm = iota // full resolution
	Speed                            // superpixel binning, half resolution each axis
)

type Settings struct {
	Steps                     []string // empty means the full pipeline
	DemosaicAlgorithm         string   // "quality" (default) or "speed"
	HighlightCompressionPoint float64  // > 1.0; 0 means the default
	DenoiseChroma             bool     // run the chroma denoise pass after development
}

func DefaultSettings() Settings {
	return Settings{
		Steps: []string{
			"rescale", "demosaic", "cropactivearea", "whitebalance",
			"calibrate", "cropdefault", "toneencode",
		},
	}
}

func LoadSettings(filename string) (Settings, error) {
	s := DefaultSettings()

	contents, err := os.ReadFile(filename)
	if err != nil {
		return s, fmt.Errorf("settings read '%s': %v", filename, err)
	}
	if err := yaml.Unmarshal(contents, &s); err != nil {
		return s, fmt.Errorf("settings parse '%s': %v", filename, err)
	}

	return s, nil
}

func (s Settings)AsYaml() string {
	b, _ := yaml.Marshal(s)
	return string(b)
}

// A Developer is a validated, immutable pipeline configuration. All
// the step / algorithm / parameter sanity checking happens here, once,
// so Develop itself never trips over an illegal combination.
type Developer struct {
	steps            [numSteps]bool
	algorithm        DemosaicAlgorithm
	compressionPoint float32
	denoiseChroma    bool
}

func NewDeveloper(s Settings) (*Developer, error) {
	d := &Developer{}

	if len(s.Steps) == 0 {
		s.Steps = DefaultSettings().Steps
	}
	for _, name := range s.Steps {
		step, exists := stepNames[strings.ToLower(strings.TrimSpace(name))]
		if !exists {
			return nil, fmt.Errorf("no pipeline step named '%s'", name)
		}
		d.steps[step] = true // dupes collapse here
	}

	if d.steps[StepWhiteBalance] && !d.steps[StepCalibrate] {
		return nil, fmt.Errorf("step whitebalance requires step calibrate")
	}

	switch strings.ToLower(s.DemosaicAlgorithm) {
	case "", "quality": d.algorithm = Quality
	case "speed":       d.algorithm = Speed
	default:
		return nil, fmt.Errorf("no demosaic algorithm named '%s'", s.DemosaicAlgorithm)
	}

	switch {
	case s.HighlightCompressionPoint == 0:
		d.compressionPoint = defaultCompressionPoint
	case s.HighlightCompressionPoint > 1.0:
		d.compressionPoint = float32(s.HighlightCompressionPoint)
	default:
		return nil, fmt.Errorf("highlight compression point %v must be > 1.0", s.HighlightCompressionPoint)
	}

	d.denoiseChroma = s.DenoiseChroma

	return d, nil
}

func (d *Developer)Has(step Step) bool { return step >= 0 && step < numSteps && d.steps[step] }

func (d *Developer)Algorithm() DemosaicAlgorithm { return d.algorithm }
