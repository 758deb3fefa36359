package rawdev

import(
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeveloperDefaults(t *testing.T) {
	d, err := NewDeveloper(Settings{})
	require.NoError(t, err)

	for step := Step(0); step < numSteps; step++ {
		assert.True(t, d.Has(step), "default pipeline should include %s", step)
	}
	assert.Equal(t, Quality, d.Algorithm())
}

func TestNewDeveloperStepSubset(t *testing.T) {
	d, err := NewDeveloper(Settings{Steps: []string{"demosaic", "Calibrate", " toneencode "}})
	require.NoError(t, err)

	assert.True(t, d.Has(StepDemosaic))
	assert.True(t, d.Has(StepCalibrate))
	assert.True(t, d.Has(StepToneEncode))
	assert.False(t, d.Has(StepRescale))
	assert.False(t, d.Has(StepWhiteBalance))
}

func TestNewDeveloperRejectsBadConfig(t *testing.T) {
	_, err := NewDeveloper(Settings{Steps: []string{"sharpen"}})
	assert.Error(t, err)

	// whitebalance without calibrate leaves gains nowhere to apply
	_, err = NewDeveloper(Settings{Steps: []string{"demosaic", "whitebalance"}})
	assert.Error(t, err)

	_, err = NewDeveloper(Settings{DemosaicAlgorithm: "turbo"})
	assert.Error(t, err)
}

func TestLoadSettings(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "settings.yaml")
	contents := `
steps: [demosaic, calibrate]
demosaicalgorithm: speed
highlightcompressionpoint: 1.8
denoisechroma: true
`
	require.NoError(t, os.WriteFile(filename, []byte(contents), 0644))

	s, err := LoadSettings(filename)
	require.NoError(t, err)
	assert.Equal(t, []string{"demosaic", "calibrate"}, s.Steps)
	assert.Equal(t, "speed", s.DemosaicAlgorithm)
	assert.Equal(t, 1.8, s.HighlightCompressionPoint)
	assert.True(t, s.DenoiseChroma)

	d, err := NewDeveloper(s)
	require.NoError(t, err)
	assert.Equal(t, Speed, d.Algorithm())

	_, err = LoadSettings(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	assert.Error(t, err)
}

func TestSettingsYamlRoundTrip(t *testing.T) {
	s := DefaultSettings()
	s.DenoiseChroma = true

	filename := filepath.Join(t.TempDir(), "rt.yaml")
	require.NoError(t, os.WriteFile(filename, []byte(s.AsYaml()), 0644))

	s2, err := LoadSettings(filename)
	require.NoError(t, err)
	assert.Equal(t, s, s2)
}
