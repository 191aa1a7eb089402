package preview_test

import (
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"go.viam.com/locomotion/config"
	"go.viam.com/locomotion/preview"
	"go.viam.com/locomotion/testutils"
)

func TestConfigValidate(t *testing.T) {
	cfg := preview.DefaultConfig()
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	cfg = preview.Config{SampleTime: -1, StepHeight: -1, ForceThreshold: -1}
	err := cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	for _, field := range []string{"sample_time", "step_height", "force_threshold", "workers"} {
		test.That(t, err.Error(), test.ShouldContainSubstring, field)
	}
}

func TestConfigFromAttributes(t *testing.T) {
	logger, logs := golog.NewObservedTestLogger(t)

	cfg, err := preview.ConfigFromAttributes(config.AttributeMap{
		"sample_time": 0.005,
		"workers":     4,
		"color":       "red",
	}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg, test.ShouldResemble, preview.Config{
		SampleTime:     0.005,
		StepHeight:     preview.DefaultStepHeight,
		ForceThreshold: preview.DefaultForceThreshold,
		Workers:        4,
	})
	test.That(t, logs.FilterMessageSnippet("ignoring unknown preview config attributes").Len(), test.ShouldEqual, 1)

	_, err = preview.ConfigFromAttributes(config.AttributeMap{"step_height": -0.1}, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReadConfig(t *testing.T) {
	logger := golog.NewTestLogger(t)
	path := testutils.WriteTempFile(t, "preview.yaml", "sample_time: 0.002\nstep_height: 0.15\nforce_threshold: 20\n")

	cfg, err := preview.ReadConfig(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg, test.ShouldResemble, preview.Config{
		SampleTime:     0.002,
		StepHeight:     0.15,
		ForceThreshold: 20,
		Workers:        preview.DefaultWorkers,
	})

	t.Setenv("PREVIEW_SAMPLE_TIME", "0.02")
	path = testutils.WriteTempFile(t, "env.yaml", "sample_time: ${PREVIEW_SAMPLE_TIME}\n")
	cfg, err = preview.ReadConfig(path, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.SampleTime, test.ShouldEqual, 0.02)
}
