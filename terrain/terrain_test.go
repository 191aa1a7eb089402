package terrain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestFlat(t *testing.T) {
	f := Flat{Height: -0.2}
	test.That(t, f.HasTerrainData(), test.ShouldBeTrue)
	test.That(t, f.TerrainHeight(r2.Point{X: 10, Y: -3}), test.ShouldEqual, -0.2)
}

func TestSelect(t *testing.T) {
	fallback := Flat{Height: 1}
	test.That(t, Select(nil, fallback), test.ShouldResemble, fallback)

	var empty *HeightMap
	test.That(t, Select(empty, fallback), test.ShouldResemble, fallback)

	hm, err := NewHeightMap(r2.Point{}, 1, [][]float64{{0}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, Select(hm, fallback), test.ShouldEqual, hm)
}

func TestHeightMap(t *testing.T) {
	_, err := NewHeightMap(r2.Point{}, 0, [][]float64{{0}})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewHeightMap(r2.Point{}, 1, nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewHeightMap(r2.Point{}, 1, [][]float64{{0, 1}, {0}})
	test.That(t, err.Error(), test.ShouldContainSubstring, "row 1")

	hm, err := NewHeightMap(r2.Point{X: -1, Y: -1}, 0.5, [][]float64{
		{0, 0, 0},
		{0, 1, 2},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hm.HasTerrainData(), test.ShouldBeTrue)

	lo, hi := hm.Bounds()
	test.That(t, lo, test.ShouldResemble, r2.Point{X: -1, Y: -1})
	test.That(t, hi, test.ShouldResemble, r2.Point{X: 0, Y: -0.5})

	for _, tc := range []struct {
		pos      r2.Point
		expected float64
	}{
		{r2.Point{X: -1, Y: -1}, 0},
		{r2.Point{X: -0.5, Y: -0.5}, 1},
		{r2.Point{X: 0, Y: -0.5}, 2},
		{r2.Point{X: -0.25, Y: -0.5}, 1.5},
		{r2.Point{X: -0.5, Y: -0.75}, 0.5},
		{r2.Point{X: -0.25, Y: -0.75}, 0.75},
		// clamped to the edges
		{r2.Point{X: 3, Y: 3}, 2},
		{r2.Point{X: -5, Y: -0.5}, 0},
	} {
		test.That(t, hm.TerrainHeight(tc.pos), test.ShouldAlmostEqual, tc.expected)
	}
}

func TestReadHeightMap(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "terrain.yaml")
	t.Setenv("STEP_HEIGHT", "0.15")
	contents := `height_map:
  origin: [0.0, -1.0]
  resolution: 0.25
  heights:
    - [0.0, 0.0, ${STEP_HEIGHT}]
    - [0.0, 0.0, ${STEP_HEIGHT}]
`
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)

	hm, err := ReadHeightMap(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, hm.Origin, test.ShouldResemble, r2.Point{Y: -1})
	test.That(t, hm.Resolution, test.ShouldEqual, 0.25)
	test.That(t, hm.TerrainHeight(r2.Point{X: 0.5, Y: -1}), test.ShouldAlmostEqual, 0.15)

	_, err = ReadHeightMap(filepath.Join(dir, "missing.yaml"))
	test.That(t, err, test.ShouldNotBeNil)

	bad := filepath.Join(dir, "bad.yaml")
	test.That(t, os.WriteFile(bad, []byte("height_map:\n  origin: [1]\n  resolution: 1\n  heights: [[0]]\n"), 0o600), test.ShouldBeNil)
	_, err = ReadHeightMap(bad)
	test.That(t, err.Error(), test.ShouldContainSubstring, "origin")
}
