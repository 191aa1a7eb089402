package terrain

import (
	"math"

	"github.com/a8m/envsubst"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"go.viam.com/locomotion/utils"
)

// HeightMap is a regular grid of terrain heights. Heights[row][col] is the height at
// Origin + (col, row) * Resolution; heights between grid points are interpolated bilinearly and
// positions outside the grid take the height of the closest edge.
type HeightMap struct {
	Origin     r2.Point
	Resolution float64
	Heights    [][]float64
}

type heightMapFile struct {
	HeightMap struct {
		Origin     []float64   `yaml:"origin"`
		Resolution float64     `yaml:"resolution"`
		Heights    [][]float64 `yaml:"heights"`
	} `yaml:"height_map"`
}

// NewHeightMap returns a validated height map.
func NewHeightMap(origin r2.Point, resolution float64, heights [][]float64) (*HeightMap, error) {
	if resolution <= 0 {
		return nil, errors.Errorf("height map resolution must be positive, got %v", resolution)
	}
	if len(heights) == 0 || len(heights[0]) == 0 {
		return nil, errors.New("height map has no cells")
	}
	for i, row := range heights {
		if len(row) != len(heights[0]) {
			return nil, errors.Errorf("height map row %d has %d cells, expected %d", i, len(row), len(heights[0]))
		}
	}
	return &HeightMap{Origin: origin, Resolution: resolution, Heights: heights}, nil
}

// ReadHeightMap reads a height map from a YAML file of the form
//
//	height_map:
//	  origin: [x, y]
//	  resolution: r
//	  heights: [[...], ...]
//
// Environment variables in the file are expanded.
func ReadHeightMap(path string) (*HeightMap, error) {
	buf, err := envsubst.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read height map %q", path)
	}
	var f heightMapFile
	if err := yaml.Unmarshal(buf, &f); err != nil {
		return nil, errors.Wrapf(err, "cannot parse height map %q", path)
	}
	var origin r2.Point
	switch len(f.HeightMap.Origin) {
	case 0:
	case 2:
		origin = r2.Point{X: f.HeightMap.Origin[0], Y: f.HeightMap.Origin[1]}
	default:
		return nil, errors.Errorf("height map origin must have 2 elements, got %d", len(f.HeightMap.Origin))
	}
	return NewHeightMap(origin, f.HeightMap.Resolution, f.HeightMap.Heights)
}

// HasTerrainData returns whether the map has any cells.
func (hm *HeightMap) HasTerrainData() bool {
	return hm != nil && len(hm.Heights) > 0 && len(hm.Heights[0]) > 0
}

// TerrainHeight interpolates the height at pos.
func (hm *HeightMap) TerrainHeight(pos r2.Point) float64 {
	rows, cols := len(hm.Heights), len(hm.Heights[0])
	col, c0, c1 := gridCoordinate((pos.X-hm.Origin.X)/hm.Resolution, cols)
	row, r0, r1 := gridCoordinate((pos.Y-hm.Origin.Y)/hm.Resolution, rows)

	tx, ty := col-float64(c0), row-float64(r0)
	bottom := hm.Heights[r0][c0]*(1-tx) + hm.Heights[r0][c1]*tx
	top := hm.Heights[r1][c0]*(1-tx) + hm.Heights[r1][c1]*tx
	return bottom*(1-ty) + top*ty
}

// Bounds returns the lower and upper corners covered by the grid.
func (hm *HeightMap) Bounds() (r2.Point, r2.Point) {
	size := r2.Point{X: float64(len(hm.Heights[0]) - 1), Y: float64(len(hm.Heights) - 1)}
	return hm.Origin, hm.Origin.Add(size.Mul(hm.Resolution))
}

func gridCoordinate(f float64, n int) (float64, int, int) {
	f = utils.Clamp(f, 0, float64(n-1))
	i0 := int(math.Floor(f))
	i1 := i0 + 1
	if i1 > n-1 {
		i1 = n - 1
	}
	return f, i0, i1
}
