package meshstore

import (
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
)

// SaveTagPNGs writes one 16-bit grayscale PNG per z slice of voxel tag
// name, to <prefix>_<name>_<k>.png. Values are mapped linearly with
// v*scale; scale <= 0 normalises each slice by its own maximum. Rows are
// flipped so +y points up. It returns the written paths.
func (m *Mesh) SaveTagPNGs(name, prefix string, scale float64) ([]string, error) {
	t, ok := m.tags[name]
	if !ok {
		return nil, fmt.Errorf("meshstore: no voxel tag %q", name)
	}
	if dir := filepath.Dir(prefix); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	toU16 := func(v, scale float64) uint16 {
		if !(v > 0) {
			return 0
		}
		n := math.Min(v*scale, 1)
		return uint16(math.Round(n * 65535))
	}

	width := 1
	if m.nz > 1 {
		width = int(math.Log10(float64(m.nz-1))) + 1
	}

	var paths []string
	for k := 0; k < m.nz; k++ {
		s := scale
		if s <= 0 {
			sliceMax := 0.0
			for i := 0; i < m.nx; i++ {
				for j := 0; j < m.ny; j++ {
					sliceMax = math.Max(sliceMax, t.Elements[m.Index(i, j, k)])
				}
			}
			if sliceMax == 0 {
				sliceMax = 1
			}
			s = 1 / sliceMax
		}

		img := image.NewGray16(image.Rect(0, 0, m.nx, m.ny))
		for j := 0; j < m.ny; j++ {
			rowOff := (m.ny - 1 - j) * img.Stride
			for i := 0; i < m.nx; i++ {
				g := toU16(t.Elements[m.Index(i, j, k)], s)
				p := rowOff + 2*i
				img.Pix[p] = uint8(g >> 8)
				img.Pix[p+1] = uint8(g)
			}
		}

		full := fmt.Sprintf("%s_%s_%0*d.png", prefix, name, width, k)
		f, err := os.Create(full)
		if err != nil {
			return paths, err
		}
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(f, img); err != nil {
			f.Close()
			return paths, err
		}
		if err := f.Close(); err != nil {
			return paths, err
		}
		paths = append(paths, full)
	}
	return paths, nil
}
