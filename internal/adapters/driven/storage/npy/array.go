package npy

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"
)

// ErrUnsupportedArray indicates an .npy file that is not a 2-D, C-ordered
// float32 or float64 array of finite values.
var ErrUnsupportedArray = errors.New("unsupported array")

// Supported element types.
const (
	dtypeFloat32 = "<f4"
	dtypeFloat64 = "<f8"
)

// ReadMatrix reads a 2-D float array and returns its rows and column count.
// Errors from opening the file are returned unwrapped so callers can test
// for fs.ErrNotExist.
func ReadMatrix(path string) ([][]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	r, err := npyio.NewReader(f)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrUnsupportedArray, path, err)
	}

	descr := r.Header.Descr
	if descr.Fortran {
		return nil, 0, fmt.Errorf("%w: %s: fortran order", ErrUnsupportedArray, path)
	}
	if len(descr.Shape) != 2 {
		return nil, 0, fmt.Errorf("%w: %s: expected 2 dimensions, got shape %v", ErrUnsupportedArray, path, descr.Shape)
	}
	nrows, ncols := descr.Shape[0], descr.Shape[1]

	flat := make([]float32, 0, nrows*ncols)
	switch descr.Type {
	case dtypeFloat32:
		var data []float32
		if err := r.Read(&data); err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %w", ErrUnsupportedArray, path, err)
		}
		flat = append(flat, data...)
	case dtypeFloat64:
		var data []float64
		if err := r.Read(&data); err != nil {
			return nil, 0, fmt.Errorf("%w: %s: %w", ErrUnsupportedArray, path, err)
		}
		for i, x := range data {
			if math.Abs(x) > math.MaxFloat32 {
				return nil, 0, fmt.Errorf("%w: %s: value at row %d exceeds float32 range", ErrUnsupportedArray, path, i/ncols)
			}
			flat = append(flat, float32(x))
		}
	default:
		return nil, 0, fmt.Errorf("%w: %s: dtype %s", ErrUnsupportedArray, path, descr.Type)
	}
	if len(flat) != nrows*ncols {
		return nil, 0, fmt.Errorf("%w: %s: %d values for shape %v", ErrUnsupportedArray, path, len(flat), descr.Shape)
	}
	for i, x := range flat {
		if !finite(x) {
			return nil, 0, fmt.Errorf("%w: %s: non-finite value at row %d", ErrUnsupportedArray, path, i/ncols)
		}
	}

	rows := make([][]float32, nrows)
	for i := range rows {
		rows[i] = flat[i*ncols : (i+1)*ncols : (i+1)*ncols]
	}
	return rows, ncols, nil
}

// WriteMatrix writes rows as a 2-D float64 array, creating parent directories.
// All rows must have the same, non-zero length.
func WriteMatrix(path string, rows [][]float32) error {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return fmt.Errorf("%w: %s: empty matrix", ErrUnsupportedArray, path)
	}
	ncols := len(rows[0])
	data := make([]float64, 0, len(rows)*ncols)
	for i, row := range rows {
		if len(row) != ncols {
			return fmt.Errorf("%w: %s: row %d has %d columns, want %d", ErrUnsupportedArray, path, i, len(row), ncols)
		}
		for _, x := range row {
			if !finite(x) {
				return fmt.Errorf("%w: %s: non-finite value at row %d", ErrUnsupportedArray, path, i)
			}
			data = append(data, float64(x))
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := npyio.Write(f, mat.NewDense(len(rows), ncols, data)); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func finite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
