package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// matrixMagic identifies a content/domain embedding matrix file. Chosen so a
// stray text file or truncated write is rejected immediately rather than
// misread as a zero-row matrix.
const matrixMagic uint32 = 0x47565254 // "GVRT"

const matrixFormatVersion uint32 = 1

// writeMatrix writes an N x D float32 matrix with a fixed little-endian
// header: magic, version, rows, cols. Grounded on the teacher's
// vector.MemoryIndex.Save binary framing, generalised to a dense matrix
// instead of an id-keyed vector list (ids live in global_index.json instead,
// keyed by embedding row).
func writeMatrix(path string, rows [][]float32, dims int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create matrix file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := binary.Write(w, binary.LittleEndian, matrixMagic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, matrixFormatVersion); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(rows))); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(dims)); err != nil {
		return err
	}
	buf := make([]byte, dims*4)
	for _, row := range rows {
		if len(row) != dims {
			return fmt.Errorf("row has %d dims, expected %d", len(row), dims)
		}
		for i, v := range row {
			binary.LittleEndian.PutUint32(buf[i*4:(i+1)*4], math.Float32bits(v))
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return w.Flush()
}

// readMatrix reads a matrix written by writeMatrix, validating magic,
// version, and row/col counts before returning. Fails fast on any mismatch:
// the loader never returns a partially valid matrix.
func readMatrix(path string) (rows [][]float32, dims int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open matrix file %s: %w", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var magic, version, n, d uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, 0, fmt.Errorf("read magic: %w", err)
	}
	if magic != matrixMagic {
		return nil, 0, fmt.Errorf("bad matrix magic in %s: got %x, want %x", path, magic, matrixMagic)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, 0, fmt.Errorf("read version: %w", err)
	}
	if version != matrixFormatVersion {
		return nil, 0, fmt.Errorf("unsupported matrix format version %d in %s", version, path)
	}
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, 0, fmt.Errorf("read row count: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &d); err != nil {
		return nil, 0, fmt.Errorf("read dim count: %w", err)
	}

	out := make([][]float32, n)
	buf := make([]byte, d*4)
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, 0, fmt.Errorf("read row %d: %w", i, err)
		}
		row := make([]float32, d)
		for j := uint32(0); j < d; j++ {
			row[j] = math.Float32frombits(binary.LittleEndian.Uint32(buf[j*4 : (j+1)*4]))
		}
		out[i] = row
	}
	return out, int(d), nil
}
