// Package npyz serializes unsigned 8-bit matrices to NumPy .npy files and
// single-member .npz archives.
//
// Dataset partitions are .npz archives holding exactly one named matrix, so
// only the subset of the format needed for that is implemented: 2-D uint8
// arrays in C order, .npy version 1.0.
package npyz

import (
	"archive/zip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const magic = "\x93NUMPY"

// Matrix is a dense row-major uint8 matrix. len(Data) == Rows*Cols.
type Matrix struct {
	Rows, Cols int
	Data       []byte
}

// NewMatrix assembles a Matrix from equally sized rows.
func NewMatrix(rows [][]byte) (Matrix, error) {
	if len(rows) == 0 {
		return Matrix{}, errors.New("matrix must have at least one row")
	}
	cols := len(rows[0])
	data := make([]byte, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return Matrix{}, errors.Errorf("row %d has %d columns, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return Matrix{Rows: len(rows), Cols: cols, Data: data}, nil
}

// Row returns the i-th row of the matrix, without copying.
func (m Matrix) Row(i int) []byte {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// Write serializes the matrix to w in .npy format.
func (m Matrix) Write(w io.Writer) error {
	if len(m.Data) != m.Rows*m.Cols {
		return errors.Errorf("matrix data has %d bytes, want %d (%dx%d)",
			len(m.Data), m.Rows*m.Cols, m.Rows, m.Cols)
	}

	headerDict := fmt.Sprintf("{'descr': '|u1', 'fortran_order': False, 'shape': (%d, %d), }",
		m.Rows, m.Cols)

	// Preamble is magic (6) + version (2) + header length (2) = 10 bytes.
	// The header is space-padded so preamble+header ends on a 16-byte
	// boundary, terminated by a newline.
	header := []byte(headerDict)
	for (10+len(header)+1)%16 != 0 {
		header = append(header, ' ')
	}
	header = append(header, '\n')

	if _, err := w.Write([]byte(magic)); err != nil {
		return errors.Wrap(err, "failed to write magic string")
	}
	if _, err := w.Write([]byte{1, 0}); err != nil {
		return errors.Wrap(err, "failed to write version")
	}
	var lenBytes [2]byte
	binary.LittleEndian.PutUint16(lenBytes[:], uint16(len(header)))
	if _, err := w.Write(lenBytes[:]); err != nil {
		return errors.Wrap(err, "failed to write header length")
	}
	if _, err := w.Write(header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}
	if _, err := w.Write(m.Data); err != nil {
		return errors.Wrap(err, "failed to write matrix data")
	}
	return nil
}

// Read parses a .npy stream holding a uint8 matrix. A 1-D array of length n
// is returned as a 1xn matrix.
func Read(r io.Reader) (Matrix, error) {
	preamble := make([]byte, 8)
	if _, err := io.ReadFull(r, preamble); err != nil {
		return Matrix{}, errors.Wrap(err, "failed to read .npy preamble")
	}
	if string(preamble[:6]) != magic {
		return Matrix{}, errors.New("not a .npy stream: magic string mismatch")
	}

	var headerLen uint32
	switch major := preamble[6]; {
	case major == 1:
		var buf [2]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Matrix{}, errors.Wrap(err, "failed to read header length")
		}
		headerLen = uint32(binary.LittleEndian.Uint16(buf[:]))
	case major >= 2:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Matrix{}, errors.Wrap(err, "failed to read header length")
		}
		headerLen = binary.LittleEndian.Uint32(buf[:])
	default:
		return Matrix{}, errors.Errorf("unsupported .npy version %d.%d", preamble[6], preamble[7])
	}

	headerBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return Matrix{}, errors.Wrap(err, "failed to read header")
	}
	rows, cols, err := parseHeader(string(headerBytes))
	if err != nil {
		return Matrix{}, err
	}

	data := make([]byte, rows*cols)
	if _, err := io.ReadFull(r, data); err != nil {
		return Matrix{}, errors.Wrapf(err, "failed to read matrix data (%d bytes)", len(data))
	}
	return Matrix{Rows: rows, Cols: cols, Data: data}, nil
}

var (
	reDescr   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	reFortran = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	reShape   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

func parseHeader(header string) (rows, cols int, err error) {
	mDescr := reDescr.FindStringSubmatch(header)
	if len(mDescr) < 2 {
		return 0, 0, errors.Errorf("could not find 'descr' in header %q", header)
	}
	if descr := mDescr[1]; descr != "|u1" && descr != "<u1" && descr != "u1" {
		return 0, 0, errors.Errorf("unsupported dtype %q, only uint8 matrices are handled", descr)
	}

	mFortran := reFortran.FindStringSubmatch(header)
	if len(mFortran) < 2 {
		return 0, 0, errors.Errorf("could not find 'fortran_order' in header %q", header)
	}
	if mFortran[1] == "True" {
		return 0, 0, errors.New("fortran-order .npy data is not supported")
	}

	mShape := reShape.FindStringSubmatch(header)
	if len(mShape) < 2 {
		return 0, 0, errors.Errorf("could not find 'shape' in header %q", header)
	}
	var dims []int
	for _, part := range strings.Split(mShape[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := strconv.Atoi(part)
		if err != nil {
			return 0, 0, errors.Wrapf(err, "invalid dimension %q in shape", part)
		}
		dims = append(dims, d)
	}
	switch len(dims) {
	case 1:
		return 1, dims[0], nil
	case 2:
		return dims[0], dims[1], nil
	default:
		return 0, 0, errors.Errorf("expected a 1-D or 2-D array, got shape with %d dimensions", len(dims))
	}
}

// WriteArchive writes the matrix as a .npz archive at filePath with a single
// named member, name + ".npy".
func WriteArchive(filePath, name string, m Matrix) error {
	file, err := os.Create(filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to create %q", filePath)
	}
	defer func() { _ = file.Close() }()

	zipWriter := zip.NewWriter(file)
	memberWriter, err := zipWriter.Create(name + ".npy")
	if err != nil {
		return errors.Wrapf(err, "failed to create member %q in archive", name)
	}
	if err := m.Write(memberWriter); err != nil {
		return errors.WithMessagef(err, "failed to write matrix %q to %q", name, filePath)
	}
	if err := zipWriter.Close(); err != nil {
		return errors.Wrapf(err, "failed to finish archive %q", filePath)
	}
	return nil
}

// ReadArchive reads every .npy member of a .npz archive, keyed by member
// name without the extension.
func ReadArchive(filePath string) (map[string]Matrix, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open archive %q", filePath)
	}
	defer func() { _ = reader.Close() }()

	matrices := make(map[string]Matrix)
	for _, member := range reader.File {
		cleanPath := path.Clean(member.Name)
		if path.IsAbs(cleanPath) || strings.HasPrefix(cleanPath, "..") {
			return nil, errors.Errorf("invalid member path %q in archive %q", member.Name, filePath)
		}
		if !strings.HasSuffix(member.Name, ".npy") {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open member %q", member.Name)
		}
		m, err := Read(rc)
		_ = rc.Close()
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to read member %q", member.Name)
		}
		matrices[strings.TrimSuffix(member.Name, ".npy")] = m
	}
	return matrices, nil
}
