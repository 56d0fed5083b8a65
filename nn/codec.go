package nn

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio/v2"
	"github.com/x448/float16"
	"gopkg.in/yaml.v3"
)

// ModelExt is the file extension of model files.
const ModelExt = ".tcnn"

const (
	magic   = "TCNN"
	version = 1

	// maxHeader bounds the YAML header so a corrupt length cannot force a
	// huge allocation.
	maxHeader = 1 << 20
)

// Encode writes m to w: magic, version, header length, YAML header and
// the parameters as little-endian float16 values.
func Encode(w io.Writer, m *Model) error {
	header, err := yaml.Marshal(&m.Header)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	bw.WriteString(magic)
	bw.WriteByte(version)
	var size [4]byte
	binary.LittleEndian.PutUint32(size[:], uint32(len(header)))
	bw.Write(size[:])
	bw.Write(header)

	var half [2]byte
	for _, p := range m.Params() {
		for _, v := range p.Data {
			binary.LittleEndian.PutUint16(half[:], float16.Fromfloat32(float32(v)).Bits())
			if _, err := bw.Write(half[:]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Decode reads a model written by Encode.
func Decode(r io.Reader) (*Model, error) {
	br := bufio.NewReader(r)

	var prefix [len(magic) + 1 + 4]byte
	if _, err := io.ReadFull(br, prefix[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMagic, err)
	}
	if !bytes.Equal(prefix[:len(magic)], []byte(magic)) {
		return nil, ErrBadMagic
	}
	if v := prefix[len(magic)]; v != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadMagic, v)
	}
	size := binary.LittleEndian.Uint32(prefix[len(magic)+1:])
	if size == 0 || size > maxHeader {
		return nil, fmt.Errorf("%w: header length %d", ErrInvalidHeader, size)
	}

	raw := make([]byte, size)
	if _, err := io.ReadFull(br, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	var h Header
	if err := yaml.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}

	m, err := New(h)
	if err != nil {
		return nil, err
	}

	var half [2]byte
	for _, p := range m.Params() {
		for i := range p.Data {
			if _, err := io.ReadFull(br, half[:]); err != nil {
				return nil, fmt.Errorf("%w: parameters truncated: %v", ErrShapeMismatch, err)
			}
			p.Data[i] = float64(float16.Frombits(binary.LittleEndian.Uint16(half[:])).Float32())
		}
	}
	if _, err := br.ReadByte(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after parameters", ErrShapeMismatch)
	}
	return m, nil
}

// Load reads a model file.
func Load(name string) (*Model, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return m, nil
}

// Save atomically writes m to name.
func Save(name string, m *Model) error {
	pf, err := renameio.NewPendingFile(name, renameio.WithPermissions(0o644))
	if err != nil {
		return err
	}
	defer pf.Cleanup()

	if err := Encode(pf, m); err != nil {
		return err
	}
	return pf.CloseAtomicallyReplace()
}
