package codec

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
)

const (
	Magic         = "SRGRAPH"
	FormatVersion = 1
)

// Header - первая строка сохраненного графа (JSON).
// Checksum - sha256 от gob-данных, которые идут следом.
type Header struct {
	Magic       string `json:"magic"`
	Version     int    `json:"version"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Mode        string `json:"mode,omitempty"`
	Place       string `json:"place"`
	Nodes       int    `json:"nodes"`
	Edges       int    `json:"edges"`
	Size        int    `json:"size"`
	Checksum    string `json:"checksum"`
}

// Encode пишет заголовок и граф в w
func Encode(w io.Writer, g *domain.StreetGraph, fingerprint string, mode domain.TimeMode) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(g); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	sum := sha256.Sum256(payload.Bytes())

	h := Header{
		Magic:       Magic,
		Version:     FormatVersion,
		Fingerprint: fingerprint,
		Mode:        string(mode),
		Place:       g.Place,
		Nodes:       len(g.Nodes),
		Edges:       len(g.Edges),
		Size:        payload.Len(),
		Checksum:    hex.EncodeToString(sum[:]),
	}
	line, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	line = append(line, '\n')

	if _, err := w.Write(line); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(payload.Bytes()); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	return nil
}

// Marshal - Encode в срез байт
func Marshal(g *domain.StreetGraph, fingerprint string, mode domain.TimeMode) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, g, fingerprint, mode); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadHeader читает только заголовок
func ReadHeader(r io.Reader) (Header, error) {
	return readHeader(bufio.NewReader(r))
}

// Decode читает граф и проверяет версию и контрольную сумму.
// Любое несоответствие - SERIALIZATION_ERROR.
func Decode(r io.Reader) (*domain.StreetGraph, Header, error) {
	br := bufio.NewReader(r)
	h, err := readHeader(br)
	if err != nil {
		return nil, h, err
	}

	payload, err := io.ReadAll(br)
	if err != nil {
		return nil, h, errors.Wrap(errors.ErrSerialization, err, "read graph payload")
	}
	if len(payload) != h.Size {
		return nil, h, errors.Wrap(errors.ErrSerialization, nil,
			fmt.Sprintf("graph payload truncated: got %d bytes, want %d", len(payload), h.Size))
	}
	sum := sha256.Sum256(payload)
	if hex.EncodeToString(sum[:]) != h.Checksum {
		return nil, h, errors.Wrap(errors.ErrSerialization, nil, "graph checksum mismatch")
	}

	var g domain.StreetGraph
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&g); err != nil {
		return nil, h, errors.Wrap(errors.ErrSerialization, err, "decode graph")
	}
	g.Reindex()
	return &g, h, nil
}

// Unmarshal - Decode из среза байт
func Unmarshal(data []byte) (*domain.StreetGraph, Header, error) {
	return Decode(bytes.NewReader(data))
}

func readHeader(br *bufio.Reader) (Header, error) {
	var h Header
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, errors.Wrap(errors.ErrSerialization, err, "read graph header")
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, errors.Wrap(errors.ErrSerialization, err, "parse graph header")
	}
	if h.Magic != Magic {
		return h, errors.Wrap(errors.ErrSerialization, nil, "not a graph file")
	}
	if h.Version != FormatVersion {
		return h, errors.Wrap(errors.ErrSerialization, nil,
			fmt.Sprintf("unsupported graph format version %d", h.Version))
	}
	return h, nil
}
