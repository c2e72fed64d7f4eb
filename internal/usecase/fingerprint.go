package usecase

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"math"

	"github.com/saferoute-service/internal/cost"
	"github.com/saferoute-service/internal/domain"
)

// Fingerprint - отпечаток всех входов расчета весов (16 hex-символов).
// Любое изменение графа, слоев, коэффициентов, радиуса или версии модели дает новый отпечаток.
func Fingerprint(base *domain.StreetGraph, layers []*domain.FeatureLayer, s Settings) string {
	h := sha256.New()

	writeInt(h, cost.Version)
	writeString(h, base.Place)
	writeInt(h, int64(len(base.Nodes)))
	for _, n := range base.Nodes {
		writeInt(h, n.ID)
		writeFloat(h, n.Lat)
		writeFloat(h, n.Lon)
	}
	writeInt(h, int64(len(base.Edges)))
	for _, e := range base.Edges {
		writeInt(h, e.From)
		writeInt(h, e.To)
		writeInt(h, int64(e.Key))
		writeFloat(h, e.Length)
		writeFloat(h, e.Weight)
		if e.HasLength {
			writeInt(h, 1)
		} else {
			writeInt(h, 0)
		}
		writeInt(h, int64(len(e.Geometry)))
		for _, p := range e.Geometry {
			writeFloat(h, p[0])
			writeFloat(h, p[1])
		}
	}

	byName := make(map[domain.LayerName]*domain.FeatureLayer, len(layers))
	for _, l := range layers {
		if l != nil {
			byName[l.Name] = l
		}
	}
	for _, name := range domain.AllLayers {
		writeString(h, string(name))
		l := byName[name]
		writeInt(h, int64(l.Len()))
		if l == nil {
			continue
		}
		for _, p := range l.Points {
			writeFloat(h, p[0])
			writeFloat(h, p[1])
		}
	}

	w := s.Weights
	for _, f := range []float64{w.FixedPenalty, w.Crime, w.CCTV, w.Police, w.Lighting, w.Venue, s.Radius, s.MinCost} {
		writeFloat(h, f)
	}

	return hex.EncodeToString(h.Sum(nil))[:16]
}

func writeInt(h hash.Hash, v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	h.Write(buf[:])
}

func writeFloat(h hash.Hash, v float64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	h.Write(buf[:])
}

func writeString(h hash.Hash, s string) {
	writeInt(h, int64(len(s)))
	h.Write([]byte(s))
}
