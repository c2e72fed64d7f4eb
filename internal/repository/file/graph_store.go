package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
	"github.com/saferoute-service/internal/pkg/utils"
	"github.com/saferoute-service/internal/repository/codec"
)

// BaseGraphStore хранит исходный граф в одном файле
type BaseGraphStore struct {
	path   string
	logger *zap.Logger
}

func NewBaseGraphStore(path string, logger *zap.Logger) *BaseGraphStore {
	return &BaseGraphStore{path: path, logger: logger}
}

func (s *BaseGraphStore) Path() string {
	return s.path
}

// Load возвращает nil, nil, если файла еще нет
func (s *BaseGraphStore) Load(ctx context.Context) (*domain.StreetGraph, error) {
	g, _, err := readGraph(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("Base graph loaded",
		zap.String("path", s.path),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
	)
	return g, nil
}

func (s *BaseGraphStore) Save(ctx context.Context, g *domain.StreetGraph) error {
	if err := writeGraph(s.path, g, "", ""); err != nil {
		return err
	}
	s.logger.Info("Base graph saved", zap.String("path", s.path))
	return nil
}

// DerivedGraphStore хранит взвешенные варианты: <dir>/<place>_<mode>_graph.gob.
// Отпечаток в заголовке файла должен совпасть с ключом.
type DerivedGraphStore struct {
	dir    string
	place  string
	logger *zap.Logger
}

func NewDerivedGraphStore(dir, place string, logger *zap.Logger) *DerivedGraphStore {
	return &DerivedGraphStore{dir: dir, place: place, logger: logger}
}

func (s *DerivedGraphStore) Path(key domain.VariantKey) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s_graph.gob", utils.Slug(s.place), key.Mode))
}

// Exists читает только заголовок. Поврежденный или устаревший файл считается отсутствующим.
func (s *DerivedGraphStore) Exists(ctx context.Context, key domain.VariantKey) (bool, error) {
	f, err := os.Open(s.Path(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("open derived graph: %w", err)
	}
	defer f.Close()

	h, err := codec.ReadHeader(f)
	if err != nil {
		s.logger.Warn("Derived graph header unreadable",
			zap.String("key", key.String()),
			zap.Error(err),
		)
		return false, nil
	}
	return h.Fingerprint == key.Fingerprint && h.Mode == string(key.Mode), nil
}

func (s *DerivedGraphStore) Load(ctx context.Context, key domain.VariantKey) (*domain.StreetGraph, error) {
	g, h, err := readGraph(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrSerialization, err,
				fmt.Sprintf("derived graph %s not found", key))
		}
		return nil, err
	}
	if h.Fingerprint != key.Fingerprint {
		return nil, errors.Wrap(errors.ErrSerialization, nil,
			fmt.Sprintf("derived graph %s is stale (fingerprint %s)", key, h.Fingerprint))
	}
	return g, nil
}

func (s *DerivedGraphStore) Save(ctx context.Context, key domain.VariantKey, g *domain.StreetGraph) error {
	path := s.Path(key)
	if err := writeGraph(path, g, key.Fingerprint, key.Mode); err != nil {
		return err
	}
	s.logger.Info("Derived graph saved",
		zap.String("key", key.String()),
		zap.String("path", path),
	)
	return nil
}

func readGraph(path string) (*domain.StreetGraph, codec.Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, codec.Header{}, err
	}
	defer f.Close()
	return codec.Decode(f)
}

// writeGraph пишет во временный файл и переименовывает его, чтобы не оставить половину файла
func writeGraph(path string, g *domain.StreetGraph, fingerprint string, mode domain.TimeMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create graph directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp graph file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := codec.Encode(tmp, g, fingerprint, mode); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrSerialization, err, "encode graph")
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp graph file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename graph file: %w", err)
	}
	return nil
}
