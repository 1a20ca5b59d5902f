package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"tarifario/internal"
	"tarifario/internal/logging"
)

// CatalogWriter is the part of the persistence collaborator the importer
// needs: a merge-write of whole collections.
type CatalogWriter interface {
	SaveAllData(ctx context.Context, patch internal.AppDataPatch) error
}

type Service struct {
	store  CatalogWriter
	logger *zap.Logger
}

func NewService(store CatalogWriter, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logging.OrNop(logger)}
}

type ImportResult struct {
	Kind  Kind
	Count int
}

// Import parses content as kind and replaces the whole stored collection.
// Nothing is written when parsing fails.
func (s *Service) Import(ctx context.Context, kind Kind, filename string, content []byte) (ImportResult, error) {
	patch := internal.AppDataPatch{}
	count := 0

	switch kind {
	case KindArticles:
		articles, err := ParseArticleFile(filename, content)
		if err != nil {
			return ImportResult{}, err
		}
		patch.Articles = &articles
		count = len(articles)
	case KindTariffs:
		tariffs, err := ParseTariffFile(filename, content)
		if err != nil {
			return ImportResult{}, err
		}
		patch.Tariffs = &tariffs
		count = len(tariffs)
	default:
		return ImportResult{}, fmt.Errorf("unknown import kind: %s", kind)
	}

	if err := s.store.SaveAllData(ctx, patch); err != nil {
		return ImportResult{}, fmt.Errorf("save %s: %w", kind, err)
	}
	s.logger.Info("catalog imported",
		zap.String("kind", string(kind)),
		zap.String("file", filename),
		zap.Int("rows", count))
	return ImportResult{Kind: kind, Count: count}, nil
}

// ParseArticleFile picks the delimited or spreadsheet path from the file
// extension.
func ParseArticleFile(filename string, content []byte) ([]internal.Article, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv", ".txt":
		return ParseArticles(DecodeText(content))
	case ".xls", ".xlsx":
		rows, err := ReadWorkbook(filename, content)
		if err != nil {
			return nil, err
		}
		articles := ConvertArticleRows(rows)
		if len(articles) == 0 {
			return nil, fmt.Errorf("%w: no article rows in %s", ErrInvalidFormat, filename)
		}
		return articles, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}
}

func ParseTariffFile(filename string, content []byte) ([]internal.Tariff, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv", ".txt":
		return ParseTariffs(DecodeText(content))
	case ".xls", ".xlsx":
		rows, err := ReadWorkbook(filename, content)
		if err != nil {
			return nil, err
		}
		tariffs := ConvertTariffRows(rows)
		if len(tariffs) == 0 {
			return nil, fmt.Errorf("%w: no tariff rows in %s", ErrInvalidFormat, filename)
		}
		return tariffs, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filename)
	}
}
