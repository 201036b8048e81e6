package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"finpulse/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
}

// StructurerService walks a source document, applies tiered extraction per
// unit and assembles the page-indexed result. Units share no state, so pages
// are resolved on a bounded worker pool; output ordering by index is
// preserved regardless.
type StructurerService struct {
	opener     DocumentOpener
	extraction *ExtractionService
	workers    int
	logger     *zap.Logger
}

func NewStructurerService(opener DocumentOpener, extraction *ExtractionService, workers int, logger *zap.Logger) *StructurerService {
	if workers < 1 {
		workers = 1
	}
	return &StructurerService{
		opener:     opener,
		extraction: extraction,
		workers:    workers,
		logger:     logger,
	}
}

// Structure extracts every unit of the source document. A whole-document open
// failure is fatal for the document; per-unit failures degrade to inline
// markers inside the affected unit.
func (s *StructurerService) Structure(ctx context.Context, sourcePath string) (*models.StructuredDocument, error) {
	ext := strings.ToLower(filepath.Ext(sourcePath))
	if imageExtensions[ext] {
		return s.structureImage(ctx, sourcePath)
	}

	source, err := s.opener.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to structure %s: %w", sourcePath, err)
	}
	defer source.Close()

	units := make([]models.ExtractionUnit, source.NumPages())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for page := 0; page < source.NumPages(); page++ {
		if gctx.Err() != nil {
			break // stop dispatching, in-flight pages finish on their own
		}
		page := page
		g.Go(func() error {
			primary, err := source.PageText(page)
			if err != nil {
				s.logger.Warn("Deterministic extraction failed for page",
					zap.Int("page", page+1),
					zap.Error(err),
				)
				primary = ""
			}

			outcome := s.extraction.ExtractPage(gctx, page+1, primary, func(ctx context.Context) ([]byte, error) {
				return source.PageImage(page)
			})

			unit := models.ExtractionUnit{
				Index:        page + 1,
				Text:         outcome.Text,
				UsedFallback: outcome.UsedFallback(),
			}
			// Tables only come from the deterministic layer; the vision
			// fallback never produces them.
			if outcome.Method == MethodPrimary {
				unit.Tables = harvestTables(primary)
			}
			units[page] = unit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &models.StructuredDocument{SourcePath: sourcePath, Units: units}
	s.logger.Info("Document structured",
		zap.String("source", sourcePath),
		zap.Int("units", len(units)),
		zap.Int("fallback_units", doc.FallbackCount()),
	)
	return doc, nil
}

func (s *StructurerService) structureImage(ctx context.Context, sourcePath string) (*models.StructuredDocument, error) {
	image, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to structure %s: %w", sourcePath, err)
	}

	outcome := s.extraction.ExtractImage(ctx, image)
	return &models.StructuredDocument{
		SourcePath: sourcePath,
		Units: []models.ExtractionUnit{
			{Index: 1, Text: outcome.Text, UsedFallback: outcome.UsedFallback()},
		},
	}, nil
}

// ExtractText returns the fallback-resolved text of all units joined in index
// order with a blank line between units.
func (s *StructurerService) ExtractText(ctx context.Context, sourcePath string) (string, error) {
	doc, err := s.Structure(ctx, sourcePath)
	if err != nil {
		return "", err
	}
	return doc.JoinedText(), nil
}
