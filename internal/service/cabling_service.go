package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/events"
	"github.com/cloudzeus/kimoncrm-sub005/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CablingService loads and saves the cabling hierarchy and derives the BOM from it.
type CablingService struct {
	surveys   repository.SiteSurveysRepository
	cabling   repository.CablingRepository
	products  repository.ProductsRepository
	publisher events.Publisher
	logger    *zap.Logger
}

func NewCablingService(
	surveys repository.SiteSurveysRepository,
	cabling repository.CablingRepository,
	products repository.ProductsRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) *CablingService {
	return &CablingService{surveys: surveys, cabling: cabling, products: products, publisher: publisher, logger: logger}
}

func (s *CablingService) GetCabling(ctx context.Context, surveyID string) (*domain.CablingTree, error) {
	if _, err := s.surveys.GetSiteSurvey(ctx, surveyID); err != nil {
		return nil, fmt.Errorf("failed to get site survey: %w", err)
	}
	tree, err := s.cabling.LoadTree(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cabling: %w", err)
	}
	return tree, nil
}

type SaveCablingRequest struct {
	SurveyID string
	Tree     domain.CablingTree
	ActorID  string
}

// SaveCabling replaces the whole hierarchy of the survey and returns it as
// stored. Nodes missing from the payload are removed.
func (s *CablingService) SaveCabling(ctx context.Context, req SaveCablingRequest) (*domain.CablingTree, error) {
	tree := req.Tree
	tree.SurveyID = req.SurveyID
	tree.Normalize()
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.surveys.GetSiteSurvey(ctx, req.SurveyID); err != nil {
		return nil, fmt.Errorf("failed to get site survey: %w", err)
	}
	if err := s.cabling.SaveTree(ctx, &tree); err != nil {
		return nil, fmt.Errorf("failed to save cabling: %w", err)
	}

	saved, err := s.cabling.LoadTree(ctx, req.SurveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload cabling: %w", err)
	}
	devices := saved.Devices()
	s.logger.Info("Cabling saved",
		zap.String("survey_id", req.SurveyID),
		zap.Int("buildings", len(saved.Buildings)),
		zap.Int("devices", len(devices)),
	)
	if err := s.publisher.Publish(ctx, events.CablingSaved, map[string]any{
		"survey_id": req.SurveyID,
		"buildings": len(saved.Buildings),
		"devices":   len(devices),
		"saved_by":  req.ActorID,
	}); err != nil {
		s.logger.Warn("Failed to publish event", zap.String("event", events.CablingSaved), zap.Error(err))
	}
	return saved, nil
}

// BuildBOM aggregates the survey's devices into priced lines.
func (s *CablingService) BuildBOM(ctx context.Context, surveyID string) (*domain.BOM, error) {
	survey, err := s.surveys.GetSiteSurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get site survey: %w", err)
	}
	tree, err := s.cabling.LoadTree(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cabling: %w", err)
	}
	devices := tree.Devices()

	var ids []string
	for _, d := range devices {
		if d.ProductID != nil {
			ids = append(ids, *d.ProductID)
		}
	}
	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	bom := aggregateBOM(devices, products)
	bom.SurveyID = survey.ID
	bom.SurveyTitle = survey.Title
	bom.Customer = deref(survey.CustomerName)
	return bom, nil
}

// bomKey groups devices by product, or by brand/model/type for free-text
// devices. Free-text devices with neither brand nor model group by name.
func bomKey(d domain.CablingDevice, p *domain.Product) string {
	if p != nil {
		return "p:" + p.ID
	}
	brand := strings.ToLower(strings.TrimSpace(deref(d.Brand)))
	model := strings.ToLower(strings.TrimSpace(deref(d.Model)))
	typ := strings.ToLower(strings.TrimSpace(deref(d.Type)))
	if brand == "" && model == "" {
		return "n:" + strings.ToLower(strings.TrimSpace(d.Name)) + "|" + typ
	}
	return "f:" + brand + "|" + model + "|" + typ
}

func aggregateBOM(devices []domain.CablingDevice, products map[string]*domain.Product) *domain.BOM {
	lines := map[string]*domain.BOMLine{}
	var order []string
	for _, d := range devices {
		var p *domain.Product
		if d.ProductID != nil {
			p = products[*d.ProductID]
		}
		key := bomKey(d, p)
		line, ok := lines[key]
		if !ok {
			line = newBOMLine(d, p)
			lines[key] = line
			order = append(order, key)
		}
		line.Quantity += d.Quantity
	}

	bom := &domain.BOM{Lines: make([]domain.BOMLine, 0, len(order)), GrandTotal: decimal.Zero}
	for _, key := range order {
		line := lines[key]
		line.Total = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		bom.TotalQty += line.Quantity
		bom.GrandTotal = bom.GrandTotal.Add(line.Total)
		bom.Lines = append(bom.Lines, *line)
	}
	sort.SliceStable(bom.Lines, func(i, j int) bool {
		a, b := bom.Lines[i], bom.Lines[j]
		if ab, bb := strings.ToLower(a.Brand), strings.ToLower(b.Brand); ab != bb {
			return ab < bb
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
	return bom
}

func newBOMLine(d domain.CablingDevice, p *domain.Product) *domain.BOMLine {
	line := &domain.BOMLine{
		Name:      d.Name,
		Brand:     deref(d.Brand),
		Model:     deref(d.Model),
		Type:      deref(d.Type),
		Unit:      "pcs",
		UnitPrice: decimal.Zero,
	}
	if p != nil {
		id := p.ID
		line.ProductID = &id
		line.Code = p.Code
		line.Name = p.Name
		line.Unit = p.Unit
		line.UnitPrice = p.UnitPrice
		if p.BrandName != nil {
			line.Brand = *p.BrandName
		}
	}
	return line
}
