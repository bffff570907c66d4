package calculation

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/ehr/calcfhir/internal/domain/interchange"
	"github.com/ehr/calcfhir/internal/platform/fhir"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid calculation")

type Service struct {
	repo     Repository
	builder  *interchange.Builder
	defaults interchange.Options
	logger   zerolog.Logger
}

func NewService(repo Repository, builder *interchange.Builder, logger zerolog.Logger) *Service {
	if builder == nil {
		builder = interchange.NewBuilder()
	}
	return &Service{repo: repo, builder: builder, logger: logger}
}

// SetExportDefaults sets server-wide bundle options; per-call options passed
// to ExportBundle override them.
func (s *Service) SetExportDefaults(o interchange.Options) { s.defaults = o }

// Validate checks the vitals and criteria bookkeeping of c. SIRSMet is
// derived from the criteria count.
func Validate(c *Calculation) error {
	if c == nil {
		return fmt.Errorf("%w: empty calculation", ErrInvalid)
	}
	if math.IsNaN(c.Temperature) || math.IsInf(c.Temperature, 0) || c.Temperature <= 0 {
		return fmt.Errorf("%w: temperature must be a positive number", ErrInvalid)
	}
	if c.HeartRate < 0 {
		return fmt.Errorf("%w: heart_rate must be non-negative", ErrInvalid)
	}
	if c.RespiratoryRate < 0 {
		return fmt.Errorf("%w: respiratory_rate must be non-negative", ErrInvalid)
	}
	if math.IsNaN(c.WBC) || math.IsInf(c.WBC, 0) || c.WBC < 0 {
		return fmt.Errorf("%w: wbc must be non-negative", ErrInvalid)
	}
	if c.CriteriaCount < 0 || c.CriteriaCount > MaxCriteria {
		return fmt.Errorf("%w: criteria_count must be between 0 and %d", ErrInvalid, MaxCriteria)
	}
	if len(c.CriteriaDetails) > 0 {
		if met := len(c.MetCriteria()); met != c.CriteriaCount {
			return fmt.Errorf("%w: criteria_count is %d but %d criteria are marked met", ErrInvalid, c.CriteriaCount, met)
		}
	}
	c.SIRSMet = c.CriteriaCount >= SIRSThreshold
	return nil
}

func (s *Service) Create(ctx context.Context, c *Calculation) error {
	if err := Validate(c); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	s.logger.Info().
		Int64("calculation_id", c.ID).
		Int("criteria_count", c.CriteriaCount).
		Bool("sirs_met", c.SIRSMet).
		Msg("calculation saved")
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Calculation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListRecent(ctx context.Context, limit, offset int) ([]*Calculation, int, error) {
	return s.repo.ListRecent(ctx, limit, offset)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Int64("calculation_id", id).Msg("calculation deleted")
	return nil
}

func (s *Service) Clear(ctx context.Context) (int64, error) {
	n, err := s.repo.Clear(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Warn().Int64("deleted", n).Msg("calculation history cleared")
	return n, nil
}

// ExportBundle builds the interchange bundle for a stored calculation. The
// Observation id defaults to ResourceID(id).
func (s *Service) ExportBundle(ctx context.Context, id int64, opts interchange.Options) (*fhir.Bundle, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	o := interchange.Options{ResourceID: ResourceID(id)}.Merge(s.defaults).Merge(opts)
	bundle, err := s.builder.Build(ToRecord(c), &o)
	if err != nil {
		return nil, fmt.Errorf("build bundle for calculation %d: %w", id, err)
	}
	s.logger.Debug().
		Int64("calculation_id", id).
		Str("bundle_id", bundle.ID).
		Msg("calculation exported")
	return bundle, nil
}
