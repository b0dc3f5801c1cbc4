package worksite

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"geopunch/internal/geo"
	"geopunch/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const cacheKeyPrefix = "worksite:"

func cacheKey(companyID string) string {
	return cacheKeyPrefix + companyID
}

// Geofence is what the attendance service needs from the settings: the
// office coordinate and the radius to enforce. Configured reports
// whether a worksite exists at all; without one no distance can be
// computed and no violation is flagged.
type Geofence struct {
	Office     geo.Coordinate
	RadiusM    float64
	Configured bool
}

//go:generate mockgen -source=worksite_service.go -destination=mock/worksite_service_mock.go -package=mock
type Service interface {
	Get(ctx context.Context, companyID string) (WorksiteResponse, error)
	GetGeofence(ctx context.Context, companyID string) (Geofence, error)
	Update(ctx context.Context, companyID string, req UpdateWorksiteRequest) (WorksiteResponse, error)
}

type service struct {
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("worksite.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("worksite.service")
	}
	return &service{
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Get(ctx context.Context, companyID string) (WorksiteResponse, error) {
	key := cacheKey(companyID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
			var resp WorksiteResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	// Singleflight keeps a cold cache from stampeding the database:
	// every punch consults the geofence.
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		w, err := s.repo.FindByCompany(ctx, companyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return WorksiteResponse{}, apperror.New(apperror.CodeNotFound, "worksite is not configured", 404)
			}
			return WorksiteResponse{}, err
		}

		resp := mapToResponse(*w)

		if s.rdb != nil {
			if raw, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, key, raw, time.Hour)
			}
		}

		return resp, nil
	})
	if err != nil {
		return WorksiteResponse{}, err
	}

	return v.(WorksiteResponse), nil
}

func (s *service) GetGeofence(ctx context.Context, companyID string) (Geofence, error) {
	resp, err := s.Get(ctx, companyID)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == apperror.CodeNotFound {
			return Geofence{}, nil
		}
		return Geofence{}, err
	}

	radius := resp.RadiusM
	if radius <= 0 {
		radius = geo.DefaultGeofenceRadiusM
	}

	return Geofence{
		Office:     geo.Coordinate{Latitude: resp.Latitude, Longitude: resp.Longitude},
		RadiusM:    radius,
		Configured: true,
	}, nil
}

func (s *service) Update(ctx context.Context, companyID string, req UpdateWorksiteRequest) (WorksiteResponse, error) {
	cid, err := uuid.Parse(companyID)
	if err != nil {
		return WorksiteResponse{}, apperror.New(apperror.CodeInvalidInput, "invalid company id", 400)
	}

	w := &Worksite{
		ID:        uuid.New(),
		CompanyID: cid,
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		RadiusM:   req.RadiusM,
	}

	if err := s.repo.Upsert(ctx, w); err != nil {
		s.logger.Error("upsert worksite failed", zap.String("company_id", companyID), zap.Error(err))
		return WorksiteResponse{}, err
	}

	if s.rdb != nil {
		if err := s.rdb.Del(ctx, cacheKey(companyID)).Err(); err != nil {
			s.logger.Error("invalidate worksite cache failed",
				zap.String("key", cacheKey(companyID)),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("worksite updated",
		zap.String("company_id", companyID),
		zap.Float64("radius_m", req.RadiusM),
	)

	return mapToResponse(*w), nil
}

func mapToResponse(w Worksite) WorksiteResponse {
	return WorksiteResponse{
		ID:        w.ID.String(),
		CompanyID: w.CompanyID.String(),
		Name:      w.Name,
		Latitude:  w.Latitude,
		Longitude: w.Longitude,
		RadiusM:   w.RadiusM,
	}
}
