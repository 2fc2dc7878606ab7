package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"bus_service/internal/models"
)

// postgres SQLSTATE codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// translateError maps driver level constraint violations onto the package
// sentinels. gorm translates pgx errors itself when TranslateError is on;
// the lib/pq driver needs the SQLSTATE check.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%w: %v", ErrReferenced, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %v", ErrReferenced, err)
		}
	}
	return err
}

type gormBusRepository struct {
	db *gorm.DB
}

// NewGormBusRepository returns a BusRepository backed by the buses table.
func NewGormBusRepository(db *gorm.DB) BusRepository {
	return &gormBusRepository{db: db}
}

func (r *gormBusRepository) Save(ctx context.Context, bus *models.Bus) error {
	return translateError(r.db.WithContext(ctx).Save(bus).Error)
}

func (r *gormBusRepository) FindByID(ctx context.Context, id uint) (*models.Bus, error) {
	var bus models.Bus
	if err := r.db.WithContext(ctx).First(&bus, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bus, nil
}

func (r *gormBusRepository) DeleteByID(ctx context.Context, id uint) error {
	return translateError(r.db.WithContext(ctx).Delete(&models.Bus{}, id).Error)
}

func (r *gormBusRepository) FindAll(ctx context.Context) ([]models.Bus, error) {
	buses := []models.Bus{}
	if err := r.db.WithContext(ctx).Order("id").Find(&buses).Error; err != nil {
		return nil, err
	}
	return buses, nil
}

func (r *gormBusRepository) ExistsByNumber(ctx context.Context, busNumber int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bus{}).Where("bus_number = ?", busNumber).Count(&count).Error
	return count > 0, err
}

func (r *gormBusRepository) FindByNumber(ctx context.Context, busNumber int) (*models.Bus, error) {
	var bus models.Bus
	if err := r.db.WithContext(ctx).Where("bus_number = ?", busNumber).First(&bus).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &bus, nil
}

type gormRouteRepository struct {
	db *gorm.DB
}

// NewGormRouteRepository returns a RouteRepository backed by the routes and
// route_buses tables.
func NewGormRouteRepository(db *gorm.DB) RouteRepository {
	return &gormRouteRepository{db: db}
}

// withBuses preloads the bus set of every route in id order.
func (r *gormRouteRepository) withBuses(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Buses", func(db *gorm.DB) *gorm.DB {
		return db.Order("buses.id")
	})
}

func (r *gormRouteRepository) Save(ctx context.Context, route *models.Route) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Buses").Save(route).Error; err != nil {
			return err
		}
		if route.Buses == nil {
			route.Buses = []models.Bus{}
		}
		return tx.Model(route).Association("Buses").Replace(route.Buses)
	})
	return translateError(err)
}

func (r *gormRouteRepository) FindByID(ctx context.Context, id uint) (*models.Route, error) {
	var route models.Route
	if err := r.withBuses(ctx).First(&route, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &route, nil
}

// DeleteByID removes the route and its join rows; the buses stay.
func (r *gormRouteRepository) DeleteByID(ctx context.Context, id uint) error {
	return translateError(r.db.WithContext(ctx).Select("Buses").Delete(&models.Route{ID: id}).Error)
}

func (r *gormRouteRepository) FindAll(ctx context.Context) ([]models.Route, error) {
	return r.find(r.withBuses(ctx))
}

func (r *gormRouteRepository) FindByStart(ctx context.Context, start string) ([]models.Route, error) {
	return r.find(r.withBuses(ctx).Where("routes.start = ?", start))
}

func (r *gormRouteRepository) FindByDestination(ctx context.Context, destination string) ([]models.Route, error) {
	return r.find(r.withBuses(ctx).Where("routes.destination = ?", destination))
}

func (r *gormRouteRepository) FindByStartAndDestination(ctx context.Context, start, destination string) ([]models.Route, error) {
	return r.find(r.withBuses(ctx).Where("routes.start = ? AND routes.destination = ?", start, destination))
}

func (r *gormRouteRepository) FindContainingBus(ctx context.Context, busID uint) ([]models.Route, error) {
	return r.find(r.withBuses(ctx).
		Joins("JOIN route_buses ON route_buses.route_id = routes.id").
		Where("route_buses.bus_id = ?", busID))
}

func (r *gormRouteRepository) find(query *gorm.DB) ([]models.Route, error) {
	routes := []models.Route{}
	if err := query.Order("routes.id").Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}
