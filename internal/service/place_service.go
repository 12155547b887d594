package service

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"places-api/internal/domain"
	"places-api/pkg/utils"
)

const (
	msgPlaceNotFound    = "Could not find the place with the id"
	msgUserPlacesNone   = "Could not find the place with the user id"
	msgNotAuthorized    = "You are not authorized to perform this action"
	msgCreateFailed     = "Could not create the place, please try again."
	msgDeleteFailed     = "Could not delete the place."
	msgDeleteNotFound   = "Could not find the place to delete"
	msgUpdateFailed     = "Could not update the place, please try again"
	msgCreatorMissing   = "User does not exist"
	msgGeocoderDown     = "Could not resolve the address, please try again later"
	assetCleanupTimeout = 10 * time.Second
)

// 事务结果：committed / rolled_back
var placeTxTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "place_tx_total", Help: "Place/user transactions by outcome"},
	[]string{"op", "outcome"},
)

func init() { prometheus.MustRegister(placeTxTotal) }

type Geocoder interface {
	Lookup(ctx context.Context, address string) (domain.Location, error)
}

type AssetRemover interface {
	Delete(ctx context.Context, ref string) error
}

// PlaceService 负责地点与所属用户两侧数据的一致性
type PlaceService struct {
	store  domain.Store
	geo    Geocoder
	assets AssetRemover
	log    *zap.Logger
}

func NewPlaceService(store domain.Store, geo Geocoder, assets AssetRemover, l *zap.Logger) *PlaceService {
	if l == nil {
		l = zap.NewNop()
	}
	return &PlaceService{store: store, geo: geo, assets: assets, log: l}
}

type CreatePlaceInput struct {
	Title       string
	Description string
	Address     string
	Image       string
}

func (s *PlaceService) Get(ctx context.Context, id string) (*domain.Place, error) {
	p, err := s.store.Places().FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("Could not find the place, please try again", err)
	}
	if p == nil {
		return nil, domain.NotFound(msgPlaceNotFound)
	}
	return p, nil
}

// ListByCreator 空列表按 404 处理
func (s *PlaceService) ListByCreator(ctx context.Context, userID string) ([]domain.Place, error) {
	ps, err := s.store.Places().FindByCreator(ctx, userID)
	if err != nil {
		return nil, domain.Internal("Could not find the place, please try again.", err)
	}
	if len(ps) == 0 {
		return nil, domain.NotFound(msgUserPlacesNone)
	}
	return ps, nil
}

// Create 地理编码 -> 校验用户 -> 事务内写 place 并追加到 user.places
func (s *PlaceService) Create(ctx context.Context, userID string, in CreatePlaceInput) (*domain.Place, error) {
	loc, err := s.geo.Lookup(ctx, in.Address)
	if err != nil {
		if domain.IsKind(err, domain.KindGeocoding) {
			return nil, err
		}
		return nil, domain.Internal(msgGeocoderDown, err)
	}

	owner, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return nil, domain.Internal("Could not find the user for creating the place, please try again", err)
	}
	if owner == nil {
		return nil, domain.NotFound(msgCreatorMissing)
	}

	p := &domain.Place{
		ID:          utils.NewID(),
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		Location:    loc,
		Image:       in.Image,
		Creator:     owner.ID,
	}
	err = s.store.WithinTx(ctx, func(tx domain.Store) error {
		if err := tx.Places().Create(ctx, p); err != nil {
			return err
		}
		return tx.Users().AppendPlace(ctx, owner.ID, p.ID)
	})
	if err != nil {
		s.txOutcome("create", p.ID, err)
		return nil, domain.Persistence(msgCreateFailed, err)
	}
	s.txOutcome("create", p.ID, nil)
	return p, nil
}

// Update 先校验归属再写库
func (s *PlaceService) Update(ctx context.Context, userID, id, title, description string) (*domain.Place, error) {
	p, err := s.store.Places().FindByID(ctx, id)
	if err != nil {
		return nil, domain.Internal("Could not find the place, please try again", err)
	}
	if p == nil {
		return nil, domain.NotFound(msgPlaceNotFound)
	}
	if p.Creator != userID {
		return nil, domain.Forbidden(msgNotAuthorized)
	}

	if err := s.store.Places().UpdateDetails(ctx, id, title, description); err != nil {
		// 校验后被并发删除
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound(msgPlaceNotFound)
		}
		return nil, domain.Persistence(msgUpdateFailed, err)
	}
	p.Title, p.Description = title, description
	return p, nil
}

// Delete 事务内删除 place 并从 user.places 移除；提交后尽力删除图片
func (s *PlaceService) Delete(ctx context.Context, userID, id string) error {
	p, err := s.store.Places().FindByID(ctx, id)
	if err != nil {
		return domain.Internal("Something went wrong, please try again.", err)
	}
	if p == nil {
		return domain.NotFound(msgDeleteNotFound)
	}
	owner, err := s.store.Users().FindByID(ctx, p.Creator)
	if err != nil {
		return domain.Internal("Something went wrong, please try again.", err)
	}
	if owner == nil {
		s.log.Error("place owner missing", zap.String("place_id", p.ID), zap.String("creator", p.Creator))
		return domain.Internal("Something went wrong, please try again.", nil)
	}
	if owner.ID != userID {
		return domain.Forbidden(msgNotAuthorized)
	}

	err = s.store.WithinTx(ctx, func(tx domain.Store) error {
		if err := tx.Places().Delete(ctx, p.ID); err != nil {
			return err
		}
		return tx.Users().RemovePlace(ctx, owner.ID, p.ID)
	})
	if err != nil {
		s.txOutcome("delete", p.ID, err)
		// 并发删除同一地点：后提交的一方看不到这一行
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound(msgDeleteNotFound)
		}
		return domain.Persistence(msgDeleteFailed, err)
	}
	s.txOutcome("delete", p.ID, nil)

	s.removeAsset(ctx, p.Image)
	return nil
}

// removeAsset 不受请求取消影响；失败只记日志
func (s *PlaceService) removeAsset(ctx context.Context, ref string) {
	if ref == "" || s.assets == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), assetCleanupTimeout)
	defer cancel()
	if err := s.assets.Delete(ctx, ref); err != nil {
		s.log.Warn("delete place image failed", zap.String("ref", ref), zap.Error(err))
	}
}

func (s *PlaceService) txOutcome(op, placeID string, err error) {
	if err != nil {
		placeTxTotal.WithLabelValues(op, "rolled_back").Inc()
		s.log.Error("place transaction rolled back",
			zap.String("op", op), zap.String("place_id", placeID), zap.Error(err))
		return
	}
	placeTxTotal.WithLabelValues(op, "committed").Inc()
	s.log.Info("place transaction committed", zap.String("op", op), zap.String("place_id", placeID))
}
