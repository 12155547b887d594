package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"places-api/internal/domain"
	"places-api/internal/service"
	"places-api/internal/transport/http/ez"
)

const msgPlaceDeleted = "Place deleted successfully"

type PlaceService interface {
	Get(ctx context.Context, id string) (*domain.Place, error)
	ListByCreator(ctx context.Context, userID string) ([]domain.Place, error)
	Create(ctx context.Context, userID string, in service.CreatePlaceInput) (*domain.Place, error)
	Update(ctx context.Context, userID, id, title, description string) (*domain.Place, error)
	Delete(ctx context.Context, userID, id string) error
}

// PlacesHandler /api/places
type PlacesHandler struct {
	svc  PlaceService
	auth gin.HandlerFunc
}

func NewPlacesHandler(svc PlaceService, auth gin.HandlerFunc) *PlacesHandler {
	return &PlacesHandler{svc: svc, auth: auth}
}

type placeOut struct {
	Place *domain.Place `json:"place"`
}

type userPlacesOut struct {
	UserPlaces []domain.Place `json:"userPlaces"`
}

type messageOut struct {
	Message string `json:"message"`
}

type createPlaceIn struct {
	Title       string `form:"title" json:"title" binding:"required,notblank"`
	Description string `form:"description" json:"description" binding:"required,desc"`
	Address     string `form:"address" json:"address" binding:"required,notblank"`
}

type updatePlaceIn struct {
	Title       string `form:"title" json:"title" binding:"required,notblank"`
	Description string `form:"description" json:"description" binding:"required,desc"`
}

func (h *PlacesHandler) Priority() int { return 10 }

func (h *PlacesHandler) MountAPI(api ez.EZ) {
	g := api.Group("/places")

	ez.RegisterAction(g, ez.Action[struct{}, placeOut]{
		Method: http.MethodGet,
		Path:   "/:placeId",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (placeOut, error) {
			p, err := h.svc.Get(c.Request.Context(), c.Param("placeId"))
			if err != nil {
				return placeOut{}, err
			}
			return placeOut{Place: p}, nil
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, userPlacesOut]{
		Method: http.MethodGet,
		Path:   "/user/:userId",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (userPlacesOut, error) {
			ps, err := h.svc.ListByCreator(c.Request.Context(), c.Param("userId"))
			if err != nil {
				return userPlacesOut{}, err
			}
			return userPlacesOut{UserPlaces: ps}, nil
		},
	})

	// 以下需要登录
	authed := g.Group("", h.auth)

	ez.RegisterAction(authed, ez.Action[createPlaceIn, placeOut]{
		Method: http.MethodPost,
		Path:   "",
		Binder: ez.BindForm,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *createPlaceIn) (placeOut, error) {
			image, err := authed.SaveUpload(c, "image")
			if err != nil {
				return placeOut{}, err
			}
			p, err := h.svc.Create(c.Request.Context(), ez.UserID(c), service.CreatePlaceInput{
				Title:       in.Title,
				Description: in.Description,
				Address:     in.Address,
				Image:       image,
			})
			if err != nil {
				return placeOut{}, err
			}
			return placeOut{Place: p}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[updatePlaceIn, placeOut]{
		Method: http.MethodPatch,
		Path:   "/:placeId",
		Binder: ez.BindForm,
		Auth:   true,
		Handler: func(c *gin.Context, in *updatePlaceIn) (placeOut, error) {
			p, err := h.svc.Update(c.Request.Context(), ez.UserID(c), c.Param("placeId"), in.Title, in.Description)
			if err != nil {
				return placeOut{}, err
			}
			return placeOut{Place: p}, nil
		},
	})

	ez.RegisterAction(authed, ez.Action[struct{}, messageOut]{
		Method: http.MethodDelete,
		Path:   "/:placeId",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (messageOut, error) {
			if err := h.svc.Delete(c.Request.Context(), ez.UserID(c), c.Param("placeId")); err != nil {
				return messageOut{}, err
			}
			return messageOut{Message: msgPlaceDeleted}, nil
		},
	})
}
