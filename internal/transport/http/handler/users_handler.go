package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"places-api/internal/domain"
	"places-api/internal/service"
	"places-api/internal/transport/http/ez"
)

const (
	msgSignedUp = "User sign up successful."
	msgLoggedIn = "Login successful!"
)

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Signup(ctx context.Context, in service.SignupInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
}

// UsersHandler /api/users
type UsersHandler struct {
	svc UserService
}

func NewUsersHandler(svc UserService) *UsersHandler { return &UsersHandler{svc: svc} }

type usersOut struct {
	Users []domain.User `json:"users"`
}

type authOut struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

type signupIn struct {
	Name     string `form:"name" json:"name" binding:"required,notblank"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,pwd"`
}

type loginIn struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

func (h *UsersHandler) Priority() int { return 20 }

func (h *UsersHandler) MountAPI(api ez.EZ) {
	g := api.Group("/users")

	ez.RegisterAction(g, ez.Action[struct{}, usersOut]{
		Method: http.MethodGet,
		Path:   "",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (usersOut, error) {
			us, err := h.svc.List(c.Request.Context())
			if err != nil {
				return usersOut{}, err
			}
			return usersOut{Users: us}, nil
		},
	})

	ez.RegisterAction(g, ez.Action[signupIn, authOut]{
		Method: http.MethodPost,
		Path:   "/signup",
		Binder: ez.BindForm,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *signupIn) (authOut, error) {
			image, err := g.SaveUpload(c, "image")
			if err != nil {
				return authOut{}, err
			}
			res, err := h.svc.Signup(c.Request.Context(), service.SignupInput{
				Name:     in.Name,
				Email:    in.Email,
				Password: in.Password,
				Image:    image,
			})
			if err != nil {
				return authOut{}, err
			}
			return authOut{UserID: res.UserID, Email: res.Email, Token: res.Token, Message: msgSignedUp}, nil
		},
	})

	ez.RegisterAction(g, ez.Action[loginIn, authOut]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindForm,
		Handler: func(c *gin.Context, in *loginIn) (authOut, error) {
			res, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
			if err != nil {
				return authOut{}, err
			}
			return authOut{UserID: res.UserID, Email: res.Email, Token: res.Token, Message: msgLoggedIn}, nil
		},
	})
}
