package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/bkhome-server/models"
	"github.com/vnkhanh/bkhome-server/services"
	"go.uber.org/zap"
)

type createUserRequest struct {
	Username string      `form:"username" json:"username" binding:"required"`
	Password string      `form:"password" json:"password" binding:"required"`
	Role     models.Role `form:"role" json:"role" binding:"omitempty,oneof=OWNER USER ADMIN"`
}

type UserController struct {
	users  *services.UserService
	images imageReader
	log    *zap.Logger
}

func NewUserController(users *services.UserService, maxUpload int64, log *zap.Logger) *UserController {
	return &UserController{users: users, images: imageReader{maxSize: maxUpload}, log: log.Named("user")}
}

// GET /user?search=
func (uc *UserController) FindAll(c *gin.Context) {
	var q services.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	page, err := uc.users.FindAll(c.Request.Context(), q)
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respondPage(c, "Get users successfully", page)
}

// GET /user/:id
func (uc *UserController) FindOne(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	user, err := uc.users.FindOneByID(c.Request.Context(), id)
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, "Get user successfully", user)
}

// POST /user
func (uc *UserController) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBind(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	user, err := uc.users.Create(c.Request.Context(), services.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusCreated, "Create user successfully", user)
}

// PUT /user/avatar/:id (multipart, field "image")
func (uc *UserController) ChangeAvatar(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	image, err := uc.images.file(c, avatarField)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	user, err := uc.users.ChangeAvatar(c.Request.Context(), id, image)
	if err != nil {
		fail(c, uc.log, err)
		return
	}
	respond(c, http.StatusOK, "Update user successfully", user)
}
