package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/bkhome-server/services"
	"go.uber.org/zap"
)

type createReviewRequest struct {
	UserID  uint   `form:"user_id" json:"user_id" binding:"required,min=1"`
	RoomID  uint   `form:"room_id" json:"room_id" binding:"required,min=1"`
	Content string `form:"content" json:"content" binding:"required"`
	Star    int    `form:"star" json:"star" binding:"required,min=1,max=5"`
}

type updateReviewRequest struct {
	Content *string `form:"content" json:"content" binding:"omitempty,min=1"`
	Star    *int    `form:"star" json:"star" binding:"omitempty,min=1,max=5"`
}

type ReviewController struct {
	reviews *services.ReviewService
	images  imageReader
	log     *zap.Logger
}

func NewReviewController(reviews *services.ReviewService, maxUpload int64, log *zap.Logger) *ReviewController {
	return &ReviewController{reviews: reviews, images: imageReader{maxSize: maxUpload}, log: log.Named("review")}
}

// GET /room/review/:room_id
func (rc *ReviewController) ListByRoom(c *gin.Context) {
	roomID, ok := idParam(c, "room_id")
	if !ok {
		return
	}
	var q services.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	page, err := rc.reviews.ListByRoom(c.Request.Context(), roomID, q)
	if err != nil {
		fail(c, rc.log, err)
		return
	}
	respondPage(c, "Get reviews successfully", page)
}

// POST /room/review
func (rc *ReviewController) Create(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	images, err := rc.images.files(c, imagesField)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	review, err := rc.reviews.Create(c.Request.Context(), services.CreateReviewInput{
		UserID:  req.UserID,
		RoomID:  req.RoomID,
		Content: req.Content,
		Star:    req.Star,
	}, images)
	if err != nil {
		fail(c, rc.log, err)
		return
	}
	respond(c, http.StatusCreated, "Review room successfully", review)
}

// PUT /room/review/:id
func (rc *ReviewController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req updateReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	images, err := rc.images.files(c, imagesField)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	review, err := rc.reviews.Update(c.Request.Context(), id, services.UpdateReviewInput{
		Content: req.Content,
		Star:    req.Star,
	}, images)
	if err != nil {
		fail(c, rc.log, err)
		return
	}
	respond(c, http.StatusOK, "Update review successfully", review)
}

// DELETE /room/review/:id
func (rc *ReviewController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := rc.reviews.Delete(c.Request.Context(), id); err != nil {
		fail(c, rc.log, err)
		return
	}
	respond(c, http.StatusOK, "Delete review successfully", nil)
}
