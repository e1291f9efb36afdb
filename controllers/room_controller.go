package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vnkhanh/bkhome-server/models"
	"github.com/vnkhanh/bkhome-server/services"
	"go.uber.org/zap"
)

type createRoomRequest struct {
	OwnerID          uint            `form:"owner_id" json:"owner_id" binding:"required,min=1"`
	Name             string          `form:"name" json:"name" binding:"required"`
	Address          string          `form:"address" json:"address" binding:"required"`
	Type             models.RoomType `form:"type" json:"type" binding:"required"`
	Area             float64         `form:"area" json:"area" binding:"min=0"`
	DistanceToSchool float64         `form:"distance_to_school" json:"distance_to_school" binding:"min=0"`
	Price            int64           `form:"price" json:"price" binding:"min=0"`
	ElectricityPrice float64         `form:"electronic_price" json:"electronic_price" binding:"min=0"`
	WaterPrice       float64         `form:"water_price" json:"water_price" binding:"min=0"`
	Description      string          `form:"description" json:"description" binding:"required"`
	WifiInternet     bool            `form:"wifi_internet" json:"wifi_internet"`
	AirConditioner   bool            `form:"air_conditioner" json:"air_conditioner"`
	WaterHeater      bool            `form:"water_heater" json:"water_heater"`
	Refrigerator     bool            `form:"refrigerator" json:"refrigerator"`
	WashingMachine   bool            `form:"washing_machine" json:"washing_machine"`
	EnclosedToilet   bool            `form:"enclosed_toilet" json:"enclosed_toilet"`
	SafeDevice       bool            `form:"safed_device" json:"safed_device"`
}

func (r createRoomRequest) input() services.CreateRoomInput {
	return services.CreateRoomInput{
		OwnerID:          r.OwnerID,
		Name:             r.Name,
		Address:          r.Address,
		Type:             r.Type,
		Area:             r.Area,
		DistanceToSchool: r.DistanceToSchool,
		Price:            r.Price,
		Attribute: services.AttributeInput{
			ElectricityPrice: r.ElectricityPrice,
			WaterPrice:       r.WaterPrice,
			Description:      r.Description,
			WifiInternet:     r.WifiInternet,
			AirConditioner:   r.AirConditioner,
			WaterHeater:      r.WaterHeater,
			Refrigerator:     r.Refrigerator,
			WashingMachine:   r.WashingMachine,
			EnclosedToilet:   r.EnclosedToilet,
			SafeDevice:       r.SafeDevice,
		},
	}
}

type updateRoomRequest struct {
	Name             *string          `form:"name" json:"name" binding:"omitempty,min=1"`
	Address          *string          `form:"address" json:"address" binding:"omitempty,min=1"`
	Type             *models.RoomType `form:"type" json:"type"`
	Area             *float64         `form:"area" json:"area" binding:"omitempty,min=0"`
	DistanceToSchool *float64         `form:"distance_to_school" json:"distance_to_school" binding:"omitempty,min=0"`
	Price            *int64           `form:"price" json:"price" binding:"omitempty,min=0"`
	ElectricityPrice *float64         `form:"electronic_price" json:"electronic_price" binding:"omitempty,min=0"`
	WaterPrice       *float64         `form:"water_price" json:"water_price" binding:"omitempty,min=0"`
	Description      *string          `form:"description" json:"description"`
	WifiInternet     *bool            `form:"wifi_internet" json:"wifi_internet"`
	AirConditioner   *bool            `form:"air_conditioner" json:"air_conditioner"`
	WaterHeater      *bool            `form:"water_heater" json:"water_heater"`
	Refrigerator     *bool            `form:"refrigerator" json:"refrigerator"`
	WashingMachine   *bool            `form:"washing_machine" json:"washing_machine"`
	EnclosedToilet   *bool            `form:"enclosed_toilet" json:"enclosed_toilet"`
	SafeDevice       *bool            `form:"safed_device" json:"safed_device"`
}

func (r updateRoomRequest) input() services.UpdateRoomInput {
	return services.UpdateRoomInput{
		Name:             r.Name,
		Address:          r.Address,
		Type:             r.Type,
		Area:             r.Area,
		DistanceToSchool: r.DistanceToSchool,
		Price:            r.Price,
		ElectricityPrice: r.ElectricityPrice,
		WaterPrice:       r.WaterPrice,
		Description:      r.Description,
		WifiInternet:     r.WifiInternet,
		AirConditioner:   r.AirConditioner,
		WaterHeater:      r.WaterHeater,
		Refrigerator:     r.Refrigerator,
		WashingMachine:   r.WashingMachine,
		EnclosedToilet:   r.EnclosedToilet,
		SafeDevice:       r.SafeDevice,
	}
}

type RoomController struct {
	rooms  *services.RoomService
	images imageReader
	log    *zap.Logger
}

func NewRoomController(rooms *services.RoomService, maxUpload int64, log *zap.Logger) *RoomController {
	return &RoomController{rooms: rooms, images: imageReader{maxSize: maxUpload}, log: log.Named("room")}
}

// GET /room
func (rc *RoomController) FindAll(c *gin.Context) {
	var filter services.RoomFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	page, err := rc.rooms.FindAll(c.Request.Context(), filter)
	if err != nil {
		fail(c, rc.log, err)
		return
	}
	respondPage(c, "Get rooms successfully", page)
}

// GET /room/owner/:owner_id
func (rc *RoomController) FindByOwner(c *gin.Context) {
	ownerID, ok := idParam(c, "owner_id")
	if !ok {
		return
	}
	var filter services.RoomFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	page, err := rc.rooms.FindByOwner(c.Request.Context(), ownerID, filter)
	if err != nil {
		fail(c, rc.log, err)
		return
	}
	respondPage(c, "Get rooms successfully", page)
}

// GET /room/:id
func (rc *RoomController) FindOne(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	room, err := rc.rooms.FindOne(c.Request.Context(), id)
	if err != nil {
		fail(c, rc.log, err)
		return
	}
	respond(c, http.StatusOK, "Get room successfully", room)
}

// POST /room (multipart, images[])
func (rc *RoomController) Create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBind(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	images, err := rc.images.files(c, imagesField)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	room, err := rc.rooms.Create(c.Request.Context(), req.input(), images)
	if err != nil {
		fail(c, rc.log, err)
		return
	}
	respond(c, http.StatusCreated, "Create room successfully", room)
}

// PUT /room/:id (multipart, images[] replaces all images when present)
func (rc *RoomController) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req updateRoomRequest
	if err := c.ShouldBind(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	images, err := rc.images.files(c, imagesField)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	room, err := rc.rooms.Update(c.Request.Context(), id, req.input(), images)
	if err != nil {
		fail(c, rc.log, err)
		return
	}
	respond(c, http.StatusOK, "Update room successfully", room)
}

// DELETE /room/:id
func (rc *RoomController) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := rc.rooms.Delete(c.Request.Context(), id); err != nil {
		fail(c, rc.log, err)
		return
	}
	respond(c, http.StatusOK, "Delete room successfully", nil)
}
