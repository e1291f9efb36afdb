package models

import "time"

type RoomType string

const (
	RoomTypePhongTro     RoomType = "PHONG_TRO"
	RoomTypeChungCuMini  RoomType = "CHUNG_CU_MINI"
	RoomTypeNhaNguyenCan RoomType = "NHA_NGUYEN_CAN"
	RoomTypeKyTucXa      RoomType = "KY_TUC_XA"
)

type Room struct {
	ID               uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OwnerID          uint      `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Name             string    `gorm:"column:name;size:255;not null" json:"name"`
	Address          string    `gorm:"column:address;type:text;not null" json:"address"`
	Type             RoomType  `gorm:"column:type;size:30;not null;default:'PHONG_TRO'" json:"type"`
	Area             float64   `gorm:"column:area;not null" json:"area"`
	DistanceToSchool float64   `gorm:"column:distance_to_school;not null" json:"distance_to_school"`
	Price            int64     `gorm:"column:price;not null" json:"price"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime;index" json:"updated_at"`

	Owner     *User          `gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"owner,omitempty"`
	Attribute *RoomAttribute `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE;" json:"room_attribute,omitempty"`
	Images    []RoomImage    `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE;" json:"room_image"`
	Reviews   []Review       `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE;" json:"review"`
}

func (Room) TableName() string {
	return "rooms"
}

// RoomAttribute is created, updated and deleted together with its Room.
type RoomAttribute struct {
	ID               uint    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RoomID           uint    `gorm:"column:room_id;uniqueIndex;not null" json:"room_id"`
	ElectricityPrice float64 `gorm:"column:electronic_price;not null;default:0" json:"electronic_price"`
	WaterPrice       float64 `gorm:"column:water_price;not null;default:0" json:"water_price"`
	Description      string  `gorm:"column:description;type:text" json:"description"`
	WifiInternet     bool    `gorm:"column:wifi_internet;default:false" json:"wifi_internet"`
	AirConditioner   bool    `gorm:"column:air_conditioner;default:false" json:"air_conditioner"`
	WaterHeater      bool    `gorm:"column:water_heater;default:false" json:"water_heater"`
	Refrigerator     bool    `gorm:"column:refrigerator;default:false" json:"refrigerator"`
	WashingMachine   bool    `gorm:"column:washing_machine;default:false" json:"washing_machine"`
	EnclosedToilet   bool    `gorm:"column:enclosed_toilet;default:false" json:"enclosed_toilet"`
	SafeDevice       bool    `gorm:"column:safed_device;default:false" json:"safed_device"`
}

func (RoomAttribute) TableName() string {
	return "room_attributes"
}

type RoomImage struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	RoomID    uint      `gorm:"column:room_id;not null;index" json:"room_id"`
	ImageURL  string    `gorm:"column:image_url;type:text;not null" json:"image_url"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (RoomImage) TableName() string {
	return "room_images"
}
