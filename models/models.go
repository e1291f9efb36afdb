package models

// All lists every entity in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Room{},
		&RoomAttribute{},
		&RoomImage{},
		&Review{},
		&ReviewImage{},
	}
}

// ValidRoomType reports whether t is one of the known room categories.
func ValidRoomType(t RoomType) bool {
	switch t {
	case RoomTypePhongTro, RoomTypeChungCuMini, RoomTypeNhaNguyenCan, RoomTypeKyTucXa:
		return true
	}
	return false
}

func ValidRole(r Role) bool {
	switch r {
	case RoleOwner, RoleUser, RoleAdmin:
		return true
	}
	return false
}
