package services

import (
	"strings"

	"github.com/vnkhanh/bkhome-server/models"
	"gorm.io/gorm"
)

// RoomFilter is the sparse search input of the room list endpoints. A zero
// value means "not specified"; that includes false for the amenity flags.
type RoomFilter struct {
	Query

	Name    string            `form:"name"`
	Address string            `form:"address"`
	Types   []models.RoomType `form:"type"`

	AreaFrom             float64 `form:"area_from"`
	AreaTo               float64 `form:"area_to"`
	DistanceToSchoolFrom float64 `form:"distance_to_school_from"`
	DistanceToSchoolTo   float64 `form:"distance_to_school_to"`
	PriceFrom            int64   `form:"price_from"`
	PriceTo              int64   `form:"price_to"`
	ElectricityPriceFrom float64 `form:"electronic_price_from"`
	ElectricityPriceTo   float64 `form:"electronic_price_to"`
	WaterPriceFrom       float64 `form:"water_price_from"`
	WaterPriceTo         float64 `form:"water_price_to"`

	WifiInternet   bool `form:"wifi_internet"`
	AirConditioner bool `form:"air_conditioner"`
	WaterHeater    bool `form:"water_heater"`
	Refrigerator   bool `form:"refrigerator"`
	WashingMachine bool `form:"washing_machine"`
	EnclosedToilet bool `form:"enclosed_toilet"`
	SafeDevice     bool `form:"safed_device"`
}

// Range is an inclusive numeric bound; nil ends are open.
type Range struct {
	Gte *float64
	Lte *float64
}

func (r Range) IsEmpty() bool { return r.Gte == nil && r.Lte == nil }

// Amenities lists the flags a room must have.
type Amenities struct {
	WifiInternet   bool
	AirConditioner bool
	WaterHeater    bool
	Refrigerator   bool
	WashingMachine bool
	EnclosedToilet bool
	SafeDevice     bool
}

func (a Amenities) IsEmpty() bool { return a == Amenities{} }

// AttributePredicate constrains the room_attributes row of a room.
type AttributePredicate struct {
	ElectricityPrice Range
	WaterPrice       Range
	Amenities        Amenities
}

func (a AttributePredicate) IsEmpty() bool {
	return a.ElectricityPrice.IsEmpty() && a.WaterPrice.IsEmpty() && a.Amenities.IsEmpty()
}

// Predicate is the structured room filter handed to the query layer.
type Predicate struct {
	OwnerID         *uint
	NameContains    string
	AddressContains string
	Types           []models.RoomType

	Area             Range
	DistanceToSchool Range
	Price            Range

	Attribute AttributePredicate
}

func (p Predicate) IsEmpty() bool {
	return p.OwnerID == nil && p.NameContains == "" && p.AddressContains == "" && len(p.Types) == 0 &&
		p.Area.IsEmpty() && p.DistanceToSchool.IsEmpty() && p.Price.IsEmpty() && p.Attribute.IsEmpty()
}

// clause folds one optional field into a predicate. Predicates are passed by
// value, so a clause only ever changes its own copy.
type clause func(Predicate) Predicate

// BuildPredicate maps f to a Predicate. Fields left at their zero value add
// nothing; an empty filter yields an empty predicate.
func BuildPredicate(f RoomFilter) Predicate {
	clauses := []clause{
		nameContains(f.Name),
		addressContains(f.Address),
		typeIn(f.Types),

		lowerBound(f.AreaFrom, func(p *Predicate) *Range { return &p.Area }),
		upperBound(f.AreaTo, func(p *Predicate) *Range { return &p.Area }),
		lowerBound(f.DistanceToSchoolFrom, func(p *Predicate) *Range { return &p.DistanceToSchool }),
		upperBound(f.DistanceToSchoolTo, func(p *Predicate) *Range { return &p.DistanceToSchool }),
		lowerBound(float64(f.PriceFrom), func(p *Predicate) *Range { return &p.Price }),
		upperBound(float64(f.PriceTo), func(p *Predicate) *Range { return &p.Price }),

		lowerBound(f.ElectricityPriceFrom, func(p *Predicate) *Range { return &p.Attribute.ElectricityPrice }),
		upperBound(f.ElectricityPriceTo, func(p *Predicate) *Range { return &p.Attribute.ElectricityPrice }),
		lowerBound(f.WaterPriceFrom, func(p *Predicate) *Range { return &p.Attribute.WaterPrice }),
		upperBound(f.WaterPriceTo, func(p *Predicate) *Range { return &p.Attribute.WaterPrice }),

		amenity(f.WifiInternet, func(a *Amenities) { a.WifiInternet = true }),
		amenity(f.AirConditioner, func(a *Amenities) { a.AirConditioner = true }),
		amenity(f.WaterHeater, func(a *Amenities) { a.WaterHeater = true }),
		amenity(f.Refrigerator, func(a *Amenities) { a.Refrigerator = true }),
		amenity(f.WashingMachine, func(a *Amenities) { a.WashingMachine = true }),
		amenity(f.EnclosedToilet, func(a *Amenities) { a.EnclosedToilet = true }),
		amenity(f.SafeDevice, func(a *Amenities) { a.SafeDevice = true }),
	}

	var p Predicate
	for _, c := range clauses {
		p = c(p)
	}
	return p
}

// ForOwner pins the predicate to rooms of ownerID.
func (p Predicate) ForOwner(ownerID uint) Predicate {
	p.OwnerID = &ownerID
	return p
}

func nameContains(s string) clause {
	s = strings.TrimSpace(s)
	return func(p Predicate) Predicate {
		if s != "" {
			p.NameContains = s
		}
		return p
	}
}

func addressContains(s string) clause {
	s = strings.TrimSpace(s)
	return func(p Predicate) Predicate {
		if s != "" {
			p.AddressContains = s
		}
		return p
	}
}

func typeIn(types []models.RoomType) clause {
	return func(p Predicate) Predicate {
		var kept []models.RoomType
		for _, t := range types {
			if t != "" {
				kept = append(kept, t)
			}
		}
		if len(kept) > 0 {
			p.Types = kept
		}
		return p
	}
}

func lowerBound(v float64, field func(*Predicate) *Range) clause {
	return func(p Predicate) Predicate {
		if v != 0 {
			field(&p).Gte = &v
		}
		return p
	}
}

func upperBound(v float64, field func(*Predicate) *Range) clause {
	return func(p Predicate) Predicate {
		if v != 0 {
			field(&p).Lte = &v
		}
		return p
	}
}

func amenity(want bool, set func(*Amenities)) clause {
	return func(p Predicate) Predicate {
		if want {
			set(&p.Attribute.Amenities)
		}
		return p
	}
}

// Scope translates the predicate into WHERE clauses on "rooms". Attribute
// constraints become a single room_attributes subquery.
func (p Predicate) Scope(db *gorm.DB) *gorm.DB {
	if p.OwnerID != nil {
		db = db.Where("rooms.owner_id = ?", *p.OwnerID)
	}
	if p.NameContains != "" {
		db = db.Where(`LOWER(rooms.name) LIKE ? ESCAPE '\'`, likePattern(p.NameContains))
	}
	if p.AddressContains != "" {
		db = db.Where(`LOWER(rooms.address) LIKE ? ESCAPE '\'`, likePattern(p.AddressContains))
	}
	switch len(p.Types) {
	case 0:
	case 1:
		db = db.Where("rooms.type = ?", p.Types[0])
	default:
		db = db.Where("rooms.type IN ?", p.Types)
	}
	db = whereRange(db, "rooms.area", p.Area)
	db = whereRange(db, "rooms.distance_to_school", p.DistanceToSchool)
	db = whereRange(db, "rooms.price", p.Price)

	if !p.Attribute.IsEmpty() {
		sub := db.Session(&gorm.Session{NewDB: true}).Model(&models.RoomAttribute{}).Select("room_id")
		sub = whereRange(sub, "electronic_price", p.Attribute.ElectricityPrice)
		sub = whereRange(sub, "water_price", p.Attribute.WaterPrice)
		for _, column := range p.Attribute.Amenities.columns() {
			sub = sub.Where(column+" = ?", true)
		}
		db = db.Where("rooms.id IN (?)", sub)
	}
	return db
}

// columns returns the room_attributes columns that must be true.
func (a Amenities) columns() []string {
	var cols []string
	for _, f := range []struct {
		column string
		want   bool
	}{
		{"wifi_internet", a.WifiInternet},
		{"air_conditioner", a.AirConditioner},
		{"water_heater", a.WaterHeater},
		{"refrigerator", a.Refrigerator},
		{"washing_machine", a.WashingMachine},
		{"enclosed_toilet", a.EnclosedToilet},
		{"safed_device", a.SafeDevice},
	} {
		if f.want {
			cols = append(cols, f.column)
		}
	}
	return cols
}

func whereRange(db *gorm.DB, column string, r Range) *gorm.DB {
	if r.Gte != nil {
		db = db.Where(column+" >= ?", *r.Gte)
	}
	if r.Lte != nil {
		db = db.Where(column+" <= ?", *r.Lte)
	}
	return db
}
