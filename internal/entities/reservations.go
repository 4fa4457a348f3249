package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type SeatClass string

const (
	SeatClassBusiness SeatClass = "Negocios"
	SeatClassEconomy  SeatClass = "Economica"
)

type SeatState string

const (
	SeatStateOccupied SeatState = "Ocupado"
	SeatStateFree     SeatState = "Libre"
)

// Valid reports whether s is one of the known seat states.
func (s SeatState) Valid() bool {
	return s == SeatStateOccupied || s == SeatStateFree
}

type SelectionMethod string

const (
	SelectionManual SelectionMethod = "Manual"
	SelectionRandom SelectionMethod = "Aleatorio"
)

func (m SelectionMethod) Valid() bool {
	return m == SelectionManual || m == SelectionRandom
}

type ReservationState string

const (
	ReservationActive    ReservationState = "ACTIVA"
	ReservationCancelled ReservationState = "CANCELADA"
)

// User is identified by Email for reconciliation, never by ID.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	NombreCompleto string    `gorm:"size:255" json:"nombreCompleto"`
	EsVip          bool      `gorm:"default:false" json:"esVip"`
	FechaCreacion  time.Time `json:"fechaCreacion"`
	UpdatedAt      time.Time `json:"-"`
}

// Seat belongs to the fixed fleet. Numero is row+letter, e.g. "12A".
type Seat struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	Numero string    `gorm:"uniqueIndex;size:8;not null" json:"numero"`
	Clase  SeatClass `gorm:"size:20" json:"clase"`
	Estado SeatState `gorm:"size:20;default:'Libre'" json:"estado"`
}

type Pasajero struct {
	NombreCompleto string `gorm:"size:255" json:"nombreCompleto"`
	CUI            string `gorm:"column:cui;size:32" json:"cui"`
	TieneEquipaje  bool   `json:"tieneEquipaje"`
}

type Detalles struct {
	FechaReservacion time.Time       `json:"fechaReservacion"`
	MetodoSeleccion  SelectionMethod `gorm:"size:20" json:"metodoSeleccion"`
	PrecioBase       decimal.Decimal `gorm:"type:decimal(12,2)" json:"precioBase"`
}

type Reservation struct {
	ID             uint             `gorm:"primaryKey" json:"id"`
	Usuario        string           `gorm:"index;size:255" json:"usuario"`
	Asiento        string           `gorm:"index;size:8" json:"asiento"`
	Pasajero       Pasajero         `gorm:"embedded;embeddedPrefix:pasajero_" json:"pasajero"`
	Detalles       Detalles         `gorm:"embedded;embeddedPrefix:detalles_" json:"detalles"`
	Estado         ReservationState `gorm:"size:20;default:'ACTIVA'" json:"estado"`
	Modificaciones []Modification   `gorm:"foreignKey:ReservationID" json:"modificaciones"`
	CreatedAt      time.Time        `json:"-"`
	UpdatedAt      time.Time        `json:"-"`
}

// IsActive is true for every reservation that has not been cancelled.
func (r Reservation) IsActive() bool {
	return r.Estado != ReservationCancelled
}

// Modification is an entry in a reservation's change history.
type Modification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReservationID uint      `gorm:"index" json:"reservacionId"`
	Tipo          string    `gorm:"size:50" json:"tipo"`
	Descripcion   string    `gorm:"size:500" json:"descripcion"`
	Fecha         time.Time `json:"fecha"`
}

// UserPatch carries the mutable user fields.
type UserPatch struct {
	NombreCompleto string `json:"nombreCompleto"`
	EsVip          bool   `json:"esVip"`
}

type SeatPatch struct {
	Estado SeatState `json:"estado"`
}

// PurgeResult reports what a bulk purge removed.
type PurgeResult struct {
	Reservaciones  int64 `json:"reservaciones"`
	Modificaciones int64 `json:"modificaciones"`
	SeatsFreed     int64 `json:"seatsFreed"`
}

func (User) TableName() string {
	return "usuarios"
}

func (Seat) TableName() string {
	return "asientos"
}

func (Reservation) TableName() string {
	return "reservaciones"
}

func (Modification) TableName() string {
	return "modificaciones"
}
