package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/weengz-air/internal/database"
	"github.com/mrlokans/weengz-air/internal/entities"
)

// ListingsController serves read-only views of users, seats and
// reservations.
type ListingsController struct {
	store ListingStore
	log   logrus.FieldLogger
}

func NewListingsController(store ListingStore, log logrus.FieldLogger) *ListingsController {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ListingsController{store: store, log: log}
}

// Users handles GET /api/usuarios
func (lc *ListingsController) Users(c *gin.Context) {
	users, err := lc.store.ListUsers(c.Request.Context())
	if err != nil {
		respondInternalError(c, lc.log, err, "list users")
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: users, Total: len(users)})
}

// User handles GET /api/usuarios/:email
func (lc *ListingsController) User(c *gin.Context) {
	user, err := lc.store.GetUser(c.Request.Context(), strings.TrimSpace(c.Param("email")))
	if err != nil {
		lc.respondLookupError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Seats handles GET /api/asientos
// ?estado=Libre|Ocupado and ?clase=Negocios|Economica filter the list.
func (lc *ListingsController) Seats(c *gin.Context) {
	seats, err := lc.store.ListSeats(c.Request.Context())
	if err != nil {
		respondInternalError(c, lc.log, err, "list seats")
		return
	}

	estado := entities.SeatState(c.Query("estado"))
	clase := entities.SeatClass(c.Query("clase"))
	filtered := seats[:0]
	for _, s := range seats {
		if estado != "" && s.Estado != estado {
			continue
		}
		if clase != "" && s.Clase != clase {
			continue
		}
		filtered = append(filtered, s)
	}
	c.JSON(http.StatusOK, ListResponse{Data: filtered, Total: len(filtered)})
}

// Seat handles GET /api/asientos/:numero
func (lc *ListingsController) Seat(c *gin.Context) {
	seat, err := lc.store.GetSeat(c.Request.Context(), strings.ToUpper(strings.TrimSpace(c.Param("numero"))))
	if err != nil {
		lc.respondLookupError(c, err, "seat")
		return
	}
	c.JSON(http.StatusOK, seat)
}

// Reservations handles GET /api/reservaciones
// ?estado=ACTIVA|CANCELADA filters the list.
func (lc *ListingsController) Reservations(c *gin.Context) {
	reservations, err := lc.store.ListReservations(c.Request.Context())
	if err != nil {
		respondInternalError(c, lc.log, err, "list reservations")
		return
	}

	if estado := entities.ReservationState(c.Query("estado")); estado != "" {
		filtered := reservations[:0]
		for _, r := range reservations {
			if r.Estado == estado {
				filtered = append(filtered, r)
			}
		}
		reservations = filtered
	}
	c.JSON(http.StatusOK, ListResponse{Data: reservations, Total: len(reservations)})
}

// Reservation handles GET /api/reservaciones/:id
// The reservation carries its modification history.
func (lc *ListingsController) Reservation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	reservation, err := lc.store.GetReservation(c.Request.Context(), id)
	if err != nil {
		lc.respondLookupError(c, err, "reservation")
		return
	}
	c.JSON(http.StatusOK, reservation)
}

// CancelReservation handles POST /api/reservaciones/:id/cancel
func (lc *ListingsController) CancelReservation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := lc.store.CancelReservation(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondNotFound(c, "reservation")
			return
		}
		respondInternalError(c, lc.log, err, "cancel reservation")
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "reservation cancelled"})
}

func (lc *ListingsController) respondLookupError(c *gin.Context, err error, resource string) {
	if errors.Is(err, database.ErrNotFound) {
		respondNotFound(c, resource)
		return
	}
	respondInternalError(c, lc.log, err, "load "+resource)
}
