package importers

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weengz-air/internal/entities"
)

func TestCompactImport_SingleSeat(t *testing.T) {
	store := newMockStore("12A")
	store.users = []entities.User{{ID: 1, Email: "a@x.com"}}

	doc := parseDoc(t, `<flightReservation>
  <flightSeat>
    <seatNumber>12A</seatNumber>
    <passengerName>Jane Doe</passengerName>
    <user>a@x.com</user>
    <idNumber>CUI123</idNumber>
    <hasLuggage>true</hasLuggage>
    <reservationDate>3/1/2024 9:00</reservationDate>
  </flightSeat>
</flightReservation>`)

	result, err := newTestPipeline(store).Import(context.Background(), doc)

	require.NoError(t, err)
	assert.Equal(t, DialectCompact, result.Dialect)
	assert.Equal(t, 1, result.Tally.OK)
	assert.Equal(t, 0, result.Tally.Fail)
	assert.Equal(t, 1, store.callsOfKind(KindCreateReservation))

	require.Len(t, store.reservations, 1)
	got := store.reservations[0]
	assert.Equal(t, "12A", got.Asiento)
	assert.Equal(t, "a@x.com", got.Usuario)
	assert.Equal(t, entities.Pasajero{NombreCompleto: "Jane Doe", CUI: "CUI123", TieneEquipaje: true}, got.Pasajero)
	assert.True(t, time.Date(2024, 1, 3, 9, 0, 0, 0, time.Local).Equal(got.Detalles.FechaReservacion))
	assert.Equal(t, entities.SelectionManual, got.Detalles.MetodoSeleccion)
	assert.True(t, got.Detalles.PrecioBase.Equal(decimal.Zero))
}

func TestCompactImport_TrimsAndNormalizesLuggage(t *testing.T) {
	store := newMockStore("1A", "1C", "1D")
	store.users = []entities.User{{ID: 1, Email: "a@x.com"}}

	doc := parseDoc(t, `<flightReservation>
  <flightSeat><seatNumber> 1A </seatNumber><user>
    a@x.com
  </user><hasLuggage> TRUE </hasLuggage></flightSeat>
  <flightSeat><seatNumber>1C</seatNumber><user>a@x.com</user><hasLuggage>yes</hasLuggage></flightSeat>
  <flightSeat><seatNumber>1D</seatNumber><user>a@x.com</user></flightSeat>
</flightReservation>`)

	result, err := newTestPipeline(store).Import(context.Background(), doc)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Tally.OK)
	require.Len(t, store.reservations, 3)
	assert.Equal(t, "1A", store.reservations[0].Asiento)
	assert.Equal(t, "a@x.com", store.reservations[0].Usuario)
	assert.True(t, store.reservations[0].Pasajero.TieneEquipaje)
	assert.False(t, store.reservations[1].Pasajero.TieneEquipaje)
	assert.False(t, store.reservations[2].Pasajero.TieneEquipaje)
	// No reservationDate falls back to now.
	assert.True(t, testNow.Equal(store.reservations[2].Detalles.FechaReservacion))
}

func TestCompactImport_PartialFailure(t *testing.T) {
	store := newMockStore("1A", "1C", "1D")
	store.users = []entities.User{{ID: 1, Email: "a@x.com"}}

	doc := parseDoc(t, `<flightReservation>
  <flightSeat><seatNumber>1A</seatNumber><user>a@x.com</user></flightSeat>
  <flightSeat><seatNumber>99Z</seatNumber><user>a@x.com</user></flightSeat>
  <flightSeat><seatNumber>1C</seatNumber><user>a@x.com</user></flightSeat>
  <flightSeat><seatNumber>1D</seatNumber><user>a@x.com</user></flightSeat>
</flightReservation>`)

	result, err := newTestPipeline(store).Import(context.Background(), doc)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Tally.OK)
	assert.Equal(t, 1, result.Tally.Fail)
	require.Len(t, result.Tally.Failures, 1)
	assert.Equal(t, "99Z/a@x.com", result.Tally.Failures[0].Key)
	assert.Len(t, store.reservations, 3)
}

func TestCompactImport_OccupiedSeatFails(t *testing.T) {
	store := newMockStore("12A")
	store.users = []entities.User{{ID: 1, Email: "a@x.com"}, {ID: 2, Email: "b@x.com"}}

	doc := parseDoc(t, `<flightReservation>
  <flightSeat><seatNumber>12A</seatNumber><user>a@x.com</user></flightSeat>
  <flightSeat><seatNumber>12A</seatNumber><user>b@x.com</user></flightSeat>
</flightReservation>`)

	result, err := newTestPipeline(store).Import(context.Background(), doc)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Tally.OK)
	assert.Equal(t, 1, result.Tally.Fail)
}
