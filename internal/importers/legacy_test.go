package importers

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weengz-air/internal/entities"
)

const legacyDocument = `<?xml version="1.0" encoding="UTF-8"?>
<WeengzAir>
  <Usuarios>
    <Usuario email="a@x.com" esVip="true">
      <nombreCompleto>Ana Lopez</nombreCompleto>
    </Usuario>
  </Usuarios>
  <Asientos>
    <Asiento numero="12A" estado="Ocupado"/>
    <Asiento numero="99Z" estado="Libre"/>
    <Asiento numero="12B"/>
  </Asientos>
  <Reservaciones>
    <Reservacion>
      <asiento>12B</asiento>
      <usuario>a@x.com</usuario>
      <pasajero>
        <nombreCompleto>Jane Doe</nombreCompleto>
        <cui>CUI123</cui>
        <tieneEquipaje>true</tieneEquipaje>
      </pasajero>
      <detalles>
        <fechaReservacion>15/03/2024 14:30</fechaReservacion>
        <metodoSeleccion>Aleatorio</metodoSeleccion>
        <precioBase>450.75</precioBase>
      </detalles>
    </Reservacion>
  </Reservaciones>
</WeengzAir>`

func TestLegacyImport_FullDocument(t *testing.T) {
	store := newMockStore("12A", "12B")

	result, err := newTestPipeline(store).Import(context.Background(), parseDoc(t, legacyDocument))

	require.NoError(t, err)
	assert.Equal(t, DialectLegacy, result.Dialect)
	assert.Equal(t, 5, result.Tally.OK)
	assert.Equal(t, 0, result.Tally.Fail)
	assert.Equal(t, 1, result.Tally.Skipped)

	require.Len(t, result.Stages, 3)
	assert.Equal(t, "usuarios", result.Stages[0].Name)
	assert.Equal(t, "asientos", result.Stages[1].Name)
	assert.Equal(t, "reservaciones", result.Stages[2].Name)
	assert.Equal(t, 1, result.Stages[1].Tally.ByKind[KindSkipSeat])

	// The reservation references a user created earlier in the same document.
	require.Len(t, store.users, 1)
	assert.Equal(t, "Ana Lopez", store.users[0].NombreCompleto)
	assert.True(t, store.users[0].EsVip)
	assert.True(t, testNow.Equal(store.users[0].FechaCreacion))

	assert.Equal(t, entities.SeatStateOccupied, store.seat("12A").Estado)
	assert.Equal(t, entities.SeatStateOccupied, store.seat("12B").Estado)
	assert.Nil(t, store.seat("99Z"), "import never creates seats")

	require.Len(t, store.reservations, 1)
	r := store.reservations[0]
	assert.Equal(t, "12B", r.Asiento)
	assert.Equal(t, entities.Pasajero{NombreCompleto: "Jane Doe", CUI: "CUI123", TieneEquipaje: true}, r.Pasajero)
	assert.Equal(t, entities.SelectionRandom, r.Detalles.MetodoSeleccion)
	assert.True(t, decimal.RequireFromString("450.75").Equal(r.Detalles.PrecioBase))
	assert.Equal(t, 2024, r.Detalles.FechaReservacion.Year())
	assert.Equal(t, 15, r.Detalles.FechaReservacion.Day())
}

func TestLegacyImport_IdempotentUserUpsert(t *testing.T) {
	store := newMockStore()
	src := `<Usuarios><Usuario email="a@x.com" esVip="false"><nombreCompleto>Ana</nombreCompleto></Usuario></Usuarios>`
	pipeline := newTestPipeline(store)

	first, err := pipeline.Import(context.Background(), parseDoc(t, src))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Tally.ByKind[KindCreateUser])

	second, err := pipeline.Import(context.Background(), parseDoc(t, src))
	require.NoError(t, err)
	assert.Equal(t, 1, second.Tally.ByKind[KindUpdateUser])
	assert.Zero(t, second.Tally.ByKind[KindCreateUser])

	assert.Len(t, store.users, 1)
	assert.Equal(t, 1, store.callsOfKind(KindCreateUser))
	assert.Equal(t, 1, store.callsOfKind(KindUpdateUser))
}

func TestLegacyImport_DuplicateEmailInOneDocument(t *testing.T) {
	store := newMockStore()
	src := `<Usuarios>
  <Usuario email="a@x.com" esVip="false"><nombreCompleto>First</nombreCompleto></Usuario>
  <Usuario email="a@x.com" esVip="true"><nombreCompleto>Second</nombreCompleto></Usuario>
</Usuarios>`

	result, err := newTestPipeline(store).Import(context.Background(), parseDoc(t, src))

	require.NoError(t, err)
	assert.Equal(t, 2, result.Tally.OK)
	assert.Equal(t, 1, result.Tally.ByKind[KindCreateUser])
	assert.Equal(t, 1, result.Tally.ByKind[KindUpdateUser])
	require.Len(t, store.users, 1)
	assert.Equal(t, "Second", store.users[0].NombreCompleto)
	assert.True(t, store.users[0].EsVip)
}

func TestLegacyImport_ExactTrueForFlags(t *testing.T) {
	store := newMockStore("1A")
	src := `<Datos>
  <Usuarios><Usuario email="a@x.com" esVip="TRUE"/></Usuarios>
  <Reservaciones><Reservacion>
    <asiento>1A</asiento><usuario>a@x.com</usuario>
    <pasajero><tieneEquipaje>True</tieneEquipaje></pasajero>
  </Reservacion></Reservaciones>
</Datos>`

	_, err := newTestPipeline(store).Import(context.Background(), parseDoc(t, src))

	require.NoError(t, err)
	require.Len(t, store.users, 1)
	assert.False(t, store.users[0].EsVip)
	require.Len(t, store.reservations, 1)
	assert.False(t, store.reservations[0].Pasajero.TieneEquipaje)
	assert.Equal(t, entities.SelectionManual, store.reservations[0].Detalles.MetodoSeleccion)
	assert.True(t, store.reservations[0].Detalles.PrecioBase.IsZero())
	assert.True(t, testNow.Equal(store.reservations[0].Detalles.FechaReservacion))
}

func TestLegacyImport_InvalidRecords(t *testing.T) {
	store := newMockStore("1A", "1C")
	store.users = []entities.User{{ID: 1, Email: "a@x.com"}}
	src := `<Datos>
  <Usuarios>
    <Usuario esVip="true"><nombreCompleto>No Email</nombreCompleto></Usuario>
  </Usuarios>
  <Asientos>
    <Asiento estado="Ocupado"/>
    <Asiento numero="1C" estado="Roto"/>
  </Asientos>
  <Reservaciones>
    <Reservacion><asiento>1A</asiento><usuario>a@x.com</usuario><detalles><precioBase>abc</precioBase></detalles></Reservacion>
    <Reservacion><asiento>1A</asiento><usuario>a@x.com</usuario><detalles><precioBase>-5</precioBase></detalles></Reservacion>
    <Reservacion><asiento>1A</asiento><usuario>a@x.com</usuario><detalles><precioBase>99.90</precioBase></detalles></Reservacion>
  </Reservaciones>
</Datos>`

	result, err := newTestPipeline(store).Import(context.Background(), parseDoc(t, src))

	require.NoError(t, err)
	assert.Equal(t, 1, result.Tally.OK)
	assert.Equal(t, 5, result.Tally.Fail)
	assert.Equal(t, 1, store.callsOfKind(KindCreateReservation))
	assert.Zero(t, store.callsOfKind(KindCreateUser))

	invalid := 0
	for _, f := range result.Tally.Failures {
		if f.Kind == KindInvalid {
			invalid++
		}
	}
	assert.Equal(t, 4, invalid)
}

func TestLegacyImport_ListUsersErrorIsTerminal(t *testing.T) {
	store := newMockStore()
	store.listUsersErr = errors.New("database is locked")

	_, err := newTestPipeline(store).Import(context.Background(),
		parseDoc(t, `<Usuarios><Usuario email="a@x.com"/></Usuarios>`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "usuarios")
	assert.Empty(t, store.calls)
}
