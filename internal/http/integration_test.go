package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weengz-air/internal/database"
	"github.com/mrlokans/weengz-air/internal/datefmt"
	"github.com/mrlokans/weengz-air/internal/entities"
	"github.com/mrlokans/weengz-air/internal/exporters"
	"github.com/mrlokans/weengz-air/internal/metrics"
	"github.com/mrlokans/weengz-air/internal/services"
)

const legacyDoc = `<?xml version="1.0" encoding="UTF-8"?>
<WeengzAir>
  <Usuarios>
    <Usuario email="ana@example.com" esVip="false">
      <nombreCompleto>Ana Lopez</nombreCompleto>
    </Usuario>
  </Usuarios>
  <Reservaciones>
    <Reservacion>
      <asiento>15C</asiento>
      <usuario>ana@example.com</usuario>
      <pasajero>
        <nombreCompleto>Ana Lopez</nombreCompleto>
        <cui>1234567890101</cui>
        <tieneEquipaje>true</tieneEquipaje>
      </pasajero>
      <detalles>
        <fechaReservacion>2024-03-05T09:07:03</fechaReservacion>
        <metodoSeleccion>Manual</metodoSeleccion>
        <precioBase>450.00</precioBase>
      </detalles>
    </Reservacion>
  </Reservaciones>
</WeengzAir>`

func setupIntegrationRouter(t *testing.T) http.Handler {
	t.Helper()
	log, _ := test.NewNullLogger()

	db, err := database.NewDatabase(database.DriverSQLite, filepath.Join(t.TempDir(), "http.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := database.NewStore(db)
	formatter, err := datefmt.NewFormatter("es-GT", time.Local)
	require.NoError(t, err)
	m := metrics.New()

	svc := services.NewInterchangeService(services.InterchangeConfig{
		Store:      store,
		Serializer: exporters.NewXMLSerializer(formatter),
		Metrics:    m,
		Log:        log,
	})

	return NewRouter(RouterConfig{
		Interchange: svc,
		Listings:    store,
		Database:    db,
		Metrics:     m.Handler(),
		Log:         log,
	})
}

func TestIntegration_ImportListExport(t *testing.T) {
	router := setupIntegrationRouter(t)

	w := postXML(t, router, "/api/xml/import", legacyDoc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary services.ImportSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.True(t, summary.Recognized)
	assert.Equal(t, 0, summary.Fail)
	assert.Equal(t, "Import finished. Successes: 2, Failures: 0.", summary.Message)

	var seats listing[entities.Seat]
	require.Equal(t, http.StatusOK, getJSON(t, router, "/api/asientos?estado=Ocupado", &seats))
	require.Len(t, seats.Data, 1)
	assert.Equal(t, "15C", seats.Data[0].Numero)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/xml/export", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Export-Count"))
	assert.Contains(t, w.Body.String(), "<seatNumber>15C</seatNumber>")
	assert.Contains(t, w.Body.String(), "5/3/2024, 09:07:03")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "weengz_air_imports_total"))
}

func TestIntegration_ParseFailure(t *testing.T) {
	router := setupIntegrationRouter(t)

	w := postXML(t, router, "/api/xml/import", "<Usuarios><Usuario>")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"error processing XML"}`, w.Body.String())
}

func TestIntegration_Health(t *testing.T) {
	router := setupIntegrationRouter(t)

	var got HealthResponse
	require.Equal(t, http.StatusOK, getJSON(t, router, "/health", &got))
	assert.Equal(t, "ok", got.Checks["database"])
}
