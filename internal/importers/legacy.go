package importers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/weengz-air/internal/batch"
	"github.com/mrlokans/weengz-air/internal/entities"
	"github.com/mrlokans/weengz-air/internal/xmldoc"
)

// ErrInvalidRecord marks a legacy record that could not be mapped.
var ErrInvalidRecord = errors.New("invalid record")

// LegacyImporter handles Usuarios / Asientos / Reservaciones documents in
// three stages, users first and reservations last.
type LegacyImporter struct {
	deps Deps
}

func (l *LegacyImporter) Dialect() Dialect { return DialectLegacy }

func (l *LegacyImporter) Stages(doc *xmldoc.Node) []Stage {
	return []Stage{
		{Name: "usuarios", Plan: func(ctx context.Context) ([]batch.Operation, error) {
			return l.planUsers(ctx, doc)
		}},
		{Name: "asientos", Plan: func(ctx context.Context) ([]batch.Operation, error) {
			return l.planSeats(ctx, doc)
		}},
		{Name: "reservaciones", Plan: func(ctx context.Context) ([]batch.Operation, error) {
			return l.planReservations(doc), nil
		}},
	}
}

func (l *LegacyImporter) planUsers(ctx context.Context, doc *xmldoc.Node) ([]batch.Operation, error) {
	records := doc.ChildPairs("Usuarios", "Usuario")
	if len(records) == 0 {
		return nil, nil
	}

	existing, err := l.deps.Store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	index := newUserIndex(existing)

	ops := make([]batch.Operation, 0, len(records))
	for i, record := range records {
		email := trimmedAttr(record, "email")
		if email == "" {
			ops = append(ops, &invalidOp{
				key: fmt.Sprintf("Usuario[%d]", i+1),
				err: fmt.Errorf("%w: missing email", ErrInvalidRecord),
			})
			continue
		}

		ops = append(ops, &upsertUserOp{
			store:          l.deps.Store,
			index:          index,
			now:            l.deps.Now,
			email:          email,
			nombreCompleto: trimmedText(record, "nombreCompleto"),
			esVip:          trimmedAttr(record, "esVip") == "true",
		})
	}
	return ops, nil
}

func (l *LegacyImporter) planSeats(ctx context.Context, doc *xmldoc.Node) ([]batch.Operation, error) {
	records := doc.ChildPairs("Asientos", "Asiento")
	if len(records) == 0 {
		return nil, nil
	}

	fleet, err := l.deps.Store.ListSeats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}
	byNumero := make(map[string]entities.Seat, len(fleet))
	for _, seat := range fleet {
		byNumero[seat.Numero] = seat
	}

	ops := make([]batch.Operation, 0, len(records))
	for i, record := range records {
		numero := trimmedAttr(record, "numero")
		if numero == "" {
			ops = append(ops, &invalidOp{
				key: fmt.Sprintf("Asiento[%d]", i+1),
				err: fmt.Errorf("%w: missing numero", ErrInvalidRecord),
			})
			continue
		}

		estado := entities.SeatState(trimmedAttr(record, "estado"))
		if estado == "" {
			estado = entities.SeatStateFree
		}

		seat, ok := byNumero[numero]
		if !ok {
			ops = append(ops, &skipSeatOp{numero: numero})
			continue
		}
		ops = append(ops, &updateSeatOp{
			store:  l.deps.Store,
			id:     seat.ID,
			numero: numero,
			estado: estado,
		})
	}
	return ops, nil
}

func (l *LegacyImporter) planReservations(doc *xmldoc.Node) []batch.Operation {
	records := doc.ChildPairs("Reservaciones", "Reservacion")
	ops := make([]batch.Operation, 0, len(records))

	for i, record := range records {
		reservation := entities.Reservation{
			Asiento: trimmedText(record, "asiento"),
			Usuario: trimmedText(record, "usuario"),
			Pasajero: entities.Pasajero{
				NombreCompleto: trimmedPathText(record, "pasajero", "nombreCompleto"),
				CUI:            trimmedPathText(record, "pasajero", "cui"),
				TieneEquipaje:  trimmedPathText(record, "pasajero", "tieneEquipaje") == "true",
			},
			Detalles: entities.Detalles{
				FechaReservacion: l.deps.Dates.Normalize(trimmedPathText(record, "detalles", "fechaReservacion")),
				MetodoSeleccion:  entities.SelectionMethod(trimmedPathText(record, "detalles", "metodoSeleccion")),
			},
		}
		if reservation.Detalles.MetodoSeleccion == "" {
			reservation.Detalles.MetodoSeleccion = entities.SelectionManual
		}

		price, err := parsePrice(trimmedPathText(record, "detalles", "precioBase"))
		if err != nil {
			ops = append(ops, &invalidOp{
				key: fmt.Sprintf("Reservacion[%d] %s/%s", i+1, reservation.Asiento, reservation.Usuario),
				err: err,
			})
			continue
		}
		reservation.Detalles.PrecioBase = price

		ops = append(ops, &createReservationOp{store: l.deps.Store, reservation: reservation})
	}
	return ops
}

// parsePrice reads precioBase. Absent means 0; anything else must be a
// non-negative decimal.
func parsePrice(text string) (decimal.Decimal, error) {
	if text == "" {
		return decimal.Zero, nil
	}
	price, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: precioBase %q is not a number", ErrInvalidRecord, text)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: precioBase %s is negative", ErrInvalidRecord, text)
	}
	return price, nil
}

func trimmedAttr(n *xmldoc.Node, name string) string {
	value, _ := n.Attr(name)
	return strings.TrimSpace(value)
}
