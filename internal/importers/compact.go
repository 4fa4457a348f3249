package importers

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/weengz-air/internal/batch"
	"github.com/mrlokans/weengz-air/internal/entities"
	"github.com/mrlokans/weengz-air/internal/xmldoc"
)

// CompactImporter handles flightReservation > flightSeat documents. The
// dialect carries no price or selection method, so every reservation is
// Manual at price 0.
type CompactImporter struct {
	deps Deps
}

func (c *CompactImporter) Dialect() Dialect { return DialectCompact }

func (c *CompactImporter) Stages(doc *xmldoc.Node) []Stage {
	return []Stage{{
		Name: "reservations",
		Plan: func(ctx context.Context) ([]batch.Operation, error) {
			seats := doc.ChildPairs("flightReservation", "flightSeat")
			ops := make([]batch.Operation, 0, len(seats))
			for _, seat := range seats {
				ops = append(ops, &createReservationOp{
					store:       c.deps.Store,
					reservation: c.convert(seat),
				})
			}
			return ops, nil
		},
	}}
}

func (c *CompactImporter) convert(seat *xmldoc.Node) entities.Reservation {
	return entities.Reservation{
		Asiento: trimmedText(seat, "seatNumber"),
		Usuario: trimmedText(seat, "user"),
		Pasajero: entities.Pasajero{
			NombreCompleto: trimmedText(seat, "passengerName"),
			CUI:            trimmedText(seat, "idNumber"),
			TieneEquipaje:  strings.EqualFold(trimmedText(seat, "hasLuggage"), "true"),
		},
		Detalles: entities.Detalles{
			FechaReservacion: c.deps.Dates.Normalize(trimmedText(seat, "reservationDate")),
			MetodoSeleccion:  entities.SelectionManual,
			PrecioBase:       decimal.Zero,
		},
	}
}

func trimmedText(n *xmldoc.Node, name string) string {
	text, _ := n.ChildText(name)
	return strings.TrimSpace(text)
}

func trimmedPathText(n *xmldoc.Node, path ...string) string {
	text, _ := n.PathText(path...)
	return strings.TrimSpace(text)
}
