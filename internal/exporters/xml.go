package exporters

import (
	"encoding/xml"
	"fmt"

	"github.com/mrlokans/weengz-air/internal/datefmt"
	"github.com/mrlokans/weengz-air/internal/entities"
)

type flightReservationXML struct {
	XMLName xml.Name        `xml:"flightReservation"`
	Seats   []flightSeatXML `xml:"flightSeat"`
}

// Field order is part of the format.
type flightSeatXML struct {
	SeatNumber      string `xml:"seatNumber"`
	PassengerName   string `xml:"passengerName"`
	User            string `xml:"user"`
	IDNumber        string `xml:"idNumber"`
	HasLuggage      bool   `xml:"hasLuggage"`
	ReservationDate string `xml:"reservationDate"`
}

// XMLSerializer renders active reservations in the compact interchange
// format. Dates are written for people, in the formatter's locale; the
// importer reads them back.
type XMLSerializer struct {
	formatter *datefmt.Formatter
}

func NewXMLSerializer(formatter *datefmt.Formatter) *XMLSerializer {
	return &XMLSerializer{formatter: formatter}
}

// Serialize returns the document and the number of reservations written.
// Cancelled reservations are left out. Price, selection method and history
// are not part of the format.
func (s *XMLSerializer) Serialize(reservations []entities.Reservation) ([]byte, int, error) {
	doc := flightReservationXML{Seats: make([]flightSeatXML, 0, len(reservations))}

	for _, r := range reservations {
		if !r.IsActive() {
			continue
		}
		doc.Seats = append(doc.Seats, flightSeatXML{
			SeatNumber:      r.Asiento,
			PassengerName:   r.Pasajero.NombreCompleto,
			User:            r.Usuario,
			IDNumber:        r.Pasajero.CUI,
			HasLuggage:      r.Pasajero.TieneEquipaje,
			ReservationDate: s.formatter.Format(r.Detalles.FechaReservacion),
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode reservations: %w", err)
	}

	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, len(doc.Seats), nil
}
