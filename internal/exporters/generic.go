package exporters

import "github.com/mrlokans/weengz-air/internal/entities"

// ExportFilename is the download name of an interchange export.
const ExportFilename = "weengz-air-export.xml"

type ReservationSerializer interface {
	Serialize(reservations []entities.Reservation) ([]byte, int, error)
}
