package importers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weengz-air/internal/datefmt"
	"github.com/mrlokans/weengz-air/internal/entities"
	"github.com/mrlokans/weengz-air/internal/xmldoc"
)

var (
	errNotFound = errors.New("not found")
	errConflict = errors.New("conflict")
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// mockStore keeps state in memory and records every mutating call.
type mockStore struct {
	users        []entities.User
	seats        []entities.Seat
	reservations []entities.Reservation
	calls        []string

	listUsersErr error
}

func newMockStore(seatNumbers ...string) *mockStore {
	s := &mockStore{}
	for i, numero := range seatNumbers {
		s.seats = append(s.seats, entities.Seat{
			ID:     uint(i + 1),
			Numero: numero,
			Clase:  entities.SeatClassEconomy,
			Estado: entities.SeatStateFree,
		})
	}
	return s
}

func (s *mockStore) ListUsers(ctx context.Context) ([]entities.User, error) {
	if s.listUsersErr != nil {
		return nil, s.listUsersErr
	}
	return append([]entities.User(nil), s.users...), nil
}

func (s *mockStore) ListSeats(ctx context.Context) ([]entities.Seat, error) {
	return append([]entities.Seat(nil), s.seats...), nil
}

func (s *mockStore) CreateUser(ctx context.Context, user *entities.User) (*entities.User, error) {
	s.calls = append(s.calls, KindCreateUser+":"+user.Email)
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, errConflict
		}
	}
	created := *user
	created.ID = uint(len(s.users) + 1)
	s.users = append(s.users, created)
	return &created, nil
}

func (s *mockStore) UpdateUser(ctx context.Context, id uint, patch entities.UserPatch) (*entities.User, error) {
	s.calls = append(s.calls, fmt.Sprintf("%s:%d", KindUpdateUser, id))
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].NombreCompleto = patch.NombreCompleto
			s.users[i].EsVip = patch.EsVip
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, errNotFound
}

func (s *mockStore) UpdateSeat(ctx context.Context, id uint, patch entities.SeatPatch) (*entities.Seat, error) {
	s.calls = append(s.calls, fmt.Sprintf("%s:%d", KindUpdateSeat, id))
	if !patch.Estado.Valid() {
		return nil, fmt.Errorf("invalid state %q", patch.Estado)
	}
	for i := range s.seats {
		if s.seats[i].ID == id {
			s.seats[i].Estado = patch.Estado
			seat := s.seats[i]
			return &seat, nil
		}
	}
	return nil, errNotFound
}

func (s *mockStore) CreateReservationAtomic(ctx context.Context, reservation *entities.Reservation) (*entities.Reservation, error) {
	s.calls = append(s.calls, KindCreateReservation+":"+reservation.Asiento)

	if !s.hasUser(reservation.Usuario) {
		return nil, fmt.Errorf("%w: user %s", errNotFound, reservation.Usuario)
	}
	seat := s.seat(reservation.Asiento)
	if seat == nil {
		return nil, fmt.Errorf("%w: seat %s", errNotFound, reservation.Asiento)
	}
	if seat.Estado == entities.SeatStateOccupied {
		return nil, errConflict
	}
	seat.Estado = entities.SeatStateOccupied

	created := *reservation
	created.ID = uint(len(s.reservations) + 1)
	created.Estado = entities.ReservationActive
	s.reservations = append(s.reservations, created)
	return &created, nil
}

func (s *mockStore) hasUser(email string) bool {
	for _, u := range s.users {
		if u.Email == email {
			return true
		}
	}
	return false
}

func (s *mockStore) seat(numero string) *entities.Seat {
	for i := range s.seats {
		if s.seats[i].Numero == numero {
			return &s.seats[i]
		}
	}
	return nil
}

func (s *mockStore) callsOfKind(kind string) int {
	n := 0
	for _, c := range s.calls {
		if strings.HasPrefix(c, kind+":") {
			n++
		}
	}
	return n
}

func newTestPipeline(store *mockStore) *Pipeline {
	log, _ := test.NewNullLogger()
	return NewPipeline(nil, Deps{
		Store: store,
		Dates: &datefmt.Normalizer{Now: func() time.Time { return testNow }, Location: time.Local},
		Now:   func() time.Time { return testNow },
		Log:   log,
	})
}

func parseDoc(t *testing.T, src string) *xmldoc.Node {
	t.Helper()
	doc, err := xmldoc.Parse(strings.NewReader(src))
	require.NoError(t, err)
	return doc
}
