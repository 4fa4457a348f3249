package importers

import (
	"context"
	"sync"
	"time"

	"github.com/mrlokans/weengz-air/internal/batch"
	"github.com/mrlokans/weengz-air/internal/entities"
)

const (
	KindCreateUser        = "CreateUser"
	KindUpdateUser        = "UpdateUser"
	KindUpdateSeat        = "UpdateSeat"
	KindSkipSeat          = "SkipSeat"
	KindCreateReservation = "CreateReservationAtomic"
	KindInvalid           = "Invalid"
)

// userIndex maps email to user ID. It is seeded from the store when the
// users stage starts and grows as users are created.
type userIndex struct {
	mu     sync.Mutex
	byMail map[string]uint
}

func newUserIndex(users []entities.User) *userIndex {
	idx := &userIndex{byMail: make(map[string]uint, len(users))}
	for _, u := range users {
		idx.byMail[u.Email] = u.ID
	}
	return idx
}

func (i *userIndex) lookup(email string) (uint, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	id, ok := i.byMail[email]
	return id, ok
}

func (i *userIndex) add(email string, id uint) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.byMail[email] = id
}

// upsertUserOp decides between create and update when it is applied, so a
// repeated email in one document updates the user created earlier.
type upsertUserOp struct {
	store          Store
	index          *userIndex
	now            func() time.Time
	email          string
	nombreCompleto string
	esVip          bool
}

func (o *upsertUserOp) Kind() string {
	if _, ok := o.index.lookup(o.email); ok {
		return KindUpdateUser
	}
	return KindCreateUser
}

func (o *upsertUserOp) Key() string { return o.email }

func (o *upsertUserOp) Apply(ctx context.Context) (batch.Outcome, error) {
	if id, ok := o.index.lookup(o.email); ok {
		_, err := o.store.UpdateUser(ctx, id, entities.UserPatch{
			NombreCompleto: o.nombreCompleto,
			EsVip:          o.esVip,
		})
		return batch.Outcome{Kind: KindUpdateUser, Key: o.email}, err
	}

	created, err := o.store.CreateUser(ctx, &entities.User{
		Email:          o.email,
		NombreCompleto: o.nombreCompleto,
		EsVip:          o.esVip,
		FechaCreacion:  o.now(),
	})
	if err != nil {
		return batch.Outcome{Kind: KindCreateUser, Key: o.email}, err
	}
	o.index.add(created.Email, created.ID)
	return batch.Outcome{Kind: KindCreateUser, Key: o.email}, nil
}

type updateSeatOp struct {
	store  Store
	id     uint
	numero string
	estado entities.SeatState
}

func (o *updateSeatOp) Kind() string { return KindUpdateSeat }
func (o *updateSeatOp) Key() string  { return o.numero }

func (o *updateSeatOp) Apply(ctx context.Context) (batch.Outcome, error) {
	_, err := o.store.UpdateSeat(ctx, o.id, entities.SeatPatch{Estado: o.estado})
	return batch.Outcome{Kind: KindUpdateSeat, Key: o.numero}, err
}

// skipSeatOp stands for a seat that is not in the fleet. Import never
// creates seats; the record succeeds and is reported as skipped.
type skipSeatOp struct {
	numero string
}

func (o *skipSeatOp) Kind() string { return KindSkipSeat }
func (o *skipSeatOp) Key() string  { return o.numero }

func (o *skipSeatOp) Apply(context.Context) (batch.Outcome, error) {
	return batch.Outcome{Kind: KindSkipSeat, Key: o.numero, Skipped: true}, nil
}

type createReservationOp struct {
	store       Store
	reservation entities.Reservation
}

func (o *createReservationOp) Kind() string { return KindCreateReservation }

func (o *createReservationOp) Key() string {
	return o.reservation.Asiento + "/" + o.reservation.Usuario
}

func (o *createReservationOp) Apply(ctx context.Context) (batch.Outcome, error) {
	reservation := o.reservation
	_, err := o.store.CreateReservationAtomic(ctx, &reservation)
	return batch.Outcome{Kind: KindCreateReservation, Key: o.Key()}, err
}

// invalidOp carries a record that could not be mapped. It always fails.
type invalidOp struct {
	key string
	err error
}

func (o *invalidOp) Kind() string { return KindInvalid }
func (o *invalidOp) Key() string  { return o.key }

func (o *invalidOp) Apply(context.Context) (batch.Outcome, error) {
	return batch.Outcome{Kind: KindInvalid, Key: o.key}, o.err
}
