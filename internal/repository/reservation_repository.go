package repository

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/iliyamo/bus-seat-reservation/internal/model"
)

// ReservationRepo provides document CRUD for reservations on a MongoDB
// collection.  One document per reserved seat; the absence of a
// document means the seat is free, so freeing a seat is a deletion and
// never an update.
type ReservationRepo struct {
	col *mongo.Collection
}

// NewReservationRepo returns a ReservationRepo bound to the given
// collection.
func NewReservationRepo(col *mongo.Collection) *ReservationRepo {
	return &ReservationRepo{col: col}
}

// EnsureIndexes creates the unique index on (lugar, dia, horario).
// The index is the store-level guarantee that no two bookings can both
// succeed for the same seat and slot, regardless of client timing; the
// engine's read-validate-write sequence alone cannot close that window
// when several clients share the database.
func (r *ReservationRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "lugar", Value: 1},
			{Key: "dia", Value: 1},
			{Key: "horario", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("uniq_lugar_dia_horario"),
	})
	if err != nil {
		return fmt.Errorf("create reservation index: %w", err)
	}
	return nil
}

// Insert durably adds one reservation.  A unique-index violation is
// reported as ErrDuplicateReservation; any other failure wraps
// ErrStoreUnavailable.
func (r *ReservationRepo) Insert(ctx context.Context, res model.Reservation) error {
	_, err := r.col.InsertOne(ctx, res)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateReservation
	}
	if err != nil {
		return fmt.Errorf("%w: insert: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteOne removes at most one document matching the (seat, date,
// time) key and reports whether a document was actually removed.
// Removing a missing key is not an error; callers decide whether a
// zero-match delete is worth flagging.
func (r *ReservationRepo) DeleteOne(ctx context.Context, seat int, date, departure string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"lugar": seat, "dia": date, "horario": departure})
	if err != nil {
		return false, fmt.Errorf("%w: delete: %v", ErrStoreUnavailable, err)
	}
	return res.DeletedCount > 0, nil
}

// FindBySlot returns every reservation stored for one departure slot.
// Both fields are matched by exact equality, the only comparison the
// document format supports.
func (r *ReservationRepo) FindBySlot(ctx context.Context, date, departure string) ([]model.Reservation, error) {
	return r.find(ctx, bson.M{"dia": date, "horario": departure})
}

// FindAll returns a snapshot of the whole collection in store order.
func (r *ReservationRepo) FindAll(ctx context.Context) ([]model.Reservation, error) {
	return r.find(ctx, bson.M{})
}

func (r *ReservationRepo) find(ctx context.Context, filter bson.M) ([]model.Reservation, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: find: %v", ErrStoreUnavailable, err)
	}
	defer cur.Close(ctx)
	out := make([]model.Reservation, 0)
	for cur.Next(ctx) {
		var res model.Reservation
		if err := cur.Decode(&res); err != nil {
			// A malformed document must not break occupancy queries.
			log.Printf("repository: skipping undecodable reservation: %v", err)
			continue
		}
		out = append(out, res)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: cursor: %v", ErrStoreUnavailable, err)
	}
	return out, nil
}
