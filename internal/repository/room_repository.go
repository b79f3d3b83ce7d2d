package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/meeting-room-booking/internal/model"
)

// RoomRepo provides CRUD operations for meeting rooms.  Rooms are only
// mutated by administrators; handlers enforce the role before calling in.
type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

// List returns all rooms ordered by name.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,location,capacity,amenities,created_at,updated_at FROM rooms ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Room, 0)
	for rows.Next() {
		var rm model.Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Location, &rm.Capacity, &rm.Amenities, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// Create inserts a room and returns its ID.
func (r *RoomRepo) Create(ctx context.Context, name, location string, capacity uint32, amenities string) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO rooms (name, location, capacity, amenities) VALUES (?,?,?,?)",
		name, location, capacity, amenities)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Update replaces all mutable fields of a room.  RowsAffected is not
// inspected here: the driver reports changed rows, not matched rows, so
// an update writing identical values would look like a missing room.
func (r *RoomRepo) Update(ctx context.Context, id uint64, name, location string, capacity uint32, amenities string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE rooms SET name=?, location=?, capacity=?, amenities=? WHERE id=?",
		name, location, capacity, amenities, id)
	return err
}

// Delete removes a room.  ErrRoomNotFound is returned when the id
// matches no row.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}
