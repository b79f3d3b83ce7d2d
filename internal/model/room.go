package model

import "time"

// Room mirrors the `rooms` table.  Rooms are created, updated and
// deleted by administrators only; employees read them when booking.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – display name of the room.
//  Location  – building/floor description.
//  Capacity  – maximum number of attendees.
//  Amenities – free text (projector, whiteboard, ...).
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Room struct {
	ID        uint64    `json:"id"`         // rooms.id
	Name      string    `json:"name"`       // rooms.name
	Location  string    `json:"location"`   // rooms.location
	Capacity  uint32    `json:"capacity"`   // rooms.capacity
	Amenities string    `json:"amenities"`  // rooms.amenities
	CreatedAt time.Time `json:"created_at"` // rooms.created_at
	UpdatedAt time.Time `json:"updated_at"` // rooms.updated_at
}
