package model

import "time"

// Booking mirrors the `bookings` table.  Intervals are half-open:
// [StartTime, EndTime).  Two bookings for the same room must never
// overlap; the predicate below is the single source of truth for what
// "overlap" means, and the repository's SQL mirrors it exactly.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the booking.
//  RoomID    – room being reserved.
//  StartTime – start of the reserved slot (UTC).
//  EndTime   – end of the reserved slot (UTC).
//  CreatedAt – timestamp of creation.
type Booking struct {
	ID        uint64    // bookings.id
	UserID    uint64    // bookings.user_id
	RoomID    uint64    // bookings.room_id
	StartTime time.Time // bookings.start_time
	EndTime   time.Time // bookings.end_time
	CreatedAt time.Time // bookings.created_at
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.  A booking ending exactly when another
// starts is not a conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !(!aEnd.After(bStart) || !aStart.Before(bEnd))
}
