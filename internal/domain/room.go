package domain

type RoomID string

func NewRoomID(raw string) (RoomID, error) {
	if raw == "" {
		return "", ErrRoomIDEmpty
	}
	return RoomID(raw), nil
}
