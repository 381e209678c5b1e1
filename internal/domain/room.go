package domain

type RoomName string

// RoomCapacity is the number of peers a room pairs.
const RoomCapacity = 2
