package proto

// Player is a display that stores a rectangle stream and plays it back.
type Player interface {
	Startup() error
	Shutdown() error

	SetLight(light uint8) error

	// Upload replaces the stored stream. The stream must end with the
	// sentinel.
	Upload(stream []byte) error
	// Play renders the stored stream once, or forever when loop is set,
	// waiting delay milliseconds between frames.
	Play(delay uint16, loop bool) error
}
