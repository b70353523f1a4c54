package audio

import "io"

// Backend opens players for decoded PCM streams.
type Backend interface {
	NewPlayer(format Format, r io.Reader) (Player, error)
}

// Player plays one pass over its reader. The method set matches *oto.Player.
type Player interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(volume float64)
	Close() error
}
