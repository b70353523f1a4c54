package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoBackend plays through the system audio device. oto allows a single
// context per process, so it is created lazily with the first clip's format
// and later clips must share that format.
type OtoBackend struct {
	once   sync.Once
	ctx    *oto.Context
	format Format
	err    error
}

func NewOtoBackend() *OtoBackend {
	return &OtoBackend{}
}

func (b *OtoBackend) init(format Format) {
	b.once.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatSignedInt16LE,
		}
		ctx, ready, err := oto.NewContext(op)
		if err != nil {
			b.err = fmt.Errorf("initializing audio context: %w", err)
			return
		}
		// Wait for the hardware audio devices to be ready.
		<-ready
		b.ctx = ctx
		b.format = format
	})
}

func (b *OtoBackend) NewPlayer(format Format, r io.Reader) (Player, error) {
	b.init(format)
	if b.err != nil {
		return nil, b.err
	}
	if format != b.format {
		return nil, fmt.Errorf("%w: device opened at %d Hz/%d ch, clip is %d Hz/%d ch",
			ErrUnsupportedFormat, b.format.SampleRate, b.format.Channels, format.SampleRate, format.Channels)
	}
	return b.ctx.NewPlayer(r), nil
}
