package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

const wavFormatPCM = 1

// Format describes decoded PCM samples.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DecodeWAV parses a RIFF/WAVE file and returns its format and raw sample data.
// Only uncompressed 16-bit little-endian PCM is accepted, since that is what
// the playback context is opened with.
func DecodeWAV(data []byte) (Format, []byte, error) {
	var format Format
	reader := bytes.NewReader(data)

	var header [12]byte
	if _, err := io.ReadFull(reader, header[:]); err != nil {
		return format, nil, fmt.Errorf("%w: short header", ErrUnsupportedFormat)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return format, nil, fmt.Errorf("%w: not a RIFF/WAVE file", ErrUnsupportedFormat)
	}

	var sawFmt bool
	var audioFormat uint16
	for {
		var chunkID [4]byte
		if _, err := io.ReadFull(reader, chunkID[:]); err != nil {
			return format, nil, fmt.Errorf("%w: missing data chunk", ErrUnsupportedFormat)
		}
		var chunkSize uint32
		if err := binary.Read(reader, binary.LittleEndian, &chunkSize); err != nil {
			return format, nil, fmt.Errorf("%w: truncated chunk header", ErrUnsupportedFormat)
		}

		switch string(chunkID[:]) {
		case "fmt ":
			if chunkSize < 16 {
				return format, nil, fmt.Errorf("%w: fmt chunk too small", ErrUnsupportedFormat)
			}
			var raw struct {
				AudioFormat   uint16
				Channels      uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
				return format, nil, fmt.Errorf("%w: truncated fmt chunk", ErrUnsupportedFormat)
			}
			audioFormat = raw.AudioFormat
			format = Format{
				SampleRate: int(raw.SampleRate),
				Channels:   int(raw.Channels),
				BitDepth:   int(raw.BitsPerSample),
			}
			if err := skip(reader, int64(chunkSize)-16); err != nil {
				return format, nil, err
			}
			sawFmt = true
		case "data":
			if !sawFmt {
				return format, nil, fmt.Errorf("%w: data before fmt chunk", ErrUnsupportedFormat)
			}
			if audioFormat != wavFormatPCM || format.BitDepth != 16 {
				return format, nil, fmt.Errorf("%w: need 16-bit PCM, got format %d with %d bits",
					ErrUnsupportedFormat, audioFormat, format.BitDepth)
			}
			if format.Channels < 1 || format.SampleRate <= 0 {
				return format, nil, fmt.Errorf("%w: %d channels at %d Hz", ErrUnsupportedFormat, format.Channels, format.SampleRate)
			}
			size := int(chunkSize)
			if size > reader.Len() {
				// Streams written without a final size carry a bogus length; take what is there.
				size = reader.Len()
			}
			samples := make([]byte, size)
			if _, err := io.ReadFull(reader, samples); err != nil {
				return format, nil, fmt.Errorf("reading sample data: %w", err)
			}
			return format, samples, nil
		default:
			if err := skip(reader, int64(chunkSize)); err != nil {
				return format, nil, err
			}
		}
		// Chunks are word aligned.
		if chunkSize%2 == 1 {
			_ = skip(reader, 1)
		}
	}
}

func skip(r *bytes.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	if n > int64(r.Len()) {
		return fmt.Errorf("%w: chunk overruns file", ErrUnsupportedFormat)
	}
	_, err := r.Seek(n, io.SeekCurrent)
	return err
}

// EncodeWAV wraps 16-bit PCM samples in a minimal RIFF/WAVE container.
func EncodeWAV(format Format, samples []byte) []byte {
	blockAlign := format.Channels * format.BitDepth / 8
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(samples)))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, struct {
		Size          uint32
		AudioFormat   uint16
		Channels      uint16
		SampleRate    uint32
		ByteRate      uint32
		BlockAlign    uint16
		BitsPerSample uint16
	}{
		Size:          16,
		AudioFormat:   wavFormatPCM,
		Channels:      uint16(format.Channels),
		SampleRate:    uint32(format.SampleRate),
		ByteRate:      uint32(format.SampleRate * blockAlign),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: uint16(format.BitDepth),
	})
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(samples)))
	buf.Write(samples)
	return buf.Bytes()
}
