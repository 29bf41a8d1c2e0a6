package wav

import (
	"bytes"
	"encoding/binary"
)

// Default PCM parameters as delivered by the narration endpoint
// (16-bit little-endian mono at 24 kHz).
const (
	DefaultSampleRate    = 24000
	DefaultChannels      = 1
	DefaultBitsPerSample = 16
)

// headerSize is the fixed RIFF/WAVE header length in bytes.
const headerSize = 44

// Encode wraps raw little-endian PCM samples in a WAV container.
// The PCM payload is not inspected; sample rate and format are the caller's
// contract with the audio source. Output is deterministic: identical input
// yields byte-identical output.
func Encode(pcm []byte, sampleRate, channels, bitsPerSample int) []byte {
	bytesPerSample := bitsPerSample / 8
	blockAlign := channels * bytesPerSample
	byteRate := sampleRate * blockAlign
	dataSize := len(pcm)
	chunkSize := 36 + dataSize

	buf := bytes.NewBuffer(make([]byte, 0, headerSize+dataSize))
	binary.Write(buf, binary.LittleEndian, []byte("RIFF"))
	binary.Write(buf, binary.LittleEndian, uint32(chunkSize))
	binary.Write(buf, binary.LittleEndian, []byte("WAVE"))
	binary.Write(buf, binary.LittleEndian, []byte("fmt "))
	binary.Write(buf, binary.LittleEndian, uint32(16)) // fmt chunk size
	binary.Write(buf, binary.LittleEndian, uint16(1))  // PCM format tag
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))
	binary.Write(buf, binary.LittleEndian, []byte("data"))
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(pcm)

	return buf.Bytes()
}

// EncodeDefault wraps PCM using the narration endpoint defaults.
func EncodeDefault(pcm []byte) []byte {
	return Encode(pcm, DefaultSampleRate, DefaultChannels, DefaultBitsPerSample)
}
