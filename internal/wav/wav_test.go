package wav

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestEncode_HeaderFields(t *testing.T) {
	tests := []struct {
		name    string
		pcmLen  int
		rate    int
		chans   int
		bits    int
	}{
		{name: "empty payload", pcmLen: 0, rate: 24000, chans: 1, bits: 16},
		{name: "one sample", pcmLen: 2, rate: 24000, chans: 1, bits: 16},
		{name: "typical narration", pcmLen: 48000, rate: 24000, chans: 1, bits: 16},
		{name: "stereo 44k", pcmLen: 1764, rate: 44100, chans: 2, bits: 16},
		{name: "8-bit", pcmLen: 100, rate: 8000, chans: 1, bits: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pcm := make([]byte, tt.pcmLen)
			for i := range pcm {
				pcm[i] = byte(i)
			}
			out := Encode(pcm, tt.rate, tt.chans, tt.bits)

			if got, want := len(out), 44+tt.pcmLen; got != want {
				t.Fatalf("total length = %d, want %d", got, want)
			}
			if string(out[0:4]) != "RIFF" || string(out[8:12]) != "WAVE" || string(out[12:16]) != "fmt " || string(out[36:40]) != "data" {
				t.Fatalf("container magic bytes wrong: %q %q %q %q", out[0:4], out[8:12], out[12:16], out[36:40])
			}
			if got, want := binary.LittleEndian.Uint32(out[4:8]), uint32(36+tt.pcmLen); got != want {
				t.Errorf("RIFF chunk size = %d, want %d", got, want)
			}
			if got := binary.LittleEndian.Uint16(out[20:22]); got != 1 {
				t.Errorf("format tag = %d, want 1 (PCM)", got)
			}
			if got := binary.LittleEndian.Uint16(out[22:24]); got != uint16(tt.chans) {
				t.Errorf("channels = %d, want %d", got, tt.chans)
			}
			if got := binary.LittleEndian.Uint32(out[24:28]); got != uint32(tt.rate) {
				t.Errorf("sample rate = %d, want %d", got, tt.rate)
			}
			wantByteRate := uint32(tt.rate * tt.chans * tt.bits / 8)
			if got := binary.LittleEndian.Uint32(out[28:32]); got != wantByteRate {
				t.Errorf("byte rate = %d, want %d", got, wantByteRate)
			}
			wantBlockAlign := uint16(tt.chans * tt.bits / 8)
			if got := binary.LittleEndian.Uint16(out[32:34]); got != wantBlockAlign {
				t.Errorf("block align = %d, want %d", got, wantBlockAlign)
			}
			if got := binary.LittleEndian.Uint16(out[34:36]); got != uint16(tt.bits) {
				t.Errorf("bits per sample = %d, want %d", got, tt.bits)
			}
			if got, want := binary.LittleEndian.Uint32(out[40:44]), uint32(tt.pcmLen); got != want {
				t.Errorf("data chunk size = %d, want %d", got, want)
			}
			if !bytes.Equal(out[44:], pcm) {
				t.Errorf("payload was modified")
			}
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04, 0xFF, 0xFE}
	a := Encode(pcm, 24000, 1, 16)
	b := Encode(pcm, 24000, 1, 16)
	if !bytes.Equal(a, b) {
		t.Fatal("encoding the same PCM twice produced different bytes")
	}
}

func TestEncodeDefault(t *testing.T) {
	pcm := make([]byte, 480)
	out := EncodeDefault(pcm)
	if got := binary.LittleEndian.Uint32(out[24:28]); got != DefaultSampleRate {
		t.Errorf("sample rate = %d, want %d", got, DefaultSampleRate)
	}
	if got := binary.LittleEndian.Uint16(out[22:24]); got != DefaultChannels {
		t.Errorf("channels = %d, want %d", got, DefaultChannels)
	}
	if got := binary.LittleEndian.Uint16(out[34:36]); got != DefaultBitsPerSample {
		t.Errorf("bits per sample = %d, want %d", got, DefaultBitsPerSample)
	}
}
