package wire

import (
	"errors"
	"io"
	"testing"
)

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16383, 16384, 1<<32 - 1, 1<<63 - 1, ^uint64(0)}
	e := NewEncoder()
	for _, v := range values {
		e.WriteUvarint(v)
	}
	d := NewDecoder(e.Bytes())
	for _, want := range values {
		got, err := d.ReadUvarint()
		if err != nil {
			t.Fatalf("read %d: %v", want, err)
		}
		if got != want {
			t.Errorf("got %d, want %d", got, want)
		}
	}
	if !d.EOF() {
		t.Errorf("%d bytes left over", d.Remaining())
	}
}

func TestUvarintTruncated(t *testing.T) {
	d := NewDecoder([]byte{0x80, 0x80})
	if _, err := d.ReadUvarint(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v", err)
	}
}

func TestUvarintOverflow(t *testing.T) {
	buf := make([]byte, 11)
	for i := range buf {
		buf[i] = 0x80
	}
	if _, err := NewDecoder(buf).ReadUvarint(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("err = %v", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	e := NewEncoder()
	e.WriteString("")
	e.WriteString("hello")
	e.WriteString("héllo ✓")
	d := NewDecoder(e.Bytes())
	for _, want := range []string{"", "hello", "héllo ✓"} {
		got, err := d.ReadString()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
}

func TestStringLengthBeyondBuffer(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(1000)
	e.WriteByte('x')
	if _, err := NewDecoder(e.Bytes()).ReadString(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v", err)
	}
}

func TestBoolRejectsJunk(t *testing.T) {
	if _, err := NewDecoder([]byte{0x02}).ReadBool(); !errors.Is(err, ErrInvalidBool) {
		t.Errorf("err = %v", err)
	}
}

func TestCountLimit(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(MaxCollectionCount + 1)
	if _, err := NewDecoder(e.Bytes()).ReadCount(); !errors.Is(err, ErrCollectionTooLarge) {
		t.Errorf("err = %v", err)
	}
}

func TestEncoderReset(t *testing.T) {
	e := NewEncoder()
	e.WriteString("data")
	e.Reset()
	if e.Len() != 0 {
		t.Errorf("len after reset = %d", e.Len())
	}
}
