package core

import (
	"bytes"
	"testing"
)

func TestBinary_ToBinary(t *testing.T) {
	ins := newTestInstance()

	out := evalText(t, ins, `to-binary "abc"`)
	if !bytes.Equal(out.Bytes(), []byte("abc")) {
		t.Errorf("to-binary of text = % x", out.Bytes())
	}

	out = evalText(t, ins, "to-binary [0 1 255]")
	if !bytes.Equal(out.Bytes(), []byte{0, 1, 255}) {
		t.Errorf("to-binary of block = % x", out.Bytes())
	}

	out = evalText(t, ins, "to-binary 258")
	if !bytes.Equal(out.Bytes(), []byte{0, 0, 0, 0, 0, 0, 1, 2}) {
		t.Errorf("to-binary of integer = % x", out.Bytes())
	}

	ge := evalError(t, ins, "to-binary [300]")
	if ge.ID != "type-mismatch" {
		t.Errorf("out-of-range byte error id = %s", ge.ID)
	}
}

func TestBinary_BitsOfAndJoin(t *testing.T) {
	ins := newTestInstance()
	evalInt(t, ins, "bits-of #{CAFE}", 16)
	evalInt(t, ins, "bits-of #{}", 0)

	out := evalText(t, ins, "join-binary #{DEAD} #{BEEF}")
	if !bytes.Equal(out.Bytes(), []byte{0xDE, 0xAD, 0xBE, 0xEF}) {
		t.Errorf("join-binary = % x", out.Bytes())
	}
}

func TestBinary_PackBits(t *testing.T) {
	ins := newTestInstance()

	// 5 in 3 bits then 6 in 5 bits: 101 00110.
	out := evalText(t, ins, "pack-bits [5 3 6 5]")
	if !bytes.Equal(out.Bytes(), []byte{0xA6}) {
		t.Errorf("pack-bits [5 3 6 5] = % x, want a6", out.Bytes())
	}

	// A 4-bit version field and a 12-bit length across a byte border.
	out = evalText(t, ins, "pack-bits [4 4 258 12]")
	if !bytes.Equal(out.Bytes(), []byte{0x41, 0x02}) {
		t.Errorf("pack-bits [4 4 258 12] = % x, want 41 02", out.Bytes())
	}

	ge := evalError(t, ins, "pack-bits [1 3]")
	if ge.ID != "type-mismatch" {
		t.Errorf("unaligned total error id = %s", ge.ID)
	}
	ge = evalError(t, ins, "pack-bits [1 3 2]")
	if ge.ID != "type-mismatch" {
		t.Errorf("odd pair count error id = %s", ge.ID)
	}
}

func TestBinary_UnpackBits(t *testing.T) {
	ins := newTestInstance()

	out := evalText(t, ins, "unpack-bits #{A6} [3 5]")
	if got := ins.MoldCell(&out); got != "[5 6]" {
		t.Errorf("unpack-bits #{A6} [3 5] = %s", got)
	}

	out = evalText(t, ins, "unpack-bits pack-bits [4 4 258 12] [4 12]")
	if got := ins.MoldCell(&out); got != "[4 258]" {
		t.Errorf("unpack round trip = %s", got)
	}

	// Widths must consume the data exactly.
	ge := evalError(t, ins, "unpack-bits #{A6} [3]")
	if ge.ID != "type-mismatch" {
		t.Errorf("short widths error id = %s", ge.ID)
	}
}
