package vkbackend

import (
	"bytes"
	"testing"
)

func rowOf(b byte, n int) []byte {
	row := make([]byte, n)
	for i := range row {
		row[i] = b
	}
	return row
}

func TestPadRowsIdentityWhenPitchMatches(t *testing.T) {
	pixels := append(rowOf(1, 16), rowOf(2, 16)...)
	got := padRows(pixels, 2, 16, 16)
	if &got[0] != &pixels[0] {
		t.Errorf("matching pitch should return the input slice unchanged")
	}
	if !bytes.Equal(got, pixels) {
		t.Errorf("pixels altered on identity path")
	}
}

func TestPadRowsRepacksToWiderPitch(t *testing.T) {
	const (
		height   = 3
		rowBytes = 4 * 4
		pitch    = 64
	)
	pixels := make([]byte, 0, height*rowBytes)
	for y := 0; y < height; y++ {
		pixels = append(pixels, rowOf(byte(y+1), rowBytes)...)
	}

	got := padRows(pixels, height, rowBytes, pitch)
	if len(got) != height*pitch {
		t.Fatalf("padded length = %d, want %d", len(got), height*pitch)
	}
	for y := 0; y < height; y++ {
		row := got[y*pitch : y*pitch+rowBytes]
		if !bytes.Equal(row, rowOf(byte(y+1), rowBytes)) {
			t.Errorf("row %d content lost after repacking", y)
		}
		pad := got[y*pitch+rowBytes : (y+1)*pitch]
		if !bytes.Equal(pad, make([]byte, pitch-rowBytes)) {
			t.Errorf("row %d padding not zeroed", y)
		}
	}
}

func TestPadRowsSingleRow(t *testing.T) {
	pixels := rowOf(7, 8)
	got := padRows(pixels, 1, 8, 32)
	if len(got) != 32 {
		t.Fatalf("padded length = %d, want 32", len(got))
	}
	if !bytes.Equal(got[:8], pixels) {
		t.Errorf("row content lost")
	}
}
