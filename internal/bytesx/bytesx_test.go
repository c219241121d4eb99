package bytesx

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestWriteInt16(t *testing.T) {
	t.Run("encodes negative sentinels as two bytes", func(t *testing.T) {
		buf := &bytes.Buffer{}
		if err := WriteInt16(buf, -1); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(buf.Bytes(), []byte{0xff, 0xff}) {
			t.Fatal("unexpected encoding", buf.Bytes())
		}
	})

	t.Run("fails for values that do not fit", func(t *testing.T) {
		buf := &bytes.Buffer{}
		if err := WriteInt16(buf, math.MaxInt16+1); !errors.Is(err, ErrEncodeField) {
			t.Fatal("expected ErrEncodeField, got", err)
		}
	})
}

func TestReadInt16(t *testing.T) {
	t.Run("round trips with WriteInt16", func(t *testing.T) {
		for _, value := range []int{-1, 0, 5, 11, math.MaxInt16} {
			buf := &bytes.Buffer{}
			if err := WriteInt16(buf, value); err != nil {
				t.Fatal(err)
			}
			got, err := ReadInt16(buf)
			if err != nil {
				t.Fatal(err)
			}
			if got != value {
				t.Fatalf("expected %d, got %d", value, got)
			}
		}
	})

	t.Run("fails with a short buffer", func(t *testing.T) {
		buf := bytes.NewBuffer([]byte{0x01})
		if _, err := ReadInt16(buf); !errors.Is(err, ErrDecodeField) {
			t.Fatal("expected ErrDecodeField, got", err)
		}
	})
}

func TestReadInt32(t *testing.T) {
	t.Run("round trips with WriteInt32", func(t *testing.T) {
		for _, value := range []int{-2, 0, 2070, math.MaxInt32} {
			buf := &bytes.Buffer{}
			if err := WriteInt32(buf, value); err != nil {
				t.Fatal(err)
			}
			got, err := ReadInt32(buf)
			if err != nil {
				t.Fatal(err)
			}
			if got != value {
				t.Fatalf("expected %d, got %d", value, got)
			}
		}
	})

	t.Run("fails with a short buffer", func(t *testing.T) {
		buf := bytes.NewBuffer([]byte{0x01, 0x02})
		if _, err := ReadInt32(buf); !errors.Is(err, ErrDecodeField) {
			t.Fatal("expected ErrDecodeField, got", err)
		}
	})
}
