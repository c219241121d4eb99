package arqtest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/netemlab/minisr/internal/model"
)

func Test_NewTestPacketFromString(t *testing.T) {
	type args struct {
		s string
	}
	tests := []struct {
		name    string
		args    args
		want    *TestPacket
		wantErr bool
	}{
		{
			name: "parse data packet",
			args: args{"[3] DATA +2t"},
			want: &TestPacket{
				Kind: "DATA",
				Num:  3,
				IAT:  2,
			},
			wantErr: false,
		},
		{
			name: "parse ack packet",
			args: args{"[0] ACK +1t"},
			want: &TestPacket{
				Kind: "ACK",
				Num:  0,
				IAT:  1,
			},
			wantErr: false,
		},
		{
			name: "parse corrupt ack",
			args: args{"[5] ACK! +0.5t"},
			want: &TestPacket{
				Kind:    "ACK",
				Num:     5,
				Corrupt: true,
				IAT:     0.5,
			},
			wantErr: false,
		},
		{
			name:    "missing inter-arrival time",
			args:    args{"[3] DATA"},
			want:    nil,
			wantErr: true,
		},
		{
			name:    "unknown kind",
			args:    args{"[3] NACK +1t"},
			want:    nil,
			wantErr: true,
		},
		{
			name:    "bad num",
			args:    args{"[x] DATA +1t"},
			want:    nil,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTestPacketFromString(tt.args.s)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTestPacketFromString() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Error(diff)
			}
		})
	}
}

func Test_MustParseSequence(t *testing.T) {
	t.Run("range notation expands to one packet per num", func(t *testing.T) {
		got := MustParseSequence([]string{"[0..3] DATA +1t"})
		if len(got) != 4 {
			t.Fatalf("expected 4 packets, got %d", len(got))
		}
		for i, tp := range got {
			if tp.Num != i {
				t.Errorf("packet %d: expected num %d, got %d", i, i, tp.Num)
			}
			if tp.Kind != "DATA" {
				t.Errorf("packet %d: expected DATA, got %s", i, tp.Kind)
			}
		}
	})
	t.Run("mixed singles and ranges keep order", func(t *testing.T) {
		got := MustParseSequence([]string{
			"[2] ACK +1t",
			"[0..1] DATA +2t",
		})
		wantNums := []int{2, 0, 1}
		for i, tp := range got {
			if tp.Num != wantNums[i] {
				t.Errorf("packet %d: expected num %d, got %d", i, wantNums[i], tp.Num)
			}
		}
	})
	t.Run("malformed input panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic on malformed sequence")
			}
		}()
		MustParseSequence([]string{"not a packet"})
	})
}

func Test_TestPacket_Packet(t *testing.T) {
	t.Run("data packet carries the fill letter and a valid checksum", func(t *testing.T) {
		tp := &TestPacket{Kind: "DATA", Num: 2}
		p := tp.Packet()
		if p.Seq != 2 {
			t.Errorf("expected seq 2, got %d", p.Seq)
		}
		if p.Ack != model.NoField {
			t.Errorf("expected ack %d, got %d", model.NoField, p.Ack)
		}
		if p.Payload[0] != 'c' {
			t.Errorf("expected payload letter 'c', got %q", p.Payload[0])
		}
		if p.Corrupted() {
			t.Error("expected a clean packet")
		}
	})
	t.Run("corrupt flag makes the detector flag the packet", func(t *testing.T) {
		tp := &TestPacket{Kind: "ACK", Num: 0, Corrupt: true}
		p := tp.Packet()
		if !p.Corrupted() {
			t.Error("expected a corrupted packet")
		}
	})
}

func Test_PayloadLetter(t *testing.T) {
	if PayloadLetter(0) != 'a' {
		t.Error("expected 'a' for message 0")
	}
	if PayloadLetter(25) != 'z' {
		t.Error("expected 'z' for message 25")
	}
	if PayloadLetter(26) != 'a' {
		t.Error("expected the letter cycle to wrap at 26")
	}
}
