package gemini

import (
	"io"
	"strings"
	"testing"
)

func TestSSEReaderReadEvent(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single event",
			input: "data: {\"a\":1}\n\n",
			want:  []string{`{"a":1}`},
		},
		{
			name:  "multiple events",
			input: "data: one\n\ndata: two\n\n",
			want:  []string{"one", "two"},
		},
		{
			name:  "crlf line endings",
			input: "data: one\r\n\r\ndata: two\r\n\r\n",
			want:  []string{"one", "two"},
		},
		{
			name:  "ignores comments and other fields",
			input: ": keepalive\nevent: message\nid: 3\ndata: payload\n\n",
			want:  []string{"payload"},
		},
		{
			name:  "multi-line data joined",
			input: "data: first\ndata: second\n\n",
			want:  []string{"first\nsecond"},
		},
		{
			name:  "trailing data flushed at EOF",
			input: "data: tail",
			want:  []string{"tail"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewSSEReader(strings.NewReader(tt.input))
			var got []string
			for {
				data, err := r.ReadEvent()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("ReadEvent error: %v", err)
				}
				got = append(got, string(data))
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events %v, want %d", len(got), got, len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("event[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
