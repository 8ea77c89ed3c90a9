package media

import "testing"

// Leading signature bytes of common container formats.
var (
	mp4Header = append([]byte{0x00, 0x00, 0x00, 0x18}, []byte("ftypisom\x00\x00\x02\x00isomiso2avc1mp41")...)
	jpgHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 'I', 'H', 'D', 'R'}
	mp3Header = append([]byte("ID3"), make([]byte, 16)...)
	pdfHeader = []byte("%PDF-1.4\n%\xE2\xE3\xCF\xD3\n")
)

func TestClassifier_Classify(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		hint     Kind
		wantKind Kind
		wantMime string
	}{
		{
			name:     "mp4 signature",
			data:     mp4Header,
			hint:     KindUnknown,
			wantKind: KindVideo,
			wantMime: "video/mp4",
		},
		{
			name:     "jpeg signature",
			data:     jpgHeader,
			hint:     KindUnknown,
			wantKind: KindImage,
			wantMime: "image/jpeg",
		},
		{
			name:     "png signature",
			data:     pngHeader,
			hint:     KindUnknown,
			wantKind: KindImage,
			wantMime: "image/png",
		},
		{
			name:     "mp3 id3 signature",
			data:     mp3Header,
			hint:     KindUnknown,
			wantKind: KindAudio,
			wantMime: "audio/mpeg",
		},
		{
			name:     "pdf signature",
			data:     pdfHeader,
			hint:     KindUnknown,
			wantKind: KindDocument,
			wantMime: "application/pdf",
		},
		{
			name:     "signature beats contradicting hint",
			data:     pngHeader,
			hint:     KindVideo,
			wantKind: KindImage,
			wantMime: "image/png",
		},
		{
			name:     "ambiguous text falls back to hint",
			data:     []byte("just some words"),
			hint:     KindAudio,
			wantKind: KindAudio,
		},
		{
			name:     "ambiguous binary falls back to default",
			data:     []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
			hint:     KindUnknown,
			wantKind: KindVideo,
		},
	}

	classifier := NewClassifier(KindVideo)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifier.Classify(tt.data, tt.hint)
			if got.Kind != tt.wantKind {
				t.Errorf("Classify() kind = %v, want %v", got.Kind, tt.wantKind)
			}
			if tt.wantMime != "" && got.Mime != tt.wantMime {
				t.Errorf("Classify() mime = %v, want %v", got.Mime, tt.wantMime)
			}
		})
	}
}

func TestNewClassifier_DefaultFallback(t *testing.T) {
	classifier := NewClassifier(KindUnknown)
	got := classifier.Classify([]byte{0x01, 0x02, 0x03}, KindUnknown)
	if got.Kind != KindVideo {
		t.Errorf("Classify() kind = %v, want %v", got.Kind, KindVideo)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		value string
		want  Kind
	}{
		{"video", KindVideo},
		{"  Image ", KindImage},
		{"AUDIO", KindAudio},
		{"document", KindDocument},
		{"raw", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		if got := ParseKind(tt.value); got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
