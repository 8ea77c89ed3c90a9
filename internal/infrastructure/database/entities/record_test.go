package entities

import "testing"

func TestAssetRefs_Scan(t *testing.T) {
	payload := []byte(`[{"public_id":"uploads/x","kind":"video","url":"https://media.example.com/x","variants":[{"format":"mp4","url":"https://media.example.com/x.mp4"},{"format":"m3u8","url":"https://media.example.com/x.m3u8"}]}]`)

	var refs AssetRefs
	if err := refs.Scan(payload); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(refs) != 1 || refs[0].PublicID != "uploads/x" {
		t.Fatalf("Scan() = %+v", refs)
	}
	// Both variants survive the round trip, in upload order.
	if len(refs[0].Variants) != 2 || refs[0].Variants[0].Format != "mp4" || refs[0].Variants[1].Format != "m3u8" {
		t.Errorf("variants = %+v", refs[0].Variants)
	}
}

func TestAssetRefs_ScanNil(t *testing.T) {
	refs := AssetRefs{{PublicID: "stale"}}
	if err := refs.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error = %v", err)
	}
	if refs != nil {
		t.Errorf("Scan(nil) left %+v, want nil", refs)
	}
}

func TestAssetRefs_ScanUnsupportedType(t *testing.T) {
	var refs AssetRefs
	if err := refs.Scan(42); err == nil {
		t.Error("Scan(int) expected error")
	}
}

func TestAssetRefs_ValueEmpty(t *testing.T) {
	var refs AssetRefs
	value, err := refs.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if value != "[]" {
		t.Errorf("Value() = %v, want empty JSON array", value)
	}
}
