package render

import (
	"bytes"
	"context"
	"testing"

	errs "github.com/matzehuels/stemma/pkg/errors"
)

const tinySVG = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`

func TestConvertWithoutConverter(t *testing.T) {
	saved := rsvgConvert
	rsvgConvert = "stemma-no-such-converter"
	t.Cleanup(func() { rsvgConvert = saved })

	if CanConvert() {
		t.Fatal("CanConvert() = true for a missing binary")
	}
	_, err := ToPDF(context.Background(), []byte(tinySVG))
	if !errs.Is(err, errs.ErrCodeInternal) {
		t.Errorf("ToPDF() error = %v, want INTERNAL_ERROR", err)
	}
}

func TestToPNG(t *testing.T) {
	if !CanConvert() {
		t.Skip("rsvg-convert not installed")
	}
	png, err := ToPNG(context.Background(), []byte(tinySVG), 2)
	if err != nil {
		t.Fatalf("ToPNG() error = %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("ToPNG() output does not start with the PNG signature")
	}
}
