package preview

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"loraorganizer/internal/domain"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return p
}

func TestResolveScalesShortSideToTarget(t *testing.T) {
	dir := t.TempDir()
	p := writePNG(t, dir, "wide.png", 400, 200)

	pv := NewResolver(300, CaptionNoImageFound).Resolve(p)
	if pv.Placeholder || pv.Err != nil {
		t.Fatalf("unexpected placeholder: %v", pv.Err)
	}
	if pv.Width != 600 || pv.Height != 300 {
		t.Fatalf("size = %dx%d, want 600x300", pv.Width, pv.Height)
	}
	if b := pv.Image.Bounds(); b.Dx() != 600 || b.Dy() != 300 {
		t.Fatalf("image bounds = %v", b)
	}
}

func TestResolvePortraitAndJPEG(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 200, 400))
	p := filepath.Join(dir, "tall.JPG")
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	pv := (&Resolver{}).Resolve(p)
	if pv.Placeholder || pv.Width != 300 || pv.Height != 600 {
		t.Fatalf("got %dx%d placeholder=%v err=%v, want 300x600", pv.Width, pv.Height, pv.Placeholder, pv.Err)
	}
}

func TestResolveMissingAndCorruptYieldPlaceholder(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(corrupt, []byte("definitely not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewResolver(300, CaptionNoImageFound)

	missing := r.Resolve(filepath.Join(dir, "nope.png"))
	bad := r.Resolve(corrupt)
	for name, pv := range map[string]Preview{"missing": missing, "corrupt": bad} {
		if !pv.Placeholder || pv.Width != PlaceholderWidth || pv.Height != PlaceholderHeight {
			t.Fatalf("%s: got %dx%d placeholder=%v", name, pv.Width, pv.Height, pv.Placeholder)
		}
		if b := pv.Image.Bounds(); b.Dx() != 300 || b.Dy() != 200 {
			t.Fatalf("%s: image bounds %v", name, b)
		}
	}
	if !errors.Is(missing.Err, domain.ErrNotFound) {
		t.Fatalf("missing: err = %v, want ErrNotFound", missing.Err)
	}
	if !errors.Is(bad.Err, domain.ErrDecode) {
		t.Fatalf("corrupt: err = %v, want ErrDecode", bad.Err)
	}
	if dirPv := r.Resolve(dir); !dirPv.Placeholder || !errors.Is(dirPv.Err, domain.ErrDecode) {
		t.Fatalf("directory should degrade to placeholder with ErrDecode: %+v", dirPv.Err)
	}
}

func TestResolveEmptyPath(t *testing.T) {
	pv := NewResolver(0, CaptionNoImageSelected).Resolve("   ")
	if !pv.Placeholder || pv.Err != nil {
		t.Fatalf("empty path: placeholder=%v err=%v", pv.Placeholder, pv.Err)
	}
}

func TestPlaceholderDeterministic(t *testing.T) {
	a := Placeholder(CaptionNoImageFound)
	b := Placeholder(CaptionNoImageFound)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatalf("placeholder differs between calls")
	}
	c := Placeholder(CaptionNoImageSelected)
	if bytes.Equal(a.Pix, c.Pix) {
		t.Fatalf("different captions should render differently")
	}
	if got := a.RGBAAt(0, 0); got != placeholderBG {
		t.Fatalf("corner pixel = %v, want background", got)
	}
	found := false
	for y := 0; y < PlaceholderHeight && !found; y++ {
		for x := 0; x < PlaceholderWidth; x++ {
			if a.RGBAAt(x, y) == placeholderFG {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatalf("caption pixels not drawn")
	}
}

func TestScaledSize(t *testing.T) {
	cases := []struct{ w, h, side, ww, wh int }{
		{400, 200, 300, 600, 300},
		{200, 400, 300, 300, 600},
		{300, 300, 300, 300, 300},
		{7, 3, 300, 700, 300},
		{333, 500, 300, 300, 450},
		{1000, 3, 1, 333, 1},
		{4000, 3000, 300, 400, 300},
		{0, 10, 300, 1, 1},
	}
	for _, c := range cases {
		gw, gh := ScaledSize(c.w, c.h, c.side)
		if gw != c.ww || gh != c.wh {
			t.Errorf("ScaledSize(%d,%d,%d) = %dx%d, want %dx%d", c.w, c.h, c.side, gw, gh, c.ww, c.wh)
		}
	}
}

type mapCache struct {
	data       map[CacheKey][]byte
	gets, hits int
	puts       int
}

func (m *mapCache) Get(k CacheKey) ([]byte, bool) {
	m.gets++
	b, ok := m.data[k]
	if ok {
		m.hits++
	}
	return b, ok
}

func (m *mapCache) Put(k CacheKey, b []byte) {
	m.puts++
	m.data[k] = b
}

func TestResolveUsesCache(t *testing.T) {
	dir := t.TempDir()
	p := writePNG(t, dir, "c.png", 40, 20)
	mc := &mapCache{data: map[CacheKey][]byte{}}
	r := &Resolver{ShortSide: 30, Cache: mc}

	first := r.Resolve(p)
	second := r.Resolve(p)
	if first.Width != 60 || second.Width != 60 || second.Height != 30 {
		t.Fatalf("sizes: %dx%d then %dx%d", first.Width, first.Height, second.Width, second.Height)
	}
	if mc.puts != 1 || mc.hits != 1 {
		t.Fatalf("cache puts=%d hits=%d, want 1/1", mc.puts, mc.hits)
	}

	// A placeholder is never cached.
	r.Resolve(filepath.Join(dir, "missing.png"))
	if mc.puts != 1 {
		t.Fatalf("placeholder must not be cached")
	}

	// A rewritten file with a new size misses.
	writePNG(t, dir, "c.png", 80, 20)
	third := r.Resolve(p)
	if third.Width != 120 || mc.puts != 2 {
		t.Fatalf("changed source: width=%d puts=%d", third.Width, mc.puts)
	}
}

func TestContentHash(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	if err := os.WriteFile(a, []byte("same length"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("same length"), 0o644); err != nil {
		t.Fatal(err)
	}
	ha, err := ContentHash(a)
	if err != nil {
		t.Fatalf("ContentHash: %v", err)
	}
	hb, _ := ContentHash(b)
	if ha != hb {
		t.Fatalf("equal content hashed differently")
	}
	if err := os.WriteFile(b, []byte("same lengtH"), 0o644); err != nil {
		t.Fatal(err)
	}
	if hb, _ = ContentHash(b); ha == hb {
		t.Fatalf("edited content kept its hash")
	}
	if _, err := ContentHash(filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("missing file must fail")
	}
}
