package rangecoder

import (
	"bytes"
	"io/ioutil"
	"math/rand"
	"os"
	"strings"
	"testing"
)

func TestCompress(t *testing.T) {
	// English-like data.
	rnd := rand.New(rand.NewSource(5))
	words := []string{"four", "score", "and", "seven", "years", "ago"}
	b := strings.Builder{}
	for i := 0; i < 2000; i++ {
		b.WriteString(words[rnd.Intn(len(words))])
		b.WriteByte(' ')
	}
	original := []byte(b.String())

	src, err := ioutil.TempFile("", "rangecoder.TestCompress.src")
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer os.Remove(src.Name())
	if _, err := src.Write(original); err != nil {
		t.Fatalf("%v", err)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("%v", err)
	}

	// Compress
	f, err := ioutil.TempFile("", "rangecoder.TestCompress.Compress")
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer f.Close()
	defer os.Remove(f.Name())
	if err := Compress(f, src.Name()); err != nil {
		t.Fatalf("%v", err)
	}
	info, err := f.Stat()
	if err != nil {
		t.Fatalf("%v", err)
	}
	if info.Size() >= int64(len(original)) {
		t.Errorf("no compression: %d >= %d", info.Size(), len(original))
	}

	// Decompress
	if _, err := f.Seek(0, 0); err != nil {
		t.Fatalf("%v", err)
	}
	decom := bytes.NewBuffer(nil)
	if err := Decompress(decom, f); err != nil {
		t.Fatalf("%v", err)
	}

	// Check if the decompressed result is the same as the original data
	if !bytes.Equal(original, decom.Bytes()) {
		t.Errorf("decompressed %d bytes differ from original %d bytes", decom.Len(), len(original))
	}
}

func TestCompressEmpty(t *testing.T) {
	src, err := ioutil.TempFile("", "rangecoder.TestCompressEmpty")
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer os.Remove(src.Name())
	if err := src.Close(); err != nil {
		t.Fatalf("%v", err)
	}

	compressed := bytes.NewBuffer(nil)
	if err := Compress(compressed, src.Name()); err != nil {
		t.Fatalf("%v", err)
	}
	decom := bytes.NewBuffer(nil)
	if err := Decompress(decom, bytes.NewReader(compressed.Bytes())); err != nil {
		t.Fatalf("%v", err)
	}
	if decom.Len() != 0 {
		t.Errorf("%d", decom.Len())
	}
}
