package rangecoder

import (
	"bufio"
	"encoding/binary"
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
)

// Compress encodes the contents of the file name to w, driving the coder with
// an AdaptiveModel. The output is the uvarint length of the original data
// followed by the finalized coder bytes; the framing belongs to this helper,
// as the coded bytes themselves carry no metadata at all.
func Compress(w io.Writer, name string) error {
	data, err := ioutil.ReadFile(name)
	if err != nil {
		return errors.Wrap(err, "")
	}

	var hdr [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(len(data)))
	if _, err := w.Write(hdr[:n]); err != nil {
		return errors.Wrap(err, "")
	}

	model := NewAdaptiveModel()
	enc := NewEncoder()
	for _, b := range data {
		cdf := model.CDF()
		enc.Encode(cdf[b], cdf[int(b)+1], model.Precision())
		model.Observe(int(b))
	}
	if _, err := w.Write(enc.Finalize()); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Decompress reads a stream produced by Compress from r and writes the
// original data to w.
func Decompress(w io.Writer, r io.Reader) error {
	br := bufio.NewReader(r)
	size, err := binary.ReadUvarint(br)
	if err != nil {
		return errors.Wrap(err, "")
	}
	coded, err := ioutil.ReadAll(br)
	if err != nil {
		return errors.Wrap(err, "")
	}

	model := NewAdaptiveModel()
	dec := NewDecoder(coded)
	data := make([]byte, 0, size)
	for i := uint64(0); i < size; i++ {
		s := dec.Decode(model.CDF(), model.Precision())
		model.Observe(s)
		data = append(data, byte(s))
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}
