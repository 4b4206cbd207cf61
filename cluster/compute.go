// Command cluster computes the normalized compression distance between every
// pair of files in a directory, using the size of the range coded output as
// the complexity measure. The resulting condensed distance matrix can be fed
// to standard hierarchical clustering tools.
package main

import (
	"bytes"
	"flag"
	"io"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fumin/rangecoder"
	"github.com/pkg/errors"
)

var (
	measure = flag.String("m", "range", "complexity measure, either \"range\" or \"targz\"")
	dataDir = flag.String("d", "", "data directory")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	if err := run(*measure, *dataDir); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(measure, dir string) error {
	data, err := listFiles(dir)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if len(data) < 2 {
		return errors.Errorf("%d files in %s, need at least 2", len(data), dir)
	}
	distMat, err := distanceMatrix(measure, data)
	if err != nil {
		return errors.Wrap(err, "")
	}

	display(data, distMat)
	return nil
}

// display prints the file names and the condensed distance matrix as comma
// separated arrays.
func display(data []string, distMat []float64) {
	names := make([]string, 0, len(data))
	for _, fpath := range data {
		name := filepath.Base(fpath)
		names = append(names, `"`+strings.TrimSuffix(name, filepath.Ext(name))+`"`)
	}
	log.Printf("[%s]", strings.Join(names, ","))

	dists := make([]string, 0, len(distMat))
	for _, d := range distMat {
		dists = append(dists, strconv.FormatFloat(d, 'f', -1, 64))
	}
	log.Printf("[%s]", strings.Join(dists, ","))
}

func distanceMatrix(measure string, data []string) ([]float64, error) {
	cacher := make(map[string]float64)

	n := len(data)
	mat := make([]float64, 0, n*(n-1)/2)
	for i, dx := range data[:n-1] {
		for _, dy := range data[i+1:] {
			dist, err := distance(cacher, measure, dx, dy)
			if err != nil {
				return nil, errors.Wrap(err, "")
			}
			mat = append(mat, dist)
		}
	}
	return mat, nil
}

// distance computes the normalized compression distance
// (K(xy) - min(K(x), K(y))) / max(K(x), K(y)),
// where K is the compressed size of a file and xy is the concatenation of x and y.
func distance(cacher map[string]float64, measure, x, y string) (float64, error) {
	xy, err := ioutil.TempFile("", "rangecoder.cluster")
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	defer os.Remove(xy.Name())
	if err := concatFiles(xy, x, y); err != nil {
		return -1, errors.Wrap(err, "")
	}

	kxy, err := complexity(cacher, measure, xy.Name())
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	kx, err := complexity(cacher, measure, x)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	ky, err := complexity(cacher, measure, y)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}

	minxy, maxxy := kx, ky
	if ky < kx {
		minxy, maxxy = ky, kx
	}
	return (kxy - minxy) / maxxy, nil
}

func complexity(cacher map[string]float64, measure, x string) (float64, error) {
	switch measure {
	case "range":
		return complexityRange(cacher, x)
	default:
		return complexityTarGz(x)
	}
}

func complexityRange(cacher map[string]float64, fpath string) (float64, error) {
	if size, ok := cacher[fpath]; ok {
		return size, nil
	}

	buf := bytes.NewBuffer(nil)
	if err := rangecoder.Compress(buf, fpath); err != nil {
		return -1, errors.Wrap(err, "")
	}
	size := float64(buf.Len())

	cacher[fpath] = size
	return size, nil
}

func complexityTarGz(fpath string) (float64, error) {
	dst, err := ioutil.TempFile("", "rangecoder.cluster.targz")
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	defer os.Remove(dst.Name())
	if err := dst.Close(); err != nil {
		return -1, errors.Wrap(err, "")
	}
	if err := exec.Command("tar", "zcf", dst.Name(), fpath).Run(); err != nil {
		return -1, errors.Wrap(err, "")
	}
	info, err := os.Stat(dst.Name())
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	return float64(info.Size()), nil
}

func concatFiles(tmpf *os.File, fs ...string) error {
	for _, fpath := range fs {
		err := func(fpath string) error {
			f, err := os.Open(fpath)
			if err != nil {
				return errors.Wrap(err, "")
			}
			defer f.Close()
			if _, err := io.Copy(tmpf, f); err != nil {
				return errors.Wrap(err, "")
			}
			return nil
		}(fpath)
		if err != nil {
			return errors.Wrap(err, "")
		}
	}
	if err := tmpf.Close(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func listFiles(dir string) ([]string, error) {
	infos, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	fpaths := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		fpaths = append(fpaths, filepath.Join(dir, info.Name()))
	}
	return fpaths, nil
}
