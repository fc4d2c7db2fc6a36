package main

/*
seqio-split splits FASTA, FASTQ or BAM input into numbered chunk files,
each holding only whole records, so that downstream tools can process the
chunks in parallel. With two input files the chunks are cut pairwise and
the n-th output file of each mate holds the same number of records.

Inputs ending in .gz are decompressed with gzip, inputs ending in .bam
with bgzf.
*/

import (
	"compress/flate"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	htsbgzf "github.com/grailbio/hts/bgzf"
	"github.com/klauspost/compress/gzip"

	"github.com/grailbio/seqio/encoding/bgzf"
	"github.com/grailbio/seqio/encoding/chunks"
)

var (
	out        = flag.String("out", "chunk", "Output path prefix; chunks are written to <out>-NNNNN[-r1|-r2]")
	bufferSize = flag.Int("buffer-size", chunks.DefaultBufferSize, "Chunk buffer size in bytes; no chunk or record may exceed it")
	compress   = flag.Bool("compress", false, "Write bgzf-compressed chunk files with a .bgz suffix")
	level      = flag.Int("compress-level", flate.DefaultCompression, "Compression level for -compress")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] path [mate-path]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	args := flag.Args()
	switch len(args) {
	case 1:
		splitSingle(args[0])
	case 2:
		splitPaired(args[0], args[1])
	default:
		log.Fatalf("Expected one or two input paths, got %d; please check flag syntax: '%s'",
			len(args), strings.Join(args, " "))
	}
}

func splitSingle(path string) {
	in, cleanup := open(path)
	defer cleanup()
	scanner := chunks.NewScanner(in, *bufferSize)
	n := 0
	for scanner.Scan() {
		if header := scanner.Header(); n == 0 && header != nil {
			writeFile(fmt.Sprintf("%s-header", *out), header)
		}
		writeFile(fmt.Sprintf("%s-%05d", *out, n), scanner.Chunk())
		n++
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("%s: %v", path, err)
	}
	log.Printf("%s: wrote %d chunks", path, n)
}

func splitPaired(path1, path2 string) {
	in1, cleanup1 := open(path1)
	defer cleanup1()
	in2, cleanup2 := open(path2)
	defer cleanup2()
	scanner := chunks.NewPairScanner(in1, in2, *bufferSize)
	n := 0
	for scanner.Scan() {
		chunk1, chunk2 := scanner.Chunks()
		writeFile(fmt.Sprintf("%s-%05d-r1", *out, n), chunk1)
		writeFile(fmt.Sprintf("%s-%05d-r2", *out, n), chunk2)
		n++
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("%s, %s: %v", path1, path2, err)
	}
	log.Printf("%s, %s: wrote %d chunk pairs", path1, path2, n)
}

// open returns a reader for path, decompressing .gz and .bam inputs, and
// a cleanup function closing whatever was opened.
func open(path string) (io.Reader, func()) {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("open %s: %v", path, err)
	}
	switch {
	case strings.HasSuffix(path, ".gz"):
		z, err := gzip.NewReader(f)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		return z, func() {
			closeOrDie(path, z.Close)
			closeOrDie(path, f.Close)
		}
	case strings.HasSuffix(path, ".bam"):
		z, err := htsbgzf.NewReader(f, 0)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		return z, func() {
			closeOrDie(path, z.Close)
			closeOrDie(path, f.Close)
		}
	}
	return f, func() { closeOrDie(path, f.Close) }
}

func writeFile(path string, data []byte) {
	if *compress {
		path += ".bgz"
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("create %s: %v", path, err)
	}
	var w io.Writer = f
	var z *bgzf.Writer
	if *compress {
		if z, err = bgzf.NewWriter(f, *level); err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		w = z
	}
	if _, err := w.Write(data); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
	if z != nil {
		closeOrDie(path, z.Close)
	}
	closeOrDie(path, f.Close)
}

func closeOrDie(path string, close func() error) {
	if err := close(); err != nil {
		log.Fatalf("close %s: %v", path, err)
	}
}
