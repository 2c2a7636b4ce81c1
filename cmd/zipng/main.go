// Copyright 2025 The Zipng Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0> or the MIT license
// <LICENSE-MIT or https://opensource.org/licenses/MIT>, at your
// option. This file may not be copied, modified, or distributed
// except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0 OR MIT

// ----------------

// zipng converts images between PNG and PPM (reading TIFF too), driving
// this repository's own PNG codec.
//
// Usage:
//
//	zipng [flags] input-file output-file
//
// The input format is detected by file signature first, filename
// extension second. The output format follows the output filename's
// extension (.png or .ppm).
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/tiff"

	"github.com/zipng/zipng/lib/pix"
	"github.com/zipng/zipng/lib/png"
	"github.com/zipng/zipng/lib/ppm"
)

const version = "0.1.0"

var (
	helpFlag    = flag.Bool("help", false, "print usage and exit")
	versionFlag = flag.Bool("version", false, "print the version and exit")

	compressionLevelFlag = flag.String("compression-level", "best",
		`compression effort: "none", "fast" or "best"`)
	colorTypeFlag = flag.String("color-type", "",
		`output color type: "greyscale", "truecolor", "indexed", "ga" or "tca" (default: derived from the image)`)
	bitDepthFlag = flag.Int("bit-depth", 0,
		"output bit depth: 1, 2, 4, 8 or 16 (default: derived from the image)")
	interlaceFlag = flag.String("interlace", "none",
		`pixel transmission order: "none" or "adam7"`)
)

func usage() {
	fmt.Fprintf(os.Stderr, `zipng converts images between PNG and PPM (reading TIFF too).

Usage:

	zipng [flags] input-file output-file

The flags are:

	--compression-level {none,fast,best}
	--color-type {greyscale,truecolor,indexed,ga,tca}
	--bit-depth {1,2,4,8,16}
	--interlace {none,adam7}
	--version, -v
	--help, -h
`)
}

func main() {
	if err := main1(); err != nil {
		os.Stderr.WriteString("zipng: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func main1() error {
	flag.BoolVar(helpFlag, "h", false, "print usage and exit")
	flag.BoolVar(versionFlag, "v", false, "print the version and exit")
	flag.Usage = usage
	flag.Parse()

	if *helpFlag {
		usage()
		return nil
	}
	if *versionFlag {
		fmt.Println(version)
		return nil
	}
	if flag.NArg() != 2 {
		usage()
		os.Exit(1)
	}

	opts, err := encoderOptions()
	if err != nil {
		return err
	}

	inPath, outPath := flag.Arg(0), flag.Arg(1)
	img, err := readImage(inPath)
	if err != nil {
		return err
	}
	return writeImage(outPath, img, opts)
}

func encoderOptions() (png.EncoderOptions, error) {
	var opts png.EncoderOptions

	switch *compressionLevelFlag {
	case "none":
		opts.Level = png.LevelNone
	case "fast":
		opts.Level = png.LevelFast
	case "best":
		opts.Level = png.LevelBest
	default:
		return opts, fmt.Errorf("unknown compression level %q", *compressionLevelFlag)
	}

	switch *colorTypeFlag {
	case "":
		opts.ColorType = png.ColorTypeAuto
	case "greyscale":
		opts.ColorType = png.ColorTypeGreyscale
	case "truecolor":
		opts.ColorType = png.ColorTypeTruecolor
	case "indexed":
		opts.ColorType = png.ColorTypeIndexed
	case "ga":
		opts.ColorType = png.ColorTypeGreyscaleAlpha
	case "tca":
		opts.ColorType = png.ColorTypeTruecolorAlpha
	default:
		return opts, fmt.Errorf("unknown color type %q", *colorTypeFlag)
	}

	switch *bitDepthFlag {
	case 0, 1, 2, 4, 8, 16:
		opts.BitDepth = *bitDepthFlag
	default:
		return opts, fmt.Errorf("invalid bit depth %d", *bitDepthFlag)
	}

	switch *interlaceFlag {
	case "none":
		opts.Interlace = png.InterlaceNone
	case "adam7":
		opts.Interlace = png.InterlaceAdam7
	default:
		return opts, fmt.Errorf("unknown interlace method %q", *interlaceFlag)
	}

	return opts, nil
}

// Signatures checked before falling back to filename extensions.
var (
	pngSignature  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	tiffLittleSig = []byte{'I', 'I', 0x2A, 0x00}
	tiffBigSig    = []byte{'M', 'M', 0x00, 0x2A}
)

func readImage(path string) (*pix.Image, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch {
	case bytes.HasPrefix(raw, pngSignature):
		return decodePNG(path, raw)
	case bytes.HasPrefix(raw, []byte(ppm.Magic)):
		return decodePPM(path, raw)
	case bytes.HasPrefix(raw, tiffLittleSig) || bytes.HasPrefix(raw, tiffBigSig):
		return decodeTIFF(path, raw)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return decodePNG(path, raw)
	case ".ppm":
		return decodePPM(path, raw)
	case ".tif", ".tiff":
		return decodeTIFF(path, raw)
	}
	return nil, fmt.Errorf("unrecognized input format for %q", path)
}

func decodePNG(path string, raw []byte) (*pix.Image, error) {
	img, err := png.Decode(bytes.NewReader(raw))
	return img, errors.Wrapf(err, "decoding %q", path)
}

func decodePPM(path string, raw []byte) (*pix.Image, error) {
	img, err := ppm.Decode(bytes.NewReader(raw))
	return img, errors.Wrapf(err, "decoding %q", path)
}

func decodeTIFF(path string, raw []byte) (*pix.Image, error) {
	src, err := tiff.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %q", path)
	}
	return fromStdImage(src), nil
}

// fromStdImage converts a decoded standard-library image into the pixel
// grid the codecs operate on.
func fromStdImage(src image.Image) *pix.Image {
	b := src.Bounds()
	img := pix.New(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bb, a := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
			img.Set(x, y, pix.RGBA{
				R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bb >> 8), A: uint8(a >> 8),
			})
		}
	}
	return img
}

func writeImage(path string, img *pix.Image, opts png.EncoderOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		err = png.Encode(f, img, opts)
	case ".ppm":
		err = ppm.Encode(f, img)
	default:
		f.Close()
		return fmt.Errorf("unrecognized output format for %q", path)
	}
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "encoding %q", path)
	}
	return f.Close()
}
