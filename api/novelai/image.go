package novelai

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

func Unzip(body io.Reader) ([][]byte, error) {
	bin, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	byteReader := bytes.NewReader(bin)
	zipReader, err := zip.NewReader(byteReader, byteReader.Size())
	if err != nil {
		return nil, err
	}

	if len(zipReader.File) == 0 {
		return nil, errors.New("zip file is empty")
	}

	files := make([][]byte, 0, len(zipReader.File))
	for _, file := range zipReader.File {
		data, err := readFile(file)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", file.Name, err)
		}
		files = append(files, data)
	}
	return files, nil
}

func readFile(file *zip.File) ([]byte, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

var ErrNoSeed = errors.New("no seed in image metadata")

// ExtractSeed reads the seed out of the JSON stored in the PNG "Comment" text chunk.
func ExtractSeed(png []byte) (int64, error) {
	comment, err := textChunk(png, "Comment")
	if err != nil {
		return 0, err
	}

	var metadata struct {
		Seed *int64 `json:"seed"`
	}
	if err := json.Unmarshal([]byte(comment), &metadata); err != nil {
		return 0, fmt.Errorf("error decoding comment: %w", err)
	}
	if metadata.Seed == nil {
		return 0, ErrNoSeed
	}
	return *metadata.Seed, nil
}

func textChunk(png []byte, keyword string) (string, error) {
	if !bytes.HasPrefix(png, pngSignature) {
		return "", errors.New("not a png")
	}

	rest := png[len(pngSignature):]
	for len(rest) >= 12 {
		length := binary.BigEndian.Uint32(rest[:4])
		kind := string(rest[4:8])
		if uint64(len(rest)) < 12+uint64(length) {
			return "", errors.New("truncated png chunk")
		}
		data := rest[8 : 8+length]
		rest = rest[12+length:]

		switch kind {
		case "tEXt":
			key, value, found := bytes.Cut(data, []byte{0})
			if found && string(key) == keyword {
				return string(value), nil
			}
		case "IEND":
			return "", ErrNoSeed
		}
	}
	return "", ErrNoSeed
}
