// Package datfile reads Logiqx style DAT documents into a catalog.DataFile.
package datfile

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"rom-checker/catalog"
)

type datafile struct {
	XMLName  xml.Name `xml:"datafile"`
	Header   header   `xml:"header"`
	Games    []game   `xml:"game"`
	Machines []game   `xml:"machine"`
}

type header struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Version     string `xml:"version"`
}

type game struct {
	Name        string `xml:"name,attr"`
	Category    string `xml:"category"`
	Description string `xml:"description"`
	Roms        []rom  `xml:"rom"`
}

type rom struct {
	Name string `xml:"name,attr"`
	Size int64  `xml:"size,attr"`
	CRC  string `xml:"crc,attr"`
	MD5  string `xml:"md5,attr"`
	SHA1 string `xml:"sha1,attr"`
}

// Parse decodes a DAT document. Games keep document order; MAME style
// <machine> entries follow the <game> entries.
func Parse(r io.Reader) (catalog.DataFile, error) {
	var doc datafile
	if err := xml.NewDecoder(bufio.NewReader(r)).Decode(&doc); err != nil {
		return catalog.DataFile{}, fmt.Errorf("decode datafile: %w", err)
	}

	data := catalog.DataFile{
		Header: catalog.Header{
			Name:        strings.TrimSpace(doc.Header.Name),
			Description: strings.TrimSpace(doc.Header.Description),
			Version:     strings.TrimSpace(doc.Header.Version),
		},
		Games: make([]catalog.Game, 0, len(doc.Games)+len(doc.Machines)),
	}

	entries := append(doc.Games, doc.Machines...)
	for i, g := range entries {
		if g.Name == "" {
			return catalog.DataFile{}, fmt.Errorf("decode datafile: entry %d has no name", i)
		}
		out := catalog.Game{
			Name:        g.Name,
			Category:    strings.TrimSpace(g.Category),
			Description: strings.TrimSpace(g.Description),
			Roms:        make([]catalog.Rom, 0, len(g.Roms)),
		}
		for _, r := range g.Roms {
			out.Roms = append(out.Roms, catalog.Rom{
				Name: r.Name,
				Size: r.Size,
				CRC:  r.CRC,
				MD5:  r.MD5,
				SHA1: r.SHA1,
			}.Normalize())
		}
		data.Games = append(data.Games, out)
	}
	return data, nil
}

// ParseFile reads and decodes the DAT file at path.
func ParseFile(path string) (catalog.DataFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return catalog.DataFile{}, fmt.Errorf("%w: open datafile: %v", catalog.ErrIO, err)
	}
	defer f.Close()

	data, err := Parse(f)
	if err != nil {
		return catalog.DataFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return data, nil
}
