package data

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/redsoil/colony/internal/grid"
)

const (
	GlyphFloor   = '.'
	GlyphSpawn   = 'S'
	commentGlyph = ';'
)

// SolidCell is one solid cell of a terrain map.
type SolidCell struct {
	Pos      grid.Pos
	Material string
}

// TerrainMap is a hand-authored map. The first text row is the top of the
// map (largest y); cell (0, 0) is the bottom-left character.
type TerrainMap struct {
	Width, Height int
	Solids        []SolidCell // in file order
	Spawns        []grid.Pos
}

// InBounds reports whether p lies inside the map rectangle.
func (m *TerrainMap) InBounds(p grid.Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Width && p.Y < m.Height
}

// LoadTerrainMap reads a map file. Glyphs other than floor and spawn must
// name a material from mats.
func LoadTerrainMap(path string, mats *MaterialTable) (*TerrainMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map %s: %w", path, err)
	}
	m, err := ParseTerrainMap(raw, mats)
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", path, err)
	}
	return m, nil
}

func ParseTerrainMap(raw []byte, mats *MaterialTable) (*TerrainMap, error) {
	var rows []string
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if len(line) == 0 || line[0] == commentGlyph {
			continue
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty map")
	}

	m := &TerrainMap{Height: len(rows)}
	for r, line := range rows {
		y := len(rows) - 1 - r
		x := 0
		for _, ch := range line {
			p := grid.Pt(x, y)
			switch ch {
			case GlyphFloor:
			case GlyphSpawn:
				m.Spawns = append(m.Spawns, p)
			default:
				mat := mats.ByGlyph(ch)
				if mat == nil {
					return nil, fmt.Errorf("line %d col %d: unknown glyph %q", r+1, x+1, ch)
				}
				m.Solids = append(m.Solids, SolidCell{Pos: p, Material: mat.Name})
			}
			x++
		}
		if x > m.Width {
			m.Width = x
		}
	}
	return m, nil
}
